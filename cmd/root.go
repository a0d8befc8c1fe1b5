// Package cmd wires up the CLI flags and dispatches to the core modes.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"paizer/config"
	"paizer/internal/console"
	"paizer/internal/core"
	"paizer/internal/session"
	"paizer/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X paizer/cmd.version=1.1.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the chat client or the relay.
func Execute(ctx context.Context, args []string) error {
	cfg := &config.Config{}
	config.LoadFromEnv(cfg)

	fs := flag.NewFlagSet("paizer", flag.ContinueOnError)

	// Environment values become the flag defaults so flags win.

	// ── chat ─────────────────────────────────────────────────────
	fs.StringVarP(&cfg.Nickname, "nick", "n", cfg.Nickname, "Nickname to log in with")
	fs.StringVarP(&cfg.Server, "server", "s", cfg.Server, "Chat server as host[:port]")
	fs.BoolVarP(&cfg.AssumeYes, "yes", "y", cfg.AssumeYes, "Quit without confirmation")

	timeoutSec := int(cfg.Timeout / time.Second)
	fs.IntVarP(&timeoutSec, "timeout", "w", timeoutSec, "Connect timeout in seconds (0 = none)")

	// ── relay ────────────────────────────────────────────────────
	fs.BoolVarP(&cfg.Listen, "listen", "l", false, "Run a relay server instead of the client")
	fs.IntVarP(&cfg.LocalPort, "port", "p", cfg.LocalPort, fmt.Sprintf("Relay port (default %d)", config.DefaultPort))
	fs.StringVar(&cfg.BindAddress, "bind", cfg.BindAddress, fmt.Sprintf("Relay bind address (default %s)", config.DefaultBindAddress))

	// ── SSH tunnel ───────────────────────────────────────────────
	fs.StringVarP(&cfg.TunnelSpec, "tunnel", "T", cfg.TunnelSpec, "Reach the server through SSH bastion [user@]host[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", cfg.SSHPassword, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Validate the configuration and exit")
	fs.BoolVar(&cfg.Stats, "stats", false, "Print session statistics on exit")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	envVerbose := cfg.Verbose
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !fs.Changed("verbose") {
		cfg.Verbose = envVerbose
	}

	if showHelp {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("paizer %s\n", version)
		return nil
	}

	cfg.Timeout = time.Duration(timeoutSec) * time.Second

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── tunnel spec ──────────────────────────────────────────────
	if err := cfg.ApplyTunnelSpec(); err != nil {
		return err
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := util.NewLogger(cfg.Verbose)

	if cfg.DryRun {
		return dryRun(cfg, logger)
	}

	if cfg.Listen {
		mode, err := core.Build(cfg, logger, nil)
		if err != nil {
			return err
		}
		return mode.Run(ctx)
	}

	// ── chat ─────────────────────────────────────────────────────
	ui, err := console.Open(os.Stdin, os.Stdout)
	if err != nil {
		return fmt.Errorf("console: %w", err)
	}
	defer ui.Close()

	if err := promptMissing(cfg, ui); err != nil {
		return err
	}

	mode, err := core.Build(cfg, logger, ui)
	if err != nil {
		return err
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

// parsePositional accepts "<nickname> [server]" in client mode.  Flags
// take precedence over positional values.
func parsePositional(cfg *config.Config, remaining []string) error {
	if cfg.Listen {
		if len(remaining) > 0 {
			return fmt.Errorf("relay mode takes no arguments (use -p and --bind)")
		}
		return nil
	}

	switch len(remaining) {
	case 0:
	case 1:
		if cfg.Nickname == "" {
			cfg.Nickname = remaining[0]
		} else if cfg.Server == "" {
			cfg.Server = remaining[0]
		} else {
			return fmt.Errorf("unexpected argument %q", remaining[0])
		}
	case 2:
		if cfg.Nickname == "" {
			cfg.Nickname = remaining[0]
		}
		if cfg.Server == "" {
			cfg.Server = remaining[1]
		}
	default:
		return fmt.Errorf("too many arguments (use --help for usage)")
	}
	return nil
}

// promptMissing asks for a nickname or server that was not given, when
// a user is at the terminal to answer.
func promptMissing(cfg *config.Config, ui *console.Console) error {
	if !ui.Interactive() {
		return nil
	}
	if cfg.Nickname == "" {
		nick, err := ui.Prompt("Nickname: ")
		if err != nil {
			return err
		}
		cfg.Nickname = nick
	}
	if cfg.Server == "" {
		server, err := ui.Prompt(fmt.Sprintf("Server (host[:port], default port %d): ", config.DefaultPort))
		if err != nil {
			return err
		}
		cfg.Server = server
	}
	return nil
}

// dryRun checks the inputs the run would use and reports the result
// without opening any connection.
func dryRun(cfg *config.Config, logger *util.Logger) error {
	if cfg.Listen {
		port := cfg.LocalPort
		if port == 0 {
			port = config.DefaultPort
		}
		logger.Info("dry run: relay would listen on %s", util.FormatAddr(bindOrDefault(cfg), port))
		return nil
	}

	ep, err := session.Validate(cfg.Nickname, cfg.Server)
	if err != nil {
		return err
	}
	via := "direct"
	if cfg.TunnelEnabled {
		via = "ssh " + util.FormatAddr(cfg.TunnelHost, cfg.TunnelPort)
	}
	logger.Info("dry run: %s would connect to %s (%s)", cfg.Nickname, ep, via)
	return nil
}

func bindOrDefault(cfg *config.Config) string {
	if cfg.BindAddress != "" {
		return cfg.BindAddress
	}
	return config.DefaultBindAddress
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Paizer – minimal TCP chat client v%s

Usage:
  paizer [options] <nickname> <server[:port]>   Chat
  paizer -l [-p <port>] [--bind <addr>]         Relay server
  paizer -T user@bastion <nickname> <server>    Chat through SSH

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Examples:
  paizer alice chat.example.com               Default port %d
  paizer -n alice -s 10.0.0.5:9000            Explicit port
  paizer -l -p 9000                           Relay on 9000
  PAIZER_NICK=alice paizer -s chat.local      Nickname from environment

Type /quit to leave a chat.
`, config.DefaultPort)
}
