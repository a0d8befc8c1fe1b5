// Package config defines the runtime configuration for paizer and
// provides the tunnel-spec parser shared by flags and environment.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	ncerr "paizer/internal/errors"
)

// Config holds every tuneable for one paizer run, client or relay.
type Config struct {
	// ── Chat ─────────────────────────────────────────────────────────
	Nickname  string
	Server    string        // raw host[:port]; parsed by the endpoint parser
	Timeout   time.Duration // connect timeout, 0 = none
	AssumeYes bool          // skip the /quit confirmation

	// ── Relay ────────────────────────────────────────────────────────
	Listen      bool
	LocalPort   int
	BindAddress string

	// ── SSH tunnel ───────────────────────────────────────────────────
	TunnelSpec     string // raw user@host[:port] from -T
	TunnelEnabled  bool
	TunnelUser     string
	TunnelHost     string
	TunnelPort     int
	SSHKeyPath     string
	SSHPassword    bool // true → prompt interactively
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
	DryRun  bool
	Stats   bool
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:@]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q – expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	return user, host, port, nil
}

// ApplyTunnelSpec parses TunnelSpec, if set, into the Tunnel* fields.
func (c *Config) ApplyTunnelSpec() error {
	if c.TunnelSpec == "" {
		return nil
	}
	user, host, port, err := ParseTunnelSpec(c.TunnelSpec)
	if err != nil {
		return &ncerr.ConfigError{
			Field:   "tunnel",
			Value:   c.TunnelSpec,
			Message: err.Error(),
			Hint:    "use -T user@bastion.example.com:22",
		}
	}
	c.TunnelEnabled = true
	c.TunnelUser = user
	c.TunnelHost = host
	c.TunnelPort = port
	return nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
// Nickname and server are checked by the session's own validation so
// that the console can report them the same way whether they came from
// flags or prompts.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return &ncerr.ConfigError{
			Field:   "timeout",
			Value:   c.Timeout,
			Message: "must not be negative",
			Hint:    "use -w 0 to wait indefinitely",
		}
	}

	if c.Listen {
		if c.LocalPort < 0 || c.LocalPort > 65535 {
			return &ncerr.ConfigError{
				Field:   "port",
				Value:   c.LocalPort,
				Message: "out of range 1-65535",
				Hint:    fmt.Sprintf("omit -p to listen on the default port %d", DefaultPort),
			}
		}
		if c.TunnelEnabled {
			return &ncerr.ConfigError{
				Field:   "tunnel",
				Value:   c.TunnelSpec,
				Message: "cannot be combined with --listen",
				Hint:    "run the relay on the bastion host itself",
			}
		}
		if c.Nickname != "" || c.Server != "" {
			return &ncerr.ConfigError{
				Field:   "listen",
				Message: "relay mode takes no nickname or server",
				Hint:    "use paizer -l [-p PORT] [--bind ADDR]",
			}
		}
		return nil
	}

	if c.TunnelEnabled && c.TunnelHost == "" {
		return &ncerr.ConfigError{
			Field:   "tunnel",
			Message: "tunnel host is required",
			Hint:    "use -T user@host[:port]",
		}
	}

	return nil
}
