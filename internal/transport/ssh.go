package transport

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"paizer/config"
	ncerr "paizer/internal/errors"
	"paizer/util"
)

// SSHConfig describes the bastion a chat connection is routed through.
type SSHConfig struct {
	User          string
	Host          string
	Port          int
	KeyPath       string
	PromptPass    bool
	UseAgent      bool
	StrictHostKey bool
	KnownHosts    string
	ConnTimeout   time.Duration

	// Auth is tried before any method derived from the fields above.
	Auth []ssh.AuthMethod
}

func (c *SSHConfig) addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SSHDialer opens chat connections as direct-tcpip channels of an SSH
// client.  The SSH session is established lazily on the first Dial and
// torn down on Close.
type SSHDialer struct {
	config *SSHConfig
	logger *util.Logger

	mu     sync.Mutex
	client *ssh.Client
}

// NewSSHDialer creates a dialer for the given bastion.  Nothing is
// dialed until the first call to Dial.
func NewSSHDialer(cfg *SSHConfig, logger *util.Logger) *SSHDialer {
	if cfg.Port == 0 {
		cfg.Port = config.DefaultSSHPort
	}
	if cfg.ConnTimeout == 0 {
		cfg.ConnTimeout = config.DefaultSSHConnTimeout
	}
	return &SSHDialer{config: cfg, logger: logger}
}

// Dial connects to address through the bastion.
func (d *SSHDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	client, err := d.connect(ctx)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("ssh: opening channel to %s %s", network, address)
	conn, err := client.Dial(network, address)
	if err != nil {
		return nil, fmt.Errorf("ssh channel to %s: %w", address, err)
	}
	return conn, nil
}

// Close shuts down the SSH client.  Safe to call more than once.
func (d *SSHDialer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client == nil {
		return nil
	}
	err := d.client.Close()
	d.client = nil
	return err
}

func (d *SSHDialer) connect(ctx context.Context) (*ssh.Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		return d.client, nil
	}

	cfg := d.config
	auth, err := BuildAuthMethods(cfg)
	if err != nil {
		return nil, ncerr.WrapSSH("auth", cfg.Host, cfg.Port, err)
	}
	hk, err := hostKeyCallback(cfg)
	if err != nil {
		return nil, ncerr.WrapSSH("hostkey", cfg.Host, cfg.Port, err)
	}

	addr := cfg.addr()
	d.logger.Verbose("establishing SSH session to %s@%s", cfg.User, addr)

	dialer := net.Dialer{Timeout: cfg.ConnTimeout}
	tcpConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, ncerr.WrapSSH("dial", cfg.Host, cfg.Port, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(tcpConn, addr, &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hk,
		Timeout:         cfg.ConnTimeout,
	})
	if err != nil {
		tcpConn.Close()
		return nil, ncerr.WrapSSH("handshake", cfg.Host, cfg.Port, err)
	}

	d.client = ssh.NewClient(sshConn, chans, reqs)
	d.logger.Verbose("SSH session established")
	return d.client, nil
}
