package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, environment variable loading, and the core.

const (
	// DefaultPort is the chat server port used when the endpoint
	// omits one.
	DefaultPort = 21156

	// DefaultReadChunk is the largest payload a single receive call
	// hands to the display.
	DefaultReadChunk = 1024

	// DefaultBindAddress is the relay's listen address.
	DefaultBindAddress = "0.0.0.0"

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultSSHConnTimeout bounds the SSH bastion handshake.  Plain
	// TCP connects have no timeout unless --timeout is given.
	DefaultSSHConnTimeout = 30 * time.Second

	// DefaultQuitCommand is the console command that ends a session.
	DefaultQuitCommand = "/quit"
)
