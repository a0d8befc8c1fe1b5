// Package core is the orchestration layer.  It composes the transport,
// connection and session layers with the console into complete
// operational modes and provides a builder that selects the right mode
// from a Config.
//
// Architecture layers (bottom → top):
//
//	transport  →  conn  →  session  →  core  →  cmd (CLI)
//
// The builder in this package is the single dispatch point between
// the parsed configuration and the running program.
package core

import "context"

// Mode represents a complete operational mode of paizer (chat client
// or relay).  Each mode owns its full lifecycle from connection
// establishment to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
