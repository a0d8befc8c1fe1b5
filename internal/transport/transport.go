// Package transport provides the ways a chat connection can be
// established.  Transports only decide how bytes reach the server;
// the chat protocol on top of them is the same raw TCP stream either
// way.
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound connections.  Implementations include a plain
// TCP dialer and an SSH dialer that reaches the chat server through a
// bastion host.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer
	// (e.g. an SSH client).  Stateless dialers return nil.
	Close() error
}
