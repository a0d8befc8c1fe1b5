// Package conn owns the chat server connection: dialing it, sending
// the nickname handshake, writing chat frames and closing it exactly
// once.
package conn

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"paizer/internal/endpoint"
	ncerr "paizer/internal/errors"
	"paizer/internal/metrics"
	"paizer/internal/transport"
	"paizer/util"
)

// Handle is an open chat connection.  Reads and writes may run on
// different goroutines; Close may be called from either of them, any
// number of times, and unblocks a pending Read.
type Handle struct {
	conn    net.Conn
	metrics *metrics.Collector

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// NewHandle wraps an established connection.  The caller gives up
// ownership of c.
func NewHandle(c net.Conn, m *metrics.Collector) *Handle {
	m.ConnectionOpened()
	return &Handle{conn: c, metrics: m}
}

// Read performs one blocking read on the connection.
func (h *Handle) Read(p []byte) (int, error) {
	n, err := h.conn.Read(p)
	h.metrics.BytesReceived(int64(n))
	return n, err
}

// Write writes p in full.  Writing to a closed handle fails with
// ErrNotConnected without touching the socket.
func (h *Handle) Write(p []byte) (int, error) {
	if h.closed.Load() {
		return 0, ncerr.ErrNotConnected
	}
	n, err := h.conn.Write(p)
	h.metrics.BytesSent(int64(n))
	return n, err
}

// Close releases the connection.  Only the first call closes the
// socket; later calls return the first call's result.
func (h *Handle) Close() error {
	h.closeOnce.Do(func() {
		h.closed.Store(true)
		h.closeErr = h.conn.Close()
		h.metrics.ConnectionClosed()
	})
	return h.closeErr
}

// Closed reports whether Close has been called.
func (h *Handle) Closed() bool { return h.closed.Load() }

// RemoteAddr returns the server's address.
func (h *Handle) RemoteAddr() net.Addr { return h.conn.RemoteAddr() }

// Manager establishes chat connections.
type Manager struct {
	Dialer  transport.Dialer
	Logger  *util.Logger
	Metrics *metrics.Collector
}

// Connect dials ep and writes nickname as the handshake.  The nickname
// bytes are sent bare, with no terminator; the server takes the first
// bytes of a connection as the sender's name.  No retry is attempted.
func (m *Manager) Connect(ctx context.Context, ep endpoint.Endpoint, nickname string) (*Handle, error) {
	addr := ep.String()
	m.Logger.Verbose("connecting to %s", addr)

	c, err := m.Dialer.Dial(ctx, "tcp", addr)
	if err != nil {
		m.Metrics.RecordError(err.Error())
		return nil, ncerr.WrapConnect("dial", addr, err)
	}

	h := NewHandle(c, m.Metrics)
	if _, err := h.Write([]byte(nickname)); err != nil {
		h.Close()
		m.Metrics.RecordError(err.Error())
		return nil, ncerr.WrapConnect("handshake", addr, err)
	}

	m.Logger.Verbose("connected to %s as %q", h.RemoteAddr(), nickname)
	return h, nil
}

// Close releases the dialer's own resources (an SSH session, for
// example).  Handles already returned by Connect stay open.
func (m *Manager) Close() error {
	return m.Dialer.Close()
}
