package core

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"paizer/config"
	"paizer/internal/metrics"
	"paizer/util"
)

// relayWriteTimeout bounds a broadcast write to one client.  A client
// that cannot take a frame within it is dropped.
const relayWriteTimeout = 5 * time.Second

// RelayMode is a minimal broadcast server for the chat wire protocol.
// The first read on a connection is the sender's nickname; every later
// read is forwarded verbatim to all connected clients, the sender
// included.
type RelayMode struct {
	Address   string // "bind:port"
	ReadChunk int
	Logger    *util.Logger
	Metrics   *metrics.Collector
}

// Run listens until the context is cancelled, then closes the listener
// and every client connection and waits for their handlers to exit.
func (m *RelayMode) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", m.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", m.Address, err)
	}
	defer ln.Close()

	m.Logger.Info("relay listening on %s", ln.Addr())

	h := &hub{
		conns:   make(map[net.Conn]struct{}),
		clients: make(map[*relayClient]struct{}),
		metrics: m.Metrics,
		logger:  m.Logger,
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	// Shut the listener and clients down when the context expires.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		ln.Close()
		h.closeAll()
	}()

	for {
		c, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("accept: %w", err)
			}
		}

		m.Logger.Verbose("connection from %s", c.RemoteAddr())
		if !h.track(c) {
			c.Close()
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			m.serveConn(h, c)
		}()
	}
}

func (m *RelayMode) chunk() int {
	if m.ReadChunk > 0 {
		return m.ReadChunk
	}
	return config.DefaultReadChunk
}

// serveConn reads the nickname, announces the client and relays its
// frames until it disconnects.
func (m *RelayMode) serveConn(h *hub, c net.Conn) {
	defer h.untrack(c)

	buf := make([]byte, m.chunk())
	n, err := c.Read(buf)
	if err != nil {
		return
	}
	nick := strings.TrimSpace(string(buf[:n]))
	if nick == "" {
		nick = c.RemoteAddr().String()
	}

	cl := &relayClient{nick: nick, conn: c}
	if !h.add(cl) {
		return
	}
	log := m.Logger.With("nick", nick).With("addr", c.RemoteAddr())
	log.Info("joined")
	h.broadcast(cl, []byte(fmt.Sprintf("*** %s joined", nick)))

	for {
		n, err := c.Read(buf)
		if n > 0 {
			m.Metrics.BytesReceived(int64(n))
			m.Metrics.MessageReceived()
			frame := make([]byte, n)
			copy(frame, buf[:n])
			h.broadcast(nil, frame)
		}
		if err != nil {
			break
		}
	}

	if h.remove(cl) {
		log.Info("left")
		h.broadcast(nil, []byte(fmt.Sprintf("*** %s left", nick)))
	}
}

// ── hub ──────────────────────────────────────────────────────────────

type relayClient struct {
	nick string
	conn net.Conn
}

// hub tracks accepted connections and the set of joined clients.
// Broadcasts are serialised so that every client sees frames in the
// same order.
type hub struct {
	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	clients map[*relayClient]struct{}
	closed  bool
	metrics *metrics.Collector
	logger  *util.Logger
}

// track records an accepted connection; false once the hub has been
// closed.
func (h *hub) track(c net.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.conns[c] = struct{}{}
	return true
}

// untrack forgets and closes c.
func (h *hub) untrack(c net.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	c.Close()
}

// add registers cl; false once the hub has been closed.
func (h *hub) add(cl *relayClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[cl] = struct{}{}
	h.metrics.ConnectionOpened()
	return true
}

// remove reports whether cl was still registered.
func (h *hub) remove(cl *relayClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropLocked(cl)
}

func (h *hub) dropLocked(cl *relayClient) bool {
	if _, ok := h.clients[cl]; !ok {
		return false
	}
	delete(h.clients, cl)
	h.metrics.ConnectionClosed()
	return true
}

// broadcast writes frame to every client except skip.  Clients whose
// write fails are dropped and closed.
func (h *hub) broadcast(skip *relayClient, frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for cl := range h.clients {
		if cl == skip {
			continue
		}
		cl.conn.SetWriteDeadline(time.Now().Add(relayWriteTimeout)) //nolint:errcheck
		if _, err := cl.conn.Write(frame); err != nil {
			h.logger.Verbose("dropping %s: %v", cl.nick, err)
			h.metrics.RecordError(err.Error())
			h.dropLocked(cl)
			cl.conn.Close()
			continue
		}
		h.metrics.BytesSent(int64(len(frame)))
		h.metrics.MessageSent()
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for cl := range h.clients {
		h.dropLocked(cl)
	}
	for c := range h.conns {
		c.Close()
	}
}
