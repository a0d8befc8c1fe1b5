package conn

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"paizer/internal/endpoint"
	ncerr "paizer/internal/errors"
	"paizer/internal/metrics"
	"paizer/internal/transport"
	"paizer/util"
)

// recordingConn remembers every Write call and counts Close calls.
type recordingConn struct {
	net.Conn
	mu     sync.Mutex
	writes []string
	closes int
}

func (c *recordingConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	c.writes = append(c.writes, string(p))
	c.mu.Unlock()
	return c.Conn.Write(p)
}

func (c *recordingConn) Close() error {
	c.mu.Lock()
	c.closes++
	c.mu.Unlock()
	return c.Conn.Close()
}

func (c *recordingConn) snapshot() ([]string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.writes...), c.closes
}

// pipeDialer hands out the client side of a net.Pipe and keeps the
// server side for the test.
type pipeDialer struct {
	client *recordingConn
	server net.Conn
	err    error
	calls  int
}

func newPipeDialer() *pipeDialer {
	c, s := net.Pipe()
	return &pipeDialer{client: &recordingConn{Conn: c}, server: s}
}

func (d *pipeDialer) Dial(context.Context, string, string) (net.Conn, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.client, nil
}

func (d *pipeDialer) Close() error { return nil }

// drain reads everything the client writes on the server side of the
// pipe so writes never block.
func drain(c net.Conn) {
	buf := make([]byte, 1024)
	for {
		if _, err := c.Read(buf); err != nil {
			return
		}
	}
}

func testManager(d transport.Dialer) *Manager {
	return &Manager{Dialer: d, Logger: util.NewLogger(0), Metrics: metrics.New()}
}

func TestConnect_HandshakeIsFirstWrite(t *testing.T) {
	d := newPipeDialer()
	go drain(d.server)

	m := testManager(d)
	h, err := m.Connect(context.Background(), endpoint.Endpoint{Host: "10.0.0.5", Port: 21156}, "alice")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer h.Close()

	if err := Send(h, "alice", "hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	writes, _ := d.client.snapshot()
	want := []string{"alice", "alice: hi"}
	if len(writes) != len(want) {
		t.Fatalf("writes = %q, want %q", writes, want)
	}
	for i := range want {
		if writes[i] != want[i] {
			t.Errorf("write %d = %q, want %q", i, writes[i], want[i])
		}
	}
}

func TestConnect_OverTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	got := make(chan string, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		buf := make([]byte, 64)
		n, _ := c.Read(buf)
		got <- string(buf[:n])
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	m := testManager(&transport.TCPDialer{Timeout: 2 * time.Second})
	h, err := m.Connect(context.Background(), endpoint.Endpoint{Host: "127.0.0.1", Port: port}, "alice")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer h.Close()

	select {
	case s := <-got:
		if s != "alice" {
			t.Errorf("server got %q, want %q", s, "alice")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for handshake")
	}
}

func TestConnect_Refused(t *testing.T) {
	port, err := util.FindFreePort()
	if err != nil {
		t.Fatal(err)
	}

	m := testManager(&transport.TCPDialer{Timeout: 2 * time.Second})
	_, err = m.Connect(context.Background(), endpoint.Endpoint{Host: "127.0.0.1", Port: port}, "alice")

	var ce *ncerr.ConnectError
	if !ncerr.As(err, &ce) {
		t.Fatalf("err = %v, want *ConnectError", err)
	}
	if ce.Op != "dial" {
		t.Errorf("Op = %q, want dial", ce.Op)
	}
	if m.Metrics.ErrorCount() != 1 {
		t.Errorf("errors recorded = %d, want 1", m.Metrics.ErrorCount())
	}
}

func TestConnect_HandshakeFailureClosesConn(t *testing.T) {
	d := newPipeDialer()
	d.server.Close() // writes on the client side now fail

	m := testManager(d)
	_, err := m.Connect(context.Background(), endpoint.Endpoint{Host: "h", Port: 1}, "alice")

	var ce *ncerr.ConnectError
	if !ncerr.As(err, &ce) || ce.Op != "handshake" {
		t.Fatalf("err = %v, want handshake ConnectError", err)
	}
	if _, closes := d.client.snapshot(); closes != 1 {
		t.Errorf("closes = %d, want 1", closes)
	}
}

func TestHandle_CloseTwice(t *testing.T) {
	d := newPipeDialer()
	h := NewHandle(d.client, nil)

	done := make(chan struct{})
	go func() {
		h.Close()
		h.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close blocked")
	}
	if _, closes := d.client.snapshot(); closes != 1 {
		t.Errorf("underlying closes = %d, want 1", closes)
	}
	if !h.Closed() {
		t.Error("Closed() should be true")
	}
}

func TestHandle_CloseUnblocksRead(t *testing.T) {
	d := newPipeDialer()
	h := NewHandle(d.client, nil)

	readErr := make(chan error, 1)
	go func() {
		_, err := h.Read(make([]byte, 16))
		readErr <- err
	}()

	time.Sleep(50 * time.Millisecond)
	h.Close()

	select {
	case err := <-readErr:
		if err == nil {
			t.Error("expected read error after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Read did not unblock after Close")
	}
}

func TestHandle_ConcurrentClose(t *testing.T) {
	d := newPipeDialer()
	h := NewHandle(d.client, metrics.New())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Close()
		}()
	}
	wg.Wait()

	if _, closes := d.client.snapshot(); closes != 1 {
		t.Errorf("underlying closes = %d, want 1", closes)
	}
	if got := h.metrics.ActiveConnections(); got != 0 {
		t.Errorf("active connections = %d, want 0", got)
	}
}

func TestSend_EmptyTextNoWrite(t *testing.T) {
	d := newPipeDialer()
	h := NewHandle(d.client, nil)
	defer h.Close()

	if err := Send(h, "alice", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if writes, _ := d.client.snapshot(); len(writes) != 0 {
		t.Errorf("writes = %q, want none", writes)
	}
}

func TestSend_EmptyTextOnClosedHandle(t *testing.T) {
	if err := Send(nil, "alice", ""); err != nil {
		t.Fatalf("empty send on nil handle: %v", err)
	}
}

func TestSend_NotConnected(t *testing.T) {
	d := newPipeDialer()
	h := NewHandle(d.client, nil)
	h.Close()

	tests := []struct {
		name string
		h    *Handle
	}{
		{"nil handle", nil},
		{"closed handle", h},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Send(tt.h, "alice", "hi")
			var se *ncerr.SendError
			if !ncerr.As(err, &se) {
				t.Fatalf("err = %v, want *SendError", err)
			}
			if !ncerr.Is(err, ncerr.ErrNotConnected) {
				t.Errorf("err = %v, want ErrNotConnected", err)
			}
		})
	}
	if writes, _ := d.client.snapshot(); len(writes) != 0 {
		t.Errorf("writes = %q, want none", writes)
	}
}

func TestSend_WriteFailure(t *testing.T) {
	d := newPipeDialer()
	h := NewHandle(d.client, nil)
	defer h.Close()
	d.server.Close()

	err := Send(h, "alice", "hi")
	var se *ncerr.SendError
	if !ncerr.As(err, &se) {
		t.Fatalf("err = %v, want *SendError", err)
	}
}

func TestSend_CountsMessages(t *testing.T) {
	d := newPipeDialer()
	go drain(d.server)
	m := metrics.New()
	h := NewHandle(d.client, m)
	defer h.Close()

	for _, text := range []string{"one", "", "two"} {
		if err := Send(h, "alice", text); err != nil {
			t.Fatal(err)
		}
	}
	if m.MessagesOut() != 2 {
		t.Errorf("messages out = %d, want 2", m.MessagesOut())
	}
	if want := int64(len("alice: one") + len("alice: two")); m.TotalBytesOut() != want {
		t.Errorf("bytes out = %d, want %d", m.TotalBytesOut(), want)
	}
}

func TestFormatMessage(t *testing.T) {
	if got := FormatMessage("alice", "hi"); got != "alice: hi" {
		t.Errorf("got %q", got)
	}
}
