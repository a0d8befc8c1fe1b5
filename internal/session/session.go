// Package session runs one chat session: it validates the user's
// input, connects, runs the receiver loop and tears the connection
// down exactly once however the session ends.
//
// A Session is the single owner of its connection.  The foreground
// (console input) writes through Send, the receiver goroutine reads,
// and either side may end the session; the handle's idempotent Close
// makes the two teardown paths safe to race.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"paizer/config"
	"paizer/internal/conn"
	"paizer/internal/endpoint"
	ncerr "paizer/internal/errors"
	"paizer/internal/metrics"
	"paizer/util"
)

// Sink is the display side of the user interface.
type Sink interface {
	// Message shows one inbound display unit, unmodified.
	Message(text string)
	// Status shows a connection status or diagnostic line.
	Status(line string)
	// Invalid reports input rejected before connecting.
	Invalid(err error)
}

// Connector establishes the connection for a session.  *conn.Manager
// is the production implementation.
type Connector interface {
	Connect(ctx context.Context, ep endpoint.Endpoint, nickname string) (*conn.Handle, error)
}

// Options configures a Session.
type Options struct {
	Connector Connector
	Sink      Sink
	Logger    *util.Logger
	Metrics   *metrics.Collector

	// ReadChunk is the receive buffer size (default 1024).
	ReadChunk int

	// OnStateChange is called after every state transition.  It runs
	// under the session lock, so keep it fast.
	OnStateChange func(from, to State)
}

// Session is one client-to-server chat session.
type Session struct {
	opts Options

	mu       sync.Mutex
	state    State
	started  bool
	closing  bool
	nickname string
	endpoint endpoint.Endpoint
	handle   *conn.Handle

	done chan struct{} // closed when the receiver loop exits
}

// New returns a Session in the Disconnected state.
func New(opts Options) *Session {
	if opts.ReadChunk <= 0 {
		opts.ReadChunk = config.DefaultReadChunk
	}
	if opts.Logger == nil {
		opts.Logger = util.NewLogger(0)
	}
	return &Session{opts: opts, done: make(chan struct{})}
}

// Validate checks the nickname and parses the endpoint input.  It is
// the only validation path: the CLI pre-flight and Start both use it.
func Validate(nickname, endpointInput string) (endpoint.Endpoint, error) {
	if strings.TrimSpace(nickname) == "" {
		return endpoint.Endpoint{}, ncerr.Invalid(ncerr.InvalidNickname, "nickname", "")
	}
	return endpoint.Parse(endpointInput)
}

// Start validates the input, connects and spawns the receiver loop.
// Validation errors are reported to the sink and returned before any
// network activity.  A connect failure leaves the session Failed.
// Start may be called only once.
func (s *Session) Start(ctx context.Context, nickname, endpointInput string) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ncerr.ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	ep, err := Validate(nickname, endpointInput)
	if err != nil {
		s.opts.Sink.Invalid(err)
		close(s.done)
		return err
	}

	s.mu.Lock()
	s.nickname = nickname
	s.endpoint = ep
	s.setState(Connecting)
	s.mu.Unlock()

	h, err := s.opts.Connector.Connect(ctx, ep, nickname)
	if err != nil {
		s.mu.Lock()
		s.setState(Failed)
		s.mu.Unlock()
		close(s.done)
		s.opts.Sink.Status(fmt.Sprintf("[!] unable to connect to server %s: %v", endpointInput, err))
		return err
	}

	s.mu.Lock()
	if s.closing {
		s.setState(Disconnected)
		s.mu.Unlock()
		h.Close()
		close(s.done)
		return ncerr.ErrNotConnected
	}
	s.handle = h
	s.setState(Connected)
	s.mu.Unlock()

	s.opts.Sink.Status("Paizer client")
	s.opts.Sink.Status(fmt.Sprintf("logged in to server %s", ep))

	go s.receive(h)
	return nil
}

// Send delivers text as "<nickname>: <text>".  Empty text is ignored.
// A write failure ends the session the same way a receive failure does.
func (s *Session) Send(text string) error {
	if text == "" {
		return nil
	}

	s.mu.Lock()
	h, nick, st := s.handle, s.nickname, s.state
	s.mu.Unlock()

	if st != Connected {
		return &ncerr.SendError{Err: ncerr.ErrNotConnected}
	}

	if err := conn.Send(h, nick, text); err != nil {
		s.opts.Metrics.RecordError(err.Error())
		s.disconnect(h, fmt.Sprintf("[!] failed to send message: %v", err))
		return err
	}
	return nil
}

// Shutdown closes the connection and waits for the receiver loop to
// exit.  It is safe to call more than once and concurrently with a
// failing receiver loop.
func (s *Session) Shutdown() error {
	s.mu.Lock()
	s.closing = true
	h := s.handle
	started := s.started
	if s.state == Connected {
		s.setState(Disconnected)
	}
	s.mu.Unlock()

	var err error
	if h != nil {
		err = h.Close()
	}
	if started {
		<-s.done
	}
	if ncerr.IsClosed(err) {
		err = nil
	}
	return err
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Endpoint returns the parsed endpoint; zero before Start succeeds in
// validating.
func (s *Session) Endpoint() endpoint.Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endpoint
}

// Nickname returns the nickname given to Start.
func (s *Session) Nickname() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nickname
}

// Done is closed once the session can no longer receive: the receiver
// loop has exited, or Start failed before spawning it.
func (s *Session) Done() <-chan struct{} { return s.done }

// disconnect reports line, moves a connected session to Disconnected
// and closes h.  The transition happens once however many paths fail;
// the close is idempotent.
func (s *Session) disconnect(h *conn.Handle, line string) {
	s.opts.Sink.Status(line)

	s.mu.Lock()
	if s.state == Connected {
		s.setState(Disconnected)
	}
	s.mu.Unlock()

	h.Close()
}

// setState must be called with s.mu held.
func (s *Session) setState(to State) {
	from := s.state
	if from == to {
		return
	}
	s.state = to
	s.opts.Logger.Debug("session: %s -> %s", from, to)
	if s.opts.OnStateChange != nil {
		s.opts.OnStateChange(from, to)
	}
}
