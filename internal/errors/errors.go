// Package errors provides domain-specific error types for paizer.
//
// These types carry structured context (operation, address, offending
// field) that lets the session decide which state to enter and gives
// the user better diagnostics than plain string wrapping.
package errors

import (
	"errors"
	"fmt"
	"io"
	"net"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrNotConnected   = errors.New("not connected")
	ErrAlreadyStarted = errors.New("session already started")
	ErrRemoteClosed   = errors.New("connection closed by server")
	ErrTunnelClosed   = errors.New("tunnel is closed")
	ErrAuthFailed     = errors.New("authentication failed")
)

// ── Validation ───────────────────────────────────────────────────────

// Reason classifies a ValidationError.
type Reason int

const (
	InvalidNickname Reason = iota + 1
	InvalidHost
	InvalidPort
)

func (r Reason) String() string {
	switch r {
	case InvalidNickname:
		return "invalid nickname"
	case InvalidHost:
		return "invalid host"
	case InvalidPort:
		return "invalid port"
	default:
		return "invalid input"
	}
}

// ValidationError reports user input that was rejected before any
// network activity took place.
type ValidationError struct {
	Field  string // "nickname", "host", "port"
	Reason Reason
	Value  string // the rejected input, possibly empty
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s must not be blank", e.Reason, e.Field)
	}
	return fmt.Sprintf("%s: %q", e.Reason, e.Value)
}

// Invalid builds a ValidationError.
func Invalid(reason Reason, field, value string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Value: value}
}

// ReasonOf returns the Reason carried by err, or 0 when err is not a
// ValidationError.
func ReasonOf(err error) Reason {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return 0
}

// ── Network errors ───────────────────────────────────────────────────

// ConnectError represents a failure to establish a session: the dial
// itself or the nickname handshake that follows it.
type ConnectError struct {
	Op   string // "dial" or "handshake"
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// SendError represents a failed outbound chat frame.
type SendError struct {
	Err error
}

func (e *SendError) Error() string { return fmt.Sprintf("send: %v", e.Err) }

func (e *SendError) Unwrap() error { return e.Err }

// TransportError represents a mid-session failure on the inbound side.
type TransportError struct {
	Op  string // "read" or "decode"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SSHError represents an SSH-specific failure with host context.
type SSHError struct {
	Op   string // "auth", "hostkey", "handshake"
	Host string
	Port int
	Err  error
}

func (e *SSHError) Error() string {
	return fmt.Sprintf("ssh %s %s:%d: %v", e.Op, e.Host, e.Port, e.Err)
}

func (e *SSHError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// WrapConnect creates a ConnectError.
func WrapConnect(op, addr string, err error) *ConnectError {
	return &ConnectError{Op: op, Addr: addr, Err: err}
}

// WrapSSH creates an SSHError.
func WrapSSH(op, host string, port int, err error) *SSHError {
	return &SSHError{Op: op, Host: host, Port: port, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// IsClosed reports whether err is the expected result of a read or
// write racing a local or remote close.
func IsClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe) || errors.Is(err, ErrRemoteClosed) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, net.ErrClosed)
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
