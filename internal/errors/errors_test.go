package errors

import (
	"fmt"
	"io"
	"net"
	"testing"
)

func TestValidationError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{"blank nickname", Invalid(InvalidNickname, "nickname", ""), "invalid nickname: nickname must not be blank"},
		{"bad port", Invalid(InvalidPort, "port", "abc"), `invalid port: "abc"`},
		{"blank host", Invalid(InvalidHost, "host", ""), "invalid host: host must not be blank"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReasonOf(t *testing.T) {
	wrapped := fmt.Errorf("start: %w", Invalid(InvalidPort, "port", "x"))
	if got := ReasonOf(wrapped); got != InvalidPort {
		t.Errorf("ReasonOf = %v, want %v", got, InvalidPort)
	}
	if got := ReasonOf(io.EOF); got != 0 {
		t.Errorf("ReasonOf(io.EOF) = %v, want 0", got)
	}
}

func TestConnectError_FormatAndUnwrap(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	err := WrapConnect("dial", "10.0.0.5:9999", inner)

	if got, want := err.Error(), "dial 10.0.0.5:9999: connection refused"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !Is(err, inner) {
		t.Error("should unwrap to inner error")
	}
}

func TestSendError_Unwrap(t *testing.T) {
	err := &SendError{Err: ErrNotConnected}
	if !Is(err, ErrNotConnected) {
		t.Error("should unwrap to ErrNotConnected")
	}
	if got, want := err.Error(), "send: not connected"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTransportError_Format(t *testing.T) {
	err := &TransportError{Op: "read", Err: io.EOF}
	if got, want := err.Error(), "read: EOF"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSSHError_Format(t *testing.T) {
	err := WrapSSH("handshake", "bastion.example.com", 22, fmt.Errorf("connection refused"))
	want := "ssh handshake bastion.example.com:22: connection refused"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConfigError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  ConfigError
		want string
	}{
		{
			name: "with value and hint",
			err: ConfigError{
				Field:   "port",
				Value:   99999,
				Message: "out of range 1-65535",
				Hint:    "use a port between 1 and 65535",
			},
			want: "config: --port=99999: out of range 1-65535\n  hint: use a port between 1 and 65535",
		},
		{
			name: "missing value no hint",
			err: ConfigError{
				Field:   "server",
				Message: "required",
			},
			want: "config: --server: required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestIsClosed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"eof", io.EOF, true},
		{"net closed", net.ErrClosed, true},
		{"op error", &net.OpError{Op: "read", Net: "tcp", Err: net.ErrClosed}, true},
		{"remote closed", &TransportError{Op: "read", Err: ErrRemoteClosed}, true},
		{"unexpected eof", io.ErrUnexpectedEOF, false},
		{"plain", fmt.Errorf("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsClosed(tt.err); got != tt.want {
				t.Errorf("IsClosed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSentinels(t *testing.T) {
	sentinels := []error{
		ErrNotConnected, ErrAlreadyStarted, ErrRemoteClosed,
		ErrTunnelClosed, ErrAuthFailed,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && Is(a, b) {
				t.Errorf("sentinel %d and %d should not match", i, j)
			}
		}
	}
}
