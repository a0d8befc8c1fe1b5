package session

import (
	"fmt"
	"unicode/utf8"

	"paizer/internal/conn"
	ncerr "paizer/internal/errors"
)

// receive is the receiver loop.  Each read's payload is handed to the
// sink as one display unit: the protocol has no framing, so a read may
// carry several messages or part of one, and no reassembly is done.
// The loop ends on the first empty read, read error or undecodable
// chunk, and never restarts.
func (s *Session) receive(h *conn.Handle) {
	defer close(s.done)

	buf := make([]byte, s.opts.ReadChunk)
	for {
		n, err := h.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if !utf8.Valid(chunk) {
				s.fail(h, &ncerr.TransportError{Op: "decode", Err: fmt.Errorf("invalid UTF-8 in %d-byte chunk", n)})
				return
			}
			s.opts.Metrics.MessageReceived()
			s.opts.Sink.Message(string(chunk))
		}
		if err != nil {
			s.fail(h, &ncerr.TransportError{Op: "read", Err: err})
			return
		}
		if n == 0 {
			s.fail(h, &ncerr.TransportError{Op: "read", Err: ncerr.ErrRemoteClosed})
			return
		}
	}
}

// fail ends the session from the receiver side.
func (s *Session) fail(h *conn.Handle, err *ncerr.TransportError) {
	var line string
	switch {
	case h.Closed():
		line = "[!] disconnected from server"
	case ncerr.IsClosed(err):
		line = "[!] connection closed by server"
	default:
		line = fmt.Sprintf("[!] error receiving message: %v", err)
		s.opts.Metrics.RecordError(err.Error())
	}
	s.opts.Logger.Verbose("receiver stopped: %v", err)
	s.disconnect(h, line)
}
