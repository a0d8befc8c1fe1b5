package conn

import (
	ncerr "paizer/internal/errors"
)

// FormatMessage renders a chat frame as it appears on the wire.
func FormatMessage(nickname, text string) string {
	return nickname + ": " + text
}

// Send writes "<nickname>: <text>" to h.  Empty text is a no-op that
// performs no write.  A failed write is reported once and not retried.
func Send(h *Handle, nickname, text string) error {
	if text == "" {
		return nil
	}
	if h == nil || h.Closed() {
		return &ncerr.SendError{Err: ncerr.ErrNotConnected}
	}
	if _, err := h.Write([]byte(FormatMessage(nickname, text))); err != nil {
		return &ncerr.SendError{Err: err}
	}
	h.metrics.MessageSent()
	return nil
}
