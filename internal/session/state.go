package session

// State is a session's connection state.
type State int

const (
	// Disconnected is both the initial state and the state after a
	// connected session ends.
	Disconnected State = iota
	// Connecting means the dial and handshake are in progress.
	Connecting
	// Connected means the handshake succeeded and the receiver loop
	// is running.
	Connected
	// Failed means the dial or handshake failed.  Terminal.
	Failed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
