package gemini

// State is the session lifecycle position. Exactly one terminal transition to
// StateClosed happens per session.
type State int

const (
	// StateConnecting covers dial and the setup handshake.
	StateConnecting State = iota
	// StateOpen means the backend acked setup and packets are being paced out.
	StateOpen
	// StateDraining means all input is sent and the session is waiting for
	// the backend's completion signal, with the fallback timer armed.
	StateDraining
	// StateClosing means the transport has been asked to close.
	StateClosing
	// StateClosed is terminal; the session has resolved or rejected.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateDraining:
		return "draining"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
