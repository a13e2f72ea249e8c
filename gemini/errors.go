package gemini

import "fmt"

// ConnectionError means the session handshake never completed.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("live session connect: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TransmissionError means an outbound packet failed mid-stream. The session
// is not retried; a caller that wants a retry starts a fresh session.
type TransmissionError struct {
	Err error
}

func (e *TransmissionError) Error() string {
	return fmt.Sprintf("live session send: %v", e.Err)
}

func (e *TransmissionError) Unwrap() error { return e.Err }

// BackendError means the transport failed or the backend closed the session
// abnormally before a graceful close.
type BackendError struct {
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("live session backend: %v", e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
