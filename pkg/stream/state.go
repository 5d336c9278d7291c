package stream

// State is the lifecycle state of a Session.
//
// Submissions are accepted only in StateIdle; the Sending and Streaming
// states act as the mutual-exclusion gate for the single in-flight cycle.
type State int

const (
	// StateIdle means no cycle is in flight.
	StateIdle State = iota

	// StateSending means a request has been dispatched and the session is
	// awaiting the response handshake.
	StateSending

	// StateStreaming means response body chunks are being consumed.
	StateStreaming

	// StateError means a transport failure is being reported. The session
	// returns to StateIdle once the cycle's cleanup has run.
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
