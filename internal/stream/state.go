package stream

// State is the lifecycle phase of one streaming connection.
//
// Connections move StateConnecting → StateOpen on the endpoint frame, loop
// StateReceived → StateProcessing → StateResponded once per call, and end
// in StateClosed. StateClosed is terminal and reachable from any state.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateReceived
	StateProcessing
	StateResponded
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReceived:
		return "received"
	case StateProcessing:
		return "processing"
	case StateResponded:
		return "responded"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
