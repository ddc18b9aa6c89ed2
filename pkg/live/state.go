package live

// State is the live session lifecycle state. Transitions are owned by the
// Session controller; nothing else mutates it.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateActive
	StateClosing
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateErrored:
		return "errored"
	}
	return "unknown"
}
