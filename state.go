package minidfs

// State represents the lifecycle state of a cluster handle.
type State int

const (
	// StateStarting indicates the cluster process was launched but the
	// NameNode has not yet left safe mode.
	StateStarting State = iota
	// StateUp indicates the NameNode left safe mode and the cluster is
	// ready to serve.
	StateUp
	// StateDown indicates the cluster was shut down.
	StateDown
	// StateClosed indicates the handle's resources were released.
	StateClosed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "STARTING"
	case StateUp:
		return "UP"
	case StateDown:
		return "DOWN"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// IsUp returns true if the cluster is ready to serve.
func (s State) IsUp() bool {
	return s == StateUp
}

// Terminal returns true if the cluster can no longer become ready.
func (s State) Terminal() bool {
	return s == StateDown || s == StateClosed
}
