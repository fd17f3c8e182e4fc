package core

// State is the lifecycle state of the session slot.
type State int

const (
	StateAbsent State = iota
	StateCreated
	StateRestored
	StateLoaded
)

// String returns the lower-case name of the state.
func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateCreated:
		return "created"
	case StateRestored:
		return "restored"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// StateFor maps a successful lifecycle operation to the state it installs.
func StateFor(op Operation) State {
	switch op {
	case OpCreate:
		return StateCreated
	case OpRestore:
		return StateRestored
	case OpLoad:
		return StateLoaded
	default:
		return StateAbsent
	}
}
