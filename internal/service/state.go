package service

// State is the lifecycle controller's position in the client lifecycle.
type State string

const (
	StateIdle            State = "idle"
	StateInitializing    State = "initializing"
	StateActive          State = "active"
	StateDisconnecting   State = "disconnecting"
	StateCleaningSession State = "cleaning_session"
	StateRecreating      State = "recreating"
)

func (s State) String() string {
	return string(s)
}

var validTransitions = map[State][]State{
	StateIdle:            {StateInitializing, StateRecreating, StateCleaningSession},
	StateInitializing:    {StateActive, StateDisconnecting, StateCleaningSession, StateRecreating, StateIdle},
	StateActive:          {StateDisconnecting, StateCleaningSession, StateRecreating},
	StateDisconnecting:   {StateCleaningSession, StateRecreating},
	StateCleaningSession: {StateRecreating, StateIdle},
	StateRecreating:      {StateInitializing, StateCleaningSession, StateIdle},
}

// CanTransition reports whether the controller may move from one state to
// another.
func CanTransition(from, to State) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
