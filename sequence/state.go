// Package sequence runs an ordered list of blocking robot commands, stopping at the first
// required failure.
package sequence

// State is the progress of a command sequence.
type State int

// States reached by a batch trajectory run, in order. Failed is terminal and can follow any state.
const (
	Idle State = iota
	Claimed
	Powered
	Standing
	ArmReady
	Executing
	ArmStowed
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Claimed:
		return "CLAIMED"
	case Powered:
		return "POWERED"
	case Standing:
		return "STANDING"
	case ArmReady:
		return "ARM_READY"
	case Executing:
		return "EXECUTING"
	case ArmStowed:
		return "ARM_STOWED"
	case Done:
		return "DONE"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}
