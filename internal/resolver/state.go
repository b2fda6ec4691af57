package resolver

// State is a module's resolved condition for one invocation. Modules start
// Pending and move to exactly one terminal state; execution outcome is
// tracked separately by the sequencer's report, decoupling "can it run"
// from "did it succeed".
type State int

const (
	StatePending State = iota
	StateEnabled
	StateDisabled
	StateFailed
)

var stateNames = map[State]string{
	StatePending:  "pending",
	StateEnabled:  "enabled",
	StateDisabled: "disabled",
	StateFailed:   "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText makes states render as their lowercase names in the JSON
// status report.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
