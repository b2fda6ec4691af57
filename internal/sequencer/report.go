package sequencer

import "time"

// RunStatus is a module's execution outcome, tracked separately from its
// resolution state: resolution says whether a module can run, the report
// says what happened when it did.
type RunStatus int

const (
	StatusSucceeded RunStatus = iota
	StatusFailed
	StatusSkipped
)

var runStatusNames = map[RunStatus]string{
	StatusSucceeded: "succeeded",
	StatusFailed:    "failed",
	StatusSkipped:   "skipped",
}

func (s RunStatus) String() string {
	if name, ok := runStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s RunStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ExecutionResult is the outcome of one module's run.
type ExecutionResult struct {
	Name     string        `json:"name"`
	Status   RunStatus     `json:"status"`
	Duration time.Duration `json:"duration"`
	Reason   string        `json:"reason,omitempty"`
	Err      error         `json:"-"`
}

// Report summarizes one sequencing pass.
type Report struct {
	Results    []ExecutionResult `json:"results"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
}

// Failed returns the results of modules that failed outright (skips are
// not failures; their upstream already is one).
func (r *Report) Failed() []ExecutionResult {
	var out []ExecutionResult
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			out = append(out, res)
		}
	}
	return out
}

// Get returns the execution result for a module by name.
func (r *Report) Get(name string) (ExecutionResult, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return ExecutionResult{}, false
}
