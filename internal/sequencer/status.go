package sequencer

import (
	"github.com/rolfedh/adtgo/internal/resolver"
)

// ModuleStatus is the read-only diagnostic view of one module's
// resolution.
type ModuleStatus struct {
	Name         string         `json:"name"`
	State        resolver.State `json:"state"`
	Version      string         `json:"version"`
	Dependencies []string       `json:"dependencies,omitempty"`
	InitOrder    int            `json:"initOrder"`
	Reason       string         `json:"reason,omitempty"`
}

// StatusReport is a stable, serializable summary of a resolution batch:
// counts by state plus per-module detail. It is computed directly from the
// batch, never by re-running resolution.
type StatusReport struct {
	Counts  map[string]int `json:"counts"`
	Modules []ModuleStatus `json:"modules"`
}

// Status builds the diagnostic summary for a resolution batch.
func Status(res *resolver.Result) *StatusReport {
	report := &StatusReport{
		Counts:  make(map[string]int),
		Modules: make([]ModuleStatus, 0, len(res.Resolutions)),
	}
	for _, r := range res.Resolutions {
		report.Counts[r.State.String()]++
		report.Modules = append(report.Modules, ModuleStatus{
			Name:         r.Name,
			State:        r.State,
			Version:      r.Version,
			Dependencies: r.Dependencies,
			InitOrder:    r.InitOrder,
			Reason:       r.Reason,
		})
	}
	return report
}
