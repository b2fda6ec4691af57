package sequencer

import (
	"context"
	"fmt"
	"time"

	"github.com/rolfedh/adtgo/internal/ctxlog"
	"github.com/rolfedh/adtgo/internal/module"
	"github.com/rolfedh/adtgo/internal/registry"
	"github.com/rolfedh/adtgo/internal/resolver"
)

// Sequencer runs enabled modules in initialization order against a shared
// run context.
type Sequencer struct {
	descriptors map[string]*registry.Descriptor
}

// New builds a Sequencer over the discovered descriptor set.
func New(descriptors []registry.Descriptor) *Sequencer {
	byName := make(map[string]*registry.Descriptor, len(descriptors))
	for i := range descriptors {
		byName[descriptors[i].Name] = &descriptors[i]
	}
	return &Sequencer{descriptors: byName}
}

// Run executes every enabled module from the resolution batch, in order.
// Cancellation and deadlines on ctx are honored between modules: once the
// context is done, every not-yet-executed module is recorded as failed
// with the context's reason, and in-flight work is never force-killed.
func (s *Sequencer) Run(ctx context.Context, res *resolver.Result, run *module.RunContext) *Report {
	logger := ctxlog.FromContext(ctx)
	report := &Report{StartedAt: time.Now()}
	defer func() { report.FinishedAt = time.Now() }()

	enabled := res.Enabled()
	logger.Info("Starting module sequence.", "modules", len(enabled))

	// Module name -> reason, for failed or skipped modules. Checking a
	// module's direct dependencies against this map propagates skips
	// transitively, because modules run in topological order.
	unrunnable := make(map[string]string, len(enabled))

	for i, r := range enabled {
		if err := ctx.Err(); err != nil {
			s.markRemaining(report, enabled[i:], unrunnable, err)
			break
		}

		if upstream, reason, blocked := blockedBy(r, unrunnable); blocked {
			logger.Warn("Skipping module due to upstream failure.", "module", r.Name, "dependency", upstream)
			skipReason := fmt.Sprintf("skipped: dependency %q did not complete (%s)", upstream, reason)
			unrunnable[r.Name] = skipReason
			report.Results = append(report.Results, ExecutionResult{
				Name:   r.Name,
				Status: StatusSkipped,
				Reason: skipReason,
			})
			continue
		}

		start := time.Now()
		err := s.runModule(ctx, r, run)
		result := ExecutionResult{
			Name:     r.Name,
			Status:   StatusSucceeded,
			Duration: time.Since(start),
		}
		if err != nil {
			logger.Error("Module execution failed.", "module", r.Name, "error", err)
			result.Status = StatusFailed
			result.Reason = err.Error()
			result.Err = err
			unrunnable[r.Name] = err.Error()
		} else {
			logger.Info("Module completed.", "module", r.Name, "duration", result.Duration)
		}
		report.Results = append(report.Results, result)
	}

	logger.Info("Module sequence finished.",
		"succeeded", countStatus(report, StatusSucceeded),
		"failed", countStatus(report, StatusFailed),
		"skipped", countStatus(report, StatusSkipped))
	return report
}

// runModule drives one module through its lifecycle. Cleanup runs on every
// exit path once Initialize has completed, including panics inside the
// module, which are recovered and attributed to it.
func (s *Sequencer) runModule(ctx context.Context, r resolver.Resolution, run *module.RunContext) (err error) {
	logger := ctxlog.FromContext(ctx).With("module", r.Name)

	desc, ok := s.descriptors[r.Name]
	if !ok || desc.Factory == nil {
		return &ModuleError{Module: r.Name, Phase: "initialize", Err: fmt.Errorf("no bound implementation")}
	}
	handler := desc.Factory()

	// phase follows the lifecycle so a recovered panic is attributed to
	// the call that raised it.
	phase := "initialize"
	defer func() {
		if p := recover(); p != nil {
			err = &ModuleError{Module: r.Name, Phase: phase, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	logger.Debug("Initializing module.", "settings", len(r.Settings))
	if initErr := handler.Initialize(ctx, r.Settings); initErr != nil {
		return &ModuleError{Module: r.Name, Phase: "initialize", Err: initErr}
	}

	defer func() {
		if cleanupErr := handler.Cleanup(ctx); cleanupErr != nil {
			logger.Warn("Module cleanup failed.", "error", cleanupErr)
			if err == nil {
				err = &ModuleError{Module: r.Name, Phase: "cleanup", Err: cleanupErr}
			}
		}
	}()

	phase = "execute"
	logger.Debug("Executing module.")
	if execErr := handler.Execute(ctx, run); execErr != nil {
		return &ModuleError{Module: r.Name, Phase: "execute", Err: execErr}
	}
	return nil
}

// markRemaining records every not-yet-executed module as failed with the
// context's reason (deadline exceeded or canceled).
func (s *Sequencer) markRemaining(report *Report, remaining []resolver.Resolution, unrunnable map[string]string, ctxErr error) {
	reason := fmt.Sprintf("not executed: %v", ctxErr)
	for _, r := range remaining {
		unrunnable[r.Name] = reason
		report.Results = append(report.Results, ExecutionResult{
			Name:   r.Name,
			Status: StatusFailed,
			Reason: reason,
			Err:    ctxErr,
		})
	}
}

// blockedBy returns the first dependency of r that failed or was skipped.
func blockedBy(r resolver.Resolution, unrunnable map[string]string) (string, string, bool) {
	for _, dep := range r.Dependencies {
		if reason, ok := unrunnable[dep]; ok {
			return dep, reason, true
		}
	}
	return "", "", false
}

func countStatus(report *Report, status RunStatus) int {
	n := 0
	for _, res := range report.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}
