package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rolfedh/adtgo/internal/config"
	"github.com/rolfedh/adtgo/internal/ctxlog"
	"github.com/rolfedh/adtgo/internal/module"
	"github.com/rolfedh/adtgo/internal/resolver"
	"github.com/rolfedh/adtgo/internal/sequencer"
)

// Run executes the main application flow: discovery, configuration load,
// resolution, and either the diagnostics listing or the ordered module
// sequence.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	descriptors, discErrs := a.registry.Discover(ctx, a.config.ManifestsPath)
	for _, err := range discErrs {
		a.logger.Warn("Discovery problem.", "error", err)
	}

	dev, user, err := config.Load(ctx, a.config.DevConfigPath, a.config.UserConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	result := resolver.Resolve(ctx, resolver.Input{
		Descriptors:   descriptors,
		DevModules:    dev.Modules,
		User:          user,
		Invocation:    a.config.Invocation(),
		ExcludeLegacy: a.config.ExcludeLegacy,
	})
	for _, warning := range result.Warnings {
		a.logger.Warn(warning)
	}
	for _, resErr := range result.Errors {
		a.logger.Error("Resolution problem.", "error", resErr)
	}

	if a.config.StatusOnly {
		return a.printStatus(result)
	}

	// Structural errors abort before any module executes; failures of
	// optional modules degrade to failed resolutions and the run proceeds.
	if fatal := result.FirstFatal(); fatal != nil {
		return fmt.Errorf("module resolution failed: %w", fatal)
	}

	runCtx := &module.RunContext{Root: a.config.DocsRoot}

	if a.config.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Deadline)
		defer cancel()
	}

	a.logger.Info("Starting ordered execution.", "enabled", len(result.Enabled()))
	report := sequencer.New(descriptors).Run(ctx, result, runCtx)

	// A required module that failed or never ran (skipped behind a failing
	// upstream) is fatal; optional modules degrade to a warning.
	incomplete := 0
	for _, res := range report.Results {
		if res.Status == sequencer.StatusSucceeded {
			continue
		}
		if r, ok := result.Get(res.Name); ok && r.Required {
			return fmt.Errorf("required module %q did not complete: %s", res.Name, res.Reason)
		}
		incomplete++
	}
	if incomplete > 0 {
		a.logger.Warn("Run finished with optional module failures.", "incomplete", incomplete)
		return nil
	}

	a.logger.Info("Run finished.")
	return nil
}

// printStatus writes the serializable resolution summary to the app's
// output, without executing anything.
func (a *App) printStatus(result *resolver.Result) error {
	status := sequencer.Status(result)
	out, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status report: %w", err)
	}
	if _, err := fmt.Fprintln(a.outW, string(out)); err != nil {
		return err
	}
	return nil
}
