// Package pipeline runs the sync stages in order and turns their outcome into an exit status.
package pipeline

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/femnad/pfsync/entity"
	"github.com/femnad/pfsync/internal"
	"github.com/femnad/pfsync/remote"
	"github.com/femnad/pfsync/run"
)

const (
	exitFailure = 1
	exitSuccess = 0
)

type Options struct {
	DryRun     bool
	SkipTests  bool
	SkipDeploy bool
}

type CommandRunner interface {
	Run(ctx context.Context, command string) run.CommandResult
}

type GroupSyncer interface {
	Sync(ctx context.Context, group entity.SyncGroup) entity.SyncStats
}

type Publisher interface {
	Publish(ctx context.Context, message string) (string, error)
}

type Orchestrator struct {
	Config     entity.Config
	Options    Options
	Runner     CommandRunner
	Syncer     GroupSyncer
	Source     remote.Source
	Publisher  Publisher
	ReportFile string
	Out        io.Writer
	Now        func() time.Time
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) out() io.Writer {
	if o.Out != nil {
		return o.Out
	}
	return os.Stdout
}

// Run executes every stage in order and returns the process exit status. The summary is printed and the
// report written whether the run succeeds or stops at a gate.
func (o *Orchestrator) Run(ctx context.Context) int {
	var stats entity.SyncStats
	console := newConsole(o.out())

	if o.Options.DryRun {
		console.notice("Dry run: no files will be written and no commands executed")
	}

	for _, stage := range o.Stages() {
		console.banner(stage.Name)
		if stage.Skip != "" {
			console.skipped(stage.Skip)
			continue
		}

		outcome, err := stage.Invoke(ctx)
		stats = stats.Merge(outcome.Stats)
		if err == nil {
			console.ok(outcome.Output)
			continue
		}

		stats.AddError(stage.errorContext(), err)
		internal.Logger.Error().Err(err).Str("stage", stage.Name).Bool("gated", stage.Gated).Msg("Stage failed")
		if stage.Gated {
			console.failed(err)
			o.finish(console, stats, stage.Name)
			return exitFailure
		}
		console.warn(err)
	}

	o.finish(console, stats, "")
	return exitSuccess
}

func (o *Orchestrator) finish(console console, stats entity.SyncStats, failedStage string) {
	console.summary(stats, failedStage)

	if o.Options.DryRun {
		internal.Logger.Debug().Msg("Dry run, not writing sync report")
		return
	}

	report := newReport(o.now(), stats, failedStage, o.Options.DryRun)
	if err := report.WriteFile(o.ReportFile); err != nil {
		internal.Logger.Error().Err(err).Str("file", o.ReportFile).Msg("Error writing sync report")
		return
	}
	internal.Logger.Info().Str("file", o.ReportFile).Msg("Wrote sync report")
}
