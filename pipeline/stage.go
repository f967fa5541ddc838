package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/femnad/pfsync/common"
	"github.com/femnad/pfsync/entity"
	"github.com/femnad/pfsync/internal"
	"github.com/femnad/pfsync/manifest"
	"github.com/femnad/pfsync/remote"
)

const (
	stageBuild   = "build"
	stageCommit  = "commit"
	stageDeploy  = "deploy"
	stageFetch   = "fetch"
	stageInstall = "install"
	stageMerge   = "merge dependencies"
	stageTest    = "test"
)

// Outcome is what a stage produced: a line for the console and its share of the run statistics.
type Outcome struct {
	Output string
	Stats  entity.SyncStats
}

// Stage is one step of the pipeline. A failing gated stage ends the run with a non-zero exit status.
type Stage struct {
	Name    string
	Context string
	Gated   bool
	Skip    string
	Invoke  func(ctx context.Context) (Outcome, error)
}

func (s Stage) errorContext() string {
	if s.Context != "" {
		return s.Context
	}
	return s.Name
}

func (o *Orchestrator) commandStage(name, command string, gated bool) Stage {
	stage := Stage{
		Name:    name,
		Context: fmt.Sprintf("%s command `%s`", name, command),
		Gated:   gated,
	}
	if command == "" {
		stage.Skip = fmt.Sprintf("no %s command configured", name)
		return stage
	}

	stage.Invoke = func(ctx context.Context) (Outcome, error) {
		result := o.Runner.Run(ctx, command)
		if !result.Success {
			return Outcome{Output: result.Output}, errors.New(result.Output)
		}
		return Outcome{Output: result.Output}, nil
	}
	return stage
}

func (o *Orchestrator) fetchStage() Stage {
	return Stage{
		Name: stageFetch,
		Invoke: func(ctx context.Context) (Outcome, error) {
			var stats entity.SyncStats
			for _, group := range o.Config.SyncPaths {
				internal.Logger.Info().Str("group", group.Name).Str("source", group.Source).
					Str("target", group.Target).Msg("Syncing group")
				stats = stats.Merge(o.Syncer.Sync(ctx, group))
			}
			output := fmt.Sprintf("%d files from %d sync groups", stats.FilesDownloaded, len(o.Config.SyncPaths))
			return Outcome{Output: output, Stats: stats}, nil
		},
	}
}

func (o *Orchestrator) readSourceManifest(ctx context.Context, source string) (*manifest.Manifest, error) {
	dir, name := path.Split(source)
	entries, err := o.Source.List(ctx, o.Config.SourceRepo, dir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.Name != name || entry.Type != remote.FileEntry {
			continue
		}
		data, readErr := o.Source.ReadResponseBytes(ctx, entry.DownloadURL)
		if readErr != nil {
			return nil, readErr
		}
		return manifest.Parse(data)
	}

	return nil, fmt.Errorf("manifest %s not found in %s", source, o.Config.SourceRepo)
}

func (o *Orchestrator) mergeStage() Stage {
	stage := Stage{Name: stageMerge}
	depManifest := o.Config.DependencyManifest
	if depManifest == nil {
		stage.Skip = "no dependency manifest configured"
		return stage
	}

	source := depManifest.Source
	if source == "" {
		source = "package.json"
	}
	stage.Context = fmt.Sprintf("%s %s -> %s", stageMerge, source, depManifest.Target)

	stage.Invoke = func(ctx context.Context) (Outcome, error) {
		var outcome Outcome
		sourceManifest, err := o.readSourceManifest(ctx, source)
		if err != nil {
			return outcome, err
		}

		localManifest, err := manifest.ReadFile(depManifest.Target)
		if errors.Is(err, fs.ErrNotExist) {
			localManifest = &manifest.Manifest{}
		} else if err != nil {
			return outcome, err
		}

		merged, messages, err := manifest.Merge(localManifest, sourceManifest)
		if err != nil {
			return outcome, err
		}
		outcome.Stats.Warnings = messages
		outcome.Output = fmt.Sprintf("%d dependency changes or conflicts", len(messages))

		if o.Options.DryRun {
			internal.Logger.Info().Str("target", depManifest.Target).Msg("Would write merged manifest")
			return outcome, nil
		}

		return outcome, merged.WriteFile(depManifest.Target)
	}
	return stage
}

func (o *Orchestrator) testStage() Stage {
	stage := o.commandStage(stageTest, o.Config.BuildConfig.TestCommand, true)
	switch {
	case o.Options.SkipTests:
		stage.Skip = "--skip-tests given"
		return stage
	case !o.Config.Automation.AutoTest:
		stage.Skip = "autoTest disabled"
		return stage
	case stage.Invoke == nil:
		return stage
	}

	invoke := stage.Invoke
	stage.Invoke = func(ctx context.Context) (Outcome, error) {
		outcome, err := invoke(ctx)
		// A dry run only prints the command, no test has run.
		if !o.Options.DryRun {
			outcome.Stats.TestsRun++
		}
		return outcome, err
	}
	return stage
}

// The commit stage is not gated: a failed commit or push is reported but the run carries on to deploy.
func (o *Orchestrator) commitStage() Stage {
	stage := Stage{Name: stageCommit}
	switch {
	case !o.Config.Automation.AutoCommit:
		stage.Skip = "autoCommit disabled"
		return stage
	case o.Options.DryRun:
		stage.Skip = "dry run"
		return stage
	}

	stage.Invoke = func(ctx context.Context) (Outcome, error) {
		output, err := o.Publisher.Publish(ctx, common.CommitMessage(o.now()))
		return Outcome{Output: output}, err
	}
	return stage
}

func (o *Orchestrator) deployStage() Stage {
	stage := o.commandStage(stageDeploy, o.Config.DeployConfig.DeployCommand, true)
	switch {
	case o.Options.SkipDeploy:
		stage.Skip = "--skip-deploy given"
	case !o.Config.Automation.AutoDeploy:
		stage.Skip = "autoDeploy disabled"
	case o.Options.DryRun:
		stage.Skip = "dry run"
	}
	return stage
}

// Stages returns the pipeline in execution order.
func (o *Orchestrator) Stages() []Stage {
	return []Stage{
		o.fetchStage(),
		o.mergeStage(),
		// Install failures are recorded but do not stop the run, a partially installed tree may still build.
		o.commandStage(stageInstall, o.Config.BuildConfig.InstallCommand, false),
		o.testStage(),
		o.commandStage(stageBuild, o.Config.BuildConfig.BuildCommand, true),
		o.commitStage(),
		o.deployStage(),
	}
}
