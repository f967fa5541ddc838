package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"

	"github.com/femnad/pfsync/base"
	"github.com/femnad/pfsync/common"
	"github.com/femnad/pfsync/internal"
	"github.com/femnad/pfsync/mirror"
	"github.com/femnad/pfsync/pipeline"
	"github.com/femnad/pfsync/remote"
	"github.com/femnad/pfsync/run"
	"github.com/femnad/pfsync/settings"
)

type args struct {
	DryRun     bool `arg:"--dry-run" help:"Traverse and log without writing files or running commands"`
	SkipTests  bool `arg:"--skip-tests" help:"Do not run the test command"`
	SkipDeploy bool `arg:"--skip-deploy" help:"Do not run the deploy command"`
}

func (args) Version() string {
	return "pfsync 0.1.0"
}

func (args) Description() string {
	return "Syncs showcase components into the portfolio, then builds and optionally deploys it.\n" +
		"Environment: PFSYNC_CONFIG, PFSYNC_LOG_LEVEL, PFSYNC_WORKDIR, PFSYNC_API_BASE, GITHUB_TOKEN."
}

func newSource(useGitHubClient bool, s settings.Settings, ref string) remote.Source {
	client := remote.Client{Token: s.GitHubToken}
	if useGitHubClient {
		fetcher, err := remote.NewGHFetcher(client, ref)
		if err == nil {
			return fetcher
		}
		internal.Logger.Warn().Err(err).Msg("Unable to create GitHub CLI client, falling back to plain HTTP")
	}
	return remote.HTTPFetcher{Client: client, APIBase: s.APIBase, Ref: ref}
}

func runSync(ctx context.Context, parsed args, s settings.Settings) (int, error) {
	if s.WorkDir != "." {
		if err := os.Chdir(s.WorkDir); err != nil {
			return 1, fmt.Errorf("error changing to work dir %s: %w", s.WorkDir, err)
		}
	}

	config, err := base.ReadConfig(s.ConfigFile)
	if err != nil {
		return 1, err
	}

	source := newSource(config.UseGitHubClient, s, config.SourceRef)
	orchestrator := pipeline.Orchestrator{
		Config:     config,
		Options:    pipeline.Options{DryRun: parsed.DryRun, SkipTests: parsed.SkipTests, SkipDeploy: parsed.SkipDeploy},
		Runner:     run.Runner{DryRun: parsed.DryRun},
		Syncer:     mirror.Downloader{Source: source, Repo: config.SourceRepo, DryRun: parsed.DryRun},
		Source:     source,
		Publisher:  common.Publisher{Dir: ".", Token: s.GitHubToken, Push: true},
		ReportFile: settings.ReportFileOrDefault(config.ReportFile),
	}

	return orchestrator.Run(ctx), nil
}

func main() {
	var parsed args
	arg.MustParse(&parsed)

	s := settings.FromEnv()
	if err := internal.InitLogging(s.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %s: %v\n", s.LogLevel, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code, err := runSync(ctx, parsed, s)
	stop()

	var missing base.ConfigurationMissingError
	if errors.As(err, &missing) {
		internal.Logger.Fatal().Err(err).Msg("Cannot start sync without a configuration file")
	} else if err != nil {
		internal.Logger.Fatal().Err(err).Msg("Sync aborted")
	}

	os.Exit(code)
}
