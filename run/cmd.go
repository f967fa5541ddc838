package run

import (
	"context"
	"fmt"
	"strings"

	marecmd "github.com/femnad/mare/cmd"

	"github.com/femnad/pfsync/internal"
)

const (
	dryRunPrefix = "[dry-run] would run"
	noCommand    = "no command configured"
)

// CommandResult is the outcome of one command. Failures are data, the caller decides if they are fatal.
type CommandResult struct {
	Success bool
	Output  string
}

// CommandExecutionError describes a command that could not start or exited non-zero.
type CommandExecutionError struct {
	Command string
	Code    int
	Output  string
	Err     error
}

func (e CommandExecutionError) Error() string {
	msg := fmt.Sprintf("command `%s` failed", e.Command)
	if e.Code != 0 {
		msg = fmt.Sprintf("%s with exit code %d", msg, e.Code)
	}
	if e.Output != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Output)
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e CommandExecutionError) Unwrap() error {
	return e.Err
}

type Runner struct {
	DryRun bool
	Pwd    string
}

func combinedOutput(out marecmd.Output) string {
	var parts []string
	for _, s := range []string{out.Stdout, out.Stderr} {
		s = strings.TrimSpace(s)
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// Run executes command through the shell and waits for it to exit.
func (r Runner) Run(ctx context.Context, command string) CommandResult {
	if command == "" {
		return CommandResult{Success: true, Output: noCommand}
	}

	if r.DryRun {
		internal.Logger.Info().Str("command", command).Msg("Dry run, not executing")
		return CommandResult{Success: true, Output: fmt.Sprintf("%s: %s", dryRunPrefix, command)}
	}

	if err := ctx.Err(); err != nil {
		return CommandResult{Output: CommandExecutionError{Command: command, Err: err}.Error()}
	}

	internal.Logger.Debug().Str("command", command).Str("pwd", r.Pwd).Msg("Running command")
	out, err := marecmd.Run(marecmd.Input{Command: command, Pwd: r.Pwd, Shell: true})
	output := combinedOutput(out)
	if err != nil || out.Code != 0 {
		cmdErr := CommandExecutionError{Command: command, Code: out.Code, Output: output, Err: err}
		internal.Logger.Error().Err(cmdErr).Msg("Command failed")
		return CommandResult{Output: cmdErr.Error()}
	}

	return CommandResult{Success: true, Output: output}
}
