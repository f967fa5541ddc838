package run

import (
	"context"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_Run(t *testing.T) {
	tests := []struct {
		name        string
		command     string
		wantSuccess bool
		wantOutput  string
	}{
		{
			name:        "Success captures stdout",
			command:     "echo hello",
			wantSuccess: true,
			wantOutput:  "hello",
		},
		{
			name:        "Shell syntax",
			command:     "echo one && echo two",
			wantSuccess: true,
			wantOutput:  "one\ntwo",
		},
		{
			name:       "Non-zero exit",
			command:    "exit 1",
			wantOutput: "command `exit 1` failed",
		},
		{
			name:       "Failure captures stderr",
			command:    "echo broken >&2; exit 3",
			wantOutput: "broken",
		},
		{
			name:        "Empty command",
			command:     "",
			wantSuccess: true,
			wantOutput:  noCommand,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Runner{}.Run(context.Background(), tt.command)
			assert.Equal(t, tt.wantSuccess, got.Success)
			assert.Contains(t, got.Output, tt.wantOutput)
		})
	}
}

func TestRunner_RunDryRun(t *testing.T) {
	dir := t.TempDir()
	marker := path.Join(dir, "marker")

	got := Runner{DryRun: true, Pwd: dir}.Run(context.Background(), "touch "+marker+" && exit 1")

	assert.True(t, got.Success)
	assert.Contains(t, got.Output, dryRunPrefix)
	assert.NoFileExists(t, marker)
}

func TestRunner_RunPwd(t *testing.T) {
	dir := t.TempDir()

	got := Runner{Pwd: dir}.Run(context.Background(), "touch created")

	require.True(t, got.Success, got.Output)
	_, err := os.Stat(path.Join(dir, "created"))
	assert.NoError(t, err)
}

func TestRunner_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := Runner{}.Run(ctx, "echo never")

	assert.False(t, got.Success)
	assert.Contains(t, got.Output, "context canceled")
}
