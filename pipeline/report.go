package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/femnad/pfsync/entity"
	"github.com/femnad/pfsync/internal"
)

type ReportStats struct {
	FilesDownloaded int `json:"filesDownloaded"`
	FilesSynced     int `json:"filesSynced"`
	TestsRun        int `json:"testsRun"`
}

// Report is the JSON record of a run.
type Report struct {
	Timestamp   time.Time           `json:"timestamp"`
	Success     bool                `json:"success"`
	DryRun      bool                `json:"dryRun"`
	FailedStage string              `json:"failedStage,omitempty"`
	Stats       ReportStats         `json:"stats"`
	SyncedFiles []entity.SyncedFile `json:"syncedFiles"`
	Warnings    []string            `json:"warnings"`
	Errors      []entity.SyncError  `json:"errors"`
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func newReport(now time.Time, stats entity.SyncStats, failedStage string, dryRun bool) Report {
	return Report{
		Timestamp:   now.UTC(),
		Success:     failedStage == "" && !stats.HasErrors(),
		DryRun:      dryRun,
		FailedStage: failedStage,
		Stats: ReportStats{
			FilesDownloaded: stats.FilesDownloaded,
			FilesSynced:     stats.FilesSynced,
			TestsRun:        stats.TestsRun,
		},
		SyncedFiles: nonNil(stats.SyncedFiles),
		Warnings:    nonNil(stats.Warnings),
		Errors:      nonNil(stats.Errors),
	}
}

func (r Report) WriteFile(filename string) error {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}

	if err = internal.EnsureDirExists(filepath.Dir(filename)); err != nil {
		return err
	}
	return os.WriteFile(filename, append(out, '\n'), 0o644)
}
