package entity

import "fmt"

type SyncError struct {
	Context string `json:"context"`
	Message string `json:"message"`
}

func (e SyncError) String() string {
	return fmt.Sprintf("%s: %s", e.Context, e.Message)
}

type SyncedFile struct {
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
}

// SyncStats accumulates the outcome of a stage. Stages return their own value and the pipeline merges them.
type SyncStats struct {
	FilesDownloaded int
	FilesSynced     int
	TestsRun        int
	Errors          []SyncError
	Warnings        []string
	SyncedFiles     []SyncedFile
}

func (s *SyncStats) AddError(context string, err error) {
	if err == nil {
		return
	}
	s.Errors = append(s.Errors, SyncError{Context: context, Message: err.Error()})
}

func (s *SyncStats) AddWarning(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

func (s SyncStats) HasErrors() bool {
	return len(s.Errors) > 0
}

func (s SyncStats) Merge(other SyncStats) SyncStats {
	return SyncStats{
		FilesDownloaded: s.FilesDownloaded + other.FilesDownloaded,
		FilesSynced:     s.FilesSynced + other.FilesSynced,
		TestsRun:        s.TestsRun + other.TestsRun,
		Errors:          append(append([]SyncError{}, s.Errors...), other.Errors...),
		Warnings:        append(append([]string{}, s.Warnings...), other.Warnings...),
		SyncedFiles:     append(append([]SyncedFile{}, s.SyncedFiles...), other.SyncedFiles...),
	}
}
