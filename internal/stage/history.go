package stage

import "time"

// Run statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Run records one invocation of the stager.
type Run struct {
	ID              string
	Configuration   string
	SourcePath      string
	DestinationPath string
	Size            int64
	Checksum        string // SHA-256 of the bytes copied; informational only
	Status          string
	Error           string
	StartedAt       time.Time
	FinishedAt      time.Time
}

// History stores staging runs.
type History interface {
	// RecordRun appends a finished run.
	RecordRun(run *Run) error

	// ListRuns returns at most limit runs, newest first.
	ListRuns(limit int) ([]*Run, error)

	// Close releases the underlying store.
	Close() error
}

// NopHistory discards every run.
type NopHistory struct{}

func (NopHistory) RecordRun(*Run) error         { return nil }
func (NopHistory) ListRuns(int) ([]*Run, error) { return nil, nil }
func (NopHistory) Close() error                 { return nil }

var _ History = NopHistory{}
