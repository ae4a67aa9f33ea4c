package testutil

import "q2stage/internal/stage"

// RecordingHistory keeps runs in memory in the order they were recorded.
// If Err is set, RecordRun fails with it and stores nothing.
type RecordingHistory struct {
	Runs []*stage.Run
	Err  error
}

func NewRecordingHistory() *RecordingHistory {
	return &RecordingHistory{}
}

func (h *RecordingHistory) RecordRun(run *stage.Run) error {
	if h.Err != nil {
		return h.Err
	}
	h.Runs = append(h.Runs, run)
	return nil
}

// ListRuns returns at most limit runs, newest first. A non-positive limit returns all runs.
func (h *RecordingHistory) ListRuns(limit int) ([]*stage.Run, error) {
	if limit <= 0 {
		limit = len(h.Runs)
	}
	var out []*stage.Run
	for i := len(h.Runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.Runs[i])
	}
	return out, nil
}

func (h *RecordingHistory) Close() error { return nil }

var _ stage.History = (*RecordingHistory)(nil)
