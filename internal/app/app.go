package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"q2stage/internal/config"
	"q2stage/internal/database"
	"q2stage/internal/fs"
	"q2stage/internal/stage"
)

// StageApp is the application layer between the CLI and StageService.
// It constructs all dependencies from config and releases them on Close.
type StageApp struct {
	history    stage.History
	historyErr error
	service    *stage.StageService
	logFile    *os.File
}

// NewStageApp creates a fully wired StageApp from the given config.
// Log output goes to stderr (and the log file, if configured).
// A history store that cannot be opened is logged and replaced by a no-op
// history, so staging still runs; History then reports the open error.
// The caller must call Close when done.
func NewStageApp(cfg *config.Config, stderr io.Writer) (*StageApp, error) {
	fsmgr, err := fs.NewOSFilesystemManager(cfg.Write.Mode)
	if err != nil {
		return nil, fmt.Errorf("creating filesystem manager: %w", err)
	}

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID, level, stderr)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	history, historyErr := database.NewHistoryFromConfig(cfg.History)
	if historyErr != nil {
		logger.Warn("history unavailable, run will not be recorded", "error", historyErr)
		history = stage.NopHistory{}
	}

	svc := stage.NewStageService(fsmgr, history, &slogAdapter{l: logger}, stage.RealClock{}, stage.UUIDGenerator{})

	return &StageApp{
		history:    history,
		historyErr: historyErr,
		service:    svc,
		logFile:    logFile,
	}, nil
}

// Stage copies the artifact for configuration into its runtime directory.
func (a *StageApp) Stage(configuration string) (*stage.Run, error) {
	return a.service.Stage(configuration)
}

// History returns the most recent staging runs, newest first.
func (a *StageApp) History(limit int) ([]*stage.Run, error) {
	if a.historyErr != nil {
		return nil, fmt.Errorf("opening history: %w", a.historyErr)
	}
	runs, err := a.history.ListRuns(limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// Close closes the history store and the log file.
func (a *StageApp) Close() error {
	var firstErr error
	if err := a.history.Close(); err != nil {
		firstErr = fmt.Errorf("closing history: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
