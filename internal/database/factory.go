package database

import (
	"fmt"
	"path/filepath"

	"q2stage/internal/config"
	"q2stage/internal/stage"
)

// HistoryFileName is the database file created under data_dir.
const HistoryFileName = "history.db"

// NewHistoryFromConfig creates a History implementation based on the history config type.
func NewHistoryFromConfig(cfg config.HistoryConfig) (stage.History, error) {
	switch cfg.Type {
	case "none", "":
		return stage.NopHistory{}, nil
	case "memory":
		return openHistory(":memory:")
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite history")
		}
		return openHistory(filepath.Join(cfg.DataDir, HistoryFileName))
	default:
		return nil, fmt.Errorf("unknown history type: %s", cfg.Type)
	}
}

// openHistory avoids returning a typed nil inside a non-nil stage.History.
func openHistory(path string) (stage.History, error) {
	h, err := NewSQLiteHistory(path)
	if err != nil {
		return nil, err
	}
	return h, nil
}
