package stage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
)

// StageService copies a configuration's compiled artifact into its runtime directory
// and records the outcome.
type StageService struct {
	fsmgr   FilesystemManager
	history History
	logger  Logger
	clock   Clock
	idgen   IDGenerator
}

// NewStageService creates a new StageService with the provided dependencies.
func NewStageService(fsmgr FilesystemManager, history History, logger Logger, clock Clock, idgen IDGenerator) *StageService {
	return &StageService{
		fsmgr:   fsmgr,
		history: history,
		logger:  logger,
		clock:   clock,
		idgen:   idgen,
	}
}

// Stage ensures build/release/<configuration>/baseq2 exists and copies
// build/release/<configuration>/game.dll into it, overwriting any previous copy.
//
// An already existing runtime directory is not an error, so Stage is idempotent.
// Filesystem failures are returned as an *Error whose kind is one of
// ErrDirectoryCreateFailed, ErrSourceNotFound or ErrCopyFailed.
// The returned Run is non-nil whenever the configuration is non-empty,
// including on failure.
func (s *StageService) Stage(configuration string) (*Run, error) {
	if configuration == "" {
		return nil, ErrEmptyConfiguration
	}

	req := NewRequest(configuration)
	run := &Run{
		ID:              s.idgen.New(),
		Configuration:   req.Configuration,
		SourcePath:      req.SourcePath,
		DestinationPath: req.DestinationPath,
		StartedAt:       s.clock.Now(),
	}

	err := s.copyArtifact(req, run)
	run.FinishedAt = s.clock.Now()
	if err != nil {
		run.Status = StatusError
		run.Error = err.Error()
	} else {
		run.Status = StatusSuccess
	}

	if herr := s.history.RecordRun(run); herr != nil {
		s.logger.Warn("recording run failed", "run", run.ID, "error", herr)
	}

	if err != nil {
		s.logger.Debug("staging failed", "configuration", configuration, "error", err)
		return run, err
	}

	s.logger.Info("artifact staged",
		"configuration", configuration,
		"destination", req.DestinationPath,
		"size", run.Size,
	)
	return run, nil
}

// copyArtifact performs the mkdir and copy steps, filling in run size and checksum.
func (s *StageService) copyArtifact(req *Request, run *Run) error {
	if err := s.fsmgr.Mkdir(req.DestinationDir); err != nil {
		if !errors.Is(err, fs.ErrExist) {
			return newError(ErrDirectoryCreateFailed, req.DestinationDir, err)
		}
		s.logger.Debug("runtime directory already exists", "path", req.DestinationDir)
	}

	// Open the source before touching the destination so a missing artifact
	// never leaves a file behind.
	src, err := s.fsmgr.Open(req.SourcePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newError(ErrSourceNotFound, req.SourcePath, err)
		}
		return newError(ErrCopyFailed, req.SourcePath, err)
	}
	defer src.Close()

	// Both checks run before WriteFile, which truncates the destination.
	info, err := s.fsmgr.Stat(req.SourcePath)
	if err != nil {
		return newError(ErrCopyFailed, req.SourcePath, err)
	}
	if !info.Mode().IsRegular() {
		return newError(ErrCopyFailed, req.SourcePath, ErrNotRegularFile)
	}

	same, err := s.fsmgr.SameFile(req.SourcePath, req.DestinationPath)
	if err != nil {
		return newError(ErrCopyFailed, req.DestinationPath, err)
	}
	if same {
		return newError(ErrCopyFailed, req.DestinationPath, ErrSameFile)
	}

	h := sha256.New()
	written, err := s.fsmgr.WriteFile(req.DestinationPath, io.TeeReader(src, h))
	if err != nil {
		return newError(ErrCopyFailed, req.DestinationPath, err)
	}

	run.Size = written
	run.Checksum = hex.EncodeToString(h.Sum(nil))
	return nil
}
