package localstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore implements ports.Storage for the local filesystem. Each run
// gets its own directory holding what was sent and what came back.
type LocalStore struct {
	BaseDir string
}

// NewLocalStore creates a new LocalStore instance.
func NewLocalStore(baseDir string) *LocalStore {
	return &LocalStore{BaseDir: baseDir}
}

// InitRun creates the run directory.
func (s *LocalStore) InitRun(ctx context.Context, runID string) error {
	path := s.RunPath(runID)
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create run directory %s: %w", path, err)
	}
	return nil
}

// SaveRequest captures the payload as it was submitted.
func (s *LocalStore) SaveRequest(ctx context.Context, runID string, data []byte) error {
	return s.write(runID, "request.json", data)
}

// SaveResult captures the raw terminal payload without modification.
func (s *LocalStore) SaveResult(ctx context.Context, runID string, data []byte) error {
	return s.write(runID, "result_raw.json", data)
}

// SaveReport captures the final run report.
func (s *LocalStore) SaveReport(ctx context.Context, runID string, data []byte) error {
	return s.write(runID, "report.json", data)
}

// RunPath returns the path for a run directory.
func (s *LocalStore) RunPath(runID string) string {
	return filepath.Join(s.BaseDir, "runs", runID)
}

func (s *LocalStore) write(runID, filename string, data []byte) error {
	path := filepath.Join(s.RunPath(runID), filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save %s: %w", filename, err)
	}
	return nil
}
