package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// FileStore persists analysis records as JSON side files in the
// processed-output directory: {filename}_analysis.json next to the
// renditions, and {filename}_error.json for file-level failures.
// A status query therefore observes exactly what the last completed
// variant wrote, even across process restarts.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// Compile-time interface check.
var _ AnalysisStore = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding side files and renditions.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) analysisPath(filename string) string {
	return filepath.Join(s.dir, filename+"_analysis.json")
}

func (s *FileStore) failurePath(filename string) string {
	return filepath.Join(s.dir, filename+"_error.json")
}

// GetAnalysis reads the analysis side file. Returns nil, nil when absent.
func (s *FileStore) GetAnalysis(ctx context.Context, filename string) (*AnalysisRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.analysisPath(filename))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read analysis for %s: %w", filename, err)
	}

	var record AnalysisRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse analysis for %s: %w", filename, err)
	}
	return &record, nil
}

// PutAnalysis writes the full analysis record for a file. Called once
// per completed variant so that progress is visible to concurrent polls.
func (s *FileStore) PutAnalysis(ctx context.Context, filename string, record *AnalysisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis for %s: %w", filename, err)
	}
	if err := os.WriteFile(s.analysisPath(filename), data, 0o644); err != nil {
		return fmt.Errorf("write analysis for %s: %w", filename, err)
	}

	log.Debug().
		Str("filename", filename).
		Int("processed", len(record.Processed)).
		Msg("Analysis record written")
	return nil
}

// GetFailure reads the file-level failure side file. Returns nil, nil when absent.
func (s *FileStore) GetFailure(ctx context.Context, filename string) (*FailureRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.failurePath(filename))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read failure for %s: %w", filename, err)
	}

	var failure FailureRecord
	if err := json.Unmarshal(data, &failure); err != nil {
		return nil, fmt.Errorf("parse failure for %s: %w", filename, err)
	}
	return &failure, nil
}

// PutFailure writes the file-level failure record.
func (s *FileStore) PutFailure(ctx context.Context, filename string, failure *FailureRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(failure, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal failure for %s: %w", filename, err)
	}
	if err := os.WriteFile(s.failurePath(filename), data, 0o644); err != nil {
		return fmt.Errorf("write failure for %s: %w", filename, err)
	}
	return nil
}
