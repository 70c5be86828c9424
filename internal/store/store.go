package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wonny/ndxcap/internal/contracts"
	"github.com/wonny/ndxcap/pkg/logger"
)

// Store persists the dataset as a single flat JSON array.
// ⭐ SSOT: 데이터셋 파일 I/O는 이 타입에서만
type Store struct {
	path   string
	logger *logger.Logger
}

// New creates a store for the given file path
func New(path string, log *logger.Logger) *Store {
	return &Store{
		path:   path,
		logger: log,
	}
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted dataset. A missing file is an empty dataset;
// a corrupt file is logged and treated as no prior data so the next run
// performs a full fresh fetch.
func (s *Store) Load() (contracts.Dataset, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return contracts.Dataset{}, nil
		}
		return nil, fmt.Errorf("read dataset file: %w", err)
	}

	var ds contracts.Dataset
	if err := json.Unmarshal(b, &ds); err != nil {
		s.logger.WithError(err).WithField("path", s.path).
			Warn("Dataset file is corrupt, treating as empty")
		return contracts.Dataset{}, nil
	}

	return ds, nil
}

// Save rewrites the full dataset in one atomic step: marshal, write to a
// temp file in the same directory, rename over the target. A crash mid-run
// leaves the previous file intact.
func (s *Store) Save(ds contracts.Dataset) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dataset directory: %w", err)
	}

	b, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ndxcap-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace dataset file: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"path":    s.path,
		"records": len(ds),
	}).Info("Dataset saved")

	return nil
}
