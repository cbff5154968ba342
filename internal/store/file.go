package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"ideaforge/config"
	"ideaforge/internal/agent/core"
)

// Storage writes pipeline states as indented JSON under a base
// directory. Final results get numbered files so reruns never clobber
// earlier output; intermediate snapshots are grouped per run.
type Storage struct {
	dir    string
	logger *log.Logger
}

func New(cfg config.FileStorageConfig) (*Storage, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Storage{
		dir:    cfg.OutputDir,
		logger: log.New(log.Writer(), "[STORAGE] ", log.LstdFlags),
	}, nil
}

// SaveSnapshot writes the state reached after one stage to
// runs/<runID>/<step>.json and returns the path.
func (s *Storage) SaveSnapshot(runID, step string, st core.PipelineState) (string, error) {
	dir := filepath.Join(s.dir, "runs", runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	encoded, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, step+".json")
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// SaveIdeas writes the final state to business_ideas_<n>.json, taking
// the first free n.
func (s *Storage) SaveIdeas(st core.PipelineState) (string, error) {
	encoded, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return "", err
	}
	path, err := s.nextIdeasPath()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return "", err
	}
	s.logger.Printf("Saved research results to %s", path)
	return path, nil
}

func (s *Storage) nextIdeasPath() (string, error) {
	for n := 1; n < 10000; n++ {
		path := filepath.Join(s.dir, fmt.Sprintf("business_ideas_%d.json", n))
		_, err := os.Stat(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			return path, nil
		case err != nil:
			return "", err
		}
	}
	return "", fmt.Errorf("no free results filename under %s", s.dir)
}

// LoadState reads a state file written by SaveSnapshot or SaveIdeas.
func LoadState(path string) (core.PipelineState, error) {
	encoded, err := os.ReadFile(path)
	if err != nil {
		return core.PipelineState{}, err
	}
	var st core.PipelineState
	if err := json.Unmarshal(encoded, &st); err != nil {
		return core.PipelineState{}, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	return st, nil
}
