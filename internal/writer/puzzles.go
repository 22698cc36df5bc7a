package writer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nonoforge/nonoforge/pkg/models"
)

// PuzzleWriter handles thread-safe writing of puzzles to a JSONL file
type PuzzleWriter struct {
	file   *os.File
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewPuzzleWriter creates a timestamped puzzles file under outputDir
func NewPuzzleWriter(outputDir string, logger *slog.Logger) (*PuzzleWriter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(outputDir, "puzzles_"+time.Now().Format("2006-01-02T15-04-05")+".jsonl")
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create puzzles file: %w", err)
	}

	logger.Info("Created puzzles file", "path", path)

	return &PuzzleWriter{
		file:   file,
		logger: logger,
	}, nil
}

// WritePuzzle appends a single puzzle as one JSON line
func (pw *PuzzleWriter) WritePuzzle(puzzle *models.Puzzle) error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	data, err := json.Marshal(puzzle)
	if err != nil {
		return fmt.Errorf("failed to marshal puzzle: %w", err)
	}

	if _, err := pw.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write puzzle: %w", err)
	}

	pw.count++
	return nil
}

// Count returns the number of puzzles written so far
func (pw *PuzzleWriter) Count() int {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	return pw.count
}

// Path returns the puzzles file path
func (pw *PuzzleWriter) Path() string {
	return pw.file.Name()
}

// Close syncs and closes the puzzles file
func (pw *PuzzleWriter) Close() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if err := pw.file.Sync(); err != nil {
		pw.logger.Warn("Failed to sync puzzles file", "error", err)
	}

	if err := pw.file.Close(); err != nil {
		return fmt.Errorf("failed to close puzzles file: %w", err)
	}

	pw.logger.Info("Closed puzzles file", "puzzles", pw.count)
	return nil
}
