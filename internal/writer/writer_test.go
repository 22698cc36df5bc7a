package writer

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/nonoforge/nonoforge/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPuzzle() *models.Puzzle {
	grid := models.NewGrid(3)
	grid[0][0] = true
	grid[0][1] = true
	grid[2][2] = true
	return &models.Puzzle{
		Name:     "writer-test",
		Size:     3,
		Rows:     [][]int{{2}, nil, {1}},
		Cols:     [][]int{{1}, {1}, {1}},
		Solution: grid,
	}
}

func TestPuzzleWriter_RoundTrip(t *testing.T) {
	pw, err := NewPuzzleWriter(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewPuzzleWriter returned error: %v", err)
	}
	path := pw.Path()

	want := testPuzzle()
	for i := 0; i < 3; i++ {
		if err := pw.WritePuzzle(want); err != nil {
			t.Fatalf("WritePuzzle returned error: %v", err)
		}
	}
	if pw.Count() != 3 {
		t.Errorf("Count = %d, want 3", pw.Count())
	}
	if err := pw.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open puzzles file: %v", err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var got models.Puzzle
		if err := json.Unmarshal(scanner.Bytes(), &got); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines+1, err)
		}
		if got.Name != want.Name || got.Size != want.Size {
			t.Errorf("line %d decoded to %q size %d", lines+1, got.Name, got.Size)
		}
		lines++
	}
	if lines != 3 {
		t.Errorf("file has %d lines, want 3", lines)
	}
}

func TestRender_RevealsSolution(t *testing.T) {
	out := Render(testPuzzle(), true)

	if strings.Count(out, "#") != 3 {
		t.Errorf("rendered solution has %d filled cells, want 3:\n%s", strings.Count(out, "#"), out)
	}
	if !strings.Contains(out, "2") {
		t.Errorf("rendered output missing row hint:\n%s", out)
	}
}

func TestRender_BlankGridForSolving(t *testing.T) {
	out := Render(testPuzzle(), false)

	if strings.Contains(out, "#") {
		t.Errorf("blank rendering leaks solution cells:\n%s", out)
	}
	// The empty middle row renders a 0 hint.
	if !strings.Contains(out, "0") {
		t.Errorf("rendered output missing zero hint for empty row:\n%s", out)
	}
}

func TestSetupLogger_WritesBothDestinations(t *testing.T) {
	dir := t.TempDir()
	logger, logFile, err := SetupLogger(dir, slog.LevelInfo)
	if err != nil {
		t.Fatalf("SetupLogger returned error: %v", err)
	}

	logger.Info("hello", "key", "value")
	if err := logFile.Close(); err != nil {
		t.Fatalf("failed to close log file: %v", err)
	}

	data, err := os.ReadFile(logFile.Name())
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.SplitN(string(data), "\n", 2)[0]), &entry); err != nil {
		t.Fatalf("log file line is not JSON: %v", err)
	}
	if entry["msg"] != "hello" || entry["key"] != "value" {
		t.Errorf("log entry = %v, want msg=hello key=value", entry)
	}
}
