package generator

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/nonoforge/nonoforge/internal/solver"
)

func TestDensityBand_SparserWithSize(t *testing.T) {
	prev := DensityBand(5)
	for _, size := range []int{10, 15, 20} {
		band := DensityBand(size)
		if band.Min > prev.Min || band.Max > prev.Max {
			t.Errorf("band for size %d (%v) denser than smaller size (%v)", size, band, prev)
		}
		if band.Min >= band.Max {
			t.Errorf("band for size %d has Min >= Max: %v", size, band)
		}
		prev = band
	}
}

func TestRandomGrid_NeverEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	// A band of zero density exercises the forced-cell fallback.
	for trial := 0; trial < 20; trial++ {
		grid := RandomGrid(rng, 5, Band{Min: 0, Max: 0})
		if grid.FilledCount() != 1 {
			t.Fatalf("zero-density grid has %d filled cells, want exactly 1", grid.FilledCount())
		}
	}
}

func TestRandomGrid_Dimensions(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	grid := RandomGrid(rng, 8, DensityBand(8))

	if grid.Size() != 8 {
		t.Fatalf("grid size = %d, want 8", grid.Size())
	}
	for r, row := range grid {
		if len(row) != 8 {
			t.Errorf("row %d has %d cells, want 8", r, len(row))
		}
	}
}

func TestBuildPuzzle_HintsMatchSolution(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for trial := 0; trial < 25; trial++ {
		size := 3 + rng.Intn(8)
		grid := RandomGrid(rng, size, DensityBand(size))
		puzzle := BuildPuzzle(grid, "test")

		for r := 0; r < size; r++ {
			if got := solver.DeriveHints(puzzle.Solution[r]); !reflect.DeepEqual(got, puzzle.Rows[r]) {
				t.Fatalf("row %d hints %v do not re-derive from solution (%v)", r, puzzle.Rows[r], got)
			}
		}
		for c := 0; c < size; c++ {
			if got := solver.DeriveHints(puzzle.Solution.Column(c)); !reflect.DeepEqual(got, puzzle.Cols[c]) {
				t.Fatalf("col %d hints %v do not re-derive from solution (%v)", c, puzzle.Cols[c], got)
			}
		}
	}
}

func TestSearch_ReturnsConsistentPuzzle(t *testing.T) {
	puzzle, err := Search(context.Background(), Params{
		Size:        5,
		MaxAttempts: 100,
		Rand:        rand.New(rand.NewSource(4)),
		Name:        "consistency",
	}, nil)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	for r := 0; r < puzzle.Size; r++ {
		if got := solver.DeriveHints(puzzle.Solution[r]); !reflect.DeepEqual(got, puzzle.Rows[r]) {
			t.Errorf("row %d hints inconsistent: %v vs %v", r, puzzle.Rows[r], got)
		}
	}
}

func TestSearch_RequireUnique(t *testing.T) {
	puzzle, err := Search(context.Background(), Params{
		Size:          5,
		MaxAttempts:   500,
		RequireUnique: true,
		Rand:          rand.New(rand.NewSource(5)),
	}, nil)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if !solver.HasUniqueSolution(puzzle.Rows, puzzle.Cols, puzzle.Size) {
		t.Error("puzzle accepted with RequireUnique does not have a unique solution")
	}
}

func TestSearch_Exhaustion(t *testing.T) {
	_, err := Search(context.Background(), Params{
		Size:          5,
		MaxAttempts:   0,
		RequireUnique: true,
		Rand:          rand.New(rand.NewSource(6)),
	}, nil)
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("err = %v, want ErrExhausted", err)
	}
}

func TestSearch_ReportsFailedAttempts(t *testing.T) {
	// Fixed 0.5 density on a 2x2 board draws the ambiguous diagonal grids
	// often enough that failed attempts occur before the eventual success.
	var attempts []int
	puzzle, err := Search(context.Background(), Params{
		Size:          2,
		MaxAttempts:   200,
		RequireUnique: true,
		Band:          &Band{Min: 0.5, Max: 0.5},
		Rand:          rand.New(rand.NewSource(7)),
	}, func(attempt int, _ time.Duration) {
		attempts = append(attempts, attempt)
	})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if puzzle == nil {
		t.Fatal("Search returned nil puzzle without error")
	}
	for i, a := range attempts {
		if a != i+1 {
			t.Fatalf("attempt numbers not sequential: %v", attempts)
		}
	}
}

func TestSearch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Search(ctx, Params{
		Size:        5,
		MaxAttempts: 100,
		Rand:        rand.New(rand.NewSource(8)),
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
