// Package generator produces candidate nonogram puzzles from randomized
// grids and runs the sequential search loop executed inside a single worker.
package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/nonoforge/nonoforge/internal/solver"
	"github.com/nonoforge/nonoforge/pkg/models"
)

// ErrExhausted is returned by Search when no acceptable candidate was found
// within the attempt budget.
var ErrExhausted = errors.New("attempt budget exhausted")

// Band is an inclusive fill-density range.
type Band struct {
	Min float64
	Max float64
}

// DensityBand returns the default fill-density band for a grid size. Wider
// boards get sparser fills to keep uniqueness verification tractable. The
// exact values are tuning, not correctness.
func DensityBand(size int) Band {
	switch {
	case size <= 5:
		return Band{Min: 0.35, Max: 0.65}
	case size <= 10:
		return Band{Min: 0.32, Max: 0.55}
	case size <= 15:
		return Band{Min: 0.29, Max: 0.50}
	default:
		return Band{Min: 0.26, Max: 0.45}
	}
}

// RandomGrid fills a size×size grid cell by cell at a density drawn
// uniformly from the band. An entirely empty result gets a single random
// cell forced on, so no candidate is trivial.
func RandomGrid(rng *rand.Rand, size int, band Band) models.Grid {
	density := band.Min + rng.Float64()*(band.Max-band.Min)

	grid := models.NewGrid(size)
	filled := 0
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if rng.Float64() < density {
				grid[r][c] = true
				filled++
			}
		}
	}
	if filled == 0 {
		grid[rng.Intn(size)][rng.Intn(size)] = true
	}
	return grid
}

// BuildPuzzle derives the hint sequences for every row and column of the
// grid and wraps them into an immutable puzzle.
func BuildPuzzle(grid models.Grid, name string) *models.Puzzle {
	size := grid.Size()
	rows := make([][]int, size)
	cols := make([][]int, size)
	for i := 0; i < size; i++ {
		rows[i] = solver.DeriveHints(grid[i])
		cols[i] = solver.DeriveHints(grid.Column(i))
	}
	return &models.Puzzle{
		Name:     name,
		Size:     size,
		Rows:     rows,
		Cols:     cols,
		Solution: grid,
	}
}

// Params configures one search run.
type Params struct {
	Size          int
	MaxAttempts   int
	RequireUnique bool
	Band          *Band // nil selects DensityBand(Size)
	Name          string
	Rand          *rand.Rand // nil seeds from the wall clock
}

// Search draws random candidate puzzles until one is accepted or the attempt
// budget is spent. With RequireUnique set, a candidate is accepted only if
// its hints admit exactly one solution; otherwise the first candidate wins.
//
// The context is checked before every attempt, so cancellation latency is
// bounded by a single verification pass. onAttempt, if non-nil, is invoked
// after every failed attempt with the attempt number and elapsed time.
func Search(ctx context.Context, p Params, onAttempt func(attempt int, elapsed time.Duration)) (*models.Puzzle, error) {
	band := DensityBand(p.Size)
	if p.Band != nil {
		band = *p.Band
	}
	rng := p.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	start := time.Now()
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		grid := RandomGrid(rng, p.Size, band)
		puzzle := BuildPuzzle(grid, p.Name)

		if !p.RequireUnique || solver.HasUniqueSolution(puzzle.Rows, puzzle.Cols, p.Size) {
			return puzzle, nil
		}
		if onAttempt != nil {
			onAttempt(attempt, time.Since(start))
		}
	}
	return nil, fmt.Errorf("no puzzle of size %d found in %d attempts: %w", p.Size, p.MaxAttempts, ErrExhausted)
}
