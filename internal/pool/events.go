package pool

import (
	"errors"
	"time"

	"github.com/nonoforge/nonoforge/internal/generator"
	"github.com/nonoforge/nonoforge/pkg/models"
)

var (
	// ErrBusy is returned by Generate while another generation is in flight.
	ErrBusy = errors.New("a generation is already in flight")
	// ErrCanceled settles a pending result after Cancel.
	ErrCanceled = errors.New("generation cancelled")
	// ErrClosed is returned once the coordinator has been closed.
	ErrClosed = errors.New("coordinator is closed")
)

// EventKind discriminates the notifications pushed on the Events stream.
type EventKind string

const (
	EventProgress EventKind = "progress"
	EventResult   EventKind = "result"
	EventError    EventKind = "error"
)

// Event is one push notification from the coordinator. Progress events carry
// worker/attempt fields, result events carry the puzzle, error events carry
// a message.
type Event struct {
	Kind        EventKind
	RequestID   string
	Worker      int
	Attempt     int
	MaxAttempts int
	Elapsed     time.Duration
	Puzzle      *models.Puzzle
	Message     string
}

// Result settles exactly once per generation request: either a puzzle or an
// error (aggregated worker failure, cancellation, or shutdown).
type Result struct {
	Puzzle *models.Puzzle
	Err    error
}

// Options tunes one generation request.
type Options struct {
	// MaxAttemptsPerWorker bounds each worker's candidate budget.
	// Zero selects DefaultMaxAttempts.
	MaxAttemptsPerWorker int
	// RequireUnique accepts only puzzles whose hints admit exactly one grid.
	RequireUnique bool
	// Band overrides the size-derived density band.
	Band *generator.Band
	// Name labels the resulting puzzle; empty derives one from the request ID.
	Name string
	// ProgressPerSecond caps progress events per worker. Zero selects
	// DefaultProgressPerSecond; negative disables throttling.
	ProgressPerSecond float64
}

// DefaultMaxAttempts is the per-worker candidate budget when none is given.
const DefaultMaxAttempts = 1500

// DefaultProgressPerSecond is the per-worker progress event cap when none is
// given.
const DefaultProgressPerSecond = 20
