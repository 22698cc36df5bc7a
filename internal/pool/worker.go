package pool

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"github.com/nonoforge/nonoforge/internal/generator"
	"github.com/nonoforge/nonoforge/pkg/models"
)

type msgKind int

const (
	msgProgress msgKind = iota
	msgSuccess
	msgFailure
	msgCrash
)

// workerMsg is the only way workers talk to the control loop. Every message
// carries the epoch it belongs to.
type workerMsg struct {
	kind    msgKind
	epoch   uint64
	worker  int
	attempt int
	elapsed time.Duration
	puzzle  *models.Puzzle
	err     error
}

// task is one worker's share of a generation epoch. The index is for
// progress labeling only; workers are interchangeable and run independent
// random streams from their seed.
type task struct {
	ctx           context.Context
	epoch         uint64
	requestID     string
	size          int
	maxAttempts   int
	requireUnique bool
	band          *generator.Band
	name          string
	seed          int64
	progressRate  float64
}

type worker struct {
	index int
	tasks chan task
}

func (c *Coordinator) runWorker(w *worker) {
	for t := range w.tasks {
		c.runTask(w, t)
	}
}

// runTask executes one search under the epoch context. A panic is reported
// as a crash message so the epoch simply loses one contributor.
func (c *Coordinator) runTask(w *worker, t task) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("worker panicked",
				"request_id", t.requestID,
				"worker", w.index,
				"panic", r)
			c.send(t.ctx, workerMsg{
				kind:   msgCrash,
				epoch:  t.epoch,
				worker: w.index,
				err:    fmt.Errorf("worker %d panicked: %v", w.index, r),
			})
		}
	}()

	limit := rate.Limit(t.progressRate)
	if t.progressRate < 0 {
		limit = rate.Inf
	}
	limiter := rate.NewLimiter(limit, 1)

	puzzle, err := c.search(t.ctx, generator.Params{
		Size:          t.size,
		MaxAttempts:   t.maxAttempts,
		RequireUnique: t.requireUnique,
		Band:          t.band,
		Name:          t.name,
		Rand:          rand.New(rand.NewSource(t.seed)),
	}, func(attempt int, elapsed time.Duration) {
		c.metrics.RecordAttempt(false)
		if !limiter.Allow() {
			return
		}
		c.send(t.ctx, workerMsg{
			kind:    msgProgress,
			epoch:   t.epoch,
			worker:  w.index,
			attempt: attempt,
			elapsed: elapsed,
		})
	})

	switch {
	case err == nil:
		c.metrics.RecordAttempt(true)
		c.send(t.ctx, workerMsg{
			kind:   msgSuccess,
			epoch:  t.epoch,
			worker: w.index,
			puzzle: puzzle,
		})
	case errors.Is(err, context.Canceled):
		// Cancelled epochs report nothing; the coordinator has moved on.
		c.logger.Debug("worker search cancelled",
			"request_id", t.requestID,
			"worker", w.index)
	default:
		c.send(t.ctx, workerMsg{
			kind:   msgFailure,
			epoch:  t.epoch,
			worker: w.index,
			err:    fmt.Errorf("worker %d: %w", w.index, err),
		})
	}
}

// send delivers a message unless the epoch has been cancelled, which also
// covers coordinator shutdown.
func (c *Coordinator) send(ctx context.Context, m workerMsg) {
	select {
	case c.msgs <- m:
	case <-ctx.Done():
	}
}
