// Package pool coordinates a set of isolated workers racing the same
// randomized puzzle search. The coordinator owns all mutable state (the
// generation epoch, the remaining-worker counter, the pending result) inside
// a single control loop; workers only communicate through epoch-tagged
// messages, and anything tagged with a superseded epoch is discarded.
package pool

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nonoforge/nonoforge/internal/generator"
	"github.com/nonoforge/nonoforge/internal/metrics"
	"github.com/nonoforge/nonoforge/internal/solver"
	"github.com/nonoforge/nonoforge/pkg/models"
)

const (
	msgBufferSize   = 64
	eventBufferSize = 256
)

// searchFunc matches generator.Search; tests substitute a stub.
type searchFunc func(ctx context.Context, p generator.Params, onAttempt func(int, time.Duration)) (*models.Puzzle, error)

// Coordinator races N workers per generation request and resolves on the
// first success. At most one generation is in flight at a time.
type Coordinator struct {
	logger  *slog.Logger
	metrics *metrics.Collector
	search  searchFunc

	cmds   chan any
	msgs   chan workerMsg
	events chan Event
	done   chan struct{}

	workerWG  sync.WaitGroup
	closeOnce sync.Once
}

// New starts a coordinator with the given worker count, clamped to
// [1, runtime.NumCPU()].
func New(workerCount int, logger *slog.Logger, collector *metrics.Collector) *Coordinator {
	return newCoordinator(workerCount, logger, collector, generator.Search)
}

func newCoordinator(workerCount int, logger *slog.Logger, collector *metrics.Collector, search searchFunc) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = metrics.NewCollector(logger)
	}

	c := &Coordinator{
		logger:  logger,
		metrics: collector,
		search:  search,
		cmds:    make(chan any),
		msgs:    make(chan workerMsg, msgBufferSize),
		events:  make(chan Event, eventBufferSize),
		done:    make(chan struct{}),
	}
	go c.run(clampWorkers(workerCount))
	return c
}

// Events returns the push notification stream. Sends are lossy: a slow
// observer drops progress events rather than stalling the control loop. The
// channel is closed by Close.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

// Generate dispatches a generation request to every worker and returns a
// channel that settles exactly once. It rejects synchronously with ErrBusy
// while another generation is in flight.
func (c *Coordinator) Generate(size int, opts Options) (<-chan Result, error) {
	if size < 1 || size > solver.MaxLineLength {
		return nil, fmt.Errorf("size must be in [1, %d], got %d", solver.MaxLineLength, size)
	}
	if opts.MaxAttemptsPerWorker <= 0 {
		opts.MaxAttemptsPerWorker = DefaultMaxAttempts
	}
	if opts.ProgressPerSecond == 0 {
		opts.ProgressPerSecond = DefaultProgressPerSecond
	}

	cmd := generateCmd{size: size, opts: opts, reply: make(chan generateReply, 1)}
	select {
	case c.cmds <- cmd:
	case <-c.done:
		return nil, ErrClosed
	}
	reply := <-cmd.reply
	return reply.result, reply.err
}

// Cancel aborts the in-flight generation, settling its result via
// ErrCanceled. Calling it while idle is a no-op.
func (c *Coordinator) Cancel() {
	cmd := cancelCmd{done: make(chan struct{})}
	select {
	case c.cmds <- cmd:
		<-cmd.done
	case <-c.done:
	}
}

// Resize tears down and recreates the worker set at the requested count. It
// fails with ErrBusy while a generation is in flight.
func (c *Coordinator) Resize(workerCount int) error {
	cmd := resizeCmd{count: clampWorkers(workerCount), reply: make(chan error, 1)}
	select {
	case c.cmds <- cmd:
		return <-cmd.reply
	case <-c.done:
		return ErrClosed
	}
}

// Close cancels any in-flight generation, tears down all workers, and closes
// the event stream. Safe to call more than once.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		cmd := closeCmd{done: make(chan struct{})}
		select {
		case c.cmds <- cmd:
			<-cmd.done
		case <-c.done:
		}
	})
}

type generateCmd struct {
	size  int
	opts  Options
	reply chan generateReply
}

type generateReply struct {
	result <-chan Result
	err    error
}

type cancelCmd struct{ done chan struct{} }

type resizeCmd struct {
	count int
	reply chan error
}

type closeCmd struct{ done chan struct{} }

// pending tracks the single live generation epoch.
type pending struct {
	id          string
	epoch       uint64
	remaining   int
	cancel      context.CancelFunc
	result      chan Result
	failures    []string
	started     time.Time
	size        int
	maxAttempts int
}

func (c *Coordinator) run(workerCount int) {
	workers := c.spawnWorkers(workerCount)
	seeds := rand.New(rand.NewSource(time.Now().UnixNano()))

	var epoch uint64
	var cur *pending

	for {
		select {
		case raw := <-c.cmds:
			switch cmd := raw.(type) {
			case generateCmd:
				if cur != nil {
					cmd.reply <- generateReply{err: ErrBusy}
					continue
				}
				epoch++
				cur = c.dispatch(workers, seeds, epoch, cmd.size, cmd.opts)
				cmd.reply <- generateReply{result: cur.result}

			case cancelCmd:
				if cur != nil {
					c.logger.Info("generation cancelled",
						"request_id", cur.id,
						"epoch", cur.epoch)
					cur.cancel()
					cur.result <- Result{Err: ErrCanceled}
					c.metrics.RecordGeneration("cancelled", time.Since(cur.started))
					workers = c.recycle(workers)
					cur = nil
				}
				close(cmd.done)

			case resizeCmd:
				if cur != nil {
					cmd.reply <- ErrBusy
					continue
				}
				c.teardown(workers)
				workers = c.spawnWorkers(cmd.count)
				cmd.reply <- nil

			case closeCmd:
				close(c.done)
				if cur != nil {
					cur.cancel()
					cur.result <- Result{Err: ErrClosed}
					cur = nil
				}
				c.teardown(workers)
				c.workerWG.Wait()
				close(c.events)
				close(cmd.done)
				return
			}

		case m := <-c.msgs:
			if cur == nil || m.epoch != cur.epoch {
				c.metrics.RecordStaleMessage()
				c.logger.Debug("discarding stale worker message",
					"msg_epoch", m.epoch)
				continue
			}

			switch m.kind {
			case msgProgress:
				c.emit(Event{
					Kind:        EventProgress,
					RequestID:   cur.id,
					Worker:      m.worker,
					Attempt:     m.attempt,
					MaxAttempts: cur.maxAttempts,
					Elapsed:     m.elapsed,
				})

			case msgSuccess:
				c.logger.Info("puzzle found",
					"request_id", cur.id,
					"worker", m.worker,
					"size", cur.size,
					"duration", time.Since(cur.started))
				cur.result <- Result{Puzzle: m.puzzle}
				c.emit(Event{Kind: EventResult, RequestID: cur.id, Worker: m.worker, Puzzle: m.puzzle})
				c.metrics.RecordGeneration("solved", time.Since(cur.started))
				cur.cancel()
				workers = c.recycle(workers)
				cur = nil

			case msgFailure, msgCrash:
				cur.remaining--
				cur.failures = append(cur.failures, m.err.Error())
				if m.kind == msgCrash {
					c.logger.Error("worker crashed",
						"request_id", cur.id,
						"worker", m.worker,
						"error", m.err)
				}
				if cur.remaining > 0 {
					continue
				}
				err := fmt.Errorf("all workers failed for size %d: %s",
					cur.size, strings.Join(cur.failures, "; "))
				c.logger.Warn("generation failed",
					"request_id", cur.id,
					"error", err)
				cur.result <- Result{Err: err}
				c.emit(Event{Kind: EventError, RequestID: cur.id, Message: err.Error()})
				c.metrics.RecordGeneration("exhausted", time.Since(cur.started))
				cur.cancel()
				workers = c.recycle(workers)
				cur = nil
			}
		}
	}
}

// dispatch starts a new epoch: one task per worker, each with a distinct
// index and rng seed.
func (c *Coordinator) dispatch(workers []*worker, seeds *rand.Rand, epoch uint64, size int, opts Options) *pending {
	ctx, cancel := context.WithCancel(context.Background())
	p := &pending{
		id:          uuid.NewString(),
		epoch:       epoch,
		remaining:   len(workers),
		cancel:      cancel,
		result:      make(chan Result, 1),
		started:     time.Now(),
		size:        size,
		maxAttempts: opts.MaxAttemptsPerWorker,
	}

	name := opts.Name
	if name == "" {
		name = "nonogram-" + p.id[:8]
	}

	c.logger.Info("generation started",
		"request_id", p.id,
		"epoch", epoch,
		"size", size,
		"workers", len(workers),
		"max_attempts", opts.MaxAttemptsPerWorker,
		"require_unique", opts.RequireUnique)

	for _, w := range workers {
		w.tasks <- task{
			ctx:           ctx,
			epoch:         epoch,
			requestID:     p.id,
			size:          size,
			maxAttempts:   opts.MaxAttemptsPerWorker,
			requireUnique: opts.RequireUnique,
			band:          opts.Band,
			name:          name,
			seed:          seeds.Int63(),
			progressRate:  opts.ProgressPerSecond,
		}
	}
	return p
}

func (c *Coordinator) spawnWorkers(count int) []*worker {
	workers := make([]*worker, count)
	for i := range workers {
		w := &worker{index: i, tasks: make(chan task, 1)}
		workers[i] = w
		c.workerWG.Add(1)
		go func() {
			defer c.workerWG.Done()
			c.runWorker(w)
		}()
	}
	c.metrics.SetActiveWorkers(count)
	return workers
}

// recycle tears down the worker set and rebuilds it at the same count, so no
// worker carries state from one epoch into the next.
func (c *Coordinator) recycle(workers []*worker) []*worker {
	count := len(workers)
	c.teardown(workers)
	return c.spawnWorkers(count)
}

func (c *Coordinator) teardown(workers []*worker) {
	for _, w := range workers {
		close(w.tasks)
	}
	c.metrics.SetActiveWorkers(0)
}

// emit pushes an event without ever blocking the control loop.
func (c *Coordinator) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
	}
}

func clampWorkers(n int) int {
	if n < 1 {
		return 1
	}
	if cpus := runtime.NumCPU(); n > cpus {
		return cpus
	}
	return n
}
