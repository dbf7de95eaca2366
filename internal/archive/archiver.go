// internal/archive/archiver.go
package archive

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/ratedrps/ratedrps-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Source yields queued match records, blocking up to timeout.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (models.MatchRecord, bool, error)
}

// Sink persists a batch of records.
type Sink interface {
	InsertMatches(ctx context.Context, recs []models.MatchRecord) error
}

// Options tune batching. Zero values take the defaults.
type Options struct {
	BatchSize  int
	FlushEvery time.Duration
	PopTimeout time.Duration
}

// Archiver drains a Source into a Sink in batches. A batch is written when it reaches
// BatchSize, on every FlushEvery tick, and once more on shutdown.
type Archiver struct {
	source Source
	sink   Sink
	logger *logrus.Logger
	opts   Options

	mu    sync.Mutex
	batch []models.MatchRecord
}

func New(source Source, sink Sink, logger *logrus.Logger, opts Options) *Archiver {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.FlushEvery <= 0 {
		opts.FlushEvery = 2 * time.Second
	}
	if opts.PopTimeout <= 0 {
		opts.PopTimeout = 3 * time.Second
	}
	return &Archiver{
		source: source,
		sink:   sink,
		logger: logger,
		opts:   opts,
		batch:  make([]models.MatchRecord, 0, opts.BatchSize),
	}
}

// Run consumes until ctx is cancelled, then flushes what is left.
func (a *Archiver) Run(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(a.opts.FlushEvery),
		gocron.NewTask(func() { a.Flush(ctx) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule flush: %w", err)
	}
	sched.Start()

	a.logger.Infof("archiver started (batch %d, flush every %s)", a.opts.BatchSize, a.opts.FlushEvery)
	for {
		if ctx.Err() != nil {
			break
		}
		rec, ok, err := a.source.Pop(ctx, a.opts.PopTimeout)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			a.logger.Errorf("archiver: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		if ok {
			a.Add(ctx, rec)
		}
	}

	// Shutdown waits for a running tick, so the final flush sees everything.
	if err := sched.Shutdown(); err != nil {
		a.logger.Warnf("archiver: scheduler shutdown: %v", err)
	}
	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.Flush(flushCtx)
	a.logger.Info("archiver stopped")
	return nil
}

// Add buffers rec and flushes if the batch is full.
func (a *Archiver) Add(ctx context.Context, rec models.MatchRecord) {
	a.mu.Lock()
	a.batch = append(a.batch, rec)
	full := len(a.batch) >= a.opts.BatchSize
	a.mu.Unlock()

	if full {
		a.Flush(ctx)
	}
}

// Flush writes the buffered batch and returns how many records were written. On failure
// the records go back to the front of the buffer for the next attempt.
func (a *Archiver) Flush(ctx context.Context) int {
	a.mu.Lock()
	if len(a.batch) == 0 {
		a.mu.Unlock()
		return 0
	}
	pending := a.batch
	a.batch = make([]models.MatchRecord, 0, a.opts.BatchSize)
	a.mu.Unlock()

	if err := a.sink.InsertMatches(ctx, pending); err != nil {
		a.logger.Errorf("archiver: flush of %d matches failed: %v", len(pending), err)
		a.mu.Lock()
		a.batch = append(pending, a.batch...)
		a.mu.Unlock()
		return 0
	}
	a.logger.Debugf("archiver: flushed %d matches", len(pending))
	return len(pending)
}

// Pending is the number of buffered, unwritten records.
func (a *Archiver) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.batch)
}
