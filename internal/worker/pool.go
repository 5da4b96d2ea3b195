// Package worker writes journal entries in the background so a slow store
// never delays a resolution.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/core/ports"
	"github.com/ewilliams-labs/trackfinder/internal/metrics"
)

const defaultWriteTimeout = 5 * time.Second

// ErrStopped is returned by Record once Stop has been called.
var ErrStopped = errors.New("worker: pool stopped")

var _ ports.ResolutionJournal = (*Pool)(nil)

// Pool manages background workers for journal writes.
type Pool struct {
	journal      ports.ResolutionJournal
	jobs         chan domain.JournalEntry
	workers      int
	writeTimeout time.Duration
	logger       *zap.Logger

	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

// NewPool creates a worker pool with the given worker count and queue size.
func NewPool(journal ports.ResolutionJournal, workers, queueSize int, logger *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		journal:      journal,
		jobs:         make(chan domain.JournalEntry, queueSize),
		workers:      workers,
		writeTimeout: defaultWriteTimeout,
		logger:       logger,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for entry := range p.jobs {
				p.processJob(entry)
			}
		}()
	}
}

// Stop closes the queue and waits for queued entries to be written.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
}

// Record queues entry without blocking. A full queue drops the entry.
func (p *Pool) Record(_ context.Context, entry domain.JournalEntry) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}

	select {
	case p.jobs <- entry:
	default:
		metrics.JournalDroppedTotal.Inc()
		p.logger.Warn("worker: dropping journal entry", zap.String("id", entry.ID))
	}
	return nil
}

func (p *Pool) processJob(entry domain.JournalEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()

	if err := p.journal.Record(ctx, entry); err != nil {
		p.logger.Warn("worker: failed to write journal entry", zap.String("id", entry.ID), zap.Error(err))
		return
	}
	p.logger.Debug("worker: journal entry written", zap.String("id", entry.ID))
}
