package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/metrics"
)

type recordingJournal struct {
	mu      sync.Mutex
	ids     []string
	err     error
	release chan struct{}
}

func (j *recordingJournal) Record(ctx context.Context, entry domain.JournalEntry) error {
	if j.release != nil {
		<-j.release
	}
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("expected a write deadline")
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.ids = append(j.ids, entry.ID)
	return nil
}

func (j *recordingJournal) recorded() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.ids...)
}

func TestPool_WritesQueuedEntriesBeforeStop(t *testing.T) {
	journal := &recordingJournal{}
	pool := NewPool(journal, 2, 10, nil)
	pool.Start()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, pool.Record(context.Background(), domain.JournalEntry{ID: id}))
	}
	pool.Stop()

	assert.ElementsMatch(t, []string{"a", "b", "c"}, journal.recorded())
}

func TestPool_DropsWhenQueueFull(t *testing.T) {
	journal := &recordingJournal{release: make(chan struct{})}
	pool := NewPool(journal, 1, 1, nil)

	before := testutil.ToFloat64(metrics.JournalDroppedTotal)

	// Workers are not started yet, so the single queue slot fills up.
	require.NoError(t, pool.Record(context.Background(), domain.JournalEntry{ID: "kept"}))
	require.NoError(t, pool.Record(context.Background(), domain.JournalEntry{ID: "dropped"}))

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.JournalDroppedTotal))

	pool.Start()
	close(journal.release)
	pool.Stop()

	assert.Equal(t, []string{"kept"}, journal.recorded())
}

func TestPool_RecordAfterStop(t *testing.T) {
	pool := NewPool(&recordingJournal{}, 1, 1, nil)
	pool.Start()
	pool.Stop()
	pool.Stop()

	err := pool.Record(context.Background(), domain.JournalEntry{ID: "late"})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestPool_WriteErrorIsLoggedNotFatal(t *testing.T) {
	journal := &recordingJournal{err: errors.New("disk full")}
	pool := NewPool(journal, 1, 2, nil)
	pool.Start()

	require.NoError(t, pool.Record(context.Background(), domain.JournalEntry{ID: "x"}))
	pool.Stop()

	assert.Empty(t, journal.recorded())
}

func TestNewPool_ClampsSizes(t *testing.T) {
	pool := NewPool(&recordingJournal{}, 0, 0, nil)
	assert.Equal(t, 1, pool.workers)
	assert.Equal(t, 1, cap(pool.jobs))
}
