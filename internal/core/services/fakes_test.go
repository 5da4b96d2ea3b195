package services

import (
	"context"
	"sync"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

type catalogReply struct {
	raw string
	err error
}

// scriptedCatalog replays canned replies per query. Once a query's script
// runs out its last reply repeats. Unknown queries return an empty listing.
type scriptedCatalog struct {
	mu      sync.Mutex
	replies map[string][]catalogReply
	calls   []string
}

func newScriptedCatalog() *scriptedCatalog {
	return &scriptedCatalog{replies: map[string][]catalogReply{}}
}

func (c *scriptedCatalog) on(query string, replies ...catalogReply) *scriptedCatalog {
	c.replies[query] = append(c.replies[query], replies...)
	return c
}

func (c *scriptedCatalog) Search(ctx context.Context, query string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, query)
	script := c.replies[query]
	if len(script) == 0 {
		return "", nil
	}
	reply := script[0]
	if len(script) > 1 {
		c.replies[query] = script[1:]
	}
	return reply.raw, reply.err
}

func (c *scriptedCatalog) callsFor(query string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, q := range c.calls {
		if q == query {
			n++
		}
	}
	return n
}

type memoryJournal struct {
	mu      sync.Mutex
	entries []domain.JournalEntry
}

func (j *memoryJournal) Record(ctx context.Context, entry domain.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
	return nil
}
