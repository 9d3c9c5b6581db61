// Package runcache retains recent solve results in memory so the apply step
// can reference a prior run by id without the client re-sending the payload.
// Retention is best effort: apply also accepts assignments in the request
// body, so a cache miss is never fatal.
package runcache

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bstan/leaguesched/internal/schedule"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

// realClock implements Clock using the system time.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type entry struct {
	result   *schedule.SolveResult
	storedAt time.Time
}

// Cache is a TTL-bounded, mutex-guarded store of solve results keyed by run
// id, with a secondary index by caller-supplied idempotency key.
type Cache struct {
	mu          sync.Mutex
	ttl         time.Duration
	clock       Clock
	byRunID     map[string]entry
	byIdemKey   map[string]string // idempotency key -> run id
	idemByRunID map[string]string // run id -> idempotency key, for sweep
}

// New creates a cache retaining results for ttl. A nil clock uses real time.
func New(ttl time.Duration, clock Clock) *Cache {
	if clock == nil {
		clock = realClock{}
	}
	return &Cache{
		ttl:         ttl,
		clock:       clock,
		byRunID:     make(map[string]entry),
		byIdemKey:   make(map[string]string),
		idemByRunID: make(map[string]string),
	}
}

// Put stores a solve result under its run id.
func (c *Cache) Put(result *schedule.SolveResult) {
	if result == nil || result.RunID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byRunID[result.RunID] = entry{result: result, storedAt: c.clock.Now()}
}

// PutIdempotent stores a solve result and maps the idempotency key to it, so
// a retried solve with the same key returns the original proposal.
func (c *Cache) PutIdempotent(key string, result *schedule.SolveResult) {
	if result == nil || result.RunID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byRunID[result.RunID] = entry{result: result, storedAt: c.clock.Now()}
	if key != "" {
		c.byIdemKey[key] = result.RunID
		c.idemByRunID[result.RunID] = key
	}
}

// Get returns the cached result for a run id, or nil if absent or expired.
func (c *Cache) Get(runID string) *schedule.SolveResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byRunID[runID]
	if !ok || c.expired(e) {
		return nil
	}
	return e.result
}

// GetIdempotent returns the cached result for an idempotency key, or nil.
func (c *Cache) GetIdempotent(key string) *schedule.SolveResult {
	if key == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	runID, ok := c.byIdemKey[key]
	if !ok {
		return nil
	}
	e, ok := c.byRunID[runID]
	if !ok || c.expired(e) {
		return nil
	}
	return e.result
}

// Sweep removes expired runs and returns how many were evicted.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for runID, e := range c.byRunID {
		if !c.expired(e) {
			continue
		}
		delete(c.byRunID, runID)
		if key, ok := c.idemByRunID[runID]; ok {
			delete(c.byIdemKey, key)
			delete(c.idemByRunID, runID)
		}
		evicted++
	}
	if evicted > 0 {
		log.Debug().Int("evicted", evicted).Msg("Swept expired solve runs")
	}
	return evicted
}

// Len reports the number of retained runs.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byRunID)
}

func (c *Cache) expired(e entry) bool {
	return c.ttl > 0 && c.clock.Now().Sub(e.storedAt) >= c.ttl
}
