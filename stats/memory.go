package stats

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps counters in process memory. It never expires anything.
type MemoryStore struct {
	mu     sync.Mutex
	total  Counters
	waited time.Duration
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record implements Recorder.
func (s *MemoryStore) Record(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev.Outcome, 1)
	if ev.Outcome == Delayed {
		s.waited += ev.Waited
	}

	return nil
}

// Total returns a copy of the aggregated counters.
func (s *MemoryStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Waited returns the accumulated wait across all delayed admissions.
func (s *MemoryStore) Waited() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waited
}
