package testkit

import (
	"context"
	"fmt"
	"sync"

	"schedrisk/domain/core"
	"schedrisk/domain/risk"
)

// InMemoryResultStore is a ports.ResultStore fake for tests.
type InMemoryResultStore struct {
	mu        sync.Mutex
	summaries []risk.RunSummary
}

// NewInMemoryResultStore creates an empty in-memory store.
func NewInMemoryResultStore() *InMemoryResultStore {
	return &InMemoryResultStore{}
}

// SaveRunSummary appends the summary.
func (s *InMemoryResultStore) SaveRunSummary(_ context.Context, summary risk.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append(s.summaries, summary)
	return nil
}

// GetRunSummary fetches a stored summary by run ID.
func (s *InMemoryResultStore) GetRunSummary(_ context.Context, runID core.RunID) (*risk.RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.summaries {
		if s.summaries[i].RunID == runID {
			summary := s.summaries[i]
			return &summary, nil
		}
	}
	return nil, fmt.Errorf("run summary %s not found", runID)
}

// ListRunSummaries returns stored summaries, newest last.
func (s *InMemoryResultStore) ListRunSummaries(_ context.Context, scenario string, limit int) ([]risk.RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []risk.RunSummary
	for _, summary := range s.summaries {
		if scenario != "" && summary.Scenario != scenario {
			continue
		}
		out = append(out, summary)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Len reports how many summaries were saved.
func (s *InMemoryResultStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.summaries)
}
