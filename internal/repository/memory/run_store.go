package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/repository"
)

// RunStore keeps reorder runs for the lifetime of the process.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*domain.ReorderRun
}

func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string]*domain.ReorderRun)}
}

func (s *RunStore) SaveRun(ctx context.Context, run *domain.ReorderRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = copyRun(run)
	return nil
}

func (s *RunStore) GetRun(ctx context.Context, id string) (*domain.ReorderRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrRunNotFound, id)
	}
	return copyRun(run), nil
}

// ListRuns returns the most recent runs first.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]*domain.ReorderRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]*domain.ReorderRun, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, copyRun(run))
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func copyRun(run *domain.ReorderRun) *domain.ReorderRun {
	out := *run
	out.Orders = append([]domain.Order(nil), run.Orders...)
	out.Escalations = append([]domain.Escalation(nil), run.Escalations...)
	return &out
}
