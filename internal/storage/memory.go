package storage

import (
	"context"
	"sync"

	"cadlayout/internal/model"
)

type MemoryStore struct {
	mu            sync.RWMutex
	initialized   bool
	runs          map[string]model.RunRecord
	generations   map[string][]model.GenerationDiagnostics
	distributions map[string]model.Distribution
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.generations = make(map[string][]model.GenerationDiagnostics)
	s.distributions = make(map[string]model.Distribution)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sortRuns(runs)
	return runs, nil
}

func (s *MemoryStore) SaveGenerations(_ context.Context, runID string, diagnostics []model.GenerationDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	s.generations[runID] = cloneGenerations(diagnostics)
	return nil
}

func (s *MemoryStore) GetGenerations(_ context.Context, runID string) ([]model.GenerationDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	diagnostics, ok := s.generations[runID]
	if !ok {
		return nil, false, nil
	}
	return cloneGenerations(diagnostics), true, nil
}

func (s *MemoryStore) SaveDistribution(_ context.Context, runID string, distribution model.Distribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	s.distributions[runID] = cloneDistribution(distribution)
	return nil
}

func (s *MemoryStore) GetDistribution(_ context.Context, runID string) (model.Distribution, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	distribution, ok := s.distributions[runID]
	if !ok {
		return model.Distribution{}, false, nil
	}
	return cloneDistribution(distribution), true, nil
}
