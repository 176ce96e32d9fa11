package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"lecture-quiz/api/internal/quiz"
)

// MemoryRepo is the QuizRepo used when no database is configured.
type MemoryRepo struct {
	mu   sync.RWMutex
	sets map[string]quiz.Set
	now  func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{sets: map[string]quiz.Set{}, now: time.Now}
}

func (m *MemoryRepo) Save(_ context.Context, set quiz.Set) error {
	if set.ID == "" {
		return errors.New("quiz set without id")
	}
	if set.CreatedAt.IsZero() {
		set.CreatedAt = m.now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.sets[set.ID]; ok {
		set.CreatedAt = old.CreatedAt
	}
	m.sets[set.ID] = set
	return nil
}

func (m *MemoryRepo) Get(_ context.Context, id string) (quiz.Set, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set, ok := m.sets[id]
	if !ok {
		return quiz.Set{}, ErrNotFound
	}
	return set, nil
}

func (m *MemoryRepo) FindLatestByKey(_ context.Context, key string, maxAge time.Duration) (quiz.Set, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var (
		best  quiz.Set
		found bool
	)
	for _, s := range m.sets {
		if s.RequestKey != key {
			continue
		}
		if !found || s.CreatedAt.After(best.CreatedAt) {
			best, found = s, true
		}
	}
	if !found || (maxAge > 0 && m.now().Sub(best.CreatedAt) > maxAge) {
		return quiz.Set{}, ErrNotFound
	}
	return best, nil
}

func (m *MemoryRepo) PurgeOlderThan(_ context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errBadAge
	}
	cutoff := m.now().Add(-olderThan)
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sets {
		if s.CreatedAt.Before(cutoff) {
			delete(m.sets, id)
			n++
		}
	}
	return n, nil
}
