package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("session not found")

type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	m   sync.Map // id -> *Session
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	v, ok := m.m.Load(id)
	if !ok {
		return nil, ErrNotFound
	}
	cp := clone(v.(*Session))
	return cp, nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return errors.New("session: empty id")
	}
	s.UpdatedAt = m.now().UTC()
	m.m.Store(s.ID, clone(s))
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.m.Delete(id)
	return nil
}

// LoadOrNew returns the stored session or a fresh one built by mk.
func LoadOrNew(ctx context.Context, st Store, id string, mk func(id string) *Session) (*Session, error) {
	s, err := st.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return mk(id), nil
	}
	return s, err
}

func clone(s *Session) *Session {
	cp := *s
	cp.Kinds = append(cp.Kinds[:0:0], s.Kinds...)
	cp.Answers = s.Answers.Clone()
	if s.Set != nil {
		set := *s.Set
		cp.Set = &set
	}
	return &cp
}
