package services

import (
	"context"
	"sort"
	"sync"

	"portfolio-backend/models"
)

// MemoryViewStore keeps counts in process memory. Counts are lost on restart.
type MemoryViewStore struct {
	mu     sync.RWMutex
	counts map[string]int64
}

var _ ViewStore = (*MemoryViewStore)(nil)

func NewMemoryViewStore() *MemoryViewStore {
	return &MemoryViewStore{counts: map[string]int64{}}
}

func (s *MemoryViewStore) Increment(_ context.Context, slug string) error {
	if slug == "" {
		return ErrEmptySlug
	}
	s.mu.Lock()
	s.counts[slug]++
	s.mu.Unlock()
	return nil
}

// All returns counts sorted by count descending, then slug.
func (s *MemoryViewStore) All(_ context.Context) ([]models.ViewCount, error) {
	s.mu.RLock()
	out := make([]models.ViewCount, 0, len(s.counts))
	for slug, n := range s.counts {
		out = append(out, models.ViewCount{Slug: slug, Count: n})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Slug < out[j].Slug
	})
	return out, nil
}

func (s *MemoryViewStore) Get(_ context.Context, slug string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[slug], nil
}

func (s *MemoryViewStore) Ping(context.Context) error { return nil }
