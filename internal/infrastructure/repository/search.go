package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/hilthontt/melody/internal/domain"
)

type searchKey struct {
	kind domain.SearchKind
	id   string
}

type searchIndex struct {
	entries map[searchKey]*domain.SearchEntry
	order   []searchKey
	mu      *sync.RWMutex
}

func NewSearchIndex() domain.SearchIndex {
	return &searchIndex{
		entries: make(map[searchKey]*domain.SearchEntry),
		mu:      &sync.RWMutex{},
	}
}

// Upsert replaces an existing entry in place, so a republished item keeps
// its original rank.
func (r *searchIndex) Upsert(ctx context.Context, entry *domain.SearchEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := searchKey{kind: entry.Kind, id: entry.ID}
	if _, ok := r.entries[key]; !ok {
		r.order = append(r.order, key)
	}
	stored := *entry
	r.entries[key] = &stored
	return nil
}

func (r *searchIndex) Search(ctx context.Context, q domain.SearchQuery) ([]domain.SearchEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	text := strings.ToLower(q.Text)
	results := []domain.SearchEntry{}
	for _, key := range r.order {
		if q.Limit > 0 && len(results) >= q.Limit {
			break
		}
		e := r.entries[key]
		if q.Kind != "" && e.Kind != q.Kind {
			continue
		}
		if strings.Contains(strings.ToLower(e.Title), text) || strings.Contains(strings.ToLower(e.ArtistName), text) {
			results = append(results, *e)
		}
	}
	return results, nil
}
