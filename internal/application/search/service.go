package search

import (
	"context"
	"strings"

	"github.com/hilthontt/melody/internal/domain"
)

const DefaultLimit = 20

type Service struct {
	index domain.SearchIndex
}

func NewService(index domain.SearchIndex) *Service {
	return &Service{index: index}
}

// Search trims the query and caps unbounded requests at DefaultLimit.
func (s *Service) Search(ctx context.Context, text string, kind domain.SearchKind, limit int) ([]domain.SearchEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptySearchQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return s.index.Search(ctx, domain.SearchQuery{Text: text, Kind: kind, Limit: limit})
}
