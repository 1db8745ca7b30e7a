package domain

import "context"

type SearchKind string

const (
	SearchAlbum SearchKind = "album"
	SearchTrack SearchKind = "track"
)

func ParseSearchKind(s string) (SearchKind, error) {
	switch SearchKind(s) {
	case "":
		return "", nil
	case SearchAlbum, SearchTrack:
		return SearchKind(s), nil
	}
	return "", ErrInvalidSearchKind
}

// SearchEntry is one published catalog item as the search read model sees it.
// Entries are keyed by Kind and ID.
type SearchEntry struct {
	ID         string     `json:"id"`
	Kind       SearchKind `json:"type"`
	Title      string     `json:"title"`
	ArtistName string     `json:"artist_name,omitempty"`
	AlbumID    string     `json:"album_id,omitempty"`
}

// SearchQuery matches entries whose title or artist contains Text, ignoring
// case. An empty Kind matches both kinds; Limit <= 0 means no limit.
type SearchQuery struct {
	Text  string
	Kind  SearchKind
	Limit int
}

type SearchIndex interface {
	Upsert(ctx context.Context, entry *SearchEntry) error
	Search(ctx context.Context, q SearchQuery) ([]SearchEntry, error)
}
