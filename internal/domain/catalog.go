package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Album struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	ArtistName  string     `json:"artist_name"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	CoverURL    string     `json:"cover_url,omitempty"`
	IsPublished bool       `json:"is_published"`
}

func NewAlbum(title, artist string, releaseDate *time.Time, coverURL string) *Album {
	return &Album{
		ID:          uuid.NewString(),
		Title:       title,
		ArtistName:  artist,
		ReleaseDate: releaseDate,
		CoverURL:    coverURL,
	}
}

type AlbumPatch struct {
	Title       *string
	ArtistName  *string
	ReleaseDate *time.Time
	CoverURL    *string
}

func (a *Album) Apply(patch AlbumPatch) {
	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.ArtistName != nil {
		a.ArtistName = *patch.ArtistName
	}
	if patch.ReleaseDate != nil {
		a.ReleaseDate = patch.ReleaseDate
	}
	if patch.CoverURL != nil {
		a.CoverURL = *patch.CoverURL
	}
}

type Track struct {
	ID          string `json:"id"`
	AlbumID     string `json:"album_id"`
	Title       string `json:"title"`
	DurationSec int    `json:"duration_sec"`
	FilePath    string `json:"file_path,omitempty"`
	IsPublished bool   `json:"is_published"`
}

func NewTrack(albumID, title string, durationSec int, filePath string) *Track {
	return &Track{
		ID:          uuid.NewString(),
		AlbumID:     albumID,
		Title:       title,
		DurationSec: durationSec,
		FilePath:    filePath,
	}
}

type TrackPatch struct {
	Title       *string
	DurationSec *int
	FilePath    *string
}

func (t *Track) Apply(patch TrackPatch) {
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.DurationSec != nil {
		t.DurationSec = *patch.DurationSec
	}
	if patch.FilePath != nil {
		t.FilePath = *patch.FilePath
	}
}

type CatalogRepository interface {
	CreateAlbum(ctx context.Context, album *Album) error
	GetAlbum(ctx context.Context, id string) (*Album, error)
	ListAlbums(ctx context.Context, offset, limit int) ([]Album, error)
	UpdateAlbum(ctx context.Context, album *Album) error

	CreateTrack(ctx context.Context, track *Track) error
	GetTrack(ctx context.Context, id string) (*Track, error)
	ListTracksByAlbum(ctx context.Context, albumID string) ([]Track, error)
	UpdateTrack(ctx context.Context, track *Track) error
}
