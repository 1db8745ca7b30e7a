package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Playlist struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
}

func NewPlaylist(ownerID, title string, isPublic bool) *Playlist {
	return &Playlist{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		IsPublic:  isPublic,
		CreatedAt: time.Now().UTC(),
	}
}

type PlaylistTrack struct {
	PlaylistID string `json:"playlist_id"`
	TrackID    string `json:"track_id"`
	Position   int    `json:"position"`
}

type FavoriteTrack struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TrackID   string    `json:"track_id"`
	CreatedAt time.Time `json:"created_at"`
}

func NewFavoriteTrack(userID, trackID string) *FavoriteTrack {
	return &FavoriteTrack{
		ID:        uuid.NewString(),
		UserID:    userID,
		TrackID:   trackID,
		CreatedAt: time.Now().UTC(),
	}
}

type LibraryRepository interface {
	CreatePlaylist(ctx context.Context, playlist *Playlist) error
	GetPlaylist(ctx context.Context, id string) (*Playlist, error)
	ListPlaylists(ctx context.Context, ownerID string) ([]Playlist, error)
	// AddTrack appends when position is nil, otherwise inserts at *position.
	AddTrack(ctx context.Context, playlistID, trackID string, position *int) (*PlaylistTrack, error)
	ListTracks(ctx context.Context, playlistID string) ([]PlaylistTrack, error)

	AddFavorite(ctx context.Context, fav *FavoriteTrack) error
	ListFavorites(ctx context.Context, userID string) ([]FavoriteTrack, error)
	RemoveFavorite(ctx context.Context, userID, trackID string) error
}
