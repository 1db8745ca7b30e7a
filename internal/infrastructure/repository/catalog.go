package repository

import (
	"context"
	"sync"

	"github.com/hilthontt/melody/internal/domain"
)

type catalogRepository struct {
	albums     map[string]*domain.Album
	albumOrder []string
	tracks     map[string]*domain.Track
	trackOrder []string
	mu         *sync.RWMutex
}

func NewCatalogRepository() domain.CatalogRepository {
	return &catalogRepository{
		albums: make(map[string]*domain.Album),
		tracks: make(map[string]*domain.Track),
		mu:     &sync.RWMutex{},
	}
}

func (r *catalogRepository) CreateAlbum(ctx context.Context, album *domain.Album) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *album
	r.albums[album.ID] = &stored
	r.albumOrder = append(r.albumOrder, album.ID)
	return nil
}

func (r *catalogRepository) GetAlbum(ctx context.Context, id string) (*domain.Album, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	album, ok := r.albums[id]
	if !ok {
		return nil, domain.ErrAlbumNotFound
	}
	out := *album
	return &out, nil
}

func (r *catalogRepository) ListAlbums(ctx context.Context, offset, limit int) ([]domain.Album, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	albums := []domain.Album{}
	for i := offset; i < len(r.albumOrder) && (limit <= 0 || len(albums) < limit); i++ {
		albums = append(albums, *r.albums[r.albumOrder[i]])
	}
	return albums, nil
}

func (r *catalogRepository) UpdateAlbum(ctx context.Context, album *domain.Album) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.albums[album.ID]; !ok {
		return domain.ErrAlbumNotFound
	}
	stored := *album
	r.albums[album.ID] = &stored
	return nil
}

func (r *catalogRepository) CreateTrack(ctx context.Context, track *domain.Track) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.albums[track.AlbumID]; !ok {
		return domain.ErrAlbumNotFound
	}
	stored := *track
	r.tracks[track.ID] = &stored
	r.trackOrder = append(r.trackOrder, track.ID)
	return nil
}

func (r *catalogRepository) GetTrack(ctx context.Context, id string) (*domain.Track, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	track, ok := r.tracks[id]
	if !ok {
		return nil, domain.ErrTrackNotFound
	}
	out := *track
	return &out, nil
}

func (r *catalogRepository) ListTracksByAlbum(ctx context.Context, albumID string) ([]domain.Track, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tracks := []domain.Track{}
	for _, id := range r.trackOrder {
		if t := r.tracks[id]; t.AlbumID == albumID {
			tracks = append(tracks, *t)
		}
	}
	return tracks, nil
}

func (r *catalogRepository) UpdateTrack(ctx context.Context, track *domain.Track) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tracks[track.ID]; !ok {
		return domain.ErrTrackNotFound
	}
	stored := *track
	r.tracks[track.ID] = &stored
	return nil
}
