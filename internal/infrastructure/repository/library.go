package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/hilthontt/melody/internal/domain"
)

type libraryRepository struct {
	playlists      map[string]*domain.Playlist
	playlistOrder  []string
	playlistTracks map[string][]domain.PlaylistTrack // PlaylistID -> tracks by position
	favorites      []domain.FavoriteTrack
	mu             *sync.RWMutex
}

func NewLibraryRepository() domain.LibraryRepository {
	return &libraryRepository{
		playlists:      make(map[string]*domain.Playlist),
		playlistTracks: make(map[string][]domain.PlaylistTrack),
		mu:             &sync.RWMutex{},
	}
}

func (r *libraryRepository) CreatePlaylist(ctx context.Context, playlist *domain.Playlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *playlist
	r.playlists[playlist.ID] = &stored
	r.playlistOrder = append(r.playlistOrder, playlist.ID)
	return nil
}

func (r *libraryRepository) GetPlaylist(ctx context.Context, id string) (*domain.Playlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	playlist, ok := r.playlists[id]
	if !ok {
		return nil, domain.ErrPlaylistNotFound
	}
	out := *playlist
	return &out, nil
}

func (r *libraryRepository) ListPlaylists(ctx context.Context, ownerID string) ([]domain.Playlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	playlists := []domain.Playlist{}
	for _, id := range r.playlistOrder {
		if p := r.playlists[id]; p.OwnerID == ownerID {
			playlists = append(playlists, *p)
		}
	}
	return playlists, nil
}

func (r *libraryRepository) AddTrack(ctx context.Context, playlistID, trackID string, position *int) (*domain.PlaylistTrack, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.playlists[playlistID]; !ok {
		return nil, domain.ErrPlaylistNotFound
	}

	tracks := r.playlistTracks[playlistID]
	for _, t := range tracks {
		if t.TrackID == trackID {
			return nil, domain.ErrTrackInPlaylist
		}
	}

	pos := 0
	if position != nil {
		pos = *position
	} else if len(tracks) > 0 {
		pos = tracks[len(tracks)-1].Position + 1
	}

	entry := domain.PlaylistTrack{PlaylistID: playlistID, TrackID: trackID, Position: pos}
	tracks = append(tracks, entry)
	sort.SliceStable(tracks, func(i, j int) bool { return tracks[i].Position < tracks[j].Position })
	r.playlistTracks[playlistID] = tracks

	return &entry, nil
}

func (r *libraryRepository) ListTracks(ctx context.Context, playlistID string) ([]domain.PlaylistTrack, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.PlaylistTrack, len(r.playlistTracks[playlistID]))
	copy(out, r.playlistTracks[playlistID])
	return out, nil
}

func (r *libraryRepository) AddFavorite(ctx context.Context, fav *domain.FavoriteTrack) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.favorites {
		if f.UserID == fav.UserID && f.TrackID == fav.TrackID {
			return domain.ErrFavoriteExists
		}
	}
	r.favorites = append(r.favorites, *fav)
	return nil
}

func (r *libraryRepository) ListFavorites(ctx context.Context, userID string) ([]domain.FavoriteTrack, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	favs := []domain.FavoriteTrack{}
	for _, f := range r.favorites {
		if f.UserID == userID {
			favs = append(favs, f)
		}
	}
	return favs, nil
}

func (r *libraryRepository) RemoveFavorite(ctx context.Context, userID, trackID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, f := range r.favorites {
		if f.UserID == userID && f.TrackID == trackID {
			r.favorites = append(r.favorites[:i], r.favorites[i+1:]...)
			return nil
		}
	}
	return domain.ErrFavoriteNotFound
}
