package library

import (
	"context"

	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/infrastructure/collab"
	"github.com/hilthontt/melody/internal/infrastructure/contracts"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/infrastructure/messaging"
)

type Service struct {
	repo      domain.LibraryRepository
	catalog   collab.EntityExistenceChecker
	publisher messaging.EventPublisher
	logger    logging.Logger
}

func NewService(
	repo domain.LibraryRepository,
	catalog collab.EntityExistenceChecker,
	publisher messaging.EventPublisher,
	logger logging.Logger,
) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) CreatePlaylist(ctx context.Context, ownerID, title string, isPublic bool) (*domain.Playlist, error) {
	playlist := domain.NewPlaylist(ownerID, title, isPublic)
	if err := s.repo.CreatePlaylist(ctx, playlist); err != nil {
		return nil, err
	}

	messaging.PublishOrLog(ctx, s.publisher, s.logger, contracts.PlaylistCreated, contracts.NewPayload(
		contracts.F("playlist_id", playlist.ID),
		contracts.F("owner_id", playlist.OwnerID),
	))
	return playlist, nil
}

func (s *Service) ListPlaylists(ctx context.Context, ownerID string) ([]domain.Playlist, error) {
	return s.repo.ListPlaylists(ctx, ownerID)
}

// AddTrack requires the catalog to confirm the track exists before anything
// is written. An unreachable catalog rejects the request.
func (s *Service) AddTrack(ctx context.Context, ownerID, playlistID, trackID string, position *int) (*domain.PlaylistTrack, error) {
	playlist, err := s.repo.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if playlist.OwnerID != ownerID {
		return nil, domain.ErrPlaylistNotFound
	}

	if err := collab.RequireTrack(ctx, s.catalog, s.logger, trackID); err != nil {
		return nil, err
	}

	entry, err := s.repo.AddTrack(ctx, playlistID, trackID, position)
	if err != nil {
		return nil, err
	}

	messaging.PublishOrLog(ctx, s.publisher, s.logger, contracts.PlaylistTrackAdded, contracts.NewPayload(
		contracts.F("playlist_id", playlistID),
		contracts.F("track_id", trackID),
		contracts.F("owner_id", ownerID),
	))
	return entry, nil
}

func (s *Service) ListTracks(ctx context.Context, ownerID, playlistID string) ([]domain.PlaylistTrack, error) {
	playlist, err := s.repo.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if playlist.OwnerID != ownerID && !playlist.IsPublic {
		return nil, domain.ErrPlaylistNotFound
	}
	return s.repo.ListTracks(ctx, playlistID)
}

func (s *Service) AddFavorite(ctx context.Context, userID, trackID string) (*domain.FavoriteTrack, error) {
	fav := domain.NewFavoriteTrack(userID, trackID)
	if err := s.repo.AddFavorite(ctx, fav); err != nil {
		return nil, err
	}
	return fav, nil
}

func (s *Service) ListFavorites(ctx context.Context, userID string) ([]domain.FavoriteTrack, error) {
	return s.repo.ListFavorites(ctx, userID)
}

func (s *Service) RemoveFavorite(ctx context.Context, userID, trackID string) error {
	return s.repo.RemoveFavorite(ctx, userID, trackID)
}
