package catalog

import (
	"context"
	"time"

	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/infrastructure/contracts"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/infrastructure/messaging"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type CreateAlbumInput struct {
	Title       string
	ArtistName  string
	ReleaseDate *time.Time
	CoverURL    string
}

type CreateTrackInput struct {
	Title       string
	DurationSec int
	FilePath    string
}

type Service struct {
	repo      domain.CatalogRepository
	publisher messaging.EventPublisher
	logger    logging.Logger
}

func NewService(repo domain.CatalogRepository, publisher messaging.EventPublisher, logger logging.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) CreateAlbum(ctx context.Context, in CreateAlbumInput) (*domain.Album, error) {
	album := domain.NewAlbum(in.Title, in.ArtistName, in.ReleaseDate, in.CoverURL)
	if err := s.repo.CreateAlbum(ctx, album); err != nil {
		return nil, err
	}
	return album, nil
}

func (s *Service) GetAlbum(ctx context.Context, id string) (*domain.Album, error) {
	return s.repo.GetAlbum(ctx, id)
}

func (s *Service) ListAlbums(ctx context.Context, offset, limit int) ([]domain.Album, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return s.repo.ListAlbums(ctx, offset, limit)
}

func (s *Service) UpdateAlbum(ctx context.Context, id string, patch domain.AlbumPatch) (*domain.Album, error) {
	album, err := s.repo.GetAlbum(ctx, id)
	if err != nil {
		return nil, err
	}

	album.Apply(patch)
	if err := s.repo.UpdateAlbum(ctx, album); err != nil {
		return nil, err
	}
	return album, nil
}

// PublishAlbum marks the album visible and announces it. Publishing an
// already published album announces it again.
func (s *Service) PublishAlbum(ctx context.Context, id string) (*domain.Album, error) {
	album, err := s.repo.GetAlbum(ctx, id)
	if err != nil {
		return nil, err
	}

	album.IsPublished = true
	if err := s.repo.UpdateAlbum(ctx, album); err != nil {
		return nil, err
	}

	messaging.PublishOrLog(ctx, s.publisher, s.logger, contracts.AlbumPublished, contracts.NewPayload(
		contracts.F("album_id", album.ID),
		contracts.F("title", album.Title),
		contracts.F("artist_name", album.ArtistName),
	))
	return album, nil
}

func (s *Service) ListAlbumTracks(ctx context.Context, albumID string) ([]domain.Track, error) {
	if _, err := s.repo.GetAlbum(ctx, albumID); err != nil {
		return nil, err
	}
	return s.repo.ListTracksByAlbum(ctx, albumID)
}

func (s *Service) CreateTrack(ctx context.Context, albumID string, in CreateTrackInput) (*domain.Track, error) {
	if _, err := s.repo.GetAlbum(ctx, albumID); err != nil {
		return nil, err
	}

	track := domain.NewTrack(albumID, in.Title, in.DurationSec, in.FilePath)
	if err := s.repo.CreateTrack(ctx, track); err != nil {
		return nil, err
	}
	return track, nil
}

func (s *Service) GetTrack(ctx context.Context, id string) (*domain.Track, error) {
	return s.repo.GetTrack(ctx, id)
}

func (s *Service) UpdateTrack(ctx context.Context, id string, patch domain.TrackPatch) (*domain.Track, error) {
	track, err := s.repo.GetTrack(ctx, id)
	if err != nil {
		return nil, err
	}

	track.Apply(patch)
	if err := s.repo.UpdateTrack(ctx, track); err != nil {
		return nil, err
	}
	return track, nil
}

func (s *Service) PublishTrack(ctx context.Context, id string) (*domain.Track, error) {
	track, err := s.repo.GetTrack(ctx, id)
	if err != nil {
		return nil, err
	}

	track.IsPublished = true
	if err := s.repo.UpdateTrack(ctx, track); err != nil {
		return nil, err
	}

	messaging.PublishOrLog(ctx, s.publisher, s.logger, contracts.TrackPublished, contracts.NewPayload(
		contracts.F("track_id", track.ID),
		contracts.F("album_id", track.AlbumID),
		contracts.F("title", track.Title),
	))
	return track, nil
}
