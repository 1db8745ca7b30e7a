package playback

import (
	"context"

	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/infrastructure/collab"
	"github.com/hilthontt/melody/internal/infrastructure/contracts"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/infrastructure/messaging"
)

type StartInput struct {
	UserID      string
	TrackID     string
	Volume      *int
	ContextType string
	ContextID   string
}

type Service struct {
	sessions  domain.PlaybackRepository
	catalog   collab.EntityExistenceChecker
	publisher messaging.EventPublisher
	logger    logging.Logger
}

func NewService(
	sessions domain.PlaybackRepository,
	catalog collab.EntityExistenceChecker,
	publisher messaging.EventPublisher,
	logger logging.Logger,
) *Service {
	return &Service{
		sessions:  sessions,
		catalog:   catalog,
		publisher: publisher,
		logger:    logger,
	}
}

// Start opens a playing session. The track must be confirmed by the catalog
// first; an unreachable catalog rejects the request.
func (s *Service) Start(ctx context.Context, in StartInput) (*domain.PlaybackSession, error) {
	volume := domain.DefaultVolume
	if in.Volume != nil {
		volume = *in.Volume
	}
	if err := domain.ValidateVolume(volume); err != nil {
		return nil, err
	}

	if err := collab.RequireTrack(ctx, s.catalog, s.logger, in.TrackID); err != nil {
		return nil, err
	}

	session, err := domain.NewPlaybackSession(in.UserID, in.TrackID, volume, in.ContextType, in.ContextID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	messaging.PublishOrLog(ctx, s.publisher, s.logger, contracts.TrackStarted, sessionPayload(session))
	return session, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.PlaybackSession, error) {
	return s.sessions.Get(ctx, id)
}

func (s *Service) Pause(ctx context.Context, id string) (*domain.PlaybackSession, error) {
	return s.transition(ctx, id, domain.StatusPaused)
}

func (s *Service) Resume(ctx context.Context, id string) (*domain.PlaybackSession, error) {
	return s.transition(ctx, id, domain.StatusPlaying)
}

func (s *Service) Stop(ctx context.Context, id string) (*domain.PlaybackSession, error) {
	return s.finish(ctx, id)
}

// Skip finishes the session exactly like Stop; picking the next track is up
// to the client.
func (s *Service) Skip(ctx context.Context, id string) (*domain.PlaybackSession, error) {
	return s.finish(ctx, id)
}

func (s *Service) SetVolume(ctx context.Context, id string, volume int) (*domain.PlaybackSession, error) {
	if err := domain.ValidateVolume(volume); err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := session.SetVolume(volume); err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) finish(ctx context.Context, id string) (*domain.PlaybackSession, error) {
	session, err := s.transition(ctx, id, domain.StatusFinished)
	if err != nil {
		return nil, err
	}

	messaging.PublishOrLog(ctx, s.publisher, s.logger, contracts.TrackFinished, sessionPayload(session))
	return session, nil
}

func (s *Service) transition(ctx context.Context, id string, status domain.PlaybackStatus) (*domain.PlaybackSession, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := session.Transition(status); err != nil {
		return nil, err
	}
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func sessionPayload(session *domain.PlaybackSession) contracts.Payload {
	return contracts.NewPayload(
		contracts.F("session_id", session.ID),
		contracts.F("user_id", session.UserID),
		contracts.F("track_id", session.TrackID),
	)
}
