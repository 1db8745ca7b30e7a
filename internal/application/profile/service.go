package profile

import (
	"context"

	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/infrastructure/contracts"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/infrastructure/messaging"
)

const DefaultRegion = "RU"

type Service struct {
	profiles  domain.ProfileRepository
	publisher messaging.EventPublisher
	logger    logging.Logger
}

func NewService(profiles domain.ProfileRepository, publisher messaging.EventPublisher, logger logging.Logger) *Service {
	return &Service{
		profiles:  profiles,
		publisher: publisher,
		logger:    logger,
	}
}

// Create is called by the auth service right after registration.
func (s *Service) Create(ctx context.Context, userID, displayName, region string) (*domain.Profile, error) {
	if region == "" {
		region = DefaultRegion
	}

	profile := domain.NewProfile(userID, displayName, region)
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}

	messaging.PublishOrLog(ctx, s.publisher, s.logger, contracts.ProfileCreated, contracts.NewPayload(
		contracts.F("user_id", userID),
	))

	return profile, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

func (s *Service) Update(ctx context.Context, userID string, patch domain.ProfilePatch) (*domain.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Apply(patch)
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
