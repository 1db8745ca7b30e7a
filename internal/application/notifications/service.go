package notifications

import (
	"context"

	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/errs"
)

type Service struct {
	repo domain.NotificationRepository
}

func NewService(repo domain.NotificationRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID string, includeRead bool) ([]domain.Notification, error) {
	return s.repo.List(ctx, userID, includeRead)
}

// MarkRead marks the given notifications, or all of the user's when ids is
// empty, and reports how many changed.
func (s *Service) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	return s.repo.MarkRead(ctx, userID, ids)
}

// Settings returns the stored settings, storing the all-enabled defaults on
// first read.
func (s *Service) Settings(ctx context.Context, userID string) (*domain.NotificationSettings, error) {
	settings, err := s.repo.GetSettings(ctx, userID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to load notification settings")
	}
	if settings != nil {
		return settings, nil
	}

	settings = domain.DefaultNotificationSettings(userID)
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, errs.Wrap(err, "failed to store default notification settings")
	}
	return settings, nil
}

func (s *Service) UpdateSettings(ctx context.Context, userID string, patch domain.SettingsPatch) (*domain.NotificationSettings, error) {
	if patch.Empty() {
		return nil, domain.ErrEmptySettingsPatch
	}

	settings, err := s.Settings(ctx, userID)
	if err != nil {
		return nil, err
	}

	settings.Apply(patch)
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, errs.Wrap(err, "failed to save notification settings")
	}
	return settings, nil
}
