package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/errs"
	"github.com/hilthontt/melody/internal/infrastructure/contracts"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/infrastructure/messaging"
)

// subjectKeys are checked in order; the first non-empty string names the
// user the notification belongs to.
var subjectKeys = []string{"user_id", "owner_id"}

var titles = map[contracts.RoutingKey]string{
	contracts.UserRegistered:     "Welcome to Melody",
	contracts.AlbumPublished:     "New album released",
	contracts.TrackPublished:     "New track released",
	contracts.PlaylistCreated:    "Playlist created",
	contracts.PlaylistTrackAdded: "Track added to playlist",
	contracts.TrackStarted:       "Now playing",
	contracts.TrackFinished:      "Track finished",
	contracts.ProfileCreated:     "Profile created",
}

// TitleFor returns the notification title shown for events with routing key key.
func TitleFor(key string) string {
	if title, ok := titles[contracts.RoutingKey(key)]; ok {
		return title
	}
	return domain.DefaultNotificationTitle
}

// Projector turns consumed events into notification records. It implements
// messaging.Handler.
type Projector struct {
	repo   domain.NotificationRepository
	logger logging.Logger
}

func NewProjector(repo domain.NotificationRepository, logger logging.Logger) *Projector {
	return &Projector{
		repo:   repo,
		logger: logger,
	}
}

func (p *Projector) Handle(ctx context.Context, msg messaging.Message) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(msg.Body, &fields); err != nil || fields == nil {
		return fmt.Errorf("%w: body is not a JSON object", messaging.ErrMalformedPayload)
	}

	userID := subject(fields)
	if userID == "" {
		p.logger.Debug(logging.RabbitMQ, logging.Consume, "event has no subject, skipping", map[logging.ExtraKey]any{
			logging.RoutingKey: msg.RoutingKey,
		})
		return nil
	}

	var body bytes.Buffer
	if err := json.Compact(&body, msg.Body); err != nil {
		return fmt.Errorf("%w: %w", messaging.ErrMalformedPayload, err)
	}

	notification := domain.NewNotification(userID, TitleFor(msg.RoutingKey), body.String())
	if err := p.repo.Create(ctx, notification); err != nil {
		return errs.Wrap(err, "failed to store notification")
	}

	p.logger.Info(logging.Storage, logging.Insert, "notification stored", map[logging.ExtraKey]any{
		logging.RoutingKey: msg.RoutingKey,
		"user_id":          userID,
		"notification_id":  notification.ID,
	})
	return nil
}

func subject(fields map[string]json.RawMessage) string {
	for _, key := range subjectKeys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err == nil && value != "" {
			return value
		}
	}
	return ""
}
