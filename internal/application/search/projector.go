package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/errs"
	"github.com/hilthontt/melody/internal/infrastructure/contracts"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/infrastructure/messaging"
)

// BindingKeys is what the search projector consumes.
var BindingKeys = []string{string(contracts.AlbumPublished), string(contracts.TrackPublished)}

type catalogEvent struct {
	AlbumID    string `json:"album_id"`
	TrackID    string `json:"track_id"`
	Title      string `json:"title"`
	ArtistName string `json:"artist_name"`
}

// Projector keeps the search index in step with catalog publications. It
// implements messaging.Handler.
type Projector struct {
	index  domain.SearchIndex
	logger logging.Logger
}

func NewProjector(index domain.SearchIndex, logger logging.Logger) *Projector {
	return &Projector{
		index:  index,
		logger: logger,
	}
}

func (p *Projector) Handle(ctx context.Context, msg messaging.Message) error {
	var ev catalogEvent
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		return fmt.Errorf("%w: %w", messaging.ErrMalformedPayload, err)
	}

	var entry *domain.SearchEntry
	switch contracts.RoutingKey(msg.RoutingKey) {
	case contracts.AlbumPublished:
		if ev.AlbumID == "" {
			return fmt.Errorf("%w: album event without album_id", messaging.ErrMalformedPayload)
		}
		entry = &domain.SearchEntry{ID: ev.AlbumID, Kind: domain.SearchAlbum, Title: ev.Title, ArtistName: ev.ArtistName}
	case contracts.TrackPublished:
		if ev.TrackID == "" {
			return fmt.Errorf("%w: track event without track_id", messaging.ErrMalformedPayload)
		}
		entry = &domain.SearchEntry{ID: ev.TrackID, Kind: domain.SearchTrack, Title: ev.Title, AlbumID: ev.AlbumID}
	default:
		p.logger.Debug(logging.RabbitMQ, logging.Consume, "not a catalog publication, skipping", map[logging.ExtraKey]any{
			logging.RoutingKey: msg.RoutingKey,
		})
		return nil
	}

	if err := p.index.Upsert(ctx, entry); err != nil {
		return errs.Wrap(err, "failed to index catalog entry")
	}

	p.logger.Info(logging.Storage, logging.Insert, "catalog entry indexed", map[logging.ExtraKey]any{
		logging.RoutingKey: msg.RoutingKey,
		"entry_id":         entry.ID,
	})
	return nil
}
