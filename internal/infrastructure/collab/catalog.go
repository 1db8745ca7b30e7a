package collab

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
)

type Existence int

const (
	Present Existence = iota
	Absent
	Unavailable
)

func (e Existence) String() string {
	switch e {
	case Present:
		return "present"
	case Absent:
		return "absent"
	default:
		return "unavailable"
	}
}

// EntityExistenceChecker answers whether a peer knows about an entity.
type EntityExistenceChecker interface {
	Exists(ctx context.Context, id string) (Existence, error)
}

type CatalogClient struct {
	client *Client
}

func NewCatalogClient(client *Client) *CatalogClient {
	return &CatalogClient{client: client}
}

// Exists reports Unavailable together with the underlying error so the
// caller can log it; Present and Absent come with a nil error.
func (c *CatalogClient) Exists(ctx context.Context, trackID string) (Existence, error) {
	err := c.client.Do(ctx, http.MethodGet, "/api/v1/tracks/"+url.PathEscape(trackID), nil, nil)
	switch {
	case err == nil:
		return Present, nil
	case errors.Is(err, ErrNotFound):
		return Absent, nil
	default:
		return Unavailable, err
	}
}

// RequireTrack turns a catalog answer into the error a write path should
// return. Anything but a definite answer rejects the write with
// domain.ErrCatalogUnavailable.
func RequireTrack(ctx context.Context, catalog EntityExistenceChecker, logger logging.Logger, trackID string) error {
	existence, err := catalog.Exists(ctx, trackID)
	switch existence {
	case Present:
		return nil
	case Absent:
		return domain.ErrTrackNotFound
	}

	extra := map[logging.ExtraKey]any{
		logging.Service: "catalog",
		"track_id":      trackID,
	}
	if err != nil {
		extra[logging.ErrorMessage] = err.Error()
	}
	logger.Warn(logging.Collaborator, logging.ExternalService, "catalog check failed, rejecting", extra)
	return domain.ErrCatalogUnavailable
}
