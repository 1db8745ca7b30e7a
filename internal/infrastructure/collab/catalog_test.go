package collab

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/stretchr/testify/assert"
)

func TestCatalogClient_Exists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/tracks/t1":
			w.WriteHeader(http.StatusOK)
		case "/api/v1/tracks/broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	checker := NewCatalogClient(NewClient("catalog", srv.URL, time.Second))

	got, err := checker.Exists(context.Background(), "t1")
	assert.NoError(t, err)
	assert.Equal(t, Present, got)

	got, err = checker.Exists(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Equal(t, Absent, got)

	got, err = checker.Exists(context.Background(), "broken")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, Unavailable, got)
}

func TestCatalogClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	got, err := NewCatalogClient(NewClient("catalog", url, time.Second)).Exists(context.Background(), "t1")

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, Unavailable, got)
	assert.Equal(t, "unavailable", got.String())
}

func TestRequireTrack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/tracks/t1":
			w.WriteHeader(http.StatusOK)
		case "/api/v1/tracks/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	checker := NewCatalogClient(NewClient("catalog", srv.URL, time.Second))
	ctx := context.Background()

	assert.NoError(t, RequireTrack(ctx, checker, logging.NewNop(), "t1"))
	assert.ErrorIs(t, RequireTrack(ctx, checker, logging.NewNop(), "missing"), domain.ErrTrackNotFound)
	assert.ErrorIs(t, RequireTrack(ctx, checker, logging.NewNop(), "broken"), domain.ErrCatalogUnavailable)
}
