package library

import (
	stdjson "encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	libraryService "github.com/hilthontt/melody/internal/application/library"
	"github.com/hilthontt/melody/internal/application/mocks"
	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/infrastructure/collab"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, catalog *mocks.MockExistenceChecker) http.Handler {
	t.Helper()
	publisher := &mocks.MockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := libraryService.NewService(repository.NewLibraryRepository(), catalog, publisher, logging.NewNop())
	r := chi.NewRouter()
	NewHandler(svc, logging.NewNop()).Routes(r)
	return r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createPlaylist(t *testing.T, h http.Handler) domain.Playlist {
	t.Helper()
	rec := do(h, http.MethodPost, "/me/playlists?owner_id=u1", `{"title":"Mix"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var p domain.Playlist
	require.NoError(t, stdjson.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestAddTrackHandler(t *testing.T) {
	catalog := &mocks.MockExistenceChecker{}
	catalog.On("Exists", mock.Anything, "t1").Return(collab.Present, nil)
	catalog.On("Exists", mock.Anything, "ghost").Return(collab.Absent, nil)
	catalog.On("Exists", mock.Anything, "t-down").Return(collab.Unavailable, collab.ErrUnavailable)
	h := newRouter(t, catalog)
	p := createPlaylist(t, h)
	path := "/me/playlists/" + p.ID + "/tracks?owner_id=u1"

	rec := do(h, http.MethodPost, path, `{"track_id":"t1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"playlist_id":"`+p.ID+`","track_id":"t1","position":0}`, rec.Body.String())

	rec = do(h, http.MethodPost, path, `{"track_id":"t1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(h, http.MethodPost, path, `{"track_id":"ghost"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "track not found in catalog")

	rec = do(h, http.MethodPost, path, `{"track_id":"t-down"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(h, http.MethodPost, path, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tracks []domain.PlaylistTrack
	require.NoError(t, stdjson.Unmarshal(rec.Body.Bytes(), &tracks))
	assert.Len(t, tracks, 1)
}

func TestPlaylistHandlers_RequireOwner(t *testing.T) {
	h := newRouter(t, &mocks.MockExistenceChecker{})

	rec := do(h, http.MethodGet, "/me/playlists", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	createPlaylist(t, h)

	req := httptest.NewRequest(http.MethodGet, "/me/playlists", nil)
	req.Header.Set("X-User-ID", "u1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var playlists []domain.Playlist
	require.NoError(t, stdjson.Unmarshal(rec.Body.Bytes(), &playlists))
	assert.Len(t, playlists, 1)
}

func TestFavoriteHandlers(t *testing.T) {
	h := newRouter(t, &mocks.MockExistenceChecker{})

	rec := do(h, http.MethodPost, "/me/favorites/tracks?owner_id=u1", `{"track_id":"t1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(h, http.MethodPost, "/me/favorites/tracks?owner_id=u1", `{"track_id":"t1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(h, http.MethodGet, "/me/favorites/tracks?owner_id=u1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodDelete, "/me/favorites/tracks/t1?owner_id=u1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(h, http.MethodDelete, "/me/favorites/tracks/t1?owner_id=u1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
