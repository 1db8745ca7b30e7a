package library

import (
	"context"
	"errors"
	"testing"

	"github.com/hilthontt/melody/internal/application/mocks"
	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/errs"
	"github.com/hilthontt/melody/internal/infrastructure/collab"
	"github.com/hilthontt/melody/internal/infrastructure/contracts"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc       *Service
	repo      domain.LibraryRepository
	catalog   *mocks.MockExistenceChecker
	publisher *mocks.MockPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:      repository.NewLibraryRepository(),
		catalog:   &mocks.MockExistenceChecker{},
		publisher: &mocks.MockPublisher{},
	}
	f.svc = NewService(f.repo, f.catalog, f.publisher, logging.NewNop())
	return f
}

func (f *fixture) playlist(t *testing.T, owner string) *domain.Playlist {
	t.Helper()
	f.publisher.On("Publish", mock.Anything, contracts.PlaylistCreated, mock.Anything).Return(nil).Once()
	p, err := f.svc.CreatePlaylist(context.Background(), owner, "Mix", false)
	require.NoError(t, err)
	return p
}

func TestService_CreatePlaylist(t *testing.T) {
	f := newFixture(t)
	p := f.playlist(t, "u1")

	payload := f.publisher.Calls[0].Arguments.Get(2).(contracts.Payload)
	assert.Equal(t, contracts.NewPayload(
		contracts.F("playlist_id", p.ID),
		contracts.F("owner_id", "u1"),
	), payload)

	list, err := f.svc.ListPlaylists(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestService_AddTrack(t *testing.T) {
	t.Run("present track is appended and announced", func(t *testing.T) {
		f := newFixture(t)
		p := f.playlist(t, "u1")
		f.catalog.On("Exists", mock.Anything, "t1").Return(collab.Present, nil)
		f.catalog.On("Exists", mock.Anything, "t2").Return(collab.Present, nil)
		f.publisher.On("Publish", mock.Anything, contracts.PlaylistTrackAdded, mock.Anything).Return(nil)

		first, err := f.svc.AddTrack(context.Background(), "u1", p.ID, "t1", nil)
		require.NoError(t, err)
		assert.Equal(t, 0, first.Position)

		second, err := f.svc.AddTrack(context.Background(), "u1", p.ID, "t2", nil)
		require.NoError(t, err)
		assert.Equal(t, 1, second.Position)

		f.publisher.AssertCalled(t, "Publish", mock.Anything, contracts.PlaylistTrackAdded, contracts.NewPayload(
			contracts.F("playlist_id", p.ID),
			contracts.F("track_id", "t2"),
			contracts.F("owner_id", "u1"),
		))
	})

	t.Run("absent track is rejected without mutation", func(t *testing.T) {
		f := newFixture(t)
		p := f.playlist(t, "u1")
		f.catalog.On("Exists", mock.Anything, "ghost").Return(collab.Absent, nil)

		_, err := f.svc.AddTrack(context.Background(), "u1", p.ID, "ghost", nil)
		assert.ErrorIs(t, err, domain.ErrTrackNotFound)
		assert.ErrorIs(t, err, errs.ErrNotFound)

		tracks, err := f.repo.ListTracks(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Empty(t, tracks)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, contracts.PlaylistTrackAdded, mock.Anything)
	})

	t.Run("unreachable catalog rejects without mutation", func(t *testing.T) {
		f := newFixture(t)
		p := f.playlist(t, "u1")
		f.catalog.On("Exists", mock.Anything, "t1").
			Return(collab.Unavailable, errors.Join(collab.ErrUnavailable, errors.New("dial tcp: connection refused")))

		_, err := f.svc.AddTrack(context.Background(), "u1", p.ID, "t1", nil)
		assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)

		tracks, err := f.repo.ListTracks(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Empty(t, tracks)
	})

	t.Run("foreign playlist is not found", func(t *testing.T) {
		f := newFixture(t)
		p := f.playlist(t, "u1")

		_, err := f.svc.AddTrack(context.Background(), "intruder", p.ID, "t1", nil)
		assert.ErrorIs(t, err, domain.ErrPlaylistNotFound)
		f.catalog.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
	})

	t.Run("duplicate track conflicts", func(t *testing.T) {
		f := newFixture(t)
		p := f.playlist(t, "u1")
		f.catalog.On("Exists", mock.Anything, "t1").Return(collab.Present, nil)
		f.publisher.On("Publish", mock.Anything, contracts.PlaylistTrackAdded, mock.Anything).Return(nil).Once()

		_, err := f.svc.AddTrack(context.Background(), "u1", p.ID, "t1", nil)
		require.NoError(t, err)

		_, err = f.svc.AddTrack(context.Background(), "u1", p.ID, "t1", nil)
		assert.ErrorIs(t, err, domain.ErrTrackInPlaylist)
		f.publisher.AssertExpectations(t)
	})
}

func TestService_Favorites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddFavorite(ctx, "u1", "t1")
	require.NoError(t, err)

	_, err = f.svc.AddFavorite(ctx, "u1", "t1")
	assert.ErrorIs(t, err, domain.ErrFavoriteExists)

	favs, err := f.svc.ListFavorites(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, favs, 1)

	require.NoError(t, f.svc.RemoveFavorite(ctx, "u1", "t1"))
	assert.ErrorIs(t, f.svc.RemoveFavorite(ctx, "u1", "t1"), domain.ErrFavoriteNotFound)
}
