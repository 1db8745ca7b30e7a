package repository

import (
	"context"
	"testing"

	"github.com/hilthontt/melody/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryRepository_AddTrackPositions(t *testing.T) {
	ctx := context.Background()
	repo := NewLibraryRepository()
	p := domain.NewPlaylist("u1", "Mix", false)
	require.NoError(t, repo.CreatePlaylist(ctx, p))

	first, err := repo.AddTrack(ctx, p.ID, "t1", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Position)

	pos := 10
	_, err = repo.AddTrack(ctx, p.ID, "t2", &pos)
	require.NoError(t, err)

	third, err := repo.AddTrack(ctx, p.ID, "t3", nil)
	require.NoError(t, err)
	assert.Equal(t, 11, third.Position)

	_, err = repo.AddTrack(ctx, p.ID, "t1", nil)
	assert.ErrorIs(t, err, domain.ErrTrackInPlaylist)

	_, err = repo.AddTrack(ctx, "missing", "t1", nil)
	assert.ErrorIs(t, err, domain.ErrPlaylistNotFound)

	tracks, err := repo.ListTracks(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, tracks, 3)
	assert.Equal(t, []string{"t1", "t2", "t3"}, []string{tracks[0].TrackID, tracks[1].TrackID, tracks[2].TrackID})
}

func TestLibraryRepository_PlaylistsByOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewLibraryRepository()
	require.NoError(t, repo.CreatePlaylist(ctx, domain.NewPlaylist("u1", "A", false)))
	require.NoError(t, repo.CreatePlaylist(ctx, domain.NewPlaylist("u2", "B", true)))
	require.NoError(t, repo.CreatePlaylist(ctx, domain.NewPlaylist("u1", "C", true)))

	playlists, err := repo.ListPlaylists(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, playlists, 2)
	assert.Equal(t, "A", playlists[0].Title)
	assert.Equal(t, "C", playlists[1].Title)

	_, err = repo.GetPlaylist(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrPlaylistNotFound)
}

func TestLibraryRepository_Favorites(t *testing.T) {
	ctx := context.Background()
	repo := NewLibraryRepository()

	require.NoError(t, repo.AddFavorite(ctx, domain.NewFavoriteTrack("u1", "t1")))
	assert.ErrorIs(t, repo.AddFavorite(ctx, domain.NewFavoriteTrack("u1", "t1")), domain.ErrFavoriteExists)
	require.NoError(t, repo.AddFavorite(ctx, domain.NewFavoriteTrack("u2", "t1")))

	favs, err := repo.ListFavorites(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, favs, 1)

	require.NoError(t, repo.RemoveFavorite(ctx, "u1", "t1"))
	assert.ErrorIs(t, repo.RemoveFavorite(ctx, "u1", "t1"), domain.ErrFavoriteNotFound)

	favs, err = repo.ListFavorites(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, favs, 1)
}
