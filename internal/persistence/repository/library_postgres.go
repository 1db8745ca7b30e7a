package repository

import (
	"context"
	"database/sql"

	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/errs"
)

type postgresLibraryRepository struct {
	db *sql.DB
}

func NewPostgresLibraryRepository(db *sql.DB) domain.LibraryRepository {
	return &postgresLibraryRepository{db: db}
}

func (r *postgresLibraryRepository) CreatePlaylist(ctx context.Context, p *domain.Playlist) error {
	query := `INSERT INTO playlists (id, owner_id, title, is_public, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query, p.ID, p.OwnerID, p.Title, p.IsPublic, p.CreatedAt); err != nil {
		return errs.Wrap(err, "failed to create playlist")
	}
	return nil
}

func (r *postgresLibraryRepository) GetPlaylist(ctx context.Context, id string) (*domain.Playlist, error) {
	var p domain.Playlist

	query := `SELECT id, owner_id, title, is_public, created_at FROM playlists WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.OwnerID, &p.Title, &p.IsPublic, &p.CreatedAt)
	if err != nil {
		return nil, lookupErr(err, domain.ErrPlaylistNotFound, "failed to get playlist")
	}
	return &p, nil
}

func (r *postgresLibraryRepository) ListPlaylists(ctx context.Context, ownerID string) ([]domain.Playlist, error) {
	query := `SELECT id, owner_id, title, is_public, created_at
			  FROM playlists WHERE owner_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list playlists")
	}
	defer rows.Close()

	playlists := []domain.Playlist{}
	for rows.Next() {
		var p domain.Playlist
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Title, &p.IsPublic, &p.CreatedAt); err != nil {
			return nil, errs.Wrap(err, "failed to scan playlist")
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, "failed to iterate playlists")
	}
	return playlists, nil
}

func (r *postgresLibraryRepository) AddTrack(ctx context.Context, playlistID, trackID string, position *int) (*domain.PlaylistTrack, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errs.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	entry := domain.PlaylistTrack{PlaylistID: playlistID, TrackID: trackID}
	if position != nil {
		entry.Position = *position
	} else {
		query := `SELECT COALESCE(MAX(position), -1) + 1 FROM playlist_tracks WHERE playlist_id = $1`
		if err := tx.QueryRowContext(ctx, query, playlistID).Scan(&entry.Position); err != nil {
			if pqCode(err) == pqInvalidTextRepresentation {
				return nil, domain.ErrPlaylistNotFound
			}
			return nil, errs.Wrap(err, "failed to compute playlist position")
		}
	}

	insert := `INSERT INTO playlist_tracks (playlist_id, track_id, position) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, insert, playlistID, trackID, entry.Position); err != nil {
		switch pqCode(err) {
		case pqUniqueViolation:
			return nil, domain.ErrTrackInPlaylist
		case pqForeignKeyViolation, pqInvalidTextRepresentation:
			return nil, domain.ErrPlaylistNotFound
		}
		return nil, errs.Wrap(err, "failed to add track to playlist")
	}

	if err := tx.Commit(); err != nil {
		return nil, errs.Wrap(err, "failed to commit playlist track")
	}
	return &entry, nil
}

func (r *postgresLibraryRepository) ListTracks(ctx context.Context, playlistID string) ([]domain.PlaylistTrack, error) {
	query := `SELECT playlist_id, track_id, position FROM playlist_tracks
			  WHERE playlist_id = $1 ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, playlistID)
	if err != nil {
		if pqCode(err) == pqInvalidTextRepresentation {
			return nil, domain.ErrPlaylistNotFound
		}
		return nil, errs.Wrap(err, "failed to list playlist tracks")
	}
	defer rows.Close()

	tracks := []domain.PlaylistTrack{}
	for rows.Next() {
		var t domain.PlaylistTrack
		if err := rows.Scan(&t.PlaylistID, &t.TrackID, &t.Position); err != nil {
			return nil, errs.Wrap(err, "failed to scan playlist track")
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

func (r *postgresLibraryRepository) AddFavorite(ctx context.Context, fav *domain.FavoriteTrack) error {
	query := `INSERT INTO favorite_tracks (id, user_id, track_id, created_at) VALUES ($1, $2, $3, $4)`

	if _, err := r.db.ExecContext(ctx, query, fav.ID, fav.UserID, fav.TrackID, fav.CreatedAt); err != nil {
		if pqCode(err) == pqUniqueViolation {
			return domain.ErrFavoriteExists
		}
		return errs.Wrap(err, "failed to add favorite track")
	}
	return nil
}

func (r *postgresLibraryRepository) ListFavorites(ctx context.Context, userID string) ([]domain.FavoriteTrack, error) {
	query := `SELECT id, user_id, track_id, created_at FROM favorite_tracks
			  WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list favorite tracks")
	}
	defer rows.Close()

	favs := []domain.FavoriteTrack{}
	for rows.Next() {
		var f domain.FavoriteTrack
		if err := rows.Scan(&f.ID, &f.UserID, &f.TrackID, &f.CreatedAt); err != nil {
			return nil, errs.Wrap(err, "failed to scan favorite track")
		}
		favs = append(favs, f)
	}
	return favs, rows.Err()
}

func (r *postgresLibraryRepository) RemoveFavorite(ctx context.Context, userID, trackID string) error {
	query := `DELETE FROM favorite_tracks WHERE user_id = $1 AND track_id = $2`

	res, err := r.db.ExecContext(ctx, query, userID, trackID)
	if err != nil {
		return errs.Wrap(err, "failed to remove favorite track")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrFavoriteNotFound
	}
	return nil
}
