package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/errs"
)

type postgresCatalogRepository struct {
	db *sql.DB
}

func NewPostgresCatalogRepository(db *sql.DB) domain.CatalogRepository {
	return &postgresCatalogRepository{db: db}
}

func (r *postgresCatalogRepository) CreateAlbum(ctx context.Context, a *domain.Album) error {
	query := `INSERT INTO albums (id, title, artist_name, release_date, cover_url, is_published)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query, a.ID, a.Title, a.ArtistName, nullTime(a.ReleaseDate), a.CoverURL, a.IsPublished)
	if err != nil {
		return errs.Wrap(err, "failed to create album")
	}
	return nil
}

func (r *postgresCatalogRepository) GetAlbum(ctx context.Context, id string) (*domain.Album, error) {
	query := `SELECT id, title, artist_name, release_date, cover_url, is_published FROM albums WHERE id = $1`

	a, err := scanAlbum(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, lookupErr(err, domain.ErrAlbumNotFound, "failed to get album")
	}
	return a, nil
}

// ListAlbums pages in creation order. A NULL limit is unbounded in Postgres,
// which is what a non-positive limit asks for.
func (r *postgresCatalogRepository) ListAlbums(ctx context.Context, offset, limit int) ([]domain.Album, error) {
	query := `SELECT id, title, artist_name, release_date, cover_url, is_published
			  FROM albums ORDER BY created_at, id OFFSET $1 LIMIT $2`

	var lim sql.NullInt64
	if limit > 0 {
		lim = sql.NullInt64{Int64: int64(limit), Valid: true}
	}

	rows, err := r.db.QueryContext(ctx, query, offset, lim)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list albums")
	}
	defer rows.Close()

	albums := []domain.Album{}
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, errs.Wrap(err, "failed to scan album")
		}
		albums = append(albums, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, "failed to iterate albums")
	}
	return albums, nil
}

func (r *postgresCatalogRepository) UpdateAlbum(ctx context.Context, a *domain.Album) error {
	query := `UPDATE albums SET title = $2, artist_name = $3, release_date = $4, cover_url = $5, is_published = $6
			  WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, a.ID, a.Title, a.ArtistName, nullTime(a.ReleaseDate), a.CoverURL, a.IsPublished)
	return updateErr(res, err, domain.ErrAlbumNotFound, "failed to update album")
}

func (r *postgresCatalogRepository) CreateTrack(ctx context.Context, t *domain.Track) error {
	query := `INSERT INTO tracks (id, album_id, title, duration_sec, file_path, is_published)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query, t.ID, t.AlbumID, t.Title, t.DurationSec, t.FilePath, t.IsPublished)
	if err != nil {
		switch pqCode(err) {
		case pqForeignKeyViolation, pqInvalidTextRepresentation:
			return domain.ErrAlbumNotFound
		}
		return errs.Wrap(err, "failed to create track")
	}
	return nil
}

func (r *postgresCatalogRepository) GetTrack(ctx context.Context, id string) (*domain.Track, error) {
	query := `SELECT id, album_id, title, duration_sec, file_path, is_published FROM tracks WHERE id = $1`

	t, err := scanTrack(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, lookupErr(err, domain.ErrTrackNotFound, "failed to get track")
	}
	return t, nil
}

func (r *postgresCatalogRepository) ListTracksByAlbum(ctx context.Context, albumID string) ([]domain.Track, error) {
	query := `SELECT id, album_id, title, duration_sec, file_path, is_published
			  FROM tracks WHERE album_id = $1 ORDER BY created_at, id`

	tracks := []domain.Track{}
	rows, err := r.db.QueryContext(ctx, query, albumID)
	if err != nil {
		if pqCode(err) == pqInvalidTextRepresentation {
			return tracks, nil
		}
		return nil, errs.Wrap(err, "failed to list tracks")
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, errs.Wrap(err, "failed to scan track")
		}
		tracks = append(tracks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, "failed to iterate tracks")
	}
	return tracks, nil
}

func (r *postgresCatalogRepository) UpdateTrack(ctx context.Context, t *domain.Track) error {
	query := `UPDATE tracks SET title = $2, duration_sec = $3, file_path = $4, is_published = $5 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, t.ID, t.Title, t.DurationSec, t.FilePath, t.IsPublished)
	return updateErr(res, err, domain.ErrTrackNotFound, "failed to update track")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlbum(row rowScanner) (*domain.Album, error) {
	var (
		a           domain.Album
		releaseDate sql.NullTime
	)
	if err := row.Scan(&a.ID, &a.Title, &a.ArtistName, &releaseDate, &a.CoverURL, &a.IsPublished); err != nil {
		return nil, err
	}
	if releaseDate.Valid {
		t := releaseDate.Time
		a.ReleaseDate = &t
	}
	return &a, nil
}

func scanTrack(row rowScanner) (*domain.Track, error) {
	var t domain.Track
	if err := row.Scan(&t.ID, &t.AlbumID, &t.Title, &t.DurationSec, &t.FilePath, &t.IsPublished); err != nil {
		return nil, err
	}
	return &t, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
