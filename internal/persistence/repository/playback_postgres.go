package repository

import (
	"context"
	"database/sql"

	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/errs"
)

type postgresPlaybackRepository struct {
	db *sql.DB
}

func NewPostgresPlaybackRepository(db *sql.DB) domain.PlaybackRepository {
	return &postgresPlaybackRepository{db: db}
}

func (r *postgresPlaybackRepository) Create(ctx context.Context, s *domain.PlaybackSession) error {
	query := `INSERT INTO playback_sessions
			  (id, user_id, track_id, status, position_sec, volume, context_type, context_id, started_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.TrackID, string(s.Status), s.PositionSec, s.Volume, s.ContextType, s.ContextID, s.StartedAt, s.UpdatedAt)
	if err != nil {
		return errs.Wrap(err, "failed to create playback session")
	}
	return nil
}

func (r *postgresPlaybackRepository) Get(ctx context.Context, id string) (*domain.PlaybackSession, error) {
	var (
		s      domain.PlaybackSession
		status string
	)
	query := `SELECT id, user_id, track_id, status, position_sec, volume, context_type, context_id, started_at, updated_at
			  FROM playback_sessions WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.TrackID, &status, &s.PositionSec, &s.Volume, &s.ContextType, &s.ContextID, &s.StartedAt, &s.UpdatedAt)
	if err != nil {
		return nil, lookupErr(err, domain.ErrSessionNotFound, "failed to get playback session")
	}
	s.Status = domain.PlaybackStatus(status)
	return &s, nil
}

func (r *postgresPlaybackRepository) Update(ctx context.Context, s *domain.PlaybackSession) error {
	query := `UPDATE playback_sessions SET status = $2, position_sec = $3, volume = $4, updated_at = $5
			  WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, s.ID, string(s.Status), s.PositionSec, s.Volume, s.UpdatedAt)
	return updateErr(res, err, domain.ErrSessionNotFound, "failed to update playback session")
}
