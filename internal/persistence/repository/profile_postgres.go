package repository

import (
	"context"
	"database/sql"

	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/errs"
)

type postgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) domain.ProfileRepository {
	return &postgresProfileRepository{db: db}
}

func (r *postgresProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	query := `INSERT INTO profiles (id, user_id, display_name, region, avatar_url, is_closed)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.db.ExecContext(ctx, query, p.ID, p.UserID, p.DisplayName, p.Region, p.AvatarURL, p.IsClosed); err != nil {
		if pqCode(err) == pqUniqueViolation {
			return domain.ErrProfileExists
		}
		return errs.Wrap(err, "failed to create profile")
	}
	return nil
}

func (r *postgresProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	var p domain.Profile
	query := `SELECT id, user_id, display_name, region, avatar_url, is_closed FROM profiles WHERE user_id = $1`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(&p.ID, &p.UserID, &p.DisplayName, &p.Region, &p.AvatarURL, &p.IsClosed)
	if err != nil {
		return nil, lookupErr(err, domain.ErrProfileNotFound, "failed to get profile")
	}
	return &p, nil
}

func (r *postgresProfileRepository) Update(ctx context.Context, p *domain.Profile) error {
	query := `UPDATE profiles SET display_name = $2, region = $3, avatar_url = $4, is_closed = $5
			  WHERE user_id = $1`

	res, err := r.db.ExecContext(ctx, query, p.UserID, p.DisplayName, p.Region, p.AvatarURL, p.IsClosed)
	return updateErr(res, err, domain.ErrProfileNotFound, "failed to update profile")
}
