package repository

import (
	"context"
	"database/sql"

	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/errs"
)

const userColumns = `id, email, phone, password_hash, is_active, is_blocked, has_2fa, role, created_at, updated_at`

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) domain.UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (` + userColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.Phone, u.PasswordHash, u.IsActive, u.IsBlocked, u.Has2FA, string(u.Role), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return domain.ErrEmailTaken
		}
		return errs.Wrap(err, "failed to create user")
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return r.getOne(ctx, query, email)
}

func (r *postgresUserRepository) getOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Phone, &u.PasswordHash, &u.IsActive, &u.IsBlocked, &u.Has2FA, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, lookupErr(err, domain.ErrUserNotFound, "failed to get user")
	}
	u.Role = domain.Role(role)
	return &u, nil
}

func (r *postgresUserRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET email = $2, phone = $3, password_hash = $4, is_active = $5,
			  is_blocked = $6, has_2fa = $7, role = $8, updated_at = $9 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.Phone, u.PasswordHash, u.IsActive, u.IsBlocked, u.Has2FA, string(u.Role), u.UpdatedAt)
	return updateErr(res, err, domain.ErrUserNotFound, "failed to update user")
}

type postgresTokenRepository struct {
	db *sql.DB
}

func NewPostgresTokenRepository(db *sql.DB) domain.TokenRepository {
	return &postgresTokenRepository{db: db}
}

func (r *postgresTokenRepository) Save(ctx context.Context, t *domain.Token) error {
	query := `INSERT INTO auth_tokens (value, user_id, kind, expires_at) VALUES ($1, $2, $3, $4)`

	if _, err := r.db.ExecContext(ctx, query, t.Value, t.UserID, string(t.Kind), t.ExpiresAt); err != nil {
		return errs.Wrap(err, "failed to save token")
	}
	return nil
}

// Get reports an unknown token as ErrInvalidRefreshToken, like the in-memory store.
func (r *postgresTokenRepository) Get(ctx context.Context, value string) (*domain.Token, error) {
	var (
		t    domain.Token
		kind string
	)
	query := `SELECT value, user_id, kind, expires_at FROM auth_tokens WHERE value = $1`

	err := r.db.QueryRowContext(ctx, query, value).Scan(&t.Value, &t.UserID, &kind, &t.ExpiresAt)
	if err != nil {
		return nil, lookupErr(err, domain.ErrInvalidRefreshToken, "failed to get token")
	}
	t.Kind = domain.TokenKind(kind)
	return &t, nil
}

func (r *postgresTokenRepository) Delete(ctx context.Context, value string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE value = $1`, value); err != nil {
		return errs.Wrap(err, "failed to delete token")
	}
	return nil
}
