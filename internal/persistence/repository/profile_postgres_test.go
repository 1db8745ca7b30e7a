package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hilthontt/melody/internal/domain"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresProfileRepository_Create(t *testing.T) {
	p := domain.NewProfile("u1", "Ada", "EU")

	t.Run("inserted", func(t *testing.T) {
		conn, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles")).
			WithArgs(p.ID, "u1", "Ada", "EU", p.AvatarURL, p.IsClosed).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewPostgresProfileRepository(conn).Create(context.Background(), p))
	})

	t.Run("already exists", func(t *testing.T) {
		conn, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles")).
			WillReturnError(&pq.Error{Code: pqUniqueViolation})

		err := NewPostgresProfileRepository(conn).Create(context.Background(), p)
		assert.ErrorIs(t, err, domain.ErrProfileExists)
	})
}

func TestPostgresProfileRepository_GetByUserID(t *testing.T) {
	query := regexp.QuoteMeta("FROM profiles WHERE user_id = $1")

	t.Run("found", func(t *testing.T) {
		conn, mock := newMockDB(t)
		mock.ExpectQuery(query).WithArgs("u1").WillReturnRows(
			sqlmock.NewRows([]string{"id", "user_id", "display_name", "region", "avatar_url", "is_closed"}).
				AddRow("p1", "u1", "Ada", "EU", "", false),
		)

		p, err := NewPostgresProfileRepository(conn).GetByUserID(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, "Ada", p.DisplayName)
	})

	t.Run("missing", func(t *testing.T) {
		conn, mock := newMockDB(t)
		mock.ExpectQuery(query).WithArgs("u2").WillReturnError(sql.ErrNoRows)

		_, err := NewPostgresProfileRepository(conn).GetByUserID(context.Background(), "u2")
		assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	})
}

func TestPostgresProfileRepository_Update(t *testing.T) {
	conn, mock := newMockDB(t)
	p := domain.NewProfile("u9", "Ghost", "US")
	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET")).
		WithArgs("u9", "Ghost", "US", "", false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewPostgresProfileRepository(conn).Update(context.Background(), p)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}
