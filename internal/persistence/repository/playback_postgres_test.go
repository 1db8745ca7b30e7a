package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hilthontt/melody/internal/domain"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresPlaybackRepository(t *testing.T) {
	s, err := domain.NewPlaybackSession("u1", "t1", 50, "", "")
	require.NoError(t, err)

	t.Run("create", func(t *testing.T) {
		conn, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO playback_sessions")).
			WithArgs(s.ID, "u1", "t1", string(s.Status), s.PositionSec, 50, "", "", s.StartedAt, s.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewPostgresPlaybackRepository(conn).Create(context.Background(), s))
	})

	t.Run("get", func(t *testing.T) {
		conn, mock := newMockDB(t)
		now := time.Now().UTC()
		mock.ExpectQuery(regexp.QuoteMeta("FROM playback_sessions WHERE id = $1")).WithArgs("s1").WillReturnRows(
			sqlmock.NewRows([]string{"id", "user_id", "track_id", "status", "position_sec", "volume", "context_type", "context_id", "started_at", "updated_at"}).
				AddRow("s1", "u1", "t1", string(s.Status), 42, 70, "album", "a1", now, now),
		)

		got, err := NewPostgresPlaybackRepository(conn).Get(context.Background(), "s1")
		require.NoError(t, err)
		assert.Equal(t, s.Status, got.Status)
		assert.Equal(t, 42, got.PositionSec)
		assert.Equal(t, "a1", got.ContextID)
	})

	t.Run("get with malformed id", func(t *testing.T) {
		conn, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM playback_sessions")).WithArgs("x").
			WillReturnError(&pq.Error{Code: pqInvalidTextRepresentation})

		_, err := NewPostgresPlaybackRepository(conn).Get(context.Background(), "x")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("update missing session", func(t *testing.T) {
		conn, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE playback_sessions SET")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewPostgresPlaybackRepository(conn).Update(context.Background(), s)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}
