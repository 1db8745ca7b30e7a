package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func NewPostgres(ctx context.Context, cfg *PostgresConfig) (*sql.DB, error) {
	if cfg == nil || cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	conn, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return conn, nil
}

// LibrarySchema is applied at startup; every statement is idempotent.
var LibrarySchema = []string{
	`CREATE TABLE IF NOT EXISTS playlists (
		id         UUID PRIMARY KEY,
		owner_id   TEXT NOT NULL,
		title      TEXT NOT NULL,
		is_public  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS playlists_owner_idx ON playlists (owner_id)`,
	`CREATE TABLE IF NOT EXISTS playlist_tracks (
		playlist_id UUID NOT NULL REFERENCES playlists (id) ON DELETE CASCADE,
		track_id    TEXT NOT NULL,
		position    INTEGER NOT NULL,
		PRIMARY KEY (playlist_id, track_id)
	)`,
	`CREATE TABLE IF NOT EXISTS favorite_tracks (
		id         UUID PRIMARY KEY,
		user_id    TEXT NOT NULL,
		track_id   TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, track_id)
	)`,
}

var AuthSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		email         TEXT NOT NULL,
		phone         TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		is_blocked    BOOLEAN NOT NULL DEFAULT FALSE,
		has_2fa       BOOLEAN NOT NULL DEFAULT FALSE,
		role          TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_idx ON users (LOWER(email))`,
	`CREATE TABLE IF NOT EXISTS auth_tokens (
		value      TEXT PRIMARY KEY,
		user_id    UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		kind       TEXT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)`,
}

var ProfileSchema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id           UUID PRIMARY KEY,
		user_id      TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		region       TEXT NOT NULL,
		avatar_url   TEXT NOT NULL DEFAULT '',
		is_closed    BOOLEAN NOT NULL DEFAULT FALSE
	)`,
}

var CatalogSchema = []string{
	`CREATE TABLE IF NOT EXISTS albums (
		id           UUID PRIMARY KEY,
		title        TEXT NOT NULL,
		artist_name  TEXT NOT NULL,
		release_date TIMESTAMPTZ,
		cover_url    TEXT NOT NULL DEFAULT '',
		is_published BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS tracks (
		id           UUID PRIMARY KEY,
		album_id     UUID NOT NULL REFERENCES albums (id) ON DELETE CASCADE,
		title        TEXT NOT NULL,
		duration_sec INTEGER NOT NULL,
		file_path    TEXT NOT NULL DEFAULT '',
		is_published BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS tracks_album_idx ON tracks (album_id)`,
}

var PlaybackSchema = []string{
	`CREATE TABLE IF NOT EXISTS playback_sessions (
		id           UUID PRIMARY KEY,
		user_id      TEXT NOT NULL,
		track_id     TEXT NOT NULL,
		status       TEXT NOT NULL,
		position_sec INTEGER NOT NULL DEFAULT 0,
		volume       INTEGER NOT NULL,
		context_type TEXT NOT NULL DEFAULT '',
		context_id   TEXT NOT NULL DEFAULT '',
		started_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
}

func EnsureSchema(ctx context.Context, conn *sql.DB, statements []string) error {
	for _, stmt := range statements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
