package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/infrastructure/contracts"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/infrastructure/messaging"
	"github.com/hilthontt/melody/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepo struct {
	domain.NotificationRepository
}

func (failingRepo) Create(context.Context, *domain.Notification) error {
	return errors.New("mongo: server selection timeout")
}

func TestProjector_Handle(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		body      string
		wantErr   error
		wantUser  string
		wantTitle string
		wantBody  string
	}{
		{
			name:      "user_id subject",
			key:       "playback.track.finished",
			body:      `{"session_id":"s1","user_id":"u1","track_id":"t1"}`,
			wantUser:  "u1",
			wantTitle: "Track finished",
			wantBody:  `{"session_id":"s1","user_id":"u1","track_id":"t1"}`,
		},
		{
			name:      "owner_id fallback",
			key:       "library.playlist.created",
			body:      `{"playlist_id":"p1","owner_id":"u2"}`,
			wantUser:  "u2",
			wantTitle: "Playlist created",
			wantBody:  `{"playlist_id":"p1","owner_id":"u2"}`,
		},
		{
			name:      "empty user_id falls through to owner_id",
			key:       "library.playlist.track_added",
			body:      `{"user_id":"","owner_id":"u3"}`,
			wantUser:  "u3",
			wantTitle: "Track added to playlist",
			wantBody:  `{"user_id":"","owner_id":"u3"}`,
		},
		{
			name:      "body is compacted",
			key:       "auth.user.registered",
			body:      "{ \"user_id\": \"u4\",\n  \"email\": \"a@b.c\" }",
			wantUser:  "u4",
			wantTitle: "Welcome to Melody",
			wantBody:  `{"user_id":"u4","email":"a@b.c"}`,
		},
		{
			name:      "unknown key gets the generic title",
			key:       "billing.invoice.paid",
			body:      `{"user_id":"u5"}`,
			wantUser:  "u5",
			wantTitle: domain.DefaultNotificationTitle,
			wantBody:  `{"user_id":"u5"}`,
		},
		{
			name: "no subject",
			key:  "catalog.track.published",
			body: `{"track_id":"t1","album_id":"a1"}`,
		},
		{
			name: "non-string subject",
			key:  "catalog.track.published",
			body: `{"user_id":42}`,
		},
		{
			name:    "not json",
			key:     "catalog.track.published",
			body:    `not-json`,
			wantErr: messaging.ErrMalformedPayload,
		},
		{
			name:    "json array",
			key:     "catalog.track.published",
			body:    `["u1"]`,
			wantErr: messaging.ErrMalformedPayload,
		},
		{
			name:    "json null",
			key:     "catalog.track.published",
			body:    `null`,
			wantErr: messaging.ErrMalformedPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repository.NewNotificationRepository()
			p := NewProjector(repo, logging.NewNop())

			err := p.Handle(context.Background(), messaging.Message{RoutingKey: tt.key, Body: []byte(tt.body)})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			if tt.wantUser == "" {
				for _, user := range []string{"u1", "42", ""} {
					list, err := repo.List(context.Background(), user, true)
					require.NoError(t, err)
					assert.Empty(t, list)
				}
				return
			}

			list, err := repo.List(context.Background(), tt.wantUser, true)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, tt.wantTitle, list[0].Title)
			assert.Equal(t, tt.wantBody, list[0].Body)
			assert.False(t, list[0].IsRead)
		})
	}
}

func TestProjector_StorageFailureIsReturned(t *testing.T) {
	p := NewProjector(failingRepo{}, logging.NewNop())

	err := p.Handle(context.Background(), messaging.Message{
		RoutingKey: contracts.TrackFinished.String(),
		Body:       []byte(`{"user_id":"u1"}`),
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, messaging.ErrMalformedPayload)
}

func TestTitleFor(t *testing.T) {
	for _, key := range contracts.All() {
		assert.NotEqual(t, domain.DefaultNotificationTitle, TitleFor(key.String()), key)
	}
	assert.Equal(t, domain.DefaultNotificationTitle, TitleFor("search.query.logged"))
}
