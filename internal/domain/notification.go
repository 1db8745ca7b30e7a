package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const DefaultNotificationTitle = "Notification"

type Notification struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Title     string    `bson:"title" json:"title"`
	Body      string    `bson:"body" json:"body"`
	IsRead    bool      `bson:"is_read" json:"is_read"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func NewNotification(userID, title, body string) *Notification {
	return &Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}

type NotificationSettings struct {
	UserID          string `bson:"_id" json:"user_id"`
	Enabled         bool   `bson:"enabled" json:"enabled"`
	NewReleases     bool   `bson:"new_releases" json:"new_releases"`
	Recommendations bool   `bson:"recommendations" json:"recommendations"`
	System          bool   `bson:"system" json:"system"`
}

func DefaultNotificationSettings(userID string) *NotificationSettings {
	return &NotificationSettings{
		UserID:          userID,
		Enabled:         true,
		NewReleases:     true,
		Recommendations: true,
		System:          true,
	}
}

type SettingsPatch struct {
	Enabled         *bool
	NewReleases     *bool
	Recommendations *bool
	System          *bool
}

func (p SettingsPatch) Empty() bool {
	return p.Enabled == nil && p.NewReleases == nil && p.Recommendations == nil && p.System == nil
}

func (s *NotificationSettings) Apply(p SettingsPatch) {
	if p.Enabled != nil {
		s.Enabled = *p.Enabled
	}
	if p.NewReleases != nil {
		s.NewReleases = *p.NewReleases
	}
	if p.Recommendations != nil {
		s.Recommendations = *p.Recommendations
	}
	if p.System != nil {
		s.System = *p.System
	}
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	// List returns newest first.
	List(ctx context.Context, userID string, includeRead bool) ([]Notification, error)
	// MarkRead marks ids, or every notification of the user when ids is empty.
	MarkRead(ctx context.Context, userID string, ids []string) (int64, error)
	// GetSettings returns nil, nil when the user has none stored yet.
	GetSettings(ctx context.Context, userID string) (*NotificationSettings, error)
	SaveSettings(ctx context.Context, settings *NotificationSettings) error
}
