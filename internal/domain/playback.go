package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type PlaybackStatus string

const (
	StatusPlaying  PlaybackStatus = "playing"
	StatusPaused   PlaybackStatus = "paused"
	StatusFinished PlaybackStatus = "finished"
)

const DefaultVolume = 50

type PlaybackSession struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	TrackID     string         `json:"track_id"`
	Status      PlaybackStatus `json:"status"`
	PositionSec int            `json:"position_sec"`
	Volume      int            `json:"volume"`
	ContextType string         `json:"context_type,omitempty"`
	ContextID   string         `json:"context_id,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func NewPlaybackSession(userID, trackID string, volume int, contextType, contextID string) (*PlaybackSession, error) {
	if err := ValidateVolume(volume); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &PlaybackSession{
		ID:          uuid.NewString(),
		UserID:      userID,
		TrackID:     trackID,
		Status:      StatusPlaying,
		Volume:      volume,
		ContextType: contextType,
		ContextID:   contextID,
		StartedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func ValidateVolume(v int) error {
	if v < 0 || v > 100 {
		return ErrInvalidVolume
	}
	return nil
}

// Transition moves the session to status. Finished sessions are final.
func (s *PlaybackSession) Transition(status PlaybackStatus) error {
	if s.Status == StatusFinished {
		return ErrSessionFinished
	}
	s.Status = status
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *PlaybackSession) SetVolume(v int) error {
	if err := ValidateVolume(v); err != nil {
		return err
	}
	s.Volume = v
	s.UpdatedAt = time.Now().UTC()
	return nil
}

type PlaybackRepository interface {
	Create(ctx context.Context, session *PlaybackSession) error
	Get(ctx context.Context, id string) (*PlaybackSession, error)
	Update(ctx context.Context, session *PlaybackSession) error
}
