package domain

import (
	"context"

	"github.com/google/uuid"
)

type Profile struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Region      string `json:"region"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsClosed    bool   `json:"is_closed"`
}

func NewProfile(userID, displayName, region string) *Profile {
	return &Profile{
		ID:          uuid.NewString(),
		UserID:      userID,
		DisplayName: displayName,
		Region:      region,
	}
}

// ProfilePatch holds the fields a user may change. Nil means unchanged.
type ProfilePatch struct {
	DisplayName *string
	Region      *string
	AvatarURL   *string
	IsClosed    *bool
}

func (p *Profile) Apply(patch ProfilePatch) {
	if patch.DisplayName != nil {
		p.DisplayName = *patch.DisplayName
	}
	if patch.Region != nil {
		p.Region = *patch.Region
	}
	if patch.AvatarURL != nil {
		p.AvatarURL = *patch.AvatarURL
	}
	if patch.IsClosed != nil {
		p.IsClosed = *patch.IsClosed
	}
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, profile *Profile) error
}
