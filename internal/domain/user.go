package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsBlocked    bool      `json:"is_blocked"`
	Has2FA       bool      `json:"has2fa"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewUser(email, phone, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.NewString(),
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		IsActive:     true,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CanLogin is false for blocked or deactivated accounts.
func (u *User) CanLogin() bool {
	return u.IsActive && !u.IsBlocked
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
}

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

type Token struct {
	Value     string
	UserID    string
	Kind      TokenKind
	ExpiresAt time.Time
}

func (t *Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

type TokenRepository interface {
	Save(ctx context.Context, token *Token) error
	Get(ctx context.Context, value string) (*Token, error)
	Delete(ctx context.Context, value string) error
}
