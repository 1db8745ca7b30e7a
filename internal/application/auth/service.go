// Package auth registers accounts and issues opaque bearer tokens.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/errs"
	"github.com/hilthontt/melody/internal/infrastructure/collab"
	"github.com/hilthontt/melody/internal/infrastructure/contracts"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/infrastructure/messaging"
	"golang.org/x/crypto/bcrypt"
)

const (
	AccessTokenTTL  = 60 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
	TokenType       = "bearer"
)

type RegisterInput struct {
	Email    string
	Phone    string
	Password string
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

type Service struct {
	users     domain.UserRepository
	tokens    domain.TokenRepository
	profiles  collab.ProfileProvisioner
	publisher messaging.EventPublisher
	logger    logging.Logger
	hashCost  int
	now       func() time.Time
}

type Option func(*Service)

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(
	users domain.UserRepository,
	tokens domain.TokenRepository,
	profiles collab.ProfileProvisioner,
	publisher messaging.EventPublisher,
	logger logging.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		users:     users,
		tokens:    tokens,
		profiles:  profiles,
		publisher: publisher,
		logger:    logger,
		hashCost:  bcrypt.DefaultCost,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates the account, asks the profile service for a matching
// profile and announces the registration. The profile call is advisory: its
// failure is logged and never fails the registration.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, errs.Wrap(err, "failed to look up user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, errs.Wrap(err, "failed to hash password")
	}

	user := domain.NewUser(email, in.Phone, string(hash))
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.provisionProfile(ctx, user)

	messaging.PublishOrLog(ctx, s.publisher, s.logger, contracts.UserRegistered, contracts.NewPayload(
		contracts.F("user_id", user.ID),
		contracts.F("email", user.Email),
	))

	return user, nil
}

func (s *Service) provisionProfile(ctx context.Context, user *domain.User) {
	err := s.profiles.Provision(ctx, user.ID, user.Email)
	if err == nil {
		return
	}

	extra := map[logging.ExtraKey]any{
		logging.Service:      "profile",
		"user_id":            user.ID,
		logging.ErrorMessage: err.Error(),
	}
	if errors.Is(err, collab.ErrUnavailable) {
		s.logger.Warn(logging.Collaborator, logging.ExternalService, "profile service unavailable, registration kept", extra)
		return
	}
	s.logger.Error(logging.Collaborator, logging.ExternalService, "profile provisioning failed, registration kept", extra)
}

func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.CanLogin() {
		return nil, domain.ErrUserBlocked
	}

	return s.issue(ctx, user.ID)
}

// Refresh rotates the pair: the presented refresh token is consumed.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.tokens.Get(ctx, refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidRefreshToken
	}
	if token.Kind != domain.RefreshToken || token.Expired(s.now()) {
		return nil, domain.ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, domain.ErrInvalidRefreshToken
	}
	if !user.CanLogin() {
		return nil, domain.ErrUserBlocked
	}

	if err := s.tokens.Delete(ctx, refreshToken); err != nil {
		return nil, errs.Wrap(err, "failed to revoke refresh token")
	}

	return s.issue(ctx, user.ID)
}

func (s *Service) SetTwoFactor(ctx context.Context, userID string, enabled bool) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Has2FA = enabled
	user.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) issue(ctx context.Context, userID string) (*TokenPair, error) {
	now := s.now()

	access, err := s.newToken(ctx, userID, domain.AccessToken, now.Add(AccessTokenTTL))
	if err != nil {
		return nil, err
	}
	refresh, err := s.newToken(ctx, userID, domain.RefreshToken, now.Add(RefreshTokenTTL))
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenType,
		ExpiresIn:    int(AccessTokenTTL.Seconds()),
	}, nil
}

func (s *Service) newToken(ctx context.Context, userID string, kind domain.TokenKind, expires time.Time) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errs.Wrap(err, "failed to generate token")
	}

	token := &domain.Token{
		Value:     base64.RawURLEncoding.EncodeToString(buf),
		UserID:    userID,
		Kind:      kind,
		ExpiresAt: expires,
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		return "", errs.Wrap(err, "failed to store token")
	}
	return token.Value, nil
}
