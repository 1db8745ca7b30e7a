package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/hilthontt/melody/internal/domain"
)

type userRepository struct {
	users      map[string]*domain.User // ID -> User
	emailIndex map[string]string       // lower(email) -> ID
	mu         *sync.RWMutex
}

func NewUserRepository() domain.UserRepository {
	return &userRepository{
		users:      make(map[string]*domain.User),
		emailIndex: make(map[string]string),
		mu:         &sync.RWMutex{},
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := r.emailIndex[key]; exists {
		return domain.ErrEmailTaken
	}

	stored := *user
	r.users[user.ID] = &stored
	r.emailIndex[key] = user.ID
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emailIndex[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *r.users[id]
	return &out, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

type tokenRepository struct {
	tokens map[string]domain.Token
	mu     *sync.RWMutex
}

func NewTokenRepository() domain.TokenRepository {
	return &tokenRepository{
		tokens: make(map[string]domain.Token),
		mu:     &sync.RWMutex{},
	}
}

func (r *tokenRepository) Save(ctx context.Context, token *domain.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.Value] = *token
	return nil
}

func (r *tokenRepository) Get(ctx context.Context, value string) (*domain.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[value]
	if !ok {
		return nil, domain.ErrInvalidRefreshToken
	}
	return &token, nil
}

func (r *tokenRepository) Delete(ctx context.Context, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, value)
	return nil
}
