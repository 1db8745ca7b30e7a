package repository

import (
	"context"
	"sync"

	"github.com/hilthontt/melody/internal/domain"
)

type profileRepository struct {
	profiles map[string]*domain.Profile // UserID -> Profile
	mu       *sync.RWMutex
}

func NewProfileRepository() domain.ProfileRepository {
	return &profileRepository{
		profiles: make(map[string]*domain.Profile),
		mu:       &sync.RWMutex{},
	}
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[profile.UserID]; exists {
		return domain.ErrProfileExists
	}
	stored := *profile
	r.profiles[profile.UserID] = &stored
	return nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	out := *profile
	return &out, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[profile.UserID]; !ok {
		return domain.ErrProfileNotFound
	}
	stored := *profile
	r.profiles[profile.UserID] = &stored
	return nil
}
