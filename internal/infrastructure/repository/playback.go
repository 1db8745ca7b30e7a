package repository

import (
	"context"
	"sync"

	"github.com/hilthontt/melody/internal/domain"
)

type playbackRepository struct {
	sessions map[string]*domain.PlaybackSession
	mu       *sync.RWMutex
}

func NewPlaybackRepository() domain.PlaybackRepository {
	return &playbackRepository{
		sessions: make(map[string]*domain.PlaybackSession),
		mu:       &sync.RWMutex{},
	}
}

func (r *playbackRepository) Create(ctx context.Context, session *domain.PlaybackSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *session
	r.sessions[session.ID] = &stored
	return nil
}

func (r *playbackRepository) Get(ctx context.Context, id string) (*domain.PlaybackSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	out := *session
	return &out, nil
}

func (r *playbackRepository) Update(ctx context.Context, session *domain.PlaybackSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ID]; !ok {
		return domain.ErrSessionNotFound
	}
	stored := *session
	r.sessions[session.ID] = &stored
	return nil
}
