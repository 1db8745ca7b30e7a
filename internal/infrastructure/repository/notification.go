package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/hilthontt/melody/internal/domain"
)

type notificationRepository struct {
	notifications []domain.Notification
	settings      map[string]domain.NotificationSettings
	mu            *sync.RWMutex
}

func NewNotificationRepository() domain.NotificationRepository {
	return &notificationRepository{
		settings: make(map[string]domain.NotificationSettings),
		mu:       &sync.RWMutex{},
	}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *notificationRepository) List(ctx context.Context, userID string, includeRead bool) ([]domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Notification{}
	for _, n := range r.notifications {
		if n.UserID == userID && (includeRead || !n.IsRead) {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	var updated int64
	for i := range r.notifications {
		n := &r.notifications[i]
		if n.UserID != userID || n.IsRead {
			continue
		}
		if _, ok := wanted[n.ID]; len(ids) > 0 && !ok {
			continue
		}
		n.IsRead = true
		updated++
	}
	return updated, nil
}

func (r *notificationRepository) GetSettings(ctx context.Context, userID string) (*domain.NotificationSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.settings[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *notificationRepository) SaveSettings(ctx context.Context, settings *domain.NotificationSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings[settings.UserID] = *settings
	return nil
}
