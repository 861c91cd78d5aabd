package notification

import (
	"context"
	"time"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Page struct {
	Notifications []models.Notification
	UnreadCount   int64
	Skip          int
	Limit         int
}

// Service lists a recipient's notifications.
type Service struct {
	repo      Repository
	retention time.Duration
	now       func() time.Time
}

func NewService(repo Repository, retention time.Duration) *Service {
	return &Service{
		repo:      repo,
		retention: retention,
		now:       time.Now,
	}
}

// List prunes expired notifications, returns the newest page and marks it read.
// Returned rows still carry read=false as they were before this call.
func (s *Service) List(ctx context.Context, recipientID uint, limit, skip int) (*Page, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if skip < 0 {
		skip = 0
	}

	if err := s.repo.PruneOlderThan(ctx, recipientID, s.now().Add(-s.retention)); err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, recipientID, limit, skip)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(items))
	for _, n := range items {
		ids = append(ids, n.ID)
	}
	if len(ids) > 0 {
		if err := s.repo.MarkRead(ctx, ids); err != nil {
			return nil, err
		}
	}

	unread, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	return &Page{
		Notifications: items,
		UnreadCount:   unread,
		Skip:          skip,
		Limit:         limit,
	}, nil
}
