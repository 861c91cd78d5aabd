package notification

import (
	"context"
	"time"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
)

type Repository interface {
	Create(ctx context.Context, n *models.Notification) error
	// DeleteByKey removes at most one notification matching key exactly.
	DeleteByKey(ctx context.Context, key models.NotificationKey) error

	PruneOlderThan(ctx context.Context, recipientID uint, cutoff time.Time) error
	List(ctx context.Context, recipientID uint, limit, skip int) ([]models.Notification, error)
	MarkRead(ctx context.Context, ids []uint) error
	CountUnread(ctx context.Context, recipientID uint) (int64, error)
}
