package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
	"github.com/emilythestrangee/social-graph/backend/internal/notification"
)

type NotificationRepository struct {
	db *gorm.DB
}

var _ notification.Repository = (*NotificationRepository)(nil)

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return translate(r.db.WithContext(ctx).Create(n).Error, "User not found")
}

// DeleteByKey deletes the oldest notification matching the composite key.
func (r *NotificationRepository) DeleteByKey(ctx context.Context, key models.NotificationKey) error {
	db := r.db.WithContext(ctx)
	match := db.Model(&models.Notification{}).
		Select("id").
		Where("recipient_id = ? AND actor_id = ? AND type = ? AND target_id = ? AND target_model = ?",
			key.RecipientID, key.ActorID, key.Type, key.TargetID, key.TargetModel).
		Order("id").
		Limit(1)

	err := db.Where("id IN (?)", match).Delete(&models.Notification{}).Error
	return translate(err, "Notification not found")
}

func (r *NotificationRepository) PruneOlderThan(ctx context.Context, recipientID uint, cutoff time.Time) error {
	err := r.db.WithContext(ctx).
		Where("recipient_id = ? AND created_at < ?", recipientID, cutoff).
		Delete(&models.Notification{}).Error
	return translate(err, "Notification not found")
}

func (r *NotificationRepository) List(ctx context.Context, recipientID uint, limit, skip int) ([]models.Notification, error) {
	var items []models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Preload("Actor").
		Order("created_at DESC").
		Offset(skip).Limit(limit).
		Find(&items).Error
	return items, translate(err, "Notification not found")
}

func (r *NotificationRepository) MarkRead(ctx context.Context, ids []uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id IN ?", ids).
		Update("read", true).Error
	return translate(err, "Notification not found")
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Count(&count).Error
	return count, translate(err, "Notification not found")
}
