package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
)

type ViewerHistoryRepository struct {
	db *gorm.DB
}

func NewViewerHistoryRepository(db *gorm.DB) *ViewerHistoryRepository {
	return &ViewerHistoryRepository{db: db}
}

// Record stores that viewerID looked at targetID's profile. Repeat views are ignored.
func (r *ViewerHistoryRepository) Record(ctx context.Context, viewerID, targetID uint) error {
	if viewerID == targetID {
		return nil
	}
	entry := models.ViewerHistory{UserID: viewerID, TargetUserID: targetID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entry).Error
	return translate(err, "User not found")
}

// ListViewersOf returns who viewed targetID, newest first.
func (r *ViewerHistoryRepository) ListViewersOf(ctx context.Context, targetID uint) ([]models.ViewerHistory, error) {
	var entries []models.ViewerHistory
	err := r.db.WithContext(ctx).
		Where("target_user_id = ?", targetID).
		Preload("User").
		Order("created_at DESC").
		Find(&entries).Error
	return entries, translate(err, "User not found")
}
