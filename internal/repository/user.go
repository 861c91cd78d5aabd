package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user; a taken username or email yields CONFLICT.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error, "User not found")
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return findUser(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return findUser(r.db.WithContext(ctx).Where("email = ?", email))
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return findUser(r.db.WithContext(ctx).Where("username = ?", username))
}

// BumpTokenVersion invalidates every session token issued so far.
func (r *UserRepository) BumpTokenVersion(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("token_version", gorm.Expr("token_version + 1")).Error
	return translate(err, "User not found")
}

// ToggleViewerHistory flips enabled_viewer_history and returns the new value.
func (r *UserRepository) ToggleViewerHistory(ctx context.Context, id uint) (bool, error) {
	user := models.User{ID: id}
	result := r.db.WithContext(ctx).
		Model(&user).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "enabled_viewer_history"}}}).
		UpdateColumn("enabled_viewer_history", gorm.Expr("NOT enabled_viewer_history"))
	if result.Error != nil {
		return false, translate(result.Error, "User not found")
	}
	if result.RowsAffected == 0 {
		return false, translate(gorm.ErrRecordNotFound, "User not found")
	}
	return user.EnabledViewerHistory, nil
}
