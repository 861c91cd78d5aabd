package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
	"github.com/emilythestrangee/social-graph/backend/internal/relationship"
)

// RelationshipStore persists Follow and FollowRequest edges with gorm.
type RelationshipStore struct {
	db *gorm.DB
}

var _ relationship.Store = (*RelationshipStore)(nil)

func NewRelationshipStore(db *gorm.DB) *RelationshipStore {
	return &RelationshipStore{db: db}
}

func (s *RelationshipStore) ExistsFollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	return existsFollow(s.db.WithContext(ctx), followerID, followingID)
}

func (s *RelationshipStore) FindRequest(ctx context.Context, senderID, receiverID uint) (*models.FollowRequest, error) {
	return findRequest(s.db.WithContext(ctx).Where("sender_id = ? AND receiver_id = ?", senderID, receiverID))
}

func (s *RelationshipStore) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	return findUser(s.db.WithContext(ctx).Where("id = ?", id))
}

func (s *RelationshipStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return findUser(s.db.WithContext(ctx).Where("username = ?", username))
}

func (s *RelationshipStore) ListFollowers(ctx context.Context, userID uint, limit, skip int) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.following_id = ?", userID).
		Order("follows.created_at DESC").
		Offset(skip).Limit(limit).
		Find(&users).Error
	return users, translate(err, "User not found")
}

func (s *RelationshipStore) ListFollowing(ctx context.Context, userID uint, limit, skip int) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC").
		Offset(skip).Limit(limit).
		Find(&users).Error
	return users, translate(err, "User not found")
}

func (s *RelationshipStore) ListMutual(ctx context.Context, a, b uint) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("(follows.follower_id = ? AND follows.following_id = ?) OR (follows.follower_id = ? AND follows.following_id = ?)",
			a, b, b, a).
		Order("follows.created_at DESC").
		Find(&users).Error
	return users, translate(err, "User not found")
}

func (s *RelationshipStore) ListPendingRequests(ctx context.Context, receiverID uint) ([]models.FollowRequest, error) {
	var requests []models.FollowRequest
	err := s.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", receiverID, models.FollowRequestStatusPending).
		Preload("Sender").
		Order("created_at DESC").
		Find(&requests).Error
	return requests, translate(err, "Follow request not found")
}

func (s *RelationshipStore) WithinTx(ctx context.Context, fn func(tx relationship.Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&relationshipTx{db: db})
	})
	return translate(err, "record not found")
}

type relationshipTx struct {
	db *gorm.DB
}

// LockPair takes a transaction-scoped advisory lock on the ordered pair.
func (t *relationshipTx) LockPair(ctx context.Context, a, b uint) error {
	key := int64(a)<<32 | int64(uint32(b))
	err := t.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", key).Error
	return translate(err, "lock not acquired")
}

func (t *relationshipTx) ExistsFollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	return existsFollow(t.db.WithContext(ctx), followerID, followingID)
}

func (t *relationshipTx) FindRequest(ctx context.Context, senderID, receiverID uint) (*models.FollowRequest, error) {
	return findRequest(t.db.WithContext(ctx).Where("sender_id = ? AND receiver_id = ?", senderID, receiverID))
}

func (t *relationshipTx) FindRequestByID(ctx context.Context, id uint) (*models.FollowRequest, error) {
	return findRequest(t.db.WithContext(ctx).Where("id = ?", id))
}

func (t *relationshipTx) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	return findUser(t.db.WithContext(ctx).Where("id = ?", id))
}

func (t *relationshipTx) CreateFollow(ctx context.Context, followerID, followingID uint) error {
	follow := models.Follow{FollowerID: followerID, FollowingID: followingID}
	return translate(t.db.WithContext(ctx).Create(&follow).Error, "User not found")
}

func (t *relationshipTx) DeleteFollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	result := t.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return false, translate(result.Error, "Follower not found")
	}
	return result.RowsAffected > 0, nil
}

func (t *relationshipTx) CreateRequest(ctx context.Context, senderID, receiverID uint) (*models.FollowRequest, error) {
	req := models.FollowRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.FollowRequestStatusPending,
	}
	if err := t.db.WithContext(ctx).Create(&req).Error; err != nil {
		return nil, translate(err, "User not found")
	}
	return &req, nil
}

func (t *relationshipTx) DeleteRequest(ctx context.Context, id uint) (bool, error) {
	result := t.db.WithContext(ctx).Where("id = ?", id).Delete(&models.FollowRequest{})
	if result.Error != nil {
		return false, translate(result.Error, "Follow request not found")
	}
	return result.RowsAffected > 0, nil
}

func (t *relationshipTx) ListRequestsTo(ctx context.Context, receiverID uint) ([]models.FollowRequest, error) {
	var requests []models.FollowRequest
	err := t.db.WithContext(ctx).
		Where("receiver_id = ?", receiverID).
		Order("id").
		Find(&requests).Error
	return requests, translate(err, "Follow request not found")
}

func (t *relationshipTx) AdjustCounters(ctx context.Context, userID uint, followersDelta, followingDelta int) error {
	updates := map[string]interface{}{}
	if followersDelta != 0 {
		updates["followers_count"] = gorm.Expr("GREATEST(followers_count + ?, 0)", followersDelta)
	}
	if followingDelta != 0 {
		updates["following_count"] = gorm.Expr("GREATEST(following_count + ?, 0)", followingDelta)
	}
	if len(updates) == 0 {
		return nil
	}

	result := t.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).UpdateColumns(updates)
	if result.Error != nil {
		return translate(result.Error, "User not found")
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "User not found")
	}
	return nil
}

func (t *relationshipTx) SetPrivate(ctx context.Context, userID uint, private bool) error {
	result := t.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).UpdateColumn("is_private", private)
	if result.Error != nil {
		return translate(result.Error, "User not found")
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "User not found")
	}
	return nil
}

func existsFollow(db *gorm.DB, followerID, followingID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "Follow not found")
	}
	return count > 0, nil
}

// findRequest returns nil, nil when the scoped query matches nothing.
func findRequest(db *gorm.DB) (*models.FollowRequest, error) {
	var req models.FollowRequest
	result := db.Limit(1).Find(&req)
	if result.Error != nil {
		return nil, translate(result.Error, "Follow request not found")
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &req, nil
}

func findUser(db *gorm.DB) (*models.User, error) {
	var user models.User
	if err := db.First(&user).Error; err != nil {
		return nil, translate(err, "User not found")
	}
	return &user, nil
}
