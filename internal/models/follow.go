package models

import "time"

// Follow is a directed edge from Follower to Following.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follow_pair;check:chk_follow_not_self,follower_id <> following_id" json:"followerId"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follow_pair;index" json:"followingId"`
	Follower    User      `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Following   User      `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}

const FollowRequestStatusPending = "pending"

// FollowRequest is a pending request addressed to a private account.
// Acceptance deletes it and creates a Follow; it is never updated in place.
type FollowRequest struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;uniqueIndex:idx_follow_request_pair;check:chk_request_not_self,sender_id <> receiver_id" json:"senderId"`
	ReceiverID uint      `gorm:"not null;uniqueIndex:idx_follow_request_pair;index" json:"receiverId"`
	Sender     User      `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
	Receiver   User      `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"-"`
	Status     string    `gorm:"type:varchar(20);default:'pending';not null" json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}
