package models

import "time"

// Notification types
const (
	NotificationFollow        = "follow"
	NotificationFollowRequest = "FollowRequest"
	NotificationComment       = "comment"
	NotificationReply         = "reply"
	NotificationLike          = "like"
	NotificationViewer        = "viewer"
)

// Notification target models
const (
	TargetFollow        = "Follow"
	TargetFollowRequest = "FollowRequest"
	TargetPost          = "Post"
	TargetComment       = "Comment"
	TargetReplyComment  = "ReplyComment"
	TargetUser          = "User"
	TargetViewerHistory = "ViewerHistory"
)

type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RecipientID uint      `gorm:"not null;index:idx_notification_recipient_created,priority:1;index:idx_notification_recipient_read,priority:1;index:idx_notification_key,priority:1" json:"recipientId"`
	ActorID     uint      `gorm:"not null;index:idx_notification_key,priority:2" json:"actorId"`
	Actor       User      `gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE" json:"actor"`
	Type        string    `gorm:"type:varchar(20);not null;index:idx_notification_key,priority:3" json:"type"`
	TargetID    uint      `gorm:"not null;index:idx_notification_key,priority:4" json:"targetId"`
	TargetModel string    `gorm:"type:varchar(20);not null;index:idx_notification_key,priority:5" json:"targetModel"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Read        bool      `gorm:"default:false;not null;index:idx_notification_recipient_read,priority:2" json:"read"`
	CreatedAt   time.Time `gorm:"index:idx_notification_recipient_created,priority:2" json:"createdAt"`
}

// NotificationKey identifies the notification mirroring a relationship edge.
type NotificationKey struct {
	RecipientID uint
	ActorID     uint
	Type        string
	TargetID    uint
	TargetModel string
}

func (n Notification) Key() NotificationKey {
	return NotificationKey{
		RecipientID: n.RecipientID,
		ActorID:     n.ActorID,
		Type:        n.Type,
		TargetID:    n.TargetID,
		TargetModel: n.TargetModel,
	}
}
