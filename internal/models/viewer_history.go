package models

import "time"

// ViewerHistory records that User viewed TargetUser's profile.
type ViewerHistory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_viewer_pair" json:"userId"`
	User         User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	TargetUserID uint      `gorm:"not null;uniqueIndex:idx_viewer_pair;index" json:"targetUserId"`
	CreatedAt    time.Time `json:"createdAt"`
}
