package models

import "time"

type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	FirstName string `gorm:"not null" json:"firstName"`
	LastName  string `gorm:"not null" json:"lastName"`
	Username  string `gorm:"uniqueIndex;size:35;not null" json:"username"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	Bio       string `json:"bio"`
	Avatar    string `json:"profilePicture"`
	Verified  bool   `gorm:"default:false" json:"verified"`

	// Bumped on logout so that previously issued session tokens stop working
	TokenVersion int `gorm:"default:0" json:"-"`

	IsPrivate            bool `gorm:"default:false" json:"isPrivate"`
	EnabledViewerHistory bool `gorm:"default:true" json:"enabledViewerHistory"`

	// Cached edge counts, adjusted in the same transaction as the edge itself
	FollowersCount uint `gorm:"default:0;not null" json:"followersCount"`
	FollowingCount uint `gorm:"default:0;not null" json:"followingCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserSummary is the public projection embedded in lists.
type UserSummary struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Avatar    string `json:"profilePicture"`
	Verified  bool   `json:"verified"`
}

func (u User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Avatar:    u.Avatar,
		Verified:  u.Verified,
	}
}

func (u User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

type SignupRequest struct {
	FirstName string `json:"firstName" binding:"required,min=3,max=10"`
	LastName  string `json:"lastName" binding:"required,min=3,max=10"`
	Username  string `json:"username" binding:"required,username"`
	Email     string `json:"email" binding:"required,email,max=35"`
	Password  string `json:"password" binding:"required,min=6,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=255"`
}
