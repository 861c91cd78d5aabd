package handlers

import (
	"context"

	"github.com/emilythestrangee/social-graph/backend/internal/middleware"
	"github.com/emilythestrangee/social-graph/backend/internal/models"
	"github.com/emilythestrangee/social-graph/backend/internal/notification"
	"github.com/emilythestrangee/social-graph/backend/internal/relationship"
)

// Relationships is the relationship engine as the HTTP layer uses it.
type Relationships interface {
	Toggle(ctx context.Context, actor *models.User, targetUsername string) (relationship.Result, error)
	RemoveFollower(ctx context.Context, target *models.User, followerID uint) (*models.User, error)
	ConfirmRequest(ctx context.Context, receiver *models.User, requestID uint) error
	RejectRequest(ctx context.Context, receiver *models.User, requestID uint) error
	TogglePrivacy(ctx context.Context, user *models.User) (bool, int, error)
	Status(ctx context.Context, viewer *models.User, username string) (relationship.Decision, error)
	IsFollowing(ctx context.Context, viewer *models.User, username string) (bool, error)
	Followers(ctx context.Context, username string, limit, skip int) ([]models.User, error)
	Following(ctx context.Context, username string, limit, skip int) ([]models.User, error)
	Mutual(ctx context.Context, username1, username2 string) ([]models.User, error)
	PendingRequests(ctx context.Context, receiver *models.User) ([]models.FollowRequest, error)
	Profile(ctx context.Context, viewer *models.User, username string) (*relationship.Profile, error)
}

// Accounts is the user repository as the HTTP layer uses it.
type Accounts interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	BumpTokenVersion(ctx context.Context, id uint) error
	ToggleViewerHistory(ctx context.Context, id uint) (bool, error)
}

type ViewerHistory interface {
	Record(ctx context.Context, viewerID, targetID uint) error
	ListViewersOf(ctx context.Context, targetID uint) ([]models.ViewerHistory, error)
}

type Notifications interface {
	List(ctx context.Context, recipientID uint, limit, skip int) (*notification.Page, error)
}

// Deps collects what the handlers are built from.
type Deps struct {
	Relationships Relationships
	Accounts      Accounts
	ViewerHistory ViewerHistory
	Notifications Notifications
	Sessions      *middleware.Sessions
}

// Handler combines all handler types
type Handler struct {
	Auth          *AuthHandler
	User          *UserHandler
	Follow        *FollowHandler
	FollowRequest *FollowRequestHandler
	Notification  *NotificationHandler
	ViewerHistory *ViewerHistoryHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(deps Deps) *Handler {
	return &Handler{
		Auth:          NewAuthHandler(deps.Accounts, deps.Sessions),
		User:          NewUserHandler(deps.Relationships, deps.Accounts, deps.ViewerHistory),
		Follow:        NewFollowHandler(deps.Relationships),
		FollowRequest: NewFollowRequestHandler(deps.Relationships),
		Notification:  NewNotificationHandler(deps.Notifications),
		ViewerHistory: NewViewerHistoryHandler(deps.Accounts, deps.ViewerHistory),
	}
}
