package relationship

import (
	"context"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
)

// Reader answers edge-existence questions. Both Store and Tx implement it so
// the Privacy Gate can classify inside or outside a transaction.
type Reader interface {
	ExistsFollow(ctx context.Context, followerID, followingID uint) (bool, error)
	// FindRequest returns nil, nil when no pending request exists.
	FindRequest(ctx context.Context, senderID, receiverID uint) (*models.FollowRequest, error)
}

// Tx is the set of mutations that must commit or roll back together.
//
// CreateFollow and CreateRequest return a CONFLICT AppError when the pair's
// uniqueness constraint rejects the write. Delete methods report whether a
// row was removed.
type Tx interface {
	Reader

	// LockPair serializes every transaction touching the ordered pair (a, b).
	LockPair(ctx context.Context, a, b uint) error
	FindUserByID(ctx context.Context, id uint) (*models.User, error)

	CreateFollow(ctx context.Context, followerID, followingID uint) error
	DeleteFollow(ctx context.Context, followerID, followingID uint) (bool, error)

	CreateRequest(ctx context.Context, senderID, receiverID uint) (*models.FollowRequest, error)
	FindRequestByID(ctx context.Context, id uint) (*models.FollowRequest, error)
	DeleteRequest(ctx context.Context, id uint) (bool, error)
	ListRequestsTo(ctx context.Context, receiverID uint) ([]models.FollowRequest, error)

	// AdjustCounters applies the deltas to the user's cached counters, flooring each at zero.
	AdjustCounters(ctx context.Context, userID uint, followersDelta, followingDelta int) error
	SetPrivate(ctx context.Context, userID uint, private bool) error
}

type Store interface {
	Reader

	FindUserByID(ctx context.Context, id uint) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)

	ListFollowers(ctx context.Context, userID uint, limit, skip int) ([]models.User, error)
	ListFollowing(ctx context.Context, userID uint, limit, skip int) ([]models.User, error)
	// ListMutual returns the follower side of every edge between a and b, in either direction.
	ListMutual(ctx context.Context, a, b uint) ([]models.User, error)
	ListPendingRequests(ctx context.Context, receiverID uint) ([]models.FollowRequest, error)

	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Notifier is the best-effort fan-out used after a relationship change commits.
type Notifier interface {
	Emit(ctx context.Context, n models.Notification)
	Retract(ctx context.Context, key models.NotificationKey)
}
