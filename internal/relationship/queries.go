package relationship

import (
	"context"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
	"github.com/emilythestrangee/social-graph/backend/pkg/errors"
)

// Profile is what a viewer gets to see about an account.
type Profile struct {
	User    *models.User
	CanView bool
	Action  Action
}

// Followers lists who follows the named user, newest edge first.
func (e *Engine) Followers(ctx context.Context, username string, limit, skip int) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	user, err := e.store.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, classify(err)
	}
	users, err := e.store.ListFollowers(ctx, user.ID, limit, skip)
	return users, classify(err)
}

// Following lists who the named user follows, newest edge first.
func (e *Engine) Following(ctx context.Context, username string, limit, skip int) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	user, err := e.store.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, classify(err)
	}
	users, err := e.store.ListFollowing(ctx, user.ID, limit, skip)
	return users, classify(err)
}

// Mutual returns the follower side of every edge between the two users.
func (e *Engine) Mutual(ctx context.Context, username1, username2 string) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	u1, err := e.store.FindUserByUsername(ctx, username1)
	if err != nil {
		return nil, classify(err)
	}
	u2, err := e.store.FindUserByUsername(ctx, username2)
	if err != nil {
		return nil, classify(err)
	}
	users, err := e.store.ListMutual(ctx, u1.ID, u2.ID)
	return users, classify(err)
}

// PendingRequests lists requests addressed to receiver. Public accounts have none to review.
func (e *Engine) PendingRequests(ctx context.Context, receiver *models.User) ([]models.FollowRequest, error) {
	if !receiver.IsPrivate {
		return nil, errors.New(errors.ErrCodeForbidden, "This account is public")
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	requests, err := e.store.ListPendingRequests(ctx, receiver.ID)
	return requests, classify(err)
}

// Profile loads the named account and resolves what viewer may do and see.
// viewer is nil for anonymous requests.
func (e *Engine) Profile(ctx context.Context, viewer *models.User, username string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	target, err := e.store.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, classify(err)
	}

	var viewerID uint
	if viewer != nil {
		viewerID = viewer.ID
	}
	canView, err := CanView(ctx, e.store, viewerID, target)
	if err != nil {
		return nil, classify(err)
	}

	profile := &Profile{User: target, CanView: canView}
	if viewer != nil {
		decision, err := ResolveAction(ctx, e.store, viewerID, target)
		if err != nil {
			return nil, classify(err)
		}
		profile.Action = decision.Action
	}
	return profile, nil
}
