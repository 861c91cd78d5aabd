package relationship

import (
	"context"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
)

// Action is what the viewer can currently do about a target account.
type Action string

const (
	ActionSelf          Action = "self"
	ActionFollow        Action = "follow"
	ActionSendRequest   Action = "send_request"
	ActionCancelRequest Action = "cancel_request"
	ActionUnfollow      Action = "unfollow"
)

// Decision carries the action plus the pending request it was derived from, if any.
type Decision struct {
	Action  Action
	Request *models.FollowRequest
}

// ResolveAction classifies the viewer's relationship to target. It is read-only.
func ResolveAction(ctx context.Context, r Reader, viewerID uint, target *models.User) (Decision, error) {
	if viewerID == target.ID {
		return Decision{Action: ActionSelf}, nil
	}

	following, err := r.ExistsFollow(ctx, viewerID, target.ID)
	if err != nil {
		return Decision{}, err
	}
	if following {
		return Decision{Action: ActionUnfollow}, nil
	}

	if !target.IsPrivate {
		return Decision{Action: ActionFollow}, nil
	}

	req, err := r.FindRequest(ctx, viewerID, target.ID)
	if err != nil {
		return Decision{}, err
	}
	if req != nil {
		return Decision{Action: ActionCancelRequest, Request: req}, nil
	}
	return Decision{Action: ActionSendRequest}, nil
}

// CanView reports whether viewer may see target's private content.
func CanView(ctx context.Context, r Reader, viewerID uint, target *models.User) (bool, error) {
	if !target.IsPrivate || viewerID == target.ID {
		return true, nil
	}
	if viewerID == 0 {
		return false, nil
	}
	return r.ExistsFollow(ctx, viewerID, target.ID)
}
