package relationship

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
	"github.com/emilythestrangee/social-graph/backend/pkg/errors"
	"github.com/emilythestrangee/social-graph/backend/pkg/logger"
)

// Result is the outcome of a toggle.
type Result string

const (
	ResultUnfollowed       Result = "unfollowed"
	ResultRequestCancelled Result = "request_cancelled"
	ResultRequestSent      Result = "request_sent"
	ResultFollowed         Result = "followed"
)

// Number of times a toggle is re-resolved after a uniqueness conflict.
const maxConflictRetries = 1

// Engine orchestrates Follow/FollowRequest transitions, the counters they
// imply and the notifications that mirror them.
type Engine struct {
	store    Store
	notifier Notifier
	timeout  time.Duration
}

func NewEngine(store Store, notifier Notifier, timeout time.Duration) *Engine {
	return &Engine{
		store:    store,
		notifier: notifier,
		timeout:  timeout,
	}
}

// effects are applied after the transaction commits.
type effects struct {
	emit    []models.Notification
	retract []models.NotificationKey
}

// Toggle flips the actor's relationship to the user named targetUsername based
// on persisted state: unfollow, cancel a pending request, send a request to a
// private account, or follow a public one.
func (e *Engine) Toggle(ctx context.Context, actor *models.User, targetUsername string) (Result, error) {
	if actor.Username == targetUsername {
		return "", errors.New(errors.ErrCodeSelfReference, "You can't follow yourself")
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	target, err := e.store.FindUserByUsername(ctx, targetUsername)
	if err != nil {
		return "", classify(err)
	}
	if target.ID == actor.ID {
		return "", errors.New(errors.ErrCodeSelfReference, "You can't follow yourself")
	}

	var (
		result Result
		fx     effects
	)
	for attempt := 0; ; attempt++ {
		result, fx, err = e.toggleOnce(ctx, actor, target.ID)
		if errors.Is(err, errors.ErrCodeConflict) && attempt < maxConflictRetries {
			logger.Debug("Relationship conflict, re-resolving toggle",
				"actor_id", actor.ID, "target_id", target.ID, "attempt", attempt+1)
			continue
		}
		break
	}
	if err != nil {
		return "", classify(err)
	}

	e.apply(ctx, fx)
	return result, nil
}

func (e *Engine) toggleOnce(ctx context.Context, actor *models.User, targetID uint) (Result, effects, error) {
	var (
		result Result
		fx     effects
	)

	err := e.store.WithinTx(ctx, func(tx Tx) error {
		fx = effects{}

		if err := tx.LockPair(ctx, actor.ID, targetID); err != nil {
			return err
		}
		target, err := tx.FindUserByID(ctx, targetID)
		if err != nil {
			return err
		}

		decision, err := ResolveAction(ctx, tx, actor.ID, target)
		if err != nil {
			return err
		}

		switch decision.Action {
		case ActionUnfollow:
			removed, err := tx.DeleteFollow(ctx, actor.ID, target.ID)
			if err != nil {
				return err
			}
			if !removed {
				return errors.New(errors.ErrCodeConflict, "follow edge changed concurrently")
			}
			if err := adjustPair(ctx, tx, actor.ID, target.ID, -1); err != nil {
				return err
			}
			fx.retract = append(fx.retract, followNotificationKey(actor.ID, target.ID))
			result = ResultUnfollowed

		case ActionCancelRequest:
			removed, err := tx.DeleteRequest(ctx, decision.Request.ID)
			if err != nil {
				return err
			}
			if !removed {
				return errors.New(errors.ErrCodeConflict, "follow request changed concurrently")
			}
			fx.retract = append(fx.retract, requestNotificationKey(decision.Request))
			result = ResultRequestCancelled

		case ActionSendRequest:
			req, err := tx.CreateRequest(ctx, actor.ID, target.ID)
			if err != nil {
				return err
			}
			fx.emit = append(fx.emit, models.Notification{
				RecipientID: target.ID,
				ActorID:     actor.ID,
				Type:        models.NotificationFollowRequest,
				TargetID:    req.ID,
				TargetModel: models.TargetFollowRequest,
				Title:       fmt.Sprintf("%s sent you a follow request", actor.DisplayName()),
				Link:        "/" + actor.Username,
			})
			result = ResultRequestSent

		case ActionFollow:
			// A request left over from when the target was private must not
			// coexist with the edge.
			stale, err := tx.FindRequest(ctx, actor.ID, target.ID)
			if err != nil {
				return err
			}
			if stale != nil {
				if _, err := tx.DeleteRequest(ctx, stale.ID); err != nil {
					return err
				}
				fx.retract = append(fx.retract, requestNotificationKey(stale))
			}

			if err := tx.CreateFollow(ctx, actor.ID, target.ID); err != nil {
				return err
			}
			if err := adjustPair(ctx, tx, actor.ID, target.ID, 1); err != nil {
				return err
			}
			fx.emit = append(fx.emit, models.Notification{
				RecipientID: target.ID,
				ActorID:     actor.ID,
				Type:        models.NotificationFollow,
				TargetID:    target.ID,
				TargetModel: models.TargetFollow,
				Title:       fmt.Sprintf("%s started following you", actor.DisplayName()),
				Link:        "/" + actor.Username,
			})
			result = ResultFollowed

		default:
			return errors.New(errors.ErrCodeSelfReference, "You can't follow yourself")
		}
		return nil
	})

	return result, fx, err
}

// ConfirmRequest turns a pending request into a Follow edge. Only the
// receiver may confirm. The original request notification is left in place.
func (e *Engine) ConfirmRequest(ctx context.Context, receiver *models.User, requestID uint) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	err := e.store.WithinTx(ctx, func(tx Tx) error {
		req, err := e.claimRequest(ctx, tx, receiver, requestID, "confirm")
		if err != nil {
			return err
		}

		exists, err := tx.ExistsFollow(ctx, req.SenderID, req.ReceiverID)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		if err := tx.CreateFollow(ctx, req.SenderID, req.ReceiverID); err != nil {
			return err
		}
		return adjustPair(ctx, tx, req.SenderID, req.ReceiverID, 1)
	})
	return classify(err)
}

// RejectRequest deletes a pending request without creating an edge.
func (e *Engine) RejectRequest(ctx context.Context, receiver *models.User, requestID uint) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	err := e.store.WithinTx(ctx, func(tx Tx) error {
		_, err := e.claimRequest(ctx, tx, receiver, requestID, "reject")
		return err
	})
	return classify(err)
}

// claimRequest authorizes the receiver, locks the pair and deletes the request.
func (e *Engine) claimRequest(ctx context.Context, tx Tx, receiver *models.User, requestID uint, verb string) (*models.FollowRequest, error) {
	req, err := tx.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "Follow request not found")
	}
	if req.ReceiverID != receiver.ID {
		return nil, errors.New(errors.ErrCodeForbidden, fmt.Sprintf("You are not authorized to %s this request", verb))
	}

	if err := tx.LockPair(ctx, req.SenderID, req.ReceiverID); err != nil {
		return nil, err
	}
	removed, err := tx.DeleteRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, errors.New(errors.ErrCodeNotFound, "Follow request not found")
	}
	return req, nil
}

// RemoveFollower deletes the edge followerID -> target. Only target itself may call it.
func (e *Engine) RemoveFollower(ctx context.Context, target *models.User, followerID uint) (*models.User, error) {
	if followerID == target.ID {
		return nil, errors.New(errors.ErrCodeSelfReference, "You can't remove yourself as a follower")
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var follower *models.User
	err := e.store.WithinTx(ctx, func(tx Tx) error {
		if err := tx.LockPair(ctx, followerID, target.ID); err != nil {
			return err
		}
		removed, err := tx.DeleteFollow(ctx, followerID, target.ID)
		if err != nil {
			return err
		}
		if !removed {
			return errors.New(errors.ErrCodeNotFound, "Follower not found")
		}
		if follower, err = tx.FindUserByID(ctx, followerID); err != nil {
			return err
		}
		return adjustPair(ctx, tx, followerID, target.ID, -1)
	})
	if err != nil {
		return nil, classify(err)
	}
	return follower, nil
}

// TogglePrivacy flips the user's private flag. Going public converts every
// pending request addressed to the user into a Follow edge.
func (e *Engine) TogglePrivacy(ctx context.Context, user *models.User) (bool, int, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var (
		private   bool
		converted int
	)
	err := e.store.WithinTx(ctx, func(tx Tx) error {
		fresh, err := tx.FindUserByID(ctx, user.ID)
		if err != nil {
			return err
		}
		if !fresh.IsPrivate {
			private = true
			return tx.SetPrivate(ctx, user.ID, true)
		}
		private = false

		requests, err := tx.ListRequestsTo(ctx, user.ID)
		if err != nil {
			return err
		}
		// Take every pair lock before touching any row.
		sort.Slice(requests, func(i, j int) bool { return requests[i].SenderID < requests[j].SenderID })
		for _, req := range requests {
			if err := tx.LockPair(ctx, req.SenderID, user.ID); err != nil {
				return err
			}
		}

		var senders []uint
		for _, req := range requests {
			removed, err := tx.DeleteRequest(ctx, req.ID)
			if err != nil {
				return err
			}
			if !removed {
				continue
			}
			exists, err := tx.ExistsFollow(ctx, req.SenderID, user.ID)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := tx.CreateFollow(ctx, req.SenderID, user.ID); err != nil {
				return err
			}
			senders = append(senders, req.SenderID)
		}
		converted = len(senders)
		if err := adjustConverted(ctx, tx, user.ID, senders); err != nil {
			return err
		}
		return tx.SetPrivate(ctx, user.ID, false)
	})
	if err != nil {
		return false, 0, classify(err)
	}
	return private, converted, nil
}

// Status resolves the Privacy Gate action for viewer against the named user.
func (e *Engine) Status(ctx context.Context, viewer *models.User, username string) (Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	target, err := e.store.FindUserByUsername(ctx, username)
	if err != nil {
		return Decision{}, classify(err)
	}
	decision, err := ResolveAction(ctx, e.store, viewer.ID, target)
	if err != nil {
		return Decision{}, classify(err)
	}
	return decision, nil
}

// IsFollowing reports whether viewer follows the named user.
func (e *Engine) IsFollowing(ctx context.Context, viewer *models.User, username string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	target, err := e.store.FindUserByUsername(ctx, username)
	if err != nil {
		return false, classify(err)
	}
	ok, err := e.store.ExistsFollow(ctx, viewer.ID, target.ID)
	if err != nil {
		return false, classify(err)
	}
	return ok, nil
}

// apply runs notification side effects. The relationship change has already
// committed, so this uses a context that survives the caller's cancellation.
func (e *Engine) apply(ctx context.Context, fx effects) {
	if e.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	for _, key := range fx.retract {
		e.notifier.Retract(nctx, key)
	}
	for _, n := range fx.emit {
		e.notifier.Emit(nctx, n)
		// A later change to the pair may have retracted before this write landed.
		if !e.stillMirrored(nctx, n) {
			e.notifier.Retract(nctx, n.Key())
		}
	}
}

// stillMirrored reports whether the relationship behind n still exists. A
// request notification outlives its request once the request is confirmed.
// Lookup failures keep the notification.
func (e *Engine) stillMirrored(ctx context.Context, n models.Notification) bool {
	var (
		ok  bool
		err error
	)
	switch n.Type {
	case models.NotificationFollow:
		ok, err = e.store.ExistsFollow(ctx, n.ActorID, n.RecipientID)
	case models.NotificationFollowRequest:
		var req *models.FollowRequest
		req, err = e.store.FindRequest(ctx, n.ActorID, n.RecipientID)
		ok = req != nil && req.ID == n.TargetID
		if err == nil && !ok {
			ok, err = e.store.ExistsFollow(ctx, n.ActorID, n.RecipientID)
		}
	default:
		return true
	}
	if err != nil {
		logger.Warn("Failed to verify notification against relationship state",
			"recipient_id", n.RecipientID, "actor_id", n.ActorID, "type", n.Type, "error", err)
		return true
	}
	return ok
}

// adjustPair moves follower.followingCount and following.followersCount by
// delta. User rows are always updated in ascending id order.
func adjustPair(ctx context.Context, tx Tx, followerID, followingID uint, delta int) error {
	if followerID < followingID {
		if err := tx.AdjustCounters(ctx, followerID, 0, delta); err != nil {
			return err
		}
		return tx.AdjustCounters(ctx, followingID, delta, 0)
	}
	if err := tx.AdjustCounters(ctx, followingID, delta, 0); err != nil {
		return err
	}
	return tx.AdjustCounters(ctx, followerID, 0, delta)
}

// adjustConverted credits each sender's followingCount and the receiver's
// followersCount in ascending id order. senders must be sorted.
func adjustConverted(ctx context.Context, tx Tx, receiverID uint, senders []uint) error {
	if len(senders) == 0 {
		return nil
	}
	receiverDone := false
	for _, id := range senders {
		if !receiverDone && receiverID < id {
			if err := tx.AdjustCounters(ctx, receiverID, len(senders), 0); err != nil {
				return err
			}
			receiverDone = true
		}
		if err := tx.AdjustCounters(ctx, id, 0, 1); err != nil {
			return err
		}
	}
	if receiverDone {
		return nil
	}
	return tx.AdjustCounters(ctx, receiverID, len(senders), 0)
}

func followNotificationKey(actorID, targetID uint) models.NotificationKey {
	return models.NotificationKey{
		RecipientID: targetID,
		ActorID:     actorID,
		Type:        models.NotificationFollow,
		TargetID:    targetID,
		TargetModel: models.TargetFollow,
	}
}

func requestNotificationKey(req *models.FollowRequest) models.NotificationKey {
	return models.NotificationKey{
		RecipientID: req.ReceiverID,
		ActorID:     req.SenderID,
		Type:        models.NotificationFollowRequest,
		TargetID:    req.ID,
		TargetModel: models.TargetFollowRequest,
	}
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return errors.Wrap(err, errors.ErrCodeTransient, "relationship store timed out")
	}
	return errors.Wrap(err, errors.ErrCodeInternalError, "relationship operation failed")
}
