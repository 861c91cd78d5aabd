package notification

import (
	"context"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
	"github.com/emilythestrangee/social-graph/backend/pkg/logger"
)

// Fanout writes notifications that mirror relationship changes. Failures are
// logged and swallowed: a relationship change never rolls back because its
// notification could not be written.
type Fanout struct {
	repo   Repository
	policy *bluemonday.Policy
	log    *zap.SugaredLogger
}

func NewFanout(repo Repository) *Fanout {
	return &Fanout{
		repo:   repo,
		policy: bluemonday.StrictPolicy(),
		log:    logger.Named("fanout"),
	}
}

func (f *Fanout) Emit(ctx context.Context, n models.Notification) {
	n.ID = 0
	n.Read = false
	n.Title = f.policy.Sanitize(n.Title)

	if err := f.repo.Create(ctx, &n); err != nil {
		f.log.Warnw("Failed to create notification",
			"recipient_id", n.RecipientID,
			"actor_id", n.ActorID,
			"type", n.Type,
			"error", err,
		)
	}
}

func (f *Fanout) Retract(ctx context.Context, key models.NotificationKey) {
	if err := f.repo.DeleteByKey(ctx, key); err != nil {
		f.log.Warnw("Failed to delete notification",
			"recipient_id", key.RecipientID,
			"actor_id", key.ActorID,
			"type", key.Type,
			"target_id", key.TargetID,
			"target_model", key.TargetModel,
			"error", err,
		)
	}
}
