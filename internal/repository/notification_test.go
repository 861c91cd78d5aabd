package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
	"github.com/emilythestrangee/social-graph/backend/internal/notification"
)

func TestNotificationRepository_DeleteByKeyRemovesOne(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	repo := NewNotificationRepository(db)
	a := createUser(t, users, "alice", false)
	b := createUser(t, users, "bob", false)

	n := models.Notification{
		RecipientID: b.ID,
		ActorID:     a.ID,
		Type:        models.NotificationFollow,
		TargetID:    b.ID,
		TargetModel: models.TargetFollow,
	}
	first, second := n, n
	require.NoError(t, repo.Create(ctx, &first))
	require.NoError(t, repo.Create(ctx, &second))

	require.NoError(t, repo.DeleteByKey(ctx, n.Key()))
	unread, err := repo.CountUnread(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	missing := n.Key()
	missing.TargetModel = models.TargetFollowRequest
	require.NoError(t, repo.DeleteByKey(ctx, missing))
	unread, err = repo.CountUnread(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestNotificationService_ListOnPostgres(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	repo := NewNotificationRepository(db)
	a := createUser(t, users, "alice", false)
	b := createUser(t, users, "bob", false)

	old := models.Notification{
		RecipientID: b.ID, ActorID: a.ID, Type: models.NotificationFollow,
		TargetID: b.ID, TargetModel: models.TargetFollow,
		CreatedAt: time.Now().Add(-40 * 24 * time.Hour),
	}
	fresh := old
	fresh.CreatedAt = time.Now()
	require.NoError(t, repo.Create(ctx, &old))
	require.NoError(t, repo.Create(ctx, &fresh))

	page, err := notification.NewService(repo, 30*24*time.Hour).List(ctx, b.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, fresh.ID, page.Notifications[0].ID)
	assert.Equal(t, "alice", page.Notifications[0].Actor.Username)
	assert.Zero(t, page.UnreadCount)
}
