package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
	"github.com/emilythestrangee/social-graph/backend/pkg/errors"
)

func TestUserRepository(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)

	u := createUser(t, users, "alice", false)
	assert.True(t, u.EnabledViewerHistory)

	dup := &models.User{FirstName: "x", LastName: "y", Username: "alice", Email: "other@example.com", Password: "h"}
	assert.Equal(t, errors.ErrCodeConflict, errors.CodeOf(users.Create(ctx, dup)))

	_, err := users.FindByUsername(ctx, "nobody")
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))

	require.NoError(t, users.BumpTokenVersion(ctx, u.ID))
	assert.Equal(t, 1, reload(t, users, u.ID).TokenVersion)

	enabled, err := users.ToggleViewerHistory(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, enabled)
	enabled, err = users.ToggleViewerHistory(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestViewerHistoryRepository(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	history := NewViewerHistoryRepository(db)
	a := createUser(t, users, "alice", false)
	b := createUser(t, users, "bob", false)

	require.NoError(t, history.Record(ctx, a.ID, b.ID))
	require.NoError(t, history.Record(ctx, a.ID, b.ID))
	require.NoError(t, history.Record(ctx, b.ID, b.ID))

	entries, err := history.ListViewersOf(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].User.Username)
}
