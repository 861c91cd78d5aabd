package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/social-graph/backend/pkg/errors"
)

func TestViewerHistory(t *testing.T) {
	e := newEnv(t)
	listRoute := "/api/viewerHistory"
	toggleHistoryRoute := "/api/viewerHistory/toggle"

	serve(http.MethodGet, profileRoute, "/api/user/bob", e.fresh(e.alice), "", e.handler.User.GetUserProfile)

	w := serve(http.MethodGet, listRoute, listRoute, e.fresh(e.bob), "", e.handler.ViewerHistory.GetViewers)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode(t, w)["viewerHistory"].([]interface{})
	require.Len(t, entries, 1)
	viewer := entries[0].(map[string]interface{})["viewer"].(map[string]interface{})
	assert.Equal(t, "alice", viewer["username"])

	w = serve(http.MethodPost, toggleHistoryRoute, toggleHistoryRoute, e.fresh(e.bob), "", e.handler.ViewerHistory.Toggle)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["enabledViewerHistory"])
	assert.Equal(t, "Viewer history disabled", body["message"])

	w = serve(http.MethodGet, listRoute, listRoute, e.fresh(e.bob), "", e.handler.ViewerHistory.GetViewers)
	body = requireError(t, w, http.StatusForbidden, errors.ErrCodeForbidden)
	assert.Equal(t, "Viewer history is disabled", body["message"])

	w = serve(http.MethodPost, toggleHistoryRoute, toggleHistoryRoute, e.fresh(e.bob), "", e.handler.ViewerHistory.Toggle)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["enabledViewerHistory"])
}
