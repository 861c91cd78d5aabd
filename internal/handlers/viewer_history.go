package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
	"github.com/emilythestrangee/social-graph/backend/pkg/errors"
)

type ViewerHistoryHandler struct {
	accounts Accounts
	history  ViewerHistory
}

func NewViewerHistoryHandler(accounts Accounts, history ViewerHistory) *ViewerHistoryHandler {
	return &ViewerHistoryHandler{accounts: accounts, history: history}
}

type viewerView struct {
	Viewer   models.UserSummary `json:"viewer"`
	ViewedAt time.Time          `json:"viewedAt"`
}

// GetViewers lists who looked at the caller's profile
func (h *ViewerHistoryHandler) GetViewers(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !user.EnabledViewerHistory {
		respondError(c, errors.New(errors.ErrCodeForbidden, "Viewer history is disabled"))
		return
	}

	entries, err := h.history.ListViewersOf(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]viewerView, 0, len(entries))
	for _, e := range entries {
		views = append(views, viewerView{Viewer: e.User.Summary(), ViewedAt: e.CreatedAt})
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Viewer history fetched successfully",
		"viewerHistory": views,
	})
}

// Toggle turns viewer history on or off for the caller
func (h *ViewerHistoryHandler) Toggle(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	enabled, err := h.accounts.ToggleViewerHistory(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Viewer history disabled"
	if enabled {
		message = "Viewer history enabled"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":              message,
		"enabledViewerHistory": enabled,
	})
}
