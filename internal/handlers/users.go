package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/social-graph/backend/internal/middleware"
	"github.com/emilythestrangee/social-graph/backend/pkg/logger"
)

type UserHandler struct {
	relationships Relationships
	accounts      Accounts
	history       ViewerHistory
}

func NewUserHandler(relationships Relationships, accounts Accounts, history ViewerHistory) *UserHandler {
	return &UserHandler{relationships: relationships, accounts: accounts, history: history}
}

// GetUserProfile returns a user's profile and records the view
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	var uri usernameURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, validationError(err))
		return
	}

	viewer, _ := middleware.CurrentUser(c)
	profile, err := h.relationships.Profile(c.Request.Context(), viewer, uri.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	if viewer != nil && viewer.EnabledViewerHistory && viewer.ID != profile.User.ID {
		// A lost view record must not fail the profile read.
		if err := h.history.Record(c.Request.Context(), viewer.ID, profile.User.ID); err != nil {
			logger.Warn("failed to record profile view",
				"request_id", middleware.GetRequestID(c),
				"viewer_id", viewer.ID,
				"target_id", profile.User.ID,
				"error", err,
			)
		}
	}

	resp := gin.H{
		"message": "User found",
		"user":    profile.User,
		"canView": profile.CanView,
	}
	if profile.Action != "" {
		resp["action"] = profile.Action
	}
	c.JSON(http.StatusOK, resp)
}

// TogglePrivate flips the account between public and private
func (h *UserHandler) TogglePrivate(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	private, converted, err := h.relationships.TogglePrivacy(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Account is now public"
	if private {
		message = "Account is now private"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":           message,
		"isPrivate":         private,
		"convertedRequests": converted,
	})
}
