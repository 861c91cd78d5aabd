package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/social-graph/backend/internal/middleware"
	"github.com/emilythestrangee/social-graph/backend/internal/models"
	"github.com/emilythestrangee/social-graph/backend/pkg/errors"
	"github.com/emilythestrangee/social-graph/backend/pkg/logger"
)

// respondError writes err as {"message", "code"}. Server-side failures are logged.
func respondError(c *gin.Context, err error) {
	code := errors.CodeOf(err)
	status := errors.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"request_id", middleware.GetRequestID(c),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"message": errors.MessageOf(err),
		"code":    code,
	})
}

// currentUser returns the authenticated user or writes a 401.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, err := middleware.MustCurrentUser(c)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return user, true
}
