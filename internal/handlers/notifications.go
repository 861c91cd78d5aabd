package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
)

type NotificationHandler struct {
	notifications Notifications
}

func NewNotificationHandler(notifications Notifications) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

type notificationView struct {
	ID        uint               `json:"id"`
	Actor     models.UserSummary `json:"actor"`
	Type      string             `json:"type"`
	Target    notificationTarget `json:"target"`
	Title     string             `json:"title"`
	Link      string             `json:"link"`
	Read      bool               `json:"read"`
	CreatedAt time.Time          `json:"createdAt"`
}

type notificationTarget struct {
	ID    uint   `json:"id"`
	Model string `json:"model"`
}

// GetAll returns the newest notifications and marks them read
func (h *NotificationHandler) GetAll(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, validationError(err))
		return
	}
	limit, skip := q.resolve(0)

	page, err := h.notifications.List(c.Request.Context(), user.ID, limit, skip)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]notificationView, 0, len(page.Notifications))
	for _, n := range page.Notifications {
		views = append(views, notificationView{
			ID:        n.ID,
			Actor:     n.Actor.Summary(),
			Type:      n.Type,
			Target:    notificationTarget{ID: n.TargetID, Model: n.TargetModel},
			Title:     n.Title,
			Link:      n.Link,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Notifications fetched successfully",
		"notifications": views,
		"unreadCount":   page.UnreadCount,
		"pagination": gin.H{
			"skip":    page.Skip,
			"limit":   page.Limit,
			"fetched": len(views),
		},
	})
}
