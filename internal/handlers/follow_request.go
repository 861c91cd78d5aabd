package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
)

type FollowRequestHandler struct {
	relationships Relationships
}

func NewFollowRequestHandler(relationships Relationships) *FollowRequestHandler {
	return &FollowRequestHandler{relationships: relationships}
}

type followRequestView struct {
	ID        uint               `json:"id"`
	Sender    models.UserSummary `json:"sender"`
	Status    string             `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
}

// GetRequests lists pending follow requests addressed to a private caller
func (h *FollowRequestHandler) GetRequests(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	requests, err := h.relationships.PendingRequests(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]followRequestView, 0, len(requests))
	for _, req := range requests {
		views = append(views, followRequestView{
			ID:        req.ID,
			Sender:    req.Sender.Summary(),
			Status:    req.Status,
			CreatedAt: req.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"requests": views})
}

// ConfirmRequest turns a pending request into a follow
func (h *FollowRequestHandler) ConfirmRequest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var uri requestURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, validationError(err))
		return
	}

	if err := h.relationships.ConfirmRequest(c.Request.Context(), user, uri.RequestID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Follow request confirmed"})
}

// RejectRequest drops a pending request
func (h *FollowRequestHandler) RejectRequest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var uri requestURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, validationError(err))
		return
	}

	if err := h.relationships.RejectRequest(c.Request.Context(), user, uri.RequestID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Follow request rejected"})
}
