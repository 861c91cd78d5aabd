package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/social-graph/backend/internal/relationship"
	"github.com/emilythestrangee/social-graph/backend/pkg/errors"
)

const (
	defaultFollowersLimit = 10
	defaultFollowingLimit = 5
)

var toggleMessages = map[relationship.Result]string{
	relationship.ResultUnfollowed:       "Unfollowed successfully",
	relationship.ResultRequestCancelled: "Follow request cancelled",
	relationship.ResultRequestSent:      "Follow request sent",
	relationship.ResultFollowed:         "Followed successfully",
}

type FollowHandler struct {
	relationships Relationships
}

func NewFollowHandler(relationships Relationships) *FollowHandler {
	return &FollowHandler{relationships: relationships}
}

// ToggleFollow follows, unfollows, requests or cancels depending on current state
func (h *FollowHandler) ToggleFollow(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var uri usernameURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, validationError(err))
		return
	}

	result, err := h.relationships.Toggle(c.Request.Context(), user, uri.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": toggleMessages[result],
		"action":  result,
	})
}

// DeleteFollower removes one of the caller's followers
func (h *FollowHandler) DeleteFollower(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var uri followerDeleteURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, validationError(err))
		return
	}
	if uri.Username != user.Username {
		respondError(c, errors.New(errors.ErrCodeForbidden, "You can only remove your own followers"))
		return
	}

	follower, err := h.relationships.RemoveFollower(c.Request.Context(), user, uri.FollowerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Follower deleted successfully",
		"follower": follower.Summary(),
	})
}

// GetFollowers returns a page of a user's followers
func (h *FollowHandler) GetFollowers(c *gin.Context) {
	var uri usernameURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, validationError(err))
		return
	}
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, validationError(err))
		return
	}
	limit, skip := q.resolve(defaultFollowersLimit)

	users, err := h.relationships.Followers(c.Request.Context(), uri.Username, limit, skip)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Followers fetched successfully",
		"followers": summaries(users),
		"limit":     limit,
		"skip":      skip,
	})
}

// GetFollowing returns a page of users that a user is following
func (h *FollowHandler) GetFollowing(c *gin.Context) {
	var uri usernameURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, validationError(err))
		return
	}
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, validationError(err))
		return
	}
	limit, skip := q.resolve(defaultFollowingLimit)

	users, err := h.relationships.Following(c.Request.Context(), uri.Username, limit, skip)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Following fetched successfully",
		"following": summaries(users),
		"limit":     limit,
		"skip":      skip,
	})
}

func (h *FollowHandler) GetMutual(c *gin.Context) {
	var uri mutualURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, validationError(err))
		return
	}

	users, err := h.relationships.Mutual(c.Request.Context(), uri.Username1, uri.Username2)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Mutual followers fetched successfully",
		"mutualFollowers": summaries(users),
	})
}

// GetStatusFollow reports whether the caller follows the user
func (h *FollowHandler) GetStatusFollow(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var uri usernameURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, validationError(err))
		return
	}

	following, err := h.relationships.IsFollowing(c.Request.Context(), user, uri.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isFollowing": following})
}

// GetStatusFollowing returns what the caller can currently do about the user
func (h *FollowHandler) GetStatusFollowing(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var uri usernameURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, validationError(err))
		return
	}

	decision, err := h.relationships.Status(c.Request.Context(), user, uri.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"action": decision.Action}
	if decision.Action == relationship.ActionSelf {
		resp["message"] = "You can't follow yourself"
	}
	c.JSON(http.StatusOK, resp)
}
