package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/emilythestrangee/social-graph/backend/internal/middleware"
	"github.com/emilythestrangee/social-graph/backend/internal/models"
	"github.com/emilythestrangee/social-graph/backend/pkg/errors"
)

type AuthHandler struct {
	accounts Accounts
	sessions *middleware.Sessions
}

func NewAuthHandler(accounts Accounts, sessions *middleware.Sessions) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessions: sessions}
}

// Signup creates an account and starts a session for it
func (h *AuthHandler) Signup(c *gin.Context) {
	var input models.SignupRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, validationError(err))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeInternalError, "Failed to hash password"))
		return
	}

	user := models.User{
		FirstName:            strings.TrimSpace(input.FirstName),
		LastName:             strings.TrimSpace(input.LastName),
		Username:             input.Username,
		Email:                strings.ToLower(input.Email),
		Password:             string(hashedPassword),
		EnabledViewerHistory: true,
	}

	if err := h.accounts.Create(c.Request.Context(), &user); err != nil {
		if errors.Is(err, errors.ErrCodeConflict) {
			err = errors.Wrap(err, errors.ErrCodeConflict, "Username or email already exists")
		}
		respondError(c, err)
		return
	}

	if err := h.sessions.Issue(c, &user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

// Login checks credentials and starts a session
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, validationError(err))
		return
	}

	invalid := errors.New(errors.ErrCodeUnauthorized, "Invalid credentials")

	user, err := h.accounts.FindByEmail(c.Request.Context(), strings.ToLower(input.Email))
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			err = invalid
		}
		respondError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		respondError(c, invalid)
		return
	}

	if err := h.sessions.Issue(c, user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
	})
}

// Logout clears the cookie and revokes every token issued so far
func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.accounts.BumpTokenVersion(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}
	h.sessions.Clear(c)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// GetMe returns the current authenticated user
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
