package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
	"github.com/emilythestrangee/social-graph/backend/pkg/errors"
	"github.com/emilythestrangee/social-graph/backend/pkg/logger"
)

const (
	CookieName = "token"
	// UserKey holds the authenticated *models.User in the gin context.
	UserKey = "user"
)

// UserClaims is the payload of a session token.
type UserClaims struct {
	ID           uint `json:"id"`
	TokenVersion int  `json:"tokenVersion"`
	jwt.RegisteredClaims
}

// UserFinder loads the account a token was issued for.
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// Sessions issues and verifies the session cookie.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
	users  UserFinder
}

func NewSessions(secret string, ttl time.Duration, secure bool, users UserFinder) *Sessions {
	return &Sessions{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		users:  users,
	}
}

// Issue signs a token for user and sets it as an httpOnly cookie.
func (s *Sessions) Issue(c *gin.Context, user *models.User) error {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
		ID:           user.ID,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "Failed to generate token")
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, tokenString, int(s.ttl.Seconds()), "/", "", s.secure, true)
	return nil
}

func (s *Sessions) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", s.secure, true)
}

// RequireAuth rejects the request with 401 unless it carries a valid session.
func (s *Sessions) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.authenticate(c)
		if err != nil {
			code := errors.CodeOf(err)
			status := errors.HTTPStatus(code)
			if status >= http.StatusInternalServerError {
				logger.Error("session lookup failed",
					"request_id", GetRequestID(c),
					"path", c.FullPath(),
					"error", err,
				)
			}
			c.AbortWithStatusJSON(status, gin.H{
				"message": errors.MessageOf(err),
				"code":    code,
			})
			return
		}
		c.Set(UserKey, user)
		c.Next()
	}
}

// OptionalAuth attaches the session user when present and valid, and never rejects.
func (s *Sessions) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.authenticate(c)
		switch {
		case err == nil:
			c.Set(UserKey, user)
		case !errors.Is(err, errors.ErrCodeUnauthorized):
			logger.Warn("session lookup failed, continuing anonymously",
				"request_id", GetRequestID(c), "error", err)
		}
		c.Next()
	}
}

func (s *Sessions) authenticate(c *gin.Context) (*models.User, error) {
	tokenString, err := c.Cookie(CookieName)
	if err != nil || tokenString == "" {
		return nil, errors.New(errors.ErrCodeUnauthorized, "Unauthorized: no token provided")
	}

	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, errors.Wrap(err, errors.ErrCodeUnauthorized, "Unauthorized: invalid token")
	}

	user, err := s.users.FindByID(c.Request.Context(), claims.ID)
	switch {
	case errors.Is(err, errors.ErrCodeNotFound):
		return nil, errors.Wrap(err, errors.ErrCodeUnauthorized, "Unauthorized: user not found")
	case errors.CodeOf(err) == errors.ErrCodeTransient:
		return nil, err
	case err != nil:
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "Server error")
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, errors.New(errors.ErrCodeUnauthorized, "Unauthorized: session expired")
	}
	return user, nil
}

// CurrentUser returns the user attached by RequireAuth or OptionalAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

var errNoUser = stderrors.New("no authenticated user")

// MustCurrentUser is CurrentUser for routes behind RequireAuth.
func MustCurrentUser(c *gin.Context) (*models.User, error) {
	user, ok := CurrentUser(c)
	if !ok {
		return nil, errors.Wrap(errNoUser, errors.ErrCodeUnauthorized, "Unauthorized")
	}
	return user, nil
}
