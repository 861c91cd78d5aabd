package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
	"github.com/emilythestrangee/social-graph/backend/pkg/errors"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type stubUsers map[uint]*models.User

func (s stubUsers) FindByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := s[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, errors.New(errors.ErrCodeNotFound, "User not found")
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(s *Sessions) *gin.Engine {
	r := gin.New()
	r.POST("/login", func(c *gin.Context) {
		u := &models.User{ID: 1, TokenVersion: 0}
		if err := s.Issue(c, u); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	r.GET("/private", s.RequireAuth(), func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.String(http.StatusOK, user.Username)
	})
	r.GET("/public", s.OptionalAuth(), func(c *gin.Context) {
		if user, ok := CurrentUser(c); ok {
			c.String(http.StatusOK, user.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	return r
}

func sessionCookie(t *testing.T, r *gin.Engine) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			assert.True(t, c.HttpOnly)
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func get(r *gin.Engine, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	users := stubUsers{1: {ID: 1, Username: "alice"}}
	r := newRouter(NewSessions(testSecret, time.Hour, false, users))
	cookie := sessionCookie(t, r)

	w := get(r, "/private", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())

	w = get(r, "/private", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), errors.ErrCodeUnauthorized)

	w = get(r, "/private", &http.Cookie{Name: CookieName, Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type failingUsers struct{ err error }

func (f failingUsers) FindByID(context.Context, uint) (*models.User, error) {
	return nil, f.err
}

func TestRequireAuth_LookupFailureIsServerError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{
			name:   "transient",
			err:    errors.Wrap(context.DeadlineExceeded, errors.ErrCodeTransient, "Database unavailable"),
			status: http.StatusServiceUnavailable,
			code:   errors.ErrCodeTransient,
		},
		{
			name:   "unexpected",
			err:    context.Canceled,
			status: http.StatusInternalServerError,
			code:   errors.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(NewSessions(testSecret, time.Hour, false, failingUsers{err: tt.err}))
			cookie := sessionCookie(t, r)

			w := get(r, "/private", cookie)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.code)

			w = get(r, "/public", cookie)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "anonymous", w.Body.String())
		})
	}
}

func TestRequireAuth_RejectsStaleTokenVersion(t *testing.T) {
	users := stubUsers{1: {ID: 1, Username: "alice"}}
	r := newRouter(NewSessions(testSecret, time.Hour, false, users))
	cookie := sessionCookie(t, r)

	users[1].TokenVersion = 1

	w := get(r, "/private", cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_RejectsForeignSignature(t *testing.T) {
	users := stubUsers{1: {ID: 1, Username: "alice"}}
	r := newRouter(NewSessions(testSecret, time.Hour, false, users))

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{ID: 1})
	value, err := forged.SignedString([]byte("another-secret-another-secret-xx"))
	require.NoError(t, err)

	w := get(r, "/private", &http.Cookie{Name: CookieName, Value: value})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_RejectsExpiredToken(t *testing.T) {
	users := stubUsers{1: {ID: 1, Username: "alice"}}
	r := newRouter(NewSessions(testSecret, time.Hour, false, users))

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
		ID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	value, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)

	w := get(r, "/private", &http.Cookie{Name: CookieName, Value: value})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	users := stubUsers{1: {ID: 1, Username: "alice"}}
	r := newRouter(NewSessions(testSecret, time.Hour, false, users))
	cookie := sessionCookie(t, r)

	assert.Equal(t, "alice", get(r, "/public", cookie).Body.String())
	assert.Equal(t, "anonymous", get(r, "/public", nil).Body.String())

	delete(users, 1)
	w := get(r, "/public", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	assert.Equal(t, generated, w.Body.String())

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid\n")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid\n", w.Header().Get(RequestIDHeader))
}
