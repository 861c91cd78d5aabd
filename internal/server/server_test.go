package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/social-graph/backend/internal/config"
	"github.com/emilythestrangee/social-graph/backend/internal/handlers"
	"github.com/emilythestrangee/social-graph/backend/internal/middleware"
	"github.com/emilythestrangee/social-graph/backend/internal/models"
	"github.com/emilythestrangee/social-graph/backend/internal/notification"
	"github.com/emilythestrangee/social-graph/backend/internal/relationship"
	"github.com/emilythestrangee/social-graph/backend/internal/relationship/relationshiptest"
)

type fakeHealth map[string]string

func (f fakeHealth) Health() map[string]string { return f }

type noHistory struct{}

func (noHistory) Record(context.Context, uint, uint) error { return nil }
func (noHistory) ListViewersOf(context.Context, uint) ([]models.ViewerHistory, error) {
	return nil, nil
}

type emptyNotifications struct{}

func (emptyNotifications) List(_ context.Context, _ uint, limit, skip int) (*notification.Page, error) {
	return &notification.Page{Limit: limit, Skip: skip}, nil
}

func newTestServer(t *testing.T, health fakeHealth) (*gin.Engine, *relationshiptest.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, handlers.RegisterValidators())

	store := relationshiptest.NewStore()
	accounts := store.Accounts()
	sessions := middleware.NewSessions("0123456789abcdef0123456789abcdef", time.Hour, false, accounts)

	s := &Server{
		cfg:      &config.Config{CORSOrigins: []string{"http://localhost:3000"}},
		db:       health,
		sessions: sessions,
		handler: handlers.NewHandler(handlers.Deps{
			Relationships: relationship.NewEngine(store, &relationshiptest.Notifier{}, time.Second),
			Accounts:      accounts,
			ViewerHistory: noHistory{},
			Notifications: emptyNotifications{},
			Sessions:      sessions,
		}),
	}
	return s.RegisterRoutes(), store
}

type client struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.CookieName {
			c.cookie = ck
		}
	}
	return w
}

func signup(t *testing.T, router *gin.Engine, username string) *client {
	t.Helper()
	c := &client{t: t, router: router}
	body := `{"firstName":"First","lastName":"Last","username":"` + username +
		`","email":"` + username + `@example.com","password":"secret1"}`
	w := c.do(http.MethodPost, "/api/auth/signup", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotNil(t, c.cookie)
	return c
}

func field(t *testing.T, w *httptest.ResponseRecorder, key string) interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body[key]
}

func TestHealth(t *testing.T) {
	router, _ := newTestServer(t, fakeHealth{"status": "up"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	router, _ = newTestServer(t, fakeHealth{"status": "down"})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRoutes_FollowFlow(t *testing.T) {
	router, store := newTestServer(t, fakeHealth{"status": "up"})
	alice := signup(t, router, "alice")
	bob := signup(t, router, "bob")

	w := alice.do(http.MethodPost, "/api/follow/toggleFollow/bob", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "followed", field(t, w, "action"))

	w = bob.do(http.MethodGet, "/api/follow/followers/bob", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, field(t, w, "followers"), 1)

	w = bob.do(http.MethodGet, "/api/user/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	me := field(t, w, "user").(map[string]interface{})
	assert.EqualValues(t, 1, me["followersCount"])

	w = bob.do(http.MethodPost, "/api/user/togglePrivate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, field(t, w, "isPrivate"))

	w = alice.do(http.MethodPost, "/api/follow/toggleFollow/bob", "")
	assert.Equal(t, "unfollowed", field(t, w, "action"))
	w = alice.do(http.MethodPost, "/api/follow/toggleFollow/bob", "")
	assert.Equal(t, "request_sent", field(t, w, "action"))

	w = bob.do(http.MethodGet, "/api/followRequest/requests", "")
	require.Equal(t, http.StatusOK, w.Code)
	requests := field(t, w, "requests").([]interface{})
	require.Len(t, requests, 1)
	id := requests[0].(map[string]interface{})["id"].(float64)

	w = bob.do(http.MethodPost, "/api/followRequest/confirm/"+jsonNumber(id), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	aliceUser, err := store.FindUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	bobUser, err := store.FindUserByUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.True(t, store.HasFollow(aliceUser.ID, bobUser.ID))
	assert.Equal(t, uint(1), bobUser.FollowersCount)
	assert.Equal(t, uint(1), aliceUser.FollowingCount)

	w = bob.do(http.MethodDelete, "/api/follow/follower-delete/"+jsonNumber(float64(aliceUser.ID))+"/bob", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, store.HasFollow(aliceUser.ID, bobUser.ID))
}

func TestRoutes_AuthBoundaries(t *testing.T) {
	router, _ := newTestServer(t, fakeHealth{"status": "up"})
	anon := &client{t: t, router: router}

	for _, path := range []string{
		"/api/user/me",
		"/api/follow/followers/alice",
		"/api/followRequest/requests",
		"/api/notification/all",
		"/api/viewerHistory",
	} {
		w := anon.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	alice := signup(t, router, "alice")
	w := anon.do(http.MethodGet, "/api/user/alice", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = alice.do(http.MethodGet, "/api/notification/all", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = alice.do(http.MethodPost, "/api/auth/logout", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = alice.do(http.MethodGet, "/api/user/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = alice.do(http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = alice.do(http.MethodGet, "/api/user/me", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func jsonNumber(f float64) string {
	b, _ := json.Marshal(int64(f))
	return string(b)
}
