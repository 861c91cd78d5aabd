package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/social-graph/backend/internal/middleware"
	"github.com/emilythestrangee/social-graph/backend/internal/models"
	"github.com/emilythestrangee/social-graph/backend/internal/notification"
	"github.com/emilythestrangee/social-graph/backend/internal/relationship"
	"github.com/emilythestrangee/social-graph/backend/internal/relationship/relationshiptest"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type memHistory struct {
	mu       sync.Mutex
	accounts *relationshiptest.Accounts
	entries  []models.ViewerHistory
	err      error
}

func (h *memHistory) Record(_ context.Context, viewerID, targetID uint) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	for _, e := range h.entries {
		if e.UserID == viewerID && e.TargetUserID == targetID {
			return nil
		}
	}
	h.entries = append(h.entries, models.ViewerHistory{
		ID:           uint(len(h.entries) + 1),
		UserID:       viewerID,
		TargetUserID: targetID,
		CreatedAt:    time.Now(),
	})
	return nil
}

func (h *memHistory) ListViewersOf(ctx context.Context, targetID uint) ([]models.ViewerHistory, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []models.ViewerHistory
	for i := len(h.entries) - 1; i >= 0; i-- {
		e := h.entries[i]
		if e.TargetUserID != targetID {
			continue
		}
		u, err := h.accounts.FindByID(ctx, e.UserID)
		if err != nil {
			return nil, err
		}
		e.User = *u
		out = append(out, e)
	}
	return out, nil
}

type stubNotifications struct {
	page *notification.Page
	err  error

	gotRecipient uint
	gotLimit     int
	gotSkip      int
}

func (s *stubNotifications) List(_ context.Context, recipientID uint, limit, skip int) (*notification.Page, error) {
	s.gotRecipient, s.gotLimit, s.gotSkip = recipientID, limit, skip
	return s.page, s.err
}

type env struct {
	store         *relationshiptest.Store
	notifier      *relationshiptest.Notifier
	history       *memHistory
	notifications *stubNotifications
	handler       *Handler

	alice *models.User
	bob   *models.User
	carol *models.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := relationshiptest.NewStore()
	notifier := &relationshiptest.Notifier{}
	accounts := store.Accounts()
	history := &memHistory{accounts: accounts}
	notifications := &stubNotifications{}

	e := &env{
		store:         store,
		notifier:      notifier,
		history:       history,
		notifications: notifications,
		alice:         store.AddUser(models.User{Username: "alice", FirstName: "Alice", LastName: "Liddell", Email: "alice@example.com", EnabledViewerHistory: true}),
		bob:           store.AddUser(models.User{Username: "bob", FirstName: "Bob", LastName: "Builder", Email: "bob@example.com", EnabledViewerHistory: true}),
		carol:         store.AddUser(models.User{Username: "carol", FirstName: "Carol", LastName: "Danvers", Email: "carol@example.com", IsPrivate: true}),
	}
	e.handler = NewHandler(Deps{
		Relationships: relationship.NewEngine(store, notifier, time.Second),
		Accounts:      accounts,
		ViewerHistory: history,
		Notifications: notifications,
		Sessions:      middleware.NewSessions(testSecret, time.Hour, false, accounts),
	})
	return e
}

// fresh reloads u the way the session middleware would.
func (e *env) fresh(u *models.User) *models.User {
	stored := e.store.User(u.ID)
	return &stored
}

// serve registers handler at route behind a middleware that authenticates as user, then sends one request.
func serve(method, route, path string, user *models.User, body string, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Handle(method, route, func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.UserKey, user)
		}
		c.Next()
	}, handler)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) map[string]interface{} {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	body := decode(t, w)
	require.Equal(t, code, body["code"])
	require.NotEmpty(t, body["message"])
	return body
}
