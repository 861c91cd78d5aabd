package relationshiptest

import (
	"context"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
	"github.com/emilythestrangee/social-graph/backend/pkg/errors"
)

// Accounts exposes the users of a Store through the account repository methods.
type Accounts struct {
	s *Store
}

func (s *Store) Accounts() *Accounts {
	return &Accounts{s: s}
}

func (a *Accounts) Create(_ context.Context, user *models.User) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	for _, u := range a.s.st.users {
		if u.Username == user.Username || u.Email == user.Email {
			return errors.New(errors.ErrCodeConflict, "record already exists")
		}
	}
	a.s.st.nextUserID++
	user.ID = a.s.st.nextUserID
	a.s.st.users[user.ID] = *user
	return nil
}

func (a *Accounts) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return a.s.FindUserByID(ctx, id)
}

func (a *Accounts) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return a.s.FindUserByUsername(ctx, username)
}

func (a *Accounts) FindByEmail(_ context.Context, email string) (*models.User, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	for _, u := range a.s.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, errors.New(errors.ErrCodeNotFound, "User not found")
}

func (a *Accounts) BumpTokenVersion(_ context.Context, id uint) error {
	return a.update(id, func(u *models.User) { u.TokenVersion++ })
}

func (a *Accounts) ToggleViewerHistory(_ context.Context, id uint) (bool, error) {
	var enabled bool
	err := a.update(id, func(u *models.User) {
		u.EnabledViewerHistory = !u.EnabledViewerHistory
		enabled = u.EnabledViewerHistory
	})
	return enabled, err
}

func (a *Accounts) update(id uint, fn func(*models.User)) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	u, ok := a.s.st.users[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "User not found")
	}
	fn(&u)
	a.s.st.users[id] = u
	return nil
}
