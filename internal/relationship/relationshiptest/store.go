// Package relationshiptest provides in-memory doubles for the relationship
// store and notifier. Transactions are serialized and roll back on error.
package relationshiptest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
	"github.com/emilythestrangee/social-graph/backend/internal/relationship"
	"github.com/emilythestrangee/social-graph/backend/pkg/errors"
)

type pair struct{ a, b uint }

type edge struct {
	follow models.Follow
	seq    int
}

type state struct {
	users        map[uint]models.User
	follows      map[pair]edge
	requests     map[uint]models.FollowRequest
	requestPairs map[pair]uint
	nextUserID   uint
	nextEdgeID   uint
	nextReqID    uint
	seq          int
}

func (s *state) clone() *state {
	c := &state{
		users:        make(map[uint]models.User, len(s.users)),
		follows:      make(map[pair]edge, len(s.follows)),
		requests:     make(map[uint]models.FollowRequest, len(s.requests)),
		requestPairs: make(map[pair]uint, len(s.requestPairs)),
		nextUserID:   s.nextUserID,
		nextEdgeID:   s.nextEdgeID,
		nextReqID:    s.nextReqID,
		seq:          s.seq,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.follows {
		c.follows[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	for k, v := range s.requestPairs {
		c.requestPairs[k] = v
	}
	return c
}

// Store is an in-memory relationship.Store.
type Store struct {
	mu sync.Mutex
	st *state

	// Fault, when set, is consulted before every transactional operation;
	// a non-nil return fails that operation.
	Fault func(op string) error
}

var _ relationship.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{st: (&state{}).clone()}
}

// AddUser inserts a user and returns it with its assigned ID.
func (s *Store) AddUser(u models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.nextUserID++
	u.ID = s.st.nextUserID
	s.st.users[u.ID] = u
	return &u
}

// User returns a copy of the stored user.
func (s *Store) User(id uint) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.users[id]
}

func (s *Store) HasFollow(followerID, followingID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.st.follows[pair{followerID, followingID}]
	return ok
}

// RequestID returns the pending request id for the pair, or 0.
func (s *Store) RequestID(senderID, receiverID uint) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.requestPairs[pair{senderID, receiverID}]
}

func (s *Store) EdgeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.follows)
}

func (s *Store) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.requests)
}

// CountEdges returns the true follower and following counts for a user.
func (s *Store) CountEdges(userID uint) (followers, following uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for p := range s.st.follows {
		if p.b == userID {
			followers++
		}
		if p.a == userID {
			following++
		}
	}
	return followers, following
}

// SetCounters overwrites cached counters, simulating drift.
func (s *Store) SetCounters(userID uint, followers, following uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.st.users[userID]
	u.FollowersCount, u.FollowingCount = followers, following
	s.st.users[userID] = u
}

func (s *Store) ExistsFollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&tx{st: s.st}).ExistsFollow(ctx, followerID, followingID)
}

func (s *Store) FindRequest(ctx context.Context, senderID, receiverID uint) (*models.FollowRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&tx{st: s.st}).FindRequest(ctx, senderID, receiverID)
}

func (s *Store) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&tx{st: s.st}).FindUserByID(ctx, id)
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.st.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, errors.New(errors.ErrCodeNotFound, "User not found")
}

func (s *Store) ListFollowers(_ context.Context, userID uint, limit, skip int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page(func(p pair) (uint, bool) { return p.a, p.b == userID }, limit, skip), nil
}

func (s *Store) ListFollowing(_ context.Context, userID uint, limit, skip int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page(func(p pair) (uint, bool) { return p.b, p.a == userID }, limit, skip), nil
}

func (s *Store) ListMutual(_ context.Context, a, b uint) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page(func(p pair) (uint, bool) {
		return p.a, (p.a == a && p.b == b) || (p.a == b && p.b == a)
	}, -1, 0), nil
}

// page returns users selected by pick from edges ordered newest first.
func (s *Store) page(pick func(pair) (uint, bool), limit, skip int) []models.User {
	var edges []edge
	for p, e := range s.st.follows {
		if _, ok := pick(p); ok {
			edges = append(edges, e)
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].seq > edges[j].seq })

	out := []models.User{}
	for i, e := range edges {
		if i < skip {
			continue
		}
		if limit >= 0 && len(out) == limit {
			break
		}
		id, _ := pick(pair{e.follow.FollowerID, e.follow.FollowingID})
		out = append(out, s.st.users[id])
	}
	return out
}

func (s *Store) ListPendingRequests(ctx context.Context, receiverID uint) ([]models.FollowRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reqs, err := (&tx{st: s.st}).ListRequestsTo(ctx, receiverID)
	for i := range reqs {
		reqs[i].Sender = s.st.users[reqs[i].SenderID]
	}
	return reqs, err
}

// WithinTx runs fn against a copy of the state and publishes it only if fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(relationship.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(&tx{st: work, fault: s.Fault}); err != nil {
		return err
	}
	s.st = work
	return nil
}

type tx struct {
	st    *state
	fault func(op string) error
}

func (t *tx) check(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.fault != nil {
		return t.fault(op)
	}
	return nil
}

func (t *tx) LockPair(ctx context.Context, _, _ uint) error {
	return t.check(ctx, "LockPair")
}

func (t *tx) ExistsFollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	if err := t.check(ctx, "ExistsFollow"); err != nil {
		return false, err
	}
	_, ok := t.st.follows[pair{followerID, followingID}]
	return ok, nil
}

func (t *tx) FindRequest(ctx context.Context, senderID, receiverID uint) (*models.FollowRequest, error) {
	if err := t.check(ctx, "FindRequest"); err != nil {
		return nil, err
	}
	id, ok := t.st.requestPairs[pair{senderID, receiverID}]
	if !ok {
		return nil, nil
	}
	req := t.st.requests[id]
	return &req, nil
}

func (t *tx) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	if err := t.check(ctx, "FindUserByID"); err != nil {
		return nil, err
	}
	u, ok := t.st.users[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "User not found")
	}
	return &u, nil
}

func (t *tx) CreateFollow(ctx context.Context, followerID, followingID uint) error {
	if err := t.check(ctx, "CreateFollow"); err != nil {
		return err
	}
	p := pair{followerID, followingID}
	if _, ok := t.st.follows[p]; ok {
		return errors.New(errors.ErrCodeConflict, "follow already exists")
	}
	t.st.nextEdgeID++
	t.st.seq++
	t.st.follows[p] = edge{
		follow: models.Follow{ID: t.st.nextEdgeID, FollowerID: followerID, FollowingID: followingID, CreatedAt: time.Now()},
		seq:    t.st.seq,
	}
	return nil
}

func (t *tx) DeleteFollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	if err := t.check(ctx, "DeleteFollow"); err != nil {
		return false, err
	}
	p := pair{followerID, followingID}
	if _, ok := t.st.follows[p]; !ok {
		return false, nil
	}
	delete(t.st.follows, p)
	return true, nil
}

func (t *tx) CreateRequest(ctx context.Context, senderID, receiverID uint) (*models.FollowRequest, error) {
	if err := t.check(ctx, "CreateRequest"); err != nil {
		return nil, err
	}
	p := pair{senderID, receiverID}
	if _, ok := t.st.requestPairs[p]; ok {
		return nil, errors.New(errors.ErrCodeConflict, "follow request already exists")
	}
	t.st.nextReqID++
	req := models.FollowRequest{
		ID:         t.st.nextReqID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.FollowRequestStatusPending,
		CreatedAt:  time.Now(),
	}
	t.st.requests[req.ID] = req
	t.st.requestPairs[p] = req.ID
	return &req, nil
}

func (t *tx) FindRequestByID(ctx context.Context, id uint) (*models.FollowRequest, error) {
	if err := t.check(ctx, "FindRequestByID"); err != nil {
		return nil, err
	}
	req, ok := t.st.requests[id]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (t *tx) DeleteRequest(ctx context.Context, id uint) (bool, error) {
	if err := t.check(ctx, "DeleteRequest"); err != nil {
		return false, err
	}
	req, ok := t.st.requests[id]
	if !ok {
		return false, nil
	}
	delete(t.st.requests, id)
	delete(t.st.requestPairs, pair{req.SenderID, req.ReceiverID})
	return true, nil
}

func (t *tx) ListRequestsTo(ctx context.Context, receiverID uint) ([]models.FollowRequest, error) {
	if err := t.check(ctx, "ListRequestsTo"); err != nil {
		return nil, err
	}
	out := []models.FollowRequest{}
	for _, req := range t.st.requests {
		if req.ReceiverID == receiverID {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *tx) AdjustCounters(ctx context.Context, userID uint, followersDelta, followingDelta int) error {
	if err := t.check(ctx, "AdjustCounters"); err != nil {
		return err
	}
	u, ok := t.st.users[userID]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "User not found")
	}
	u.FollowersCount = floorAdd(u.FollowersCount, followersDelta)
	u.FollowingCount = floorAdd(u.FollowingCount, followingDelta)
	t.st.users[userID] = u
	return nil
}

func (t *tx) SetPrivate(ctx context.Context, userID uint, private bool) error {
	if err := t.check(ctx, "SetPrivate"); err != nil {
		return err
	}
	u, ok := t.st.users[userID]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "User not found")
	}
	u.IsPrivate = private
	t.st.users[userID] = u
	return nil
}

func floorAdd(v uint, delta int) uint {
	n := int64(v) + int64(delta)
	if n < 0 {
		return 0
	}
	return uint(n)
}
