package relationshiptest

import (
	"context"
	"sync"
	"time"

	"github.com/emilythestrangee/social-graph/backend/internal/models"
)

// Notifier records fan-out calls and keeps the notifications that are still live.
type Notifier struct {
	// EmitDelay stalls every Emit before it is recorded.
	EmitDelay time.Duration

	mu        sync.Mutex
	Emitted   []models.Notification
	Retracted []models.NotificationKey
	live      []models.Notification
}

func (n *Notifier) Emit(_ context.Context, notification models.Notification) {
	if n.EmitDelay > 0 {
		time.Sleep(n.EmitDelay)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Emitted = append(n.Emitted, notification)
	n.live = append(n.live, notification)
}

// Retract removes at most one live notification matching key.
func (n *Notifier) Retract(_ context.Context, key models.NotificationKey) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Retracted = append(n.Retracted, key)
	for i, l := range n.live {
		if l.Key() == key {
			n.live = append(n.live[:i], n.live[i+1:]...)
			return
		}
	}
}

// Live returns the notifications emitted and not yet retracted.
func (n *Notifier) Live() []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.Notification(nil), n.live...)
}

// Reset clears recorded calls.
func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Emitted, n.Retracted, n.live = nil, nil, nil
}
