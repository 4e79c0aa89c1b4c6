package core

import (
	"sync"
	"sync/atomic"

	"github.com/example/trademind/internal/models"
)

// Unsubscribe stops the deliveries of one auth-state subscription. It is safe to call more than once.
type Unsubscribe func()

type stateListener struct {
	mu     sync.Mutex // serializes deliveries to fn
	closed atomic.Bool
	fn     func(*models.Identity)
}

func (l *stateListener) deliver(identity *models.Identity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed.Load() {
		l.fn(identity)
	}
}

// StateHub fans auth-state transitions out to the subscribers of each uid.
type StateHub struct {
	mu        sync.Mutex
	listeners map[string]map[*stateListener]struct{}
}

func NewStateHub() *StateHub {
	return &StateHub{listeners: make(map[string]map[*stateListener]struct{})}
}

// Subscribe registers fn for the transitions of uid and delivers initial to it first.
// No transition reaches fn before initial does.
func (h *StateHub) Subscribe(uid string, initial *models.Identity, fn func(*models.Identity)) Unsubscribe {
	l := &stateListener{fn: fn}
	l.mu.Lock()

	h.mu.Lock()
	if h.listeners[uid] == nil {
		h.listeners[uid] = make(map[*stateListener]struct{})
	}
	h.listeners[uid][l] = struct{}{}
	h.mu.Unlock()

	fn(initial)
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.closed.Store(true)
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.listeners[uid], l)
			if len(h.listeners[uid]) == 0 {
				delete(h.listeners, uid)
			}
		})
	}
}

// Publish delivers a transition for uid. A nil identity means signed out.
func (h *StateHub) Publish(uid string, identity *models.Identity) {
	h.mu.Lock()
	targets := make([]*stateListener, 0, len(h.listeners[uid]))
	for l := range h.listeners[uid] {
		targets = append(targets, l)
	}
	h.mu.Unlock()

	for _, l := range targets {
		l.deliver(identity)
	}
}

// Subscribers returns the number of active subscriptions for uid.
func (h *StateHub) Subscribers(uid string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners[uid])
}
