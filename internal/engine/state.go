package engine

import (
	"sync"

	"github.com/roach88/stackdock/internal/model"
)

// SyncStatus summarises the engine's relationship with the remote.
type SyncStatus string

const (
	StatusIdle    SyncStatus = "idle"
	StatusSyncing SyncStatus = "syncing"
	StatusError   SyncStatus = "error"
)

// State is an immutable view of the engine at one instant.
type State struct {
	// Snapshot must not be modified; it is shared with the engine.
	Snapshot *model.Snapshot

	SyncStatus   SyncStatus
	ErrorMessage string

	ActiveStackID string
	SwipeMode     bool
	SwipeIndex    int

	// Pending is the number of gateway calls still in flight.
	Pending int
}

// Subscription delivers engine states. C holds at most one state: a slow
// reader skips intermediate states and always sees the latest.
type Subscription struct {
	C <-chan State

	ch chan State
	b  *broadcaster
}

// Close stops delivery and closes C. Safe to call more than once.
func (s *Subscription) Close() {
	s.b.remove(s)
}

// broadcaster fans states out to subscriptions.
//
// Each subscription channel has capacity 1. publish never blocks: a state
// that finds the slot full replaces the unread one.
type broadcaster struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[*Subscription]struct{})}
}

func (b *broadcaster) add(initial State) *Subscription {
	ch := make(chan State, 1)
	ch <- initial
	sub := &Subscription{C: ch, ch: ch, b: b}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[sub] = struct{}{}
	return sub
}

func (b *broadcaster) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	close(sub.ch)
}

// publish must be called with the engine lock held so states arrive in
// transition order.
func (b *broadcaster) publish(st State) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs {
		select {
		case sub.ch <- st:
			continue
		default:
		}
		// Slot full: drop the stale state, then deliver.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- st:
		default:
		}
	}
}

func (b *broadcaster) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
