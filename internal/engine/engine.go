package engine

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/roach88/stackdock/internal/gateway"
	"github.com/roach88/stackdock/internal/model"
)

// Persister mirrors the snapshot to durable storage.
// Implemented by store.Adapter.
//
// Save is best-effort and reports nothing. Load returns nil when no usable
// snapshot exists.
type Persister interface {
	Save(ctx context.Context, snap *model.Snapshot)
	Load(ctx context.Context) *model.Snapshot
}

// Engine owns the in-memory snapshot and runs every mutation through the
// optimistic protocol described in the package doc.
//
// Thread-safety model:
//   - every exported method is safe from any goroutine
//   - state transitions happen under mu, gateway calls never do
//   - saves are serialised by persistMu and always write the snapshot
//     current at save time
type Engine struct {
	gw        gateway.Gateway
	persister Persister
	ids       model.IDGenerator
	now       func() int64
	rnd       *rand.Rand
	logger    *slog.Logger
	clock     *Clock

	statusPolicy   StatusPolicy
	conflictPolicy ConflictPolicy
	observers      []Observer

	mu           sync.Mutex
	snap         *model.Snapshot
	status       SyncStatus
	errorMessage string
	activeStack  string
	swipeMode    bool
	swipeIndex   int
	pending      int
	revs         map[recordKey]int64

	persistMu sync.Mutex
	subs      *broadcaster
}

// New creates an Engine over an empty snapshot. Call Initialize to load the
// persisted one. A nil Persister disables persistence.
func New(gw gateway.Gateway, p Persister, opts ...Option) *Engine {
	if p == nil {
		p = nopPersister{}
	}
	e := &Engine{
		gw:        gw,
		persister: p,
		ids:       model.UUIDGenerator{},
		now:       func() int64 { return time.Now().UnixMilli() },
		logger:    slog.Default(),
		clock:     NewClock(),
		snap:      model.EmptySnapshot(),
		status:    StatusIdle,
		revs:      make(map[recordKey]int64),
		subs:      newBroadcaster(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Initialize loads the persisted snapshot. When none exists, or it holds no
// stacks, the demo dataset is installed instead. Either way the result is
// saved once.
func (e *Engine) Initialize(ctx context.Context) {
	snap := e.persister.Load(ctx)
	if snap == nil || len(snap.Stacks) == 0 {
		e.mu.Lock()
		snap = model.DemoSnapshot(e.ids, e.now(), e.rnd)
		e.mu.Unlock()
		e.logger.Info("installed demo snapshot", "stacks", len(snap.Stacks), "cards", len(snap.Cards))
	} else {
		e.logger.Debug("loaded snapshot", "stacks", len(snap.Stacks), "cards", len(snap.Cards))
	}
	e.install(snap)
	e.persist(ctx)
}

// Restore replaces the whole snapshot, for example with an imported seed,
// and saves it. The snapshot must not contain duplicate ids or cards whose
// stack is missing. Selection and error state are reset.
func (e *Engine) Restore(ctx context.Context, snap *model.Snapshot) error {
	if err := checkSnapshot(snap); err != nil {
		return err
	}
	e.install(snap.Clone())
	e.persist(ctx)
	return nil
}

func (e *Engine) install(snap *model.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.snap = snap
	e.status = StatusIdle
	e.errorMessage = ""
	e.activeStack = ""
	e.swipeMode = false
	e.swipeIndex = 0
	e.revs = make(map[recordKey]int64)
	e.publishLocked()
}

func checkSnapshot(snap *model.Snapshot) error {
	if snap == nil {
		return newInvalidSnapshotError("snapshot is nil")
	}
	seen := make(map[string]bool, len(snap.Stacks)+len(snap.Cards))
	for _, st := range snap.Stacks {
		if seen[st.ID] {
			return newInvalidSnapshotError("duplicate id %q", st.ID)
		}
		seen[st.ID] = true
	}
	for _, c := range snap.Cards {
		if seen[c.ID] {
			return newInvalidSnapshotError("duplicate id %q", c.ID)
		}
		seen[c.ID] = true
	}
	if dangling := snap.DanglingCards(); len(dangling) > 0 {
		return newInvalidSnapshotError("card %q references missing stack %q", dangling[0].ID, dangling[0].StackID)
	}
	return nil
}

// State returns the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Snapshot returns a copy of the current snapshot.
func (e *Engine) Snapshot() *model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.Clone()
}

// CardsForStack returns exactly the cards whose stack is stackID, in
// snapshot order.
func (e *Engine) CardsForStack(stackID string) []model.Card {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.CardsForStack(stackID)
}

// CardCount returns how many cards belong to stackID.
func (e *Engine) CardCount(stackID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.CardCount(stackID)
}

// Subscribe returns a subscription whose channel already holds the current
// state.
func (e *Engine) Subscribe() *Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.subs.add(e.stateLocked())
}

// ClearError clears the error message and returns the status to idle, or to
// syncing under StatusPendingAware while calls are in flight.
func (e *Engine) ClearError() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.errorMessage = ""
	e.status = StatusIdle
	if e.statusPolicy == StatusPendingAware && e.pending > 0 {
		e.status = StatusSyncing
	}
	e.publishLocked()
}

func (e *Engine) stateLocked() State {
	return State{
		Snapshot:      e.snap,
		SyncStatus:    e.status,
		ErrorMessage:  e.errorMessage,
		ActiveStackID: e.activeStack,
		SwipeMode:     e.swipeMode,
		SwipeIndex:    e.swipeIndex,
		Pending:       e.pending,
	}
}

func (e *Engine) publishLocked() {
	e.subs.publish(e.stateLocked())
}

func (e *Engine) emitLocked(ev Event) {
	for _, obs := range e.observers {
		obs(ev)
	}
}

// stampLocked returns a timestamp strictly after prev, so updatedAt changes
// on every mutation even within one millisecond.
func (e *Engine) stampLocked(prev int64) int64 {
	now := e.now()
	if now <= prev {
		return prev + 1
	}
	return now
}

// recordKey identifies a record in the revision table.
type recordKey struct {
	card bool
	id   string
}

func stackKey(id string) recordKey { return recordKey{id: id} }
func cardKey(id string) recordKey  { return recordKey{card: true, id: id} }

// operation is an applied mutation awaiting its gateway outcome.
type operation struct {
	id       string
	op       gateway.Op
	rev      int64
	keys     []recordKey
	prevRevs map[recordKey]int64
}

func (o *operation) ids() []string {
	ids := make([]string, len(o.keys))
	for i, k := range o.keys {
		ids[i] = k.id
	}
	return ids
}

// owned reports, for each key, whether this operation may still revert it.
type owned func(recordKey) bool

// beginLocked installs next as the optimistic snapshot and stamps the
// touched records with a fresh revision.
func (e *Engine) beginLocked(op gateway.Op, keys []recordKey, next *model.Snapshot) *operation {
	o := &operation{
		id:       ulid.Make().String(),
		op:       op,
		rev:      e.clock.Next(),
		keys:     keys,
		prevRevs: make(map[recordKey]int64, len(keys)),
	}
	for _, k := range keys {
		o.prevRevs[k] = e.revs[k]
		e.revs[k] = o.rev
	}

	e.snap = next
	e.pending++
	e.status = StatusSyncing

	e.logger.Debug("applied", "op", o.op, "op_id", o.id, "ids", o.ids())
	e.emitLocked(Event{Seq: o.rev, OpID: o.id, Op: o.op, Kind: EventApplied, IDs: o.ids()})
	e.publishLocked()
	return o
}

// settle commits or rolls back o according to err and returns err.
func (e *Engine) settle(ctx context.Context, o *operation, err error, revert func(snap *model.Snapshot, mine owned) *model.Snapshot) error {
	if err == nil {
		e.commit(o)
		e.persist(ctx)
		return nil
	}
	e.rollback(o, err, revert)
	return err
}

func (e *Engine) commit(o *operation) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pending--
	e.errorMessage = ""
	e.status = StatusIdle
	if e.statusPolicy == StatusPendingAware && e.pending > 0 {
		e.status = StatusSyncing
	}

	e.logger.Debug("committed", "op", o.op, "op_id", o.id)
	e.emitLocked(Event{Seq: e.clock.Next(), OpID: o.id, Op: o.op, Kind: EventCommitted, IDs: o.ids()})
	e.publishLocked()
}

func (e *Engine) rollback(o *operation, cause error, revert func(snap *model.Snapshot, mine owned) *model.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	mine := make(map[recordKey]bool, len(o.keys))
	for _, k := range o.keys {
		mine[k] = e.conflictPolicy == LastWriteWins || e.revs[k] == o.rev
	}
	e.snap = revert(e.snap, func(k recordKey) bool { return mine[k] })
	for _, k := range o.keys {
		if mine[k] {
			e.revs[k] = o.prevRevs[k]
		}
	}

	e.pending--
	e.status = StatusError
	e.errorMessage = failureMessage(o.op, cause)

	e.logger.Warn("rolled back", "op", o.op, "op_id", o.id, "error", cause)
	e.emitLocked(Event{Seq: e.clock.Next(), OpID: o.id, Op: o.op, Kind: EventRolledBack, IDs: o.ids(), Err: e.errorMessage})
	e.publishLocked()
}

// persist saves the snapshot current at save time. Saves are serialised so a
// slower save can never overwrite a newer one.
func (e *Engine) persist(ctx context.Context) {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	e.mu.Lock()
	snap := e.snap
	e.mu.Unlock()

	e.persister.Save(context.WithoutCancel(ctx), snap)
}

// failureMessage is the error message surfaced for a rejected call.
func failureMessage(op gateway.Op, err error) string {
	var ge *gateway.Error
	if errors.As(err, &ge) && ge.Message != "" {
		return ge.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallbackMessage(op)
}

func fallbackMessage(op gateway.Op) string {
	switch op {
	case gateway.OpCreateStack:
		return "Failed to create stack"
	case gateway.OpUpdateStack:
		return "Failed to update stack"
	case gateway.OpDeleteStack:
		return "Failed to delete stack"
	case gateway.OpCreateCard:
		return "Failed to create card"
	case gateway.OpUpdateCard:
		return "Failed to update card"
	case gateway.OpDeleteCard:
		return "Failed to delete card"
	case gateway.OpMoveCard:
		return "Failed to move card"
	}
	return "Sync failed"
}

// remote detaches a gateway call from caller cancellation: once issued, a
// call always settles.
func remote(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

type nopPersister struct{}

func (nopPersister) Save(context.Context, *model.Snapshot) {}
func (nopPersister) Load(context.Context) *model.Snapshot  { return nil }
