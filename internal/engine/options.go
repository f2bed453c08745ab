package engine

import (
	"log/slog"
	"math/rand/v2"

	"github.com/roach88/stackdock/internal/model"
)

// StatusPolicy decides the sync status after a commit.
type StatusPolicy int

const (
	// StatusGlobal returns to idle on every commit, even while other calls
	// are still in flight.
	StatusGlobal StatusPolicy = iota

	// StatusPendingAware stays syncing until no call is in flight.
	StatusPendingAware
)

// ConflictPolicy decides how overlapping operations on one record settle.
type ConflictPolicy int

const (
	// LastWriteWins applies every rollback, even over records a later
	// operation has since changed. The last settlement to land wins.
	LastWriteWins ConflictPolicy = iota

	// RejectStaleRollback skips reverting a record whose revision was bumped
	// by a later operation.
	RejectStaleRollback
)

// Option configures an Engine.
type Option func(*Engine)

// WithIDGenerator sets the id source for new records.
// Default: model.UUIDGenerator.
func WithIDGenerator(ids model.IDGenerator) Option {
	return func(e *Engine) {
		e.ids = ids
	}
}

// WithTimeSource sets the wall clock in Unix milliseconds.
// Default: time.Now().UnixMilli.
func WithTimeSource(now func() int64) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithRand sets the random source for generated covers.
// Default: the runtime's global source.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.rnd = r
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithObserver registers a callback for every engine Event.
func WithObserver(obs Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, obs)
	}
}

// WithStatusPolicy sets the post-commit status policy. Default: StatusGlobal.
func WithStatusPolicy(p StatusPolicy) Option {
	return func(e *Engine) {
		e.statusPolicy = p
	}
}

// WithConflictPolicy sets the rollback conflict policy. Default: LastWriteWins.
func WithConflictPolicy(p ConflictPolicy) Option {
	return func(e *Engine) {
		e.conflictPolicy = p
	}
}

// ParseStatusPolicy maps a config name to a StatusPolicy.
func ParseStatusPolicy(name string) (StatusPolicy, bool) {
	switch name {
	case "", "global":
		return StatusGlobal, true
	case "pending_aware":
		return StatusPendingAware, true
	}
	return StatusGlobal, false
}

// ParseConflictPolicy maps a config name to a ConflictPolicy.
func ParseConflictPolicy(name string) (ConflictPolicy, bool) {
	switch name {
	case "", "last_write_wins":
		return LastWriteWins, true
	case "reject_stale_rollback":
		return RejectStaleRollback, true
	}
	return LastWriteWins, false
}
