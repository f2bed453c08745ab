package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/stackdock/internal/model"
)

// Adapter is the best-effort persistence mirror used by the engine.
// It never returns errors: failures are logged and reads degrade to nil.
type Adapter struct {
	store  *Store
	logger *slog.Logger
}

// NewAdapter wraps st. A nil logger uses slog.Default().
func NewAdapter(st *Store, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{store: st, logger: logger}
}

// Save overwrites the stored snapshot. Failures are logged, not returned.
func (a *Adapter) Save(ctx context.Context, snap *model.Snapshot) {
	if err := a.store.SaveSnapshot(ctx, snap); err != nil {
		a.logger.Error("failed to save snapshot", "error", err)
		return
	}
	a.logger.Debug("snapshot saved",
		"stacks", len(snap.Stacks),
		"cards", len(snap.Cards),
	)
}

// Load returns the stored snapshot, or nil if it is absent or corrupt.
func (a *Adapter) Load(ctx context.Context) *model.Snapshot {
	snap, err := a.store.LoadSnapshot(ctx)
	switch {
	case err == nil:
		return snap
	case errors.Is(err, ErrNoSnapshot):
		a.logger.Debug("no stored snapshot")
	case errors.Is(err, ErrCorrupt):
		a.logger.Warn("ignoring corrupt snapshot", "error", err)
	default:
		a.logger.Error("failed to load snapshot", "error", err)
	}
	return nil
}
