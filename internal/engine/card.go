package engine

import (
	"context"

	"github.com/roach88/stackdock/internal/gateway"
	"github.com/roach88/stackdock/internal/model"
)

// CreateCard appends a new card to an existing stack. Rollback removes it.
func (e *Engine) CreateCard(ctx context.Context, n model.NewCard) (model.Card, error) {
	if err := n.Validate(); err != nil {
		return model.Card{}, err
	}

	e.mu.Lock()
	if !e.snap.HasStack(n.StackID) {
		e.mu.Unlock()
		return model.Card{}, newUnknownStackError(n.StackID)
	}
	c := n.Build(e.ids.NewID(), e.now())
	o := e.beginLocked(gateway.OpCreateCard, []recordKey{cardKey(c.ID)}, e.snap.WithCard(c))
	e.mu.Unlock()

	_, err := e.gw.CreateCard(remote(ctx), c)
	return c, e.settle(ctx, o, err, func(snap *model.Snapshot, mine owned) *model.Snapshot {
		if !mine(cardKey(c.ID)) {
			return snap
		}
		return snap.WithoutCard(c.ID)
	})
}

// UpdateCard merges u onto the card and bumps its updatedAt. Unknown ids are
// ignored. Rollback restores the complete prior record unless the card has
// been deleted since.
func (e *Engine) UpdateCard(ctx context.Context, id string, u model.CardUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	prev, ok := e.snap.Card(id)
	if !ok {
		e.mu.Unlock()
		e.logger.Debug("update of unknown card ignored", "id", id)
		return nil
	}
	next := u.ApplyTo(prev, e.stampLocked(prev.UpdatedAt))
	o := e.beginLocked(gateway.OpUpdateCard, []recordKey{cardKey(id)}, e.snap.ReplaceCard(next))
	e.mu.Unlock()

	_, err := e.gw.UpdateCard(remote(ctx), next)
	return e.settle(ctx, o, err, func(snap *model.Snapshot, mine owned) *model.Snapshot {
		cur, ok := snap.Card(id)
		if !ok || !mine(cardKey(id)) {
			return snap
		}
		// The stack may have changed through a move; keep it.
		prev.StackID = cur.StackID
		return snap.ReplaceCard(prev)
	})
}

// DeleteCard removes the card. Unknown ids are ignored. Rollback re-inserts
// it if it is still absent and its stack still exists.
func (e *Engine) DeleteCard(ctx context.Context, id string) error {
	e.mu.Lock()
	prev, ok := e.snap.Card(id)
	if !ok {
		e.mu.Unlock()
		e.logger.Debug("delete of unknown card ignored", "id", id)
		return nil
	}
	o := e.beginLocked(gateway.OpDeleteCard, []recordKey{cardKey(id)}, e.snap.WithoutCard(id))
	e.mu.Unlock()

	err := e.gw.DeleteCard(remote(ctx), id)
	return e.settle(ctx, o, err, func(snap *model.Snapshot, mine owned) *model.Snapshot {
		if !mine(cardKey(id)) || snap.HasCard(id) || !snap.HasStack(prev.StackID) {
			return snap
		}
		return snap.WithCard(prev)
	})
}

// MoveCard reassigns the card to toStackID and bumps its updatedAt. Unknown
// card ids are ignored; an unknown target stack is refused. Rollback restores
// the original stackId and updatedAt only, and only while the original stack
// still exists.
func (e *Engine) MoveCard(ctx context.Context, id, toStackID string) error {
	e.mu.Lock()
	prev, ok := e.snap.Card(id)
	if !ok {
		e.mu.Unlock()
		e.logger.Debug("move of unknown card ignored", "id", id)
		return nil
	}
	if !e.snap.HasStack(toStackID) {
		e.mu.Unlock()
		return newUnknownStackError(toStackID)
	}
	moved := prev
	moved.StackID = toStackID
	moved.UpdatedAt = e.stampLocked(prev.UpdatedAt)
	o := e.beginLocked(gateway.OpMoveCard, []recordKey{cardKey(id)}, e.snap.ReplaceCard(moved))
	e.mu.Unlock()

	_, err := e.gw.MoveCard(remote(ctx), id, toStackID)
	return e.settle(ctx, o, err, func(snap *model.Snapshot, mine owned) *model.Snapshot {
		cur, ok := snap.Card(id)
		if !ok || !mine(cardKey(id)) || !snap.HasStack(prev.StackID) {
			return snap
		}
		cur.StackID = prev.StackID
		cur.UpdatedAt = prev.UpdatedAt
		return snap.ReplaceCard(cur)
	})
}
