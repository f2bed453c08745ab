package engine

import (
	"context"

	"github.com/roach88/stackdock/internal/gateway"
	"github.com/roach88/stackdock/internal/model"
)

// CreateStack appends a new stack with a generated id and cover.
// Rollback removes it again, together with any card created in it meanwhile.
func (e *Engine) CreateStack(ctx context.Context, name string) (model.Stack, error) {
	if err := model.ValidateName(name); err != nil {
		return model.Stack{}, err
	}

	e.mu.Lock()
	now := e.now()
	cover, coverType := model.NewCover(e.rnd)
	st := model.Stack{
		ID:        e.ids.NewID(),
		Name:      model.NormalizeName(name),
		Cover:     cover,
		CoverType: coverType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	o := e.beginLocked(gateway.OpCreateStack, []recordKey{stackKey(st.ID)}, e.snap.WithStack(st))
	e.mu.Unlock()

	_, err := e.gw.CreateStack(remote(ctx), st)
	return st, e.settle(ctx, o, err, func(snap *model.Snapshot, mine owned) *model.Snapshot {
		if !mine(stackKey(st.ID)) {
			return snap
		}
		return snap.WithoutStack(st.ID).WithoutCardsIn(st.ID)
	})
}

// UpdateStack merges u onto the stack and bumps its updatedAt. Unknown ids
// are ignored. Rollback restores the complete prior record unless the stack
// has been deleted since.
func (e *Engine) UpdateStack(ctx context.Context, id string, u model.StackUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	prev, ok := e.snap.Stack(id)
	if !ok {
		e.mu.Unlock()
		e.logger.Debug("update of unknown stack ignored", "id", id)
		return nil
	}
	next := u.ApplyTo(prev, e.stampLocked(prev.UpdatedAt))
	o := e.beginLocked(gateway.OpUpdateStack, []recordKey{stackKey(id)}, e.snap.ReplaceStack(next))
	e.mu.Unlock()

	_, err := e.gw.UpdateStack(remote(ctx), next)
	return e.settle(ctx, o, err, func(snap *model.Snapshot, mine owned) *model.Snapshot {
		if !mine(stackKey(id)) || !snap.HasStack(id) {
			return snap
		}
		return snap.ReplaceStack(prev)
	})
}

// ShuffleStackCover gives the stack a freshly generated cover.
func (e *Engine) ShuffleStackCover(ctx context.Context, id string) error {
	e.mu.Lock()
	cover, coverType := model.NewCover(e.rnd)
	e.mu.Unlock()

	return e.UpdateStack(ctx, id, model.StackUpdate{Cover: &cover, CoverType: &coverType})
}

// DeleteStack removes the stack and all of its cards in one transition and
// clears the selection if it pointed at the stack. Unknown ids are ignored.
// Rollback re-inserts the removed records that are still absent.
func (e *Engine) DeleteStack(ctx context.Context, id string) error {
	e.mu.Lock()
	next, removed, cards, ok := e.snap.RemoveStack(id)
	if !ok {
		e.mu.Unlock()
		e.logger.Debug("delete of unknown stack ignored", "id", id)
		return nil
	}
	keys := []recordKey{stackKey(id)}
	for _, c := range cards {
		keys = append(keys, cardKey(c.ID))
	}
	if e.activeStack == id {
		e.activeStack = ""
		e.swipeMode = false
		e.swipeIndex = 0
	}
	o := e.beginLocked(gateway.OpDeleteStack, keys, next)
	e.mu.Unlock()

	err := e.gw.DeleteStack(remote(ctx), id)
	return e.settle(ctx, o, err, func(snap *model.Snapshot, mine owned) *model.Snapshot {
		if mine(stackKey(id)) && !snap.HasStack(id) {
			snap = snap.WithStack(removed)
		}
		if !snap.HasStack(id) {
			return snap
		}
		for _, c := range cards {
			if mine(cardKey(c.ID)) && !snap.HasCard(c.ID) {
				snap = snap.WithCard(c)
			}
		}
		return snap
	})
}
