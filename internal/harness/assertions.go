package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/stackdock/internal/engine"
	"github.com/roach88/stackdock/internal/model"
	"github.com/roach88/stackdock/internal/store"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Engine *engine.Engine
	Store  *store.Store
	Ctx    context.Context
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	state := actx.Engine.State()

	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertStackExists:
			err = assertStackExists(state.Snapshot, a)
		case AssertStackAbsent:
			err = assertStackAbsent(state.Snapshot, a)
		case AssertCardInStack:
			err = assertCardInStack(state.Snapshot, a)
		case AssertCardAbsent:
			err = assertCardAbsent(state.Snapshot, a)
		case AssertCardCount:
			err = assertCardCount(state.Snapshot, a)
		case AssertSyncStatus:
			err = assertSyncStatus(state, a)
		case AssertPersistedEqualsMemory:
			err = assertPersistedEqualsMemory(actx, state.Snapshot)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func assertStackExists(snap *model.Snapshot, a Assertion) error {
	st, ok := snap.Stack(a.ID)
	if !ok {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("stack %s present", a.ID), Actual: "absent"}
	}
	if a.Name != "" && st.Name != a.Name {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("stack %s named %q", a.ID, a.Name), Actual: fmt.Sprintf("named %q", st.Name)}
	}
	if a.UpdatedAt != 0 && st.UpdatedAt != a.UpdatedAt {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("stack %s updated_at %d", a.ID, a.UpdatedAt), Actual: fmt.Sprintf("updated_at %d", st.UpdatedAt)}
	}
	return nil
}

func assertStackAbsent(snap *model.Snapshot, a Assertion) error {
	if snap.HasStack(a.ID) {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("stack %s absent", a.ID), Actual: "present"}
	}
	return nil
}

func assertCardInStack(snap *model.Snapshot, a Assertion) error {
	c, ok := snap.Card(a.ID)
	if !ok {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("card %s in stack %s", a.ID, a.Stack), Actual: "card absent"}
	}
	if c.StackID != a.Stack {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("card %s in stack %s", a.ID, a.Stack), Actual: fmt.Sprintf("in stack %s", c.StackID)}
	}
	if a.Name != "" && c.Name != a.Name {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("card %s named %q", a.ID, a.Name), Actual: fmt.Sprintf("named %q", c.Name)}
	}
	if a.UpdatedAt != 0 && c.UpdatedAt != a.UpdatedAt {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("card %s updated_at %d", a.ID, a.UpdatedAt), Actual: fmt.Sprintf("updated_at %d", c.UpdatedAt)}
	}
	return nil
}

func assertCardAbsent(snap *model.Snapshot, a Assertion) error {
	if c, ok := snap.Card(a.ID); ok {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("card %s absent", a.ID), Actual: fmt.Sprintf("present in stack %s", c.StackID)}
	}
	return nil
}

func assertCardCount(snap *model.Snapshot, a Assertion) error {
	if n := snap.CardCount(a.Stack); n != a.Count {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%d cards in stack %s", a.Count, a.Stack), Actual: fmt.Sprintf("%d", n)}
	}
	return nil
}

func assertSyncStatus(st engine.State, a Assertion) error {
	if string(st.SyncStatus) != a.Status {
		return &AssertionError{Type: a.Type, Expected: a.Status, Actual: string(st.SyncStatus)}
	}
	return nil
}

func assertPersistedEqualsMemory(actx *AssertionContext, mem *model.Snapshot) error {
	persisted, err := actx.Store.LoadSnapshot(actx.Ctx)
	if err != nil {
		return fmt.Errorf("load persisted snapshot: %w", err)
	}
	if !persisted.Equal(mem) {
		return &AssertionError{
			Type:     AssertPersistedEqualsMemory,
			Expected: fmt.Sprintf("%d stacks, %d cards as in memory", len(mem.Stacks), len(mem.Cards)),
			Actual:   fmt.Sprintf("%d stacks, %d cards persisted (or differing fields)", len(persisted.Stacks), len(persisted.Cards)),
		}
	}
	return nil
}
