package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stackdock/internal/engine"
	"github.com/roach88/stackdock/internal/gateway/gatewaytest"
	"github.com/roach88/stackdock/internal/model"
	"github.com/roach88/stackdock/internal/store"
	"github.com/roach88/stackdock/internal/testutil"
)

// setupAssertionContext restores seed into an engine backed by an in-memory
// store.
func setupAssertionContext(t *testing.T, seed Seed) *AssertionContext {
	t.Helper()

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := testutil.DiscardLogger()
	e := engine.New(gatewaytest.New(), store.NewAdapter(st, logger), engine.WithLogger(logger))
	ctx := context.Background()
	require.NoError(t, e.Restore(ctx, seed.Snapshot()))

	return &AssertionContext{Engine: e, Store: st, Ctx: ctx}
}

var assertionSeed = Seed{
	Stacks: []SeedStack{{ID: "s1", Name: "Reading", UpdatedAt: 10}, {ID: "s2", Name: "Done"}},
	Cards:  []SeedCard{{ID: "c1", Name: "Dune", StackID: "s1", UpdatedAt: 20}},
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	actx := setupAssertionContext(t, assertionSeed)

	errs := EvaluateAssertions([]Assertion{
		{Type: AssertStackExists, ID: "s1", Name: "Reading", UpdatedAt: 10},
		{Type: AssertStackAbsent, ID: "s9"},
		{Type: AssertCardInStack, ID: "c1", Stack: "s1", Name: "Dune", UpdatedAt: 20},
		{Type: AssertCardAbsent, ID: "c9"},
		{Type: AssertCardCount, Stack: "s1", Count: 1},
		{Type: AssertCardCount, Stack: "s2", Count: 0},
		{Type: AssertSyncStatus, Status: "idle"},
		{Type: AssertPersistedEqualsMemory},
	}, actx)

	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	actx := setupAssertionContext(t, assertionSeed)

	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{"stack missing", Assertion{Type: AssertStackExists, ID: "s9"}, "stack s9 present"},
		{"stack name", Assertion{Type: AssertStackExists, ID: "s1", Name: "Other"}, `named "Reading"`},
		{"stack updated_at", Assertion{Type: AssertStackExists, ID: "s1", UpdatedAt: 11}, "updated_at 10"},
		{"stack present", Assertion{Type: AssertStackAbsent, ID: "s1"}, "stack s1 absent"},
		{"card elsewhere", Assertion{Type: AssertCardInStack, ID: "c1", Stack: "s2"}, "in stack s1"},
		{"card missing", Assertion{Type: AssertCardInStack, ID: "c9", Stack: "s1"}, "card absent"},
		{"card present", Assertion{Type: AssertCardAbsent, ID: "c1"}, "present in stack s1"},
		{"count", Assertion{Type: AssertCardCount, Stack: "s1", Count: 3}, "3 cards in stack s1"},
		{"status", Assertion{Type: AssertSyncStatus, Status: "error"}, "Actual: idle"},
		{"unknown", Assertion{Type: "bogus"}, `unknown assertion type "bogus"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions([]Assertion{tt.assertion}, actx)
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], "assertions[0]")
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestEvaluateAssertions_PersistedDiffers(t *testing.T) {
	actx := setupAssertionContext(t, assertionSeed)

	// Overwrite the mirror behind the engine's back.
	require.NoError(t, actx.Store.SaveSnapshot(actx.Ctx, model.EmptySnapshot()))

	errs := EvaluateAssertions([]Assertion{{Type: AssertPersistedEqualsMemory}}, actx)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "0 stacks, 0 cards persisted")
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Type: AssertSyncStatus, Expected: "idle", Actual: "error"}
	assert.Equal(t, "Assertion failed: sync_status\n  Expected: idle\n  Actual: error", err.Error())
}
