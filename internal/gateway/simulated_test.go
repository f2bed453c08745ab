package gateway

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stackdock/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSimulated_AlwaysSucceeds(t *testing.T) {
	g := NewSimulated(SimulatedConfig{FailureRate: 0, Seed: 1}, discardLogger())
	ctx := context.Background()

	st, err := g.CreateStack(ctx, model.Stack{ID: "s1", Name: "Reading"})
	require.NoError(t, err)
	assert.Equal(t, "s1", st.ID)

	c, err := g.MoveCard(ctx, "c1", "s2")
	require.NoError(t, err)
	assert.Equal(t, model.Card{ID: "c1", StackID: "s2"}, c)

	assert.NoError(t, g.DeleteStack(ctx, "s1"))
}

func TestSimulated_AlwaysFails(t *testing.T) {
	g := NewSimulated(SimulatedConfig{FailureRate: 1, Seed: 1}, discardLogger())
	ctx := context.Background()

	_, err := g.CreateCard(ctx, model.Card{ID: "c1", Name: "X"})
	require.Error(t, err)
	assert.Equal(t, "Failed to create card. Please try again.", err.Error())
	assert.Equal(t, 500, StatusCode(err))

	err = g.DeleteStack(ctx, "s1")
	require.Error(t, err)
	assert.Equal(t, "Failed to delete stack. Please try again.", err.Error())
}

func TestSimulated_FailureShare(t *testing.T) {
	g := NewSimulated(SimulatedConfig{FailureRate: 0.25, Seed: 42}, discardLogger())
	ctx := context.Background()

	failures := 0
	const n = 2000
	for i := 0; i < n; i++ {
		if err := g.DeleteCard(ctx, "c"); err != nil {
			failures++
		}
	}
	assert.InDelta(t, 0.25, float64(failures)/n, 0.05)
}

func TestSimulated_Latency(t *testing.T) {
	g := NewSimulated(SimulatedConfig{MinLatency: 20 * time.Millisecond, MaxLatency: 30 * time.Millisecond, Seed: 3}, discardLogger())

	start := time.Now()
	require.NoError(t, g.DeleteCard(context.Background(), "c1"))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestSimulated_ContextCancelled(t *testing.T) {
	g := NewSimulated(SimulatedConfig{MinLatency: time.Hour, MaxLatency: time.Hour, Seed: 3}, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.DeleteCard(ctx, "c1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultSimulatedConfig(t *testing.T) {
	cfg := DefaultSimulatedConfig()
	assert.Equal(t, 500*time.Millisecond, cfg.MinLatency)
	assert.Equal(t, 2500*time.Millisecond, cfg.MaxLatency)
	assert.Equal(t, 0.1, cfg.FailureRate)
}

func TestDefaultMessage_AllOps(t *testing.T) {
	for _, op := range Ops {
		assert.Contains(t, defaultMessage(op), "Please try again.")
	}
}
