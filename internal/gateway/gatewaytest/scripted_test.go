package gatewaytest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stackdock/internal/gateway"
	"github.com/roach88/stackdock/internal/model"
)

func TestScripted_DefaultSucceeds(t *testing.T) {
	g := New()
	ctx := context.Background()

	st, err := g.CreateStack(ctx, model.Stack{ID: "s1", Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, "s1", st.ID)
	assert.Equal(t, 1, g.CallCount(gateway.OpCreateStack))
}

func TestScripted_QueuedOutcomes(t *testing.T) {
	g := New().Fail(gateway.OpDeleteCard, "Network error").Script(gateway.OpDeleteCard, nil)
	ctx := context.Background()

	err := g.DeleteCard(ctx, "c1")
	require.Error(t, err)
	assert.Equal(t, "Network error", err.Error())
	assert.True(t, gateway.IsError(err))

	assert.NoError(t, g.DeleteCard(ctx, "c1"))
	assert.NoError(t, g.DeleteCard(ctx, "c1"))
	assert.Len(t, g.Calls(), 3)
}

func TestScripted_Hold(t *testing.T) {
	g := New().Hold()

	done := make(chan error, 1)
	go func() {
		_, err := g.MoveCard(context.Background(), "c1", "s2")
		done <- err
	}()

	p := g.Await(t)
	assert.Equal(t, gateway.OpMoveCard, p.Call.Op)
	assert.Equal(t, "s2", p.Call.ToStackID)

	p.Reject(errors.New("boom"))
	assert.EqualError(t, <-done, "boom")
}
