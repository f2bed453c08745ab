package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwipe_CursorBounds(t *testing.T) {
	te := setupTestEngine(t)
	require.NoError(t, te.SetActiveStack("s1")) // two cards

	te.EnterSwipeMode()
	assert.True(t, te.State().SwipeMode)
	assert.Equal(t, 0, te.State().SwipeIndex)

	te.PrevCard()
	assert.Equal(t, 0, te.State().SwipeIndex)

	te.NextCard()
	assert.Equal(t, 1, te.State().SwipeIndex)
	te.NextCard()
	assert.Equal(t, 1, te.State().SwipeIndex, "cursor stops on the last card")

	te.PrevCard()
	assert.Equal(t, 0, te.State().SwipeIndex)
}

func TestSwipe_SetSwipeIndexClamps(t *testing.T) {
	te := setupTestEngine(t)
	require.NoError(t, te.SetActiveStack("s1"))

	te.SetSwipeIndex(1)
	assert.Equal(t, 1, te.State().SwipeIndex)
	te.SetSwipeIndex(7)
	assert.Equal(t, 1, te.State().SwipeIndex)
	te.SetSwipeIndex(-3)
	assert.Equal(t, 0, te.State().SwipeIndex)
}

func TestSwipe_EmptyStackStaysAtZero(t *testing.T) {
	te := setupTestEngine(t)
	te.NextCard()
	te.SetSwipeIndex(4)
	assert.Equal(t, 0, te.State().SwipeIndex)
}

func TestSwipe_ExitRewinds(t *testing.T) {
	te := setupTestEngine(t)
	require.NoError(t, te.SetActiveStack("s1"))
	te.EnterSwipeMode()
	te.NextCard()

	te.ExitSwipeMode()
	assert.False(t, te.State().SwipeMode)
	assert.Equal(t, 0, te.State().SwipeIndex)
}

func TestSetActiveStack(t *testing.T) {
	te := setupTestEngine(t)
	require.NoError(t, te.SetActiveStack("s1"))
	te.EnterSwipeMode()
	te.NextCard()

	require.NoError(t, te.SetActiveStack("s2"))
	st := te.State()
	assert.Equal(t, "s2", st.ActiveStackID)
	assert.False(t, st.SwipeMode)
	assert.Equal(t, 0, st.SwipeIndex)

	assert.True(t, IsUnknownStack(te.SetActiveStack("nope")))
	assert.Equal(t, "s2", te.State().ActiveStackID)

	require.NoError(t, te.SetActiveStack(""))
	assert.Empty(t, te.State().ActiveStackID)
}
