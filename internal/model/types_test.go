package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Stacks: []Stack{
			{ID: "s1", Name: "Reading", Cover: "#6366f1", CoverType: CoverColor, CreatedAt: 1, UpdatedAt: 1},
			{ID: "s2", Name: "Shopping", Cover: "#22c55e", CoverType: CoverColor, CreatedAt: 2, UpdatedAt: 2},
		},
		Cards: []Card{
			{ID: "c1", Name: "Dune", StackID: "s1", Cover: "a.jpg", CreatedAt: 3, UpdatedAt: 3},
			{ID: "c2", Name: "Neuromancer", StackID: "s1", Cover: "b.jpg", CreatedAt: 4, UpdatedAt: 4},
			{ID: "c3", Name: "Keyboard", StackID: "s2", Cover: "c.jpg", CreatedAt: 5, UpdatedAt: 5},
		},
	}
}

func TestSnapshot_CardsForStack(t *testing.T) {
	snap := testSnapshot()

	cards := snap.CardsForStack("s1")
	require.Len(t, cards, 2)
	assert.Equal(t, "c1", cards[0].ID)
	assert.Equal(t, "c2", cards[1].ID)

	assert.Equal(t, 1, snap.CardCount("s2"))
	assert.Empty(t, snap.CardsForStack("missing"))
	assert.NotNil(t, snap.CardsForStack("missing"))
}

func TestSnapshot_CardsForStack_NoDuplicatesNoOmissions(t *testing.T) {
	snap := testSnapshot()

	total := 0
	for _, st := range snap.Stacks {
		for _, c := range snap.CardsForStack(st.ID) {
			assert.Equal(t, st.ID, c.StackID)
			total++
		}
	}
	assert.Equal(t, len(snap.Cards), total)
}

func TestSnapshot_NilReceiver(t *testing.T) {
	var snap *Snapshot

	assert.False(t, snap.HasStack("s1"))
	assert.False(t, snap.HasCard("c1"))
	assert.Equal(t, 0, snap.CardCount("s1"))
	assert.Empty(t, snap.CardsForStack("s1"))
	assert.NotNil(t, snap.Clone().Stacks)
}

func TestSnapshot_CopyOnWrite(t *testing.T) {
	snap := testSnapshot()
	before := snap.Clone()

	_ = snap.WithStack(Stack{ID: "s3", Name: "New"})
	_ = snap.WithCard(Card{ID: "c4", Name: "New", StackID: "s1"})
	_ = snap.ReplaceStack(Stack{ID: "s1", Name: "Renamed"})
	_ = snap.ReplaceCard(Card{ID: "c1", Name: "Renamed", StackID: "s2"})
	_ = snap.WithoutStack("s1")
	_ = snap.WithoutCard("c1")
	_, _, _, _ = snap.RemoveStack("s1")

	assert.Equal(t, before, snap)
}

func TestSnapshot_RemoveStack_Cascades(t *testing.T) {
	snap := testSnapshot()

	next, removed, cards, ok := snap.RemoveStack("s1")
	require.True(t, ok)

	assert.Equal(t, "Reading", removed.Name)
	require.Len(t, cards, 2)
	assert.False(t, next.HasStack("s1"))
	assert.False(t, next.HasCard("c1"))
	assert.False(t, next.HasCard("c2"))
	assert.True(t, next.HasCard("c3"))
	assert.Empty(t, next.DanglingCards())
}

func TestSnapshot_RemoveStack_Missing(t *testing.T) {
	snap := testSnapshot()

	next, _, cards, ok := snap.RemoveStack("missing")
	assert.False(t, ok)
	assert.Nil(t, cards)
	assert.True(t, next.Equal(snap))
}

func TestSnapshot_ReplaceMissingIsNoop(t *testing.T) {
	snap := testSnapshot()

	assert.True(t, snap.ReplaceStack(Stack{ID: "missing"}).Equal(snap))
	assert.True(t, snap.ReplaceCard(Card{ID: "missing"}).Equal(snap))
}

func TestSnapshot_DanglingCards(t *testing.T) {
	snap := testSnapshot().WithoutStack("s2")

	dangling := snap.DanglingCards()
	require.Len(t, dangling, 1)
	assert.Equal(t, "c3", dangling[0].ID)
}

func TestSnapshot_Equal_IgnoresOrder(t *testing.T) {
	a := testSnapshot()
	b := testSnapshot()
	b.Stacks[0], b.Stacks[1] = b.Stacks[1], b.Stacks[0]
	b.Cards[0], b.Cards[2] = b.Cards[2], b.Cards[0]

	assert.True(t, a.Equal(b))

	b.Cards[0].UpdatedAt++
	assert.False(t, a.Equal(b))
}

func TestCoverType_Valid(t *testing.T) {
	assert.True(t, CoverImage.Valid())
	assert.True(t, CoverGradient.Valid())
	assert.True(t, CoverColor.Valid())
	assert.False(t, CoverType("video").Valid())
}
