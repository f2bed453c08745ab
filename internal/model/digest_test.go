package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{
		"b":   int64(2),
		"a":   "<x>",
		"arr": []any{true, 1},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"<x>","arr":[true,1],"b":2}`, string(data))
}

func TestMarshalCanonical_Rejects(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"f": 1.5})
	assert.Error(t, err)

	_, err = MarshalCanonical(map[string]any{"n": nil})
	assert.Error(t, err)

	_, err = MarshalCanonical(struct{}{})
	assert.Error(t, err)
}

func TestDigest_OrderInsensitive(t *testing.T) {
	a := testSnapshot()
	b := testSnapshot()
	b.Cards[0], b.Cards[1] = b.Cards[1], b.Cards[0]

	da, err := a.Digest()
	require.NoError(t, err)
	db, err := b.Digest()
	require.NoError(t, err)
	assert.Equal(t, da, db)
	assert.Len(t, da, 64)

	b.Stacks[0].Name = "Changed"
	db, err = b.Digest()
	require.NoError(t, err)
	assert.NotEqual(t, da, db)
}

func TestDemoSnapshot(t *testing.T) {
	ids := NewFixedGenerator("s1", "s2", "s3", "c1", "c2", "c3", "c4", "c5")

	snap := DemoSnapshot(ids, 100, nil)

	require.Len(t, snap.Stacks, 3)
	require.Len(t, snap.Cards, 5)
	assert.Equal(t, "Reading List", snap.Stacks[0].Name)
	assert.Equal(t, 2, snap.CardCount("s2"))
	assert.Equal(t, 1, snap.CardCount("s1"))
	assert.Equal(t, 2, snap.CardCount("s3"))
	assert.Empty(t, snap.DanglingCards())
	for _, st := range snap.Stacks {
		assert.Equal(t, int64(100), st.CreatedAt)
		assert.True(t, st.CoverType.Valid())
	}
}

func TestFixedGenerator(t *testing.T) {
	gen := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", gen.NewID())
	assert.Equal(t, "b", gen.NewID())
	assert.Panics(t, func() { gen.NewID() })
}

func TestUUIDGenerator(t *testing.T) {
	gen := UUIDGenerator{}
	a, b := gen.NewID(), gen.NewID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
