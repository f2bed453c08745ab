package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestNormalizeName(t *testing.T) {
	// "e" + combining acute accent composes to a single rune under NFC.
	assert.Equal(t, "caf\u00e9", NormalizeName("  cafe\u0301 "))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestNewCard_Validate(t *testing.T) {
	assert.NoError(t, NewCard{StackID: "s1", Name: "X"}.Validate())

	err := NewCard{StackID: "s1", Name: "  "}.Validate()
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	err = NewCard{Name: "X"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stackId")
}

func TestNewCard_Build(t *testing.T) {
	c := NewCard{StackID: "s1", Name: " Dune ", Description: " spice "}.Build("c1", 42)

	assert.Equal(t, Card{
		ID:          "c1",
		Name:        "Dune",
		Description: "spice",
		Cover:       PlaceholderCover("c1"),
		StackID:     "s1",
		CreatedAt:   42,
		UpdatedAt:   42,
	}, c)

	c = NewCard{StackID: "s1", Name: "Dune", Cover: "https://img/x.png"}.Build("c2", 1)
	assert.Equal(t, "https://img/x.png", c.Cover)
}

func TestStackUpdate(t *testing.T) {
	st := Stack{ID: "s1", Name: "Old", Cover: "#fff", CoverType: CoverColor, CreatedAt: 1, UpdatedAt: 1}

	u := StackUpdate{Name: ptr(" New ")}
	require.NoError(t, u.Validate())
	got := u.ApplyTo(st, 9)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, "#fff", got.Cover)
	assert.Equal(t, int64(1), got.CreatedAt)
	assert.Equal(t, int64(9), got.UpdatedAt)

	assert.Error(t, StackUpdate{Name: ptr("")}.Validate())
	assert.Error(t, StackUpdate{Cover: ptr(" ")}.Validate())
	assert.Error(t, StackUpdate{CoverType: ptr(CoverType("video"))}.Validate())
	assert.NoError(t, StackUpdate{}.Validate())
}

func TestCardUpdate(t *testing.T) {
	c := Card{ID: "c1", Name: "Old", Description: "d", Cover: "x", StackID: "s1", CreatedAt: 1, UpdatedAt: 1}

	got := CardUpdate{Description: ptr("")}.ApplyTo(c, 5)
	assert.Equal(t, "", got.Description)
	assert.Equal(t, "Old", got.Name)
	assert.Equal(t, "s1", got.StackID)
	assert.Equal(t, int64(5), got.UpdatedAt)

	err := CardUpdate{Name: ptr(" ")}.Validate()
	require.Error(t, err)
	assert.Equal(t, "invalid name: must not be empty", err.Error())
}
