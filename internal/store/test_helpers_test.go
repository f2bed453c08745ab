package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/stackdock/internal/model"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSnapshot returns two stacks and three cards with fixed values.
func createTestSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Stacks: []model.Stack{
			{ID: "s2", Name: "Shopping", Cover: "#22c55e", CoverType: model.CoverColor, CreatedAt: 10, UpdatedAt: 11},
			{ID: "s1", Name: "Reading", Cover: "linear-gradient(90deg, #667eea, #764ba2)", CoverType: model.CoverGradient, CreatedAt: 20, UpdatedAt: 21},
		},
		Cards: []model.Card{
			{ID: "c1", Name: "Dune", Description: "spice", Cover: "a.jpg", StackID: "s1", CreatedAt: 30, UpdatedAt: 31},
			{ID: "c3", Name: "Keyboard", Cover: "c.jpg", StackID: "s2", CreatedAt: 40, UpdatedAt: 41},
			{ID: "c2", Name: "Neuromancer", Cover: "b.jpg", StackID: "s1", CreatedAt: 50, UpdatedAt: 51},
		},
	}
}
