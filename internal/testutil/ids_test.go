package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/stackdock/internal/model"
)

var _ model.IDGenerator = (*SequentialIDs)(nil)

func TestSequentialIDs(t *testing.T) {
	g := NewSequentialIDs("card")
	assert.Equal(t, "card-1", g.NewID())
	assert.Equal(t, "card-2", g.NewID())
	assert.Equal(t, 2, g.Issued())
}

func TestSequentialIDs_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "id-1", NewSequentialIDs("").NewID())
}

func TestSequentialIDs_Concurrent(t *testing.T) {
	g := NewSequentialIDs("x")
	ids := make(chan string, 200)
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- g.NewID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "id %s handed out twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, 200)
}
