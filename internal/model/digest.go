package model

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
)

// DomainSnapshot separates snapshot digests from any other hash use.
// The version suffix allows a future algorithm change.
const DomainSnapshot = "stackdock/snapshot/v1"

// Digest returns a content hash of the snapshot that ignores record order.
// Equal snapshots always produce the same digest.
func (s *Snapshot) Digest() (string, error) {
	snap := s.Clone()
	slices.SortFunc(snap.Stacks, func(a, b Stack) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(snap.Cards, func(a, b Card) int { return cmp.Compare(a.ID, b.ID) })

	stacks := make([]any, len(snap.Stacks))
	for i, st := range snap.Stacks {
		stacks[i] = map[string]any{
			"id":        st.ID,
			"name":      st.Name,
			"cover":     st.Cover,
			"coverType": string(st.CoverType),
			"createdAt": st.CreatedAt,
			"updatedAt": st.UpdatedAt,
		}
	}
	cards := make([]any, len(snap.Cards))
	for i, c := range snap.Cards {
		cards[i] = map[string]any{
			"id":          c.ID,
			"name":        c.Name,
			"description": c.Description,
			"cover":       c.Cover,
			"stackId":     c.StackID,
			"createdAt":   c.CreatedAt,
			"updatedAt":   c.UpdatedAt,
		}
	}

	canonical, err := MarshalCanonical(map[string]any{"stacks": stacks, "cards": cards})
	if err != nil {
		return "", fmt.Errorf("snapshot digest: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(DomainSnapshot))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}
