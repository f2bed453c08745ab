package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/stackdock/internal/model"
)

var (
	// ErrNoSnapshot is returned by LoadSnapshot when nothing was ever saved
	// (or the store was cleared).
	ErrNoSnapshot = errors.New("no stored snapshot")

	// ErrCorrupt is returned by LoadSnapshot when the stored rows do not
	// form a valid snapshot.
	ErrCorrupt = errors.New("stored snapshot is corrupt")
)

// LoadSnapshot reads the stored snapshot in its saved order.
//
// Returns ErrNoSnapshot if absent. Returns an error wrapping ErrCorrupt if
// the recomputed digest differs from the saved one or a card references a
// missing stack.
func (s *Store) LoadSnapshot(ctx context.Context) (*model.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("load snapshot: begin tx: %w", err)
	}
	defer tx.Rollback()

	var savedDigest string
	err = tx.QueryRowContext(ctx, `SELECT digest FROM snapshot_meta WHERE id = 1`).Scan(&savedDigest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: read meta: %w", err)
	}

	stacks, err := readStacks(ctx, tx)
	if err != nil {
		return nil, err
	}
	cards, err := readCards(ctx, tx)
	if err != nil {
		return nil, err
	}

	snap := &model.Snapshot{Stacks: stacks, Cards: cards}

	digest, err := snap.Digest()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w: %v", ErrCorrupt, err)
	}
	if digest != savedDigest {
		return nil, fmt.Errorf("load snapshot: %w: digest mismatch", ErrCorrupt)
	}
	if dangling := snap.DanglingCards(); len(dangling) > 0 {
		return nil, fmt.Errorf("load snapshot: %w: card %s references missing stack %s",
			ErrCorrupt, dangling[0].ID, dangling[0].StackID)
	}

	return snap, nil
}

func readStacks(ctx context.Context, tx *sql.Tx) ([]model.Stack, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, cover, cover_type, created_at, updated_at
		FROM stacks
		ORDER BY position ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query stacks: %w", err)
	}
	defer rows.Close()

	stacks := []model.Stack{}
	for rows.Next() {
		var st model.Stack
		var coverType string
		if err := rows.Scan(&st.ID, &st.Name, &st.Cover, &coverType, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stack: %w", err)
		}
		st.CoverType = model.CoverType(coverType)
		stacks = append(stacks, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stacks: %w", err)
	}
	return stacks, nil
}

func readCards(ctx context.Context, tx *sql.Tx) ([]model.Card, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, stack_id, name, description, cover, created_at, updated_at
		FROM cards
		ORDER BY position ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	cards := []model.Card{}
	for rows.Next() {
		var c model.Card
		if err := rows.Scan(&c.ID, &c.StackID, &c.Name, &c.Description, &c.Cover, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return cards, nil
}
