package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/stackdock/internal/model"
)

// SaveSnapshot overwrites the stored snapshot with snap.
//
// All rows are replaced inside one transaction together with the
// snapshot_meta row, so a concurrent LoadSnapshot sees either the previous
// snapshot or this one, never a mix.
func (s *Store) SaveSnapshot(ctx context.Context, snap *model.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("save snapshot: nil snapshot")
	}

	digest, err := snap.Digest()
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM cards`); err != nil {
		return fmt.Errorf("save snapshot: clear cards: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM stacks`); err != nil {
		return fmt.Errorf("save snapshot: clear stacks: %w", err)
	}

	stackStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stacks (id, position, name, cover, cover_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("save snapshot: prepare stacks: %w", err)
	}
	defer stackStmt.Close()

	for i, st := range snap.Stacks {
		if _, err := stackStmt.ExecContext(ctx,
			st.ID, i, st.Name, st.Cover, string(st.CoverType), st.CreatedAt, st.UpdatedAt,
		); err != nil {
			return fmt.Errorf("save snapshot: insert stack %s: %w", st.ID, err)
		}
	}

	cardStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cards (id, position, stack_id, name, description, cover, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("save snapshot: prepare cards: %w", err)
	}
	defer cardStmt.Close()

	for i, c := range snap.Cards {
		if _, err := cardStmt.ExecContext(ctx,
			c.ID, i, c.StackID, c.Name, c.Description, c.Cover, c.CreatedAt, c.UpdatedAt,
		); err != nil {
			return fmt.Errorf("save snapshot: insert card %s: %w", c.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshot_meta (id, digest, saved_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET digest = excluded.digest, saved_at = excluded.saved_at
	`, digest, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("save snapshot: write meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save snapshot: commit: %w", err)
	}
	return nil
}
