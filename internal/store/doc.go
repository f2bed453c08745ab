// Package store provides the SQLite-backed local mirror of the engine's
// snapshot.
//
// The store keeps at most one snapshot:
//   - stacks / cards: one row per record, with a position column so the
//     snapshot order survives a round trip
//   - snapshot_meta: digest and save time of the last successful save
//
// SaveSnapshot replaces every row inside one transaction, so a reader never
// sees half of a save. LoadSnapshot recomputes the digest and checks for
// dangling card references; a mismatch is reported as ErrCorrupt.
//
// Adapter wraps a Store with the best-effort contract the engine expects:
// Save logs failures instead of returning them, and Load returns nil when
// the snapshot is absent or corrupt.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
