// Package model defines the two persisted entity types, Stack and Card, and
// the immutable Snapshot that groups them.
//
// # Invariants
//
//   - Every Card's StackID references a Stack in the same Snapshot once a
//     mutation has committed.
//   - Removing a Stack removes its Cards in the same Snapshot transition
//     (see Snapshot.RemoveStack).
//   - IDs are never reused; UUIDGenerator produces time-ordered UUIDv7 values.
//   - Snapshot values are copy-on-write: every With/Without/Replace method
//     returns a new Snapshot and leaves the receiver untouched, so a published
//     *Snapshot can be shared between goroutines without locking.
//
// Timestamps are Unix milliseconds, matching the persisted and wire formats.
//
// Update requests (StackUpdate, CardUpdate, NewCard) list exactly the fields
// that may be patched. Validate them before merging with ApplyTo.
package model
