// Package engine implements the optimistic mutation engine for stacks and
// cards.
//
// Every mutation follows the same protocol:
//
//  1. Capture the records needed to undo it.
//  2. Apply it to the in-memory snapshot and mark the engine syncing. The new
//     snapshot is visible to readers and subscribers immediately.
//  3. Call the remote gateway with the post-mutation record.
//  4. On success mark the engine idle, clear the error message and save the
//     current snapshot through the Persister.
//  5. On failure revert the records captured in step 1, mark the engine
//     errored and surface the failure's message. Nothing is saved.
//
// Steps 2, 4 and 5 each run under the engine mutex, so readers never observe
// a half-applied transition. Gateway calls run outside the lock and overlap
// freely; their settlements race under the configured ConflictPolicy.
//
// Snapshots are copy-on-write: a published *model.Snapshot is never modified
// again, so it can be shared with readers without copying.
//
// Every transition is stamped with a seq from the engine Clock. The seq of an
// operation's applied event is also the revision stamped on every record it
// touched, which RejectStaleRollback uses to detect records overwritten by a
// later operation.
package engine
