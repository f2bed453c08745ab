package engine

import "github.com/roach88/stackdock/internal/gateway"

// EventKind is the phase of an operation an Event reports.
type EventKind string

const (
	// EventApplied is emitted after the optimistic apply.
	EventApplied EventKind = "applied"
	// EventCommitted is emitted after the gateway accepted the operation.
	EventCommitted EventKind = "committed"
	// EventRolledBack is emitted after the gateway rejected the operation
	// and its records were reverted.
	EventRolledBack EventKind = "rolled_back"
)

// Event describes one engine transition.
type Event struct {
	// Seq orders events across all operations.
	Seq int64 `json:"seq"`

	// OpID is shared by the applied event and its settlement.
	OpID string `json:"op_id"`

	Op   gateway.Op `json:"op"`
	Kind EventKind  `json:"kind"`

	// IDs are the records the operation touched: the primary record first,
	// then cascaded records in snapshot order.
	IDs []string `json:"ids"`

	// Err is the surfaced message of a rollback.
	Err string `json:"error,omitempty"`
}

// Observer receives every Event in seq order. It is called with the engine
// lock held and must not call back into the Engine.
type Observer func(Event)
