// Package harness runs YAML scenarios against the real engine.
//
// # Scenario Format
//
//	name: delete_stack_rollback
//	description: "Rejected delete restores the stack and its cards"
//	seed:
//	  stacks:
//	    - {id: s1, name: Reading, updated_at: 10}
//	  cards:
//	    - {id: c1, name: Dune, stack_id: s1}
//	steps:
//	  - op: delete_stack
//	    args: {id: s1}
//	    outcome: fail
//	    error: "Server unavailable"
//	    expect:
//	      returns: gateway
//	      sync_status: error
//	      stack_count: 1
//	assertions:
//	  - type: card_in_stack
//	    id: c1
//	    stack: s1
//	  - type: persisted_equals_memory
//
// A gateway step labelled with "as" stays pending until a later settle step
// names it, so scenarios can overlap operations and choose the order in
// which they settle.
//
// # Assertion Types
//
//   - stack_exists / stack_absent: a stack is (not) in the final snapshot
//   - card_in_stack / card_absent: a card is in the given stack, or gone
//   - card_count: cardCount(stack) equals count
//   - sync_status: the final sync status
//   - persisted_equals_memory: the SQLite mirror equals the in-memory snapshot
//
// # Deterministic Testing
//
// Each scenario runs with a fresh in-memory SQLite store, a scripted
// gateway, a manual clock, a seeded cover source and fixed ids, so its trace
// is identical on every run and can be compared against a golden file.
package harness
