// Package harness runs scripted order sessions from YAML and checks them.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: commit_then_add
//	description: "Editing the cart voids the pending order"
//	delay: 10s                  # optional, stock-out delay
//	tokens: [tok-1, tok-2]      # optional, handed to successive commits
//	selector: {mode: ids, ids: [t1]}
//	steps:
//	  - op: add
//	    id: t1
//	    qty: 2
//	  - op: commit
//	  - op: add
//	    id: t1
//	  - op: commit
//	    expect_error: EMPTY_CART
//	assertions:
//	  - type: trace_order
//	    events: [Committed, Invalidated, Added]
//	  - type: final_state
//	    status: Invalidated
//	    cause: CartChanged
//	    cart: {t1: 3}
//
// Step ops are add, dec, remove, clear, commit, restart, soldout, advance
// (virtual time), fire (the next armed timer) and verify.
//
// # Assertion Types
//
//   - trace_contains: an event of a type whose payload includes the given fields
//   - trace_order: event types appear in the given order
//   - trace_count: an event type appears exactly N times
//   - final_state: status, cause, token, cart, unavailable, total, timers
//
// # Deterministic Testing
//
// Every scenario runs on a fresh session with a manual scheduler, a
// deterministic sequence clock, scripted tokens and a fixed selector, so the
// trace is identical across runs and can be compared with a golden file
// (see Snapshot and RunWithGolden).
package harness
