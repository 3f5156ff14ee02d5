// Package engine runs an order.Session behind a single-writer event loop.
//
// ARCHITECTURE:
//
// The session is not safe for concurrent use, but a real-time front-end has
// two sources of input: user commands and the stock-out timer, which fires on
// a runtime goroutine. The engine funnels both into one FIFO queue:
//
//  1. Do(ctx, fn) enqueues a command and waits for its result
//  2. the engine's scheduler arms time.AfterFunc; the callback only enqueues
//     the fire, it never touches the session
//  3. Run(ctx) dequeues one task at a time and executes it to completion
//
// A fire that was already enqueued when its timer is cancelled still runs,
// and the session's generation check turns it into a no-op.
package engine
