// Package journal records order-session events in an append-only SQLite log.
//
// A journal holds one or more sessions of a single process run; it is not a
// cross-session store. Each session gets a UUIDv7 id and every event it emits
// is stored under (session_id, seq) with its canonical JSON payload.
//
// # Database Configuration
//
//   - WAL mode for reads while the session writes
//   - synchronous=NORMAL
//   - 5-second busy timeout
//   - foreign keys enforced
//   - ":memory:" (or an empty path) for a throwaway journal
//
// All reads order by seq ASC, so a trace reads back exactly as emitted.
package journal
