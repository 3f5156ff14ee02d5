package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/qrorder/internal/order"
)

// Session describes one journaled session.
type Session struct {
	ID         string `json:"id"`
	Label      string `json:"label,omitempty"`
	Currency   string `json:"currency"`
	EventCount int    `json:"event_count"`
}

// Entry is one stored event.
type Entry struct {
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
	Type      string `json:"type"`
	Token     string `json:"token,omitempty"`
	Cause     string `json:"cause,omitempty"`

	// Payload is the canonical JSON of the event.
	Payload string `json:"payload"`
}

// Event decodes the payload.
func (e Entry) Event() (order.Event, error) {
	return unmarshalEvent(e.Payload)
}

// Sessions lists sessions in id order (UUIDv7 ids sort by creation time).
// Returns an empty slice, not nil, when there are none.
func (j *Journal) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT s.id, s.label, s.currency, COUNT(e.seq)
		FROM sessions s
		LEFT JOIN events e ON e.session_id = s.id
		GROUP BY s.id
		ORDER BY s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Label, &s.Currency, &s.EventCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Events returns a session's events ordered by seq.
func (j *Journal) Events(ctx context.Context, sessionID string) ([]Entry, error) {
	return j.queryEntries(ctx, `
		SELECT session_id, seq, type, token, cause, payload
		FROM events
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
}

// EventsByToken returns every event that names token, across sessions.
func (j *Journal) EventsByToken(ctx context.Context, token string) ([]Entry, error) {
	return j.queryEntries(ctx, `
		SELECT session_id, seq, type, token, cause, payload
		FROM events
		WHERE token = ?
		ORDER BY session_id COLLATE BINARY ASC, seq ASC
	`, token)
}

// CountByType returns how many events of each type a session emitted.
func (j *Journal) CountByType(ctx context.Context, sessionID string) (map[string]int, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT type, COUNT(*)
		FROM events
		WHERE session_id = ?
		GROUP BY type
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[typ] = n
	}
	return counts, rows.Err()
}

func (j *Journal) queryEntries(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var e Entry
	if err := rows.Scan(&e.SessionID, &e.Seq, &e.Type, &e.Token, &e.Cause, &e.Payload); err != nil {
		return Entry{}, fmt.Errorf("scan event: %w", err)
	}
	return e, nil
}
