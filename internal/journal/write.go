package journal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/qrorder/internal/order"
)

// StartSession registers a new session and returns its id.
func (j *Journal) StartSession(ctx context.Context, label, currency string) (string, error) {
	id := j.newID()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO sessions (id, label, currency) VALUES (?, ?, ?)`,
		id, label, currency,
	)
	if err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}
	return id, nil
}

// Append stores one event. Re-appending the same (session, seq) is a no-op.
func (j *Journal) Append(ctx context.Context, sessionID string, e order.Event) error {
	payload, err := marshalEvent(e)
	if err != nil {
		return fmt.Errorf("append event %d: %w", e.Seq, err)
	}

	cause := ""
	if e.Cause != order.CauseNone {
		cause = string(e.Cause)
	}
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO events (session_id, seq, type, token, cause, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`,
		sessionID,
		e.Seq,
		string(e.Type),
		e.Token,
		cause,
		payload,
	)
	if err != nil {
		return fmt.Errorf("append event %d: %w", e.Seq, err)
	}
	return nil
}

// Recorder is an order.Notifier that appends every event to the journal.
//
// Notify cannot return an error, so failures are logged and the first one is
// kept for Err.
type Recorder struct {
	j         *Journal
	ctx       context.Context
	sessionID string

	mu  sync.Mutex
	err error
}

// Recorder returns a notifier that writes under sessionID.
func (j *Journal) Recorder(ctx context.Context, sessionID string) *Recorder {
	return &Recorder{j: j, ctx: ctx, sessionID: sessionID}
}

// SessionID returns the session the recorder writes under.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Notify implements order.Notifier.
func (r *Recorder) Notify(e order.Event) {
	if err := r.j.Append(r.ctx, r.sessionID, e); err != nil {
		slog.Error("journal write failed",
			"session", r.sessionID,
			"seq", e.Seq,
			"type", e.Type,
			"error", err,
		)
		r.mu.Lock()
		if r.err == nil {
			r.err = err
		}
		r.mu.Unlock()
	}
}

// Err returns the first write failure, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
