package cli

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/qrorder/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Journal string
	Session string
	Token   string
}

// TraceEvent is one decoded journal entry.
type TraceEvent struct {
	Session string `json:"session"`
	Seq     int64  `json:"seq"`
	Type    string `json:"type"`
	Line    string `json:"line"`
	Payload string `json:"payload"`
}

// TraceResult holds the trace output for a session or token query.
type TraceResult struct {
	Session  string            `json:"session,omitempty"`
	Token    string            `json:"token,omitempty"`
	Timeline []TraceEvent      `json:"timeline"`
	Counts   map[string]int    `json:"counts,omitempty"`
	Sessions []journal.Session `json:"sessions,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show journaled session events",
		Long: `Show events recorded by "qrorder run --journal" or "qrorder kiosk --journal".

Without --session or --token the journaled sessions are listed.
With --session the session's timeline and per-type counts are shown.
With --token every event that names the order code is shown, across
sessions.

Examples:
  qrorder trace --journal ./orders.db
  qrorder trace --journal ./orders.db --session 0193...
  qrorder trace --journal ./orders.db --token q83v... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to the SQLite journal (required)")
	_ = cmd.MarkFlagRequired("journal")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id to trace")
	cmd.Flags().StringVar(&opts.Token, "token", "", "order code to trace")
	cmd.MarkFlagsMutuallyExclusive("session", "token")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	j, err := openJournal(opts.Journal)
	if err != nil {
		return err
	}
	defer j.Close()

	var result TraceResult
	switch {
	case opts.Session != "":
		result, err = traceSession(ctx, j, opts.Session)
	case opts.Token != "":
		result, err = traceToken(ctx, j, opts.Token)
	default:
		result.Timeline = []TraceEvent{}
		result.Sessions, err = j.Sessions(ctx)
		if err != nil {
			err = WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result, Session: result.Session})
	}
	return outputTraceText(cmd, opts, result)
}

// openJournal opens an existing journal. journal.Open would create a
// missing file, which is never what a reader wants.
func openJournal(path string) (*journal.Journal, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "journal not found", err)
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return j, nil
}

func traceSession(ctx context.Context, j *journal.Journal, id string) (TraceResult, error) {
	entries, err := j.Events(ctx, id)
	if err != nil {
		return TraceResult{}, WrapExitError(ExitCommandError, "failed to read events", err)
	}
	counts, err := j.CountByType(ctx, id)
	if err != nil {
		return TraceResult{}, WrapExitError(ExitCommandError, "failed to count events", err)
	}
	timeline, err := buildTimeline(entries)
	if err != nil {
		return TraceResult{}, err
	}
	return TraceResult{Session: id, Timeline: timeline, Counts: counts}, nil
}

func traceToken(ctx context.Context, j *journal.Journal, token string) (TraceResult, error) {
	entries, err := j.EventsByToken(ctx, token)
	if err != nil {
		return TraceResult{}, WrapExitError(ExitCommandError, "failed to read events", err)
	}
	timeline, err := buildTimeline(entries)
	if err != nil {
		return TraceResult{}, err
	}
	return TraceResult{Token: token, Timeline: timeline}, nil
}

func buildTimeline(entries []journal.Entry) ([]TraceEvent, error) {
	timeline := make([]TraceEvent, 0, len(entries))
	for _, entry := range entries {
		e, err := entry.Event()
		if err != nil {
			return nil, WrapExitError(ExitFailure, fmt.Sprintf("corrupt payload at seq %d", entry.Seq), err)
		}
		timeline = append(timeline, TraceEvent{
			Session: entry.SessionID,
			Seq:     entry.Seq,
			Type:    entry.Type,
			Line:    formatEvent(e),
			Payload: entry.Payload,
		})
	}
	return timeline, nil
}

func outputTraceText(cmd *cobra.Command, opts *TraceOptions, result TraceResult) error {
	w := cmd.OutOrStdout()

	if opts.Session == "" && opts.Token == "" {
		if len(result.Sessions) == 0 {
			fmt.Fprintln(w, "No sessions found in journal.")
			return nil
		}
		for _, s := range result.Sessions {
			label := s.Label
			if label == "" {
				label = "-"
			}
			fmt.Fprintf(w, "%s  %-12s %s  %d events\n", s.ID, label, s.Currency, s.EventCount)
		}
		return nil
	}

	if len(result.Timeline) == 0 {
		if opts.Token != "" {
			fmt.Fprintf(w, "No events found for token: %s\n", opts.Token)
		} else {
			fmt.Fprintf(w, "No events found for session: %s\n", opts.Session)
		}
		return nil
	}

	if opts.Session != "" {
		fmt.Fprintf(w, "Session: %s\n\n", opts.Session)
	} else {
		fmt.Fprintf(w, "Token: %s\n\n", opts.Token)
	}
	for _, e := range result.Timeline {
		if opts.Token != "" {
			fmt.Fprintf(w, "  %s  %s\n", e.Session, e.Line)
		} else {
			fmt.Fprintf(w, "  %s\n", e.Line)
		}
	}

	if len(result.Counts) > 0 {
		parts := make([]string, 0, len(result.Counts))
		for _, typ := range slices.Sorted(maps.Keys(result.Counts)) {
			parts = append(parts, fmt.Sprintf("%s=%d", typ, result.Counts[typ]))
		}
		fmt.Fprintf(w, "\nStats: %d events (%s)\n", len(result.Timeline), strings.Join(parts, " "))
	}
	return nil
}
