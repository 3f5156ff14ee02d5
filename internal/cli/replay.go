package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/qrorder/internal/journal"
	"github.com/roach88/qrorder/internal/order"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Journal string
	Session string // optional - specific session only
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	Session    string         `json:"session"`
	State      *journal.State `json:"state,omitempty"`
	Consistent bool           `json:"consistent"`
	Error      string         `json:"error,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions      []ReplaySessionResult `json:"sessions"`
	TotalSessions int                   `json:"total_sessions"`
	AllConsistent bool                  `json:"all_consistent"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Rebuild sessions from the journal and check consistency",
		Long: `Rebuild every journaled session from its events and report the final
cart and order state.

Replay fails when sequence numbers have gaps or an event cannot follow the
ones before it, for example an order code voided while no code was live.

Exit codes:
  0 - All sessions are consistent
  1 - One or more sessions are inconsistent
  2 - Command error (journal not found, etc.)

Examples:
  qrorder replay --journal ./orders.db
  qrorder replay --journal ./orders.db --session 0193...
  qrorder replay --journal ./orders.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to the SQLite journal (required)")
	_ = cmd.MarkFlagRequired("journal")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay this session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	j, err := openJournal(opts.Journal)
	if err != nil {
		return err
	}
	defer j.Close()

	var ids []string
	if opts.Session != "" {
		ids = []string{opts.Session}
	} else {
		sessions, err := j.Sessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		for _, s := range sessions {
			ids = append(ids, s.ID)
		}
	}

	result := ReplayResult{
		Sessions:      make([]ReplaySessionResult, 0, len(ids)),
		TotalSessions: len(ids),
		AllConsistent: true,
	}
	for _, id := range ids {
		formatter.VerboseLog("Replaying session %s", id)
		r, err := replaySession(ctx, j, id)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", id), err)
		}
		if !r.Consistent {
			result.AllConsistent = false
		}
		result.Sessions = append(result.Sessions, r)
	}

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.AllConsistent {
			resp.Status = "error"
			resp.Error = &CLIError{Code: "E_INCONSISTENT", Message: "journal replay found inconsistent sessions"}
		}
		if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
			return err
		}
	} else {
		outputReplayText(formatter, result)
	}

	if !result.AllConsistent {
		return NewExitError(ExitFailure, "journal replay found inconsistent sessions")
	}
	return nil
}

// replaySession returns an error only for read failures; replay failures
// are reported in the result.
func replaySession(ctx context.Context, j *journal.Journal, id string) (ReplaySessionResult, error) {
	entries, err := j.Events(ctx, id)
	if err != nil {
		return ReplaySessionResult{}, err
	}
	st, err := journal.Replay(entries)
	var re *journal.ReplayError
	if errors.As(err, &re) {
		return ReplaySessionResult{Session: id, Error: re.Error()}, nil
	}
	if err != nil {
		return ReplaySessionResult{}, err
	}
	return ReplaySessionResult{Session: id, State: &st, Consistent: true}, nil
}

func outputReplayText(f *OutputFormatter, result ReplayResult) {
	w := f.Writer
	if result.TotalSessions == 0 {
		fmt.Fprintln(w, "No sessions found in journal.")
		return
	}

	for _, r := range result.Sessions {
		if !r.Consistent {
			fmt.Fprintf(w, "✗ %s\n  %s\n", r.Session, r.Error)
			continue
		}
		st := r.State
		fmt.Fprintf(w, "✓ %s  %d events, status=%s", r.Session, st.Events, st.Status)
		if st.Token != "" {
			fmt.Fprintf(w, " token=%s", st.Token)
		}
		if st.Status == order.StatusInvalidated {
			fmt.Fprintf(w, " cause=%s", st.Cause)
		}
		fmt.Fprintln(w)
		f.VerboseLog("  cart=%v unavailable=%v", st.Cart, st.Unavailable)
	}

	if result.AllConsistent {
		fmt.Fprintf(w, "\n✓ All %d session(s) consistent\n", result.TotalSessions)
	}
}
