package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/roach88/qrorder/internal/journal"
	"github.com/roach88/qrorder/internal/kiosk"
	"github.com/roach88/qrorder/internal/order"
)

// KioskOptions holds flags for the kiosk command.
type KioskOptions struct {
	*RootOptions
	Catalog string
	Journal string
	Label   string
	Delay   time.Duration
	Inline  bool
}

// NewKioskCommand creates the kiosk command.
func NewKioskCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KioskOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "kiosk",
		Short: "Open the interactive ordering screen",
		Long: `Open the customer-facing ordering screen in the terminal.

Pick items with the arrow keys, press c to get an order code, and q to
quit. The order code voids when the cart changes or items sell out.

Examples:
  qrorder kiosk
  qrorder kiosk --delay 30s --journal ./orders.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKiosk(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "path to a .cue catalog (default: built-in)")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record events to this SQLite journal")
	cmd.Flags().StringVar(&opts.Label, "label", "kiosk", "label for the journaled session")
	cmd.Flags().DurationVar(&opts.Delay, "delay", order.DefaultStockOutDelay, "time from commit to the simulated stock-out")
	cmd.Flags().BoolVar(&opts.Inline, "inline", false, "render inline instead of the alternate screen")

	return cmd
}

func runKiosk(opts *KioskOptions, cmd *cobra.Command) error {
	if opts.Delay <= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--delay must be positive, got %s", opts.Delay))
	}
	cat, err := loadCatalog(opts.Catalog)
	if err != nil {
		return err
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionOpts := []order.Option{
		order.WithStockOutDelay(opts.Delay),
		order.WithLogger(slog.Default()),
	}

	var rec *journal.Recorder
	if opts.Journal != "" {
		j, err := journal.Open(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer j.Close()
		id, err := j.StartSession(ctx, opts.Label, cat.Currency())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start journal session", err)
		}
		rec = j.Recorder(ctx, id)
		sessionOpts = append(sessionOpts, order.WithNotifier(rec))
	}

	m := kiosk.New(cat, kiosk.WithSessionOptions(sessionOpts...))

	var programOpts []tea.ProgramOption
	if !opts.Inline {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	programOpts = append(programOpts,
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)

	if err := kiosk.Run(ctx, m, programOpts...); err != nil {
		return WrapExitError(ExitFailure, "kiosk error", err)
	}

	if rec != nil {
		if err := rec.Err(); err != nil {
			return WrapExitError(ExitFailure, "journal write failed", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "journal session: %s\n", rec.SessionID())
	}
	return nil
}
