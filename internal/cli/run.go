package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/qrorder/internal/engine"
	"github.com/roach88/qrorder/internal/journal"
	"github.com/roach88/qrorder/internal/order"
	"github.com/roach88/qrorder/internal/telemetry"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Script  string
	Catalog string
	Journal string
	Label   string
	Delay   time.Duration
	Stats   bool

	// Tokens overrides the order code generator (for testing).
	// If nil, codes are random.
	Tokens order.TokenGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive an ordering session from line commands",
		Long: `Drive an ordering session in real time from line commands read from
stdin or a script file. Every session event is printed as it happens,
including the simulated stock-out that fires after a commit.

Commands:
  add <id> [qty]      put qty (default 1) of an item in the cart
  dec <id>            take one unit out of the cart
  remove <id>         drop a cart line
  clear               empty the cart
  commit              get an order code for the cart
  restart             start over with an empty session
  soldout <id>...     mark items sold out
  verify <token>      check an order code as staff would
  status              print the cart and order code
  wait <duration>     pause, e.g. "wait 11s"
Lines starting with # are comments.

Examples:
  qrorder run --script ./demo.txt
  qrorder run --journal ./orders.db --label booth-1 --stats < demo.txt
  echo "add t1 2\ncommit\nwait 11s" | qrorder run --delay 10s`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Script, "script", "", "read commands from this file instead of stdin")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "path to a .cue catalog (default: built-in)")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record events to this SQLite journal")
	cmd.Flags().StringVar(&opts.Label, "label", "", "label for the journaled session")
	cmd.Flags().DurationVar(&opts.Delay, "delay", order.DefaultStockOutDelay, "time from commit to the simulated stock-out")
	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "print event counters when the session ends")

	return cmd
}

func runSession(opts *RunOptions, cmd *cobra.Command) error {
	if opts.Delay <= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--delay must be positive, got %s", opts.Delay))
	}

	cat, err := loadCatalog(opts.Catalog)
	if err != nil {
		return err
	}

	var input io.Reader = cmd.InOrStdin()
	if opts.Script != "" {
		f, err := os.Open(opts.Script)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open script", err)
		}
		defer f.Close()
		input = f
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	out := &lineWriter{w: cmd.OutOrStdout()}
	notifiers := order.Notifiers{&eventPrinter{out: out, json: opts.Format == "json"}}

	var rec *journal.Recorder
	if opts.Journal != "" {
		j, err := journal.Open(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()
		id, err := j.StartSession(ctx, opts.Label, cat.Currency())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start journal session", err)
		}
		slog.Info("journaling session", "path", opts.Journal, "session", id)
		rec = j.Recorder(ctx, id)
		notifiers = append(notifiers, rec)
	}

	var collector *telemetry.Collector
	if opts.Stats {
		collector, err = telemetry.NewCollector()
		if err != nil {
			return WrapExitError(ExitFailure, "failed to set up metrics", err)
		}
		defer collector.Shutdown(context.Background())
		notifiers = append(notifiers, collector.Metrics())
	}

	sessionOpts := []order.Option{
		order.WithNotifier(notifiers),
		order.WithStockOutDelay(opts.Delay),
	}
	if opts.Tokens != nil {
		sessionOpts = append(sessionOpts, order.WithTokenGenerator(opts.Tokens))
	}
	eng := engine.New(cat,
		engine.WithLogger(slog.Default()),
		engine.WithSessionOptions(sessionOpts...),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	runErr := make(chan error, 1)
	go func() { runErr <- eng.Run(ctx) }()

	scriptErr := runScript(ctx, eng, input, out, opts.Format == "json")

	eng.Stop()
	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "engine error", err)
	}
	if scriptErr != nil {
		return scriptErr
	}

	if rec != nil {
		if err := rec.Err(); err != nil {
			return WrapExitError(ExitFailure, "journal write failed", err)
		}
		if opts.Format != "json" {
			out.Println("journal session: " + rec.SessionID())
		}
	}
	if collector != nil {
		return printStats(context.Background(), collector, out, opts.Format == "json")
	}
	return nil
}

func printStats(ctx context.Context, c *telemetry.Collector, out *lineWriter, asJSON bool) error {
	snapshot, err := c.Snapshot(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to collect metrics", err)
	}
	if asJSON {
		stats := make(map[string]any, len(snapshot))
		for k, v := range snapshot {
			stats[k] = v
		}
		return out.PrintCanonical(map[string]any{"stats": stats})
	}
	out.Println("stats:")
	for _, line := range telemetry.Lines(snapshot) {
		out.Println("  " + line)
	}
	return nil
}
