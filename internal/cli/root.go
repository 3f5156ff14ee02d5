package cli

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions are the persistent flags shared by every subcommand.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats lists the values accepted by --format.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the qrorder CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "qrorder",
		Short: "qrorder - order code kiosk simulator",
		Long: `Simulate a booth ordering kiosk: build a cart, commit it to get an order
code, and watch the code void when the cart changes or items sell out.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			slog.SetDefault(newLogger(opts.Verbose))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log debug detail to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format: text or json")

	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewKioskCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// newLogger writes text logs to stderr. Only warnings show unless verbose.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
