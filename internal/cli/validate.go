package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/qrorder/internal/catalog"
)

// CatalogIssue is one problem found in a catalog file.
type CatalogIssue struct {
	File    string `json:"file"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool           `json:"valid"`
	Files  int            `json:"files"`
	Items  int            `json:"items"`
	Errors []CatalogIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <catalog.cue>...",
		Short: "Check catalog files against the catalog schema",
		Long: `Check CUE catalog files against the embedded catalog schema.

Every file is checked; the first error of each is reported with its
position.

Exit codes:
  0 - All catalogs valid
  1 - One or more catalogs invalid
  2 - Command error (file not found, etc.)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	result := ValidationResult{Valid: true, Files: len(paths)}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			_ = formatter.Error("E_NOT_FOUND", err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read catalog", err)
		}

		formatter.VerboseLog("Validating %s", path)
		cat, err := catalog.Parse(filepath.Base(path), data)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, issueFrom(path, err))
			continue
		}
		result.Items += cat.Len()
	}

	if result.Valid {
		if opts.Format == "json" {
			return formatter.Success(result)
		}
		fmt.Fprintf(formatter.Writer, "✓ %d catalog(s) valid, %d item(s)\n", result.Files, result.Items)
		return nil
	}

	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	if opts.Format == "json" {
		if err := writeJSON(formatter.Writer, CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: "E_INVALID_CATALOG", Message: result.Errors[0].Message},
		}); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, issue := range result.Errors {
		if issue.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n", issue.File, issue.Line, issue.Column)
		} else {
			fmt.Fprintln(formatter.Writer, issue.File)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Field, issue.Message)
	}
	return failure
}

func issueFrom(path string, err error) CatalogIssue {
	issue := CatalogIssue{File: path, Field: "catalog", Message: err.Error()}
	var loadErr *catalog.LoadError
	if errors.As(err, &loadErr) {
		issue.Field = loadErr.Field
		issue.Message = loadErr.Message
		if loadErr.Pos.IsValid() {
			issue.Line = loadErr.Pos.Line()
			issue.Column = loadErr.Pos.Column()
		}
	}
	return issue
}
