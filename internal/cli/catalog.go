package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/qrorder/internal/catalog"
)

// CatalogOptions holds flags for the catalog command.
type CatalogOptions struct {
	*RootOptions
	Catalog  string
	Category string
}

// CatalogResult is the JSON shape of a catalog listing.
type CatalogResult struct {
	Currency   string             `json:"currency"`
	Categories []catalog.Category `json:"categories"`
	Items      []catalog.Item     `json:"items"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the items on sale",
		Long: `List the items of a catalog, grouped by category.

Without --catalog the built-in booth catalog is listed.

Examples:
  qrorder catalog
  qrorder catalog --category accessory
  qrorder catalog --catalog ./menu.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "path to a .cue catalog (default: built-in)")
	cmd.Flags().StringVar(&opts.Category, "category", "", "only list items in this category")

	return cmd
}

func runCatalog(opts *CatalogOptions, cmd *cobra.Command) error {
	cat, err := loadCatalog(opts.Catalog)
	if err != nil {
		return err
	}

	categories := cat.Categories()
	if opts.Category != "" {
		categories = nil
		for _, c := range cat.Categories() {
			if c.ID == opts.Category {
				categories = append(categories, c)
			}
		}
		if len(categories) == 0 {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown category: %s", opts.Category))
		}
	}

	result := CatalogResult{
		Currency:   cat.Currency(),
		Categories: categories,
		Items:      []catalog.Item{},
	}
	for _, c := range categories {
		result.Items = append(result.Items, cat.InCategory(c.ID)...)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result})
	}

	w := cmd.OutOrStdout()
	for i, c := range categories {
		if i > 0 {
			fmt.Fprintln(w)
		}
		title := c.Name
		if c.Icon != "" {
			title = c.Icon + " " + title
		}
		fmt.Fprintln(w, title)
		for _, it := range cat.InCategory(c.ID) {
			fmt.Fprintf(w, "  %-4s %-24s %12s", it.ID, it.Name, cat.FormatPrice(it.Price))
			if it.Highlight != "" {
				fmt.Fprintf(w, "  %s", it.Highlight)
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}

// loadCatalog loads path, or the built-in catalog when path is empty.
func loadCatalog(path string) (*catalog.Catalog, error) {
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load catalog", err)
	}
	return cat, nil
}
