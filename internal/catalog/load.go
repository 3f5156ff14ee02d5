package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaSource string

//go:embed default.cue
var defaultSource []byte

// LoadError reports a catalog that failed to compile or validate.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// itemDef mirrors #Item in schema.cue.
type itemDef struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       int64  `json:"price"`
	Highlight   string `json:"highlight"`
}

type categoryDef struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Default returns the built-in booth catalog.
func Default() *Catalog {
	c, err := Parse("default.cue", defaultSource)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded default is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from a .cue file. An empty path returns Default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(filepath.Base(path), data)
}

// Parse compiles CUE catalog source, unifies it with the embedded schema and
// builds a Catalog. Fields keep their declaration order.
func Parse(filename string, src []byte) (*Catalog, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v = schema.LookupPath(cue.ParsePath("#Catalog")).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	code, err := v.LookupPath(cue.ParsePath("currency")).String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	categories, err := parseCategories(v.LookupPath(cue.ParsePath("categories")))
	if err != nil {
		return nil, err
	}
	items, err := parseItems(v.LookupPath(cue.ParsePath("items")))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &LoadError{Field: "items", Message: "at least one item is required", Pos: v.Pos()}
	}

	cat, err := New(code, categories, items)
	if err != nil {
		return nil, &LoadError{Field: "catalog", Message: err.Error(), Pos: v.Pos()}
	}
	return cat, nil
}

func parseCategories(v cue.Value) ([]Category, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []Category
	for iter.Next() {
		var def categoryDef
		if err := iter.Value().Decode(&def); err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, Category{ID: iter.Label(), Name: def.Name, Icon: def.Icon})
	}
	return out, nil
}

func parseItems(v cue.Value) ([]Item, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []Item
	for iter.Next() {
		var def itemDef
		if err := iter.Value().Decode(&def); err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, Item{
			ID:          iter.Label(),
			Name:        def.Name,
			Description: def.Description,
			Category:    def.Category,
			Highlight:   def.Highlight,
			Price:       def.Price,
		})
	}
	return out, nil
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &LoadError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return &LoadError{Field: "cue", Message: first.Error()}
}
