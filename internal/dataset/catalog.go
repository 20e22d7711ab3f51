package dataset

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE []byte

//go:embed catalog.cue
var defaultCatalogCUE []byte

// ErrUnknownDataset is returned when a dataset name is not in the catalog.
var ErrUnknownDataset = errors.New("unknown dataset")

// Entry describes one benchmark dataset.
type Entry struct {
	Name            string   `json:"-"`
	Label           string   `json:"label"`
	File            string   `json:"file"`
	HierarchyPrefix string   `json:"hierarchyPrefix,omitempty"`
	QIs             []string `json:"qis"`
}

// HierarchyFile returns the hierarchy file name for a quasi-identifier.
func (e Entry) HierarchyFile(qi string) string {
	prefix := e.HierarchyPrefix
	if prefix == "" {
		prefix = strings.TrimSuffix(e.File, ".csv")
	}
	return prefix + "_hierarchy_" + qi + ".csv"
}

// Catalog is an ordered set of dataset entries.
type Catalog struct {
	entries map[string]Entry
	order   []string
}

// CatalogError is a catalog that failed schema validation.
type CatalogError struct {
	Source  string
	Message string
	Pos     string
}

func (e *CatalogError) Error() string {
	if e.Pos != "" {
		return fmt.Sprintf("%s: %s: %s", e.Source, e.Pos, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// DefaultCatalog returns the built-in catalog of benchmark datasets.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog("catalog.cue", defaultCatalogCUE)
}

// LoadCatalogFile reads a user catalog and validates it against the schema.
func LoadCatalogFile(path string) (*Catalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(path, src)
}

// ParseCatalog compiles CUE source, unifies it with the dataset schema and
// decodes the concrete result.
func ParseCatalog(name string, src []byte) (*Catalog, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}

	value := ctx.CompileBytes(src, cue.Filename(name))
	if err := value.Err(); err != nil {
		return nil, newCatalogError(name, err)
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, newCatalogError(name, err)
	}

	datasets := unified.LookupPath(cue.ParsePath("datasets"))
	if !datasets.Exists() {
		return nil, &CatalogError{Source: name, Message: "no datasets field"}
	}

	iter, err := datasets.Fields()
	if err != nil {
		return nil, newCatalogError(name, err)
	}

	c := &Catalog{entries: make(map[string]Entry)}
	for iter.Next() {
		var e Entry
		if err := iter.Value().Decode(&e); err != nil {
			return nil, newCatalogError(name, err)
		}
		e.Name = iter.Selector().Unquoted()
		c.entries[e.Name] = e
		c.order = append(c.order, e.Name)
	}
	if len(c.order) == 0 {
		return nil, &CatalogError{Source: name, Message: "catalog defines no datasets"}
	}
	return c, nil
}

func newCatalogError(source string, err error) *CatalogError {
	ce := &CatalogError{Source: source, Message: cueerrors.Details(err, nil)}
	if pos := cueerrors.Positions(err); len(pos) > 0 {
		ce.Pos = pos[0].String()
	}
	ce.Message = strings.TrimSpace(ce.Message)
	return ce
}

// Lookup returns the entry for a dataset name.
func (c *Catalog) Lookup(name string) (Entry, error) {
	e, ok := c.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
	return e, nil
}

// Names returns dataset names in catalog order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}
