package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrValueNotInHierarchy is returned when a data value has no row in the
// hierarchy of its attribute.
var ErrValueNotInHierarchy = errors.New("value not in hierarchy")

// Hierarchy is a value generalization hierarchy for one attribute.
//
// The on-disk format is one row per leaf value, ';' separated:
//
//	value;level1;level2;...;top
//
// Column 0 is the leaf itself (level 0).
type Hierarchy struct {
	Attribute string

	rows   map[string][]string
	height int
	leaves int
	// covered[level][generalized] counts the leaves under a generalized value.
	covered []map[string]int
}

// ReadHierarchyFile parses a hierarchy file from disk.
func ReadHierarchyFile(attribute, path string) (*Hierarchy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hierarchy for %q: %w", attribute, err)
	}
	defer f.Close()

	h, err := ParseHierarchy(attribute, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// ParseHierarchy parses a ';' separated hierarchy.
func ParseHierarchy(attribute string, r io.Reader) (*Hierarchy, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse hierarchy for %q: %w", attribute, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("hierarchy for %q is empty", attribute)
	}

	h := &Hierarchy{
		Attribute: attribute,
		rows:      make(map[string][]string, len(records)),
		height:    len(records[0]),
	}
	h.covered = make([]map[string]int, h.height)
	for i := range h.covered {
		h.covered[i] = make(map[string]int)
	}

	for _, rec := range records {
		leaf := rec[0]
		if _, dup := h.rows[leaf]; dup {
			return nil, fmt.Errorf("hierarchy for %q: duplicate value %q", attribute, leaf)
		}
		h.rows[leaf] = rec
		for level, v := range rec {
			h.covered[level][v]++
		}
	}
	h.leaves = len(records)
	return h, nil
}

// MaxLevel returns the highest generalization level.
func (h *Hierarchy) MaxLevel() int {
	return h.height - 1
}

// Leaves returns the size of the attribute's leaf domain.
func (h *Hierarchy) Leaves() int {
	return h.leaves
}

// Contains reports whether value is a leaf of the hierarchy.
func (h *Hierarchy) Contains(value string) bool {
	_, ok := h.rows[value]
	return ok
}

// Generalize maps a leaf value to its representative at level.
func (h *Hierarchy) Generalize(value string, level int) (string, error) {
	row, ok := h.rows[value]
	if !ok {
		return "", fmt.Errorf("%q in %q: %w", value, h.Attribute, ErrValueNotInHierarchy)
	}
	if level < 0 || level >= len(row) {
		return "", fmt.Errorf("level %d out of range [0,%d] for %q", level, h.MaxLevel(), h.Attribute)
	}
	return row[level], nil
}

// Granularity returns the normalized precision loss of a generalized value:
// (leaves covered - 1) / (domain size - 1). Leaves have granularity 0 and
// the root has granularity 1.
func (h *Hierarchy) Granularity(generalized string, level int) float64 {
	if h.leaves <= 1 {
		return 0
	}
	n := h.covered[level][generalized]
	if n <= 1 {
		return 0
	}
	return float64(n-1) / float64(h.leaves-1)
}
