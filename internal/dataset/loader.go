package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Data is a dataset projected to a prefix of its quasi-identifiers with a
// hierarchy attached to every column.
//
// Data is read-only once loaded; it is shared between the baseline and the
// measured run of a trial.
type Data struct {
	Name        string
	Header      []string
	Rows        [][]string
	Hierarchies []*Hierarchy

	// QIs is the dataset's full ordered quasi-identifier list; Header is a
	// prefix of it.
	QIs []string
}

// MaxLevels returns the highest generalization level of every column.
func (d *Data) MaxLevels() []int {
	levels := make([]int, len(d.Hierarchies))
	for i, h := range d.Hierarchies {
		levels[i] = h.MaxLevel()
	}
	return levels
}

// Loader reads datasets from a directory laid out as
//
//	<dir>/data/<file>
//	<dir>/hierarchies/<prefix>_hierarchy_<qi>.csv
//
// Loaded projections are cached by (name, qids).
type Loader struct {
	dir     string
	catalog *Catalog
	cache   map[string]*Data
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string, catalog *Catalog) *Loader {
	return &Loader{
		dir:     dir,
		catalog: catalog,
		cache:   make(map[string]*Data),
	}
}

// Catalog returns the loader's catalog.
func (l *Loader) Catalog() *Catalog {
	return l.catalog
}

// Load returns the dataset projected to its first qids quasi-identifiers,
// or all of them when qids is 0.
func (l *Loader) Load(name string, qids int) (*Data, error) {
	entry, err := l.catalog.Lookup(name)
	if err != nil {
		return nil, err
	}
	if qids < 0 || qids > len(entry.QIs) {
		return nil, fmt.Errorf("dataset %s has %d quasi-identifiers, requested %d", name, len(entry.QIs), qids)
	}
	if qids == 0 {
		qids = len(entry.QIs)
	}

	cacheKey := name + "/" + strconv.Itoa(qids)
	if d, ok := l.cache[cacheKey]; ok {
		return d, nil
	}

	qis := entry.QIs[:qids]
	header, rows, err := readTable(filepath.Join(l.dir, "data", entry.File))
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", name, err)
	}
	projected, err := project(header, rows, qis)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", name, err)
	}

	d := &Data{
		Name:        name,
		Header:      append([]string(nil), qis...),
		QIs:         append([]string(nil), entry.QIs...),
		Rows:        projected,
		Hierarchies: make([]*Hierarchy, len(qis)),
	}
	for i, qi := range qis {
		h, err := ReadHierarchyFile(qi, filepath.Join(l.dir, "hierarchies", entry.HierarchyFile(qi)))
		if err != nil {
			return nil, fmt.Errorf("load dataset %s: %w", name, err)
		}
		for r, row := range projected {
			if !h.Contains(row[i]) {
				return nil, fmt.Errorf("load dataset %s: row %d: %q in %q: %w", name, r+1, row[i], qi, ErrValueNotInHierarchy)
			}
		}
		d.Hierarchies[i] = h
	}

	l.cache[cacheKey] = d
	return d, nil
}

func readTable(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s has no header", path)
	}
	return records[0], records[1:], nil
}

// project keeps the columns named by qis, in qis order.
func project(header []string, rows [][]string, qis []string) ([][]string, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}
	cols := make([]int, len(qis))
	for i, qi := range qis {
		c, ok := index[qi]
		if !ok {
			return nil, fmt.Errorf("column %q not found", qi)
		}
		cols[i] = c
	}

	out := make([][]string, len(rows))
	for r, row := range rows {
		rec := make([]string, len(cols))
		for i, c := range cols {
			rec[i] = row[c]
		}
		out[r] = rec
	}
	return out, nil
}
