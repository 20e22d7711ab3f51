package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// SyntheticName is the catalog name of the synthetic dataset.
const SyntheticName = "SYNTH"

// SyntheticCatalog is a CUE catalog describing the dataset written by
// WriteSyntheticDataset.
const SyntheticCatalog = `datasets: SYNTH: {
	label: "Synthetic"
	file:  "synth_int.csv"
	qis: ["age", "sex", "zip"]
}
`

// SyntheticRows is the number of records in the synthetic dataset.
const SyntheticRows = 40

var syntheticZips = []string{"47677", "47678", "47602", "47605", "47609"}

// WriteSyntheticDataset writes a small three quasi-identifier table with
// hierarchies under dir, using the data/ and hierarchies/ layout.
//
// Hierarchy heights: age 3 levels, sex 2 levels, zip 3 levels, so the
// full-domain lattice has 18 nodes.
func WriteSyntheticDataset(t testing.TB, dir string) {
	t.Helper()

	var data strings.Builder
	data.WriteString("age;sex;zip;income\n")
	for i := 0; i < SyntheticRows; i++ {
		sex := "m"
		if i%3 == 0 {
			sex = "f"
		}
		fmt.Fprintf(&data, "%d;%s;%s;%d\n", 20+(i*7)%10, sex, syntheticZips[(i*3)%5], 1000+i)
	}

	var age strings.Builder
	for a := 20; a < 30; a++ {
		band := "20-24"
		if a >= 25 {
			band = "25-29"
		}
		fmt.Fprintf(&age, "%d;%s;*\n", a, band)
	}

	var zip strings.Builder
	for _, z := range syntheticZips {
		fmt.Fprintf(&zip, "%s;%s*;*\n", z, z[:4])
	}

	WriteFile(t, filepath.Join(dir, "data", "synth_int.csv"), data.String())
	WriteFile(t, filepath.Join(dir, "hierarchies", "synth_int_hierarchy_age.csv"), age.String())
	WriteFile(t, filepath.Join(dir, "hierarchies", "synth_int_hierarchy_sex.csv"), "m;*\nf;*\n")
	WriteFile(t, filepath.Join(dir, "hierarchies", "synth_int_hierarchy_zip.csv"), zip.String())
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
