package anon

import (
	"fmt"
	"math"
	"sort"
)

// Criterion is a privacy requirement on the equivalence classes of a
// transformed dataset. The set of criteria is closed: only types in this
// package implement it.
type Criterion interface {
	String() string

	// apply marks the classes that must be suppressed for the criterion to
	// hold. n is the number of records the classes partition.
	apply(classes []*class, n int)

	// satisfied reports whether retained classes of the given sizes satisfy
	// the criterion without further suppression.
	satisfied(sizes []int) bool

	validate() error
}

// KAnonymity requires every retained equivalence class to hold at least K
// records. Smaller classes are suppressed.
type KAnonymity struct {
	K int
}

func (c KAnonymity) String() string {
	return fmt.Sprintf("%d-anonymity", c.K)
}

func (c KAnonymity) apply(classes []*class, _ int) {
	for _, cl := range classes {
		if cl.size < c.K {
			cl.suppressed = true
		}
	}
}

func (c KAnonymity) satisfied(sizes []int) bool {
	for _, s := range sizes {
		if s < c.K {
			return false
		}
	}
	return true
}

func (c KAnonymity) validate() error {
	if c.K < 1 {
		return fmt.Errorf("k must be positive, got %d", c.K)
	}
	return nil
}

// Population describes the population a sample was drawn from.
type Population struct {
	Region string
	Size   int64
}

// USA is the population of the United States used for risk estimates.
var USA = Population{Region: "USA", Size: 318_728_938}

// RiskModel names the estimator for population uniqueness.
type RiskModel string

const (
	// Pitman fits a Pitman sampling model to the sample class sizes and
	// estimates the share of the population made of uniques.
	Pitman RiskModel = "PITMAN"
	// Zayatz estimates the probability that a sample unique is a population
	// unique from the distribution of sample class sizes.
	Zayatz RiskModel = "ZAYATZ"
)

// PopulationUniqueness bounds the estimated fraction of population uniques.
// Sample uniques are suppressed until the estimate falls below Threshold.
type PopulationUniqueness struct {
	Threshold  float64
	Model      RiskModel
	Population Population
}

func (c PopulationUniqueness) String() string {
	return fmt.Sprintf("(%v)-population-uniqueness (%s, %s)", c.Threshold, c.Model, c.Population.Region)
}

// apply suppresses the fewest leading sample uniques that bring the risk
// under the threshold. The risk does not grow as uniques are removed and is
// zero without uniques, so a binary search finds that count.
func (c PopulationUniqueness) apply(classes []*class, _ int) {
	counts := map[int]int{}
	retained := 0
	var uniques []*class
	for _, cl := range classes {
		if cl.suppressed {
			continue
		}
		counts[cl.size]++
		retained += cl.size
		if cl.size == 1 {
			uniques = append(uniques, cl)
		}
	}

	ones := counts[1]
	m := sort.Search(len(uniques), func(m int) bool {
		counts[1] = ones - m
		return c.risk(counts, retained-m) <= c.Threshold
	})
	for _, cl := range uniques[:m] {
		cl.suppressed = true
	}
}

func (c PopulationUniqueness) satisfied(sizes []int) bool {
	counts := map[int]int{}
	n := 0
	for _, s := range sizes {
		counts[s]++
		n += s
	}
	return c.risk(counts, n) <= c.Threshold
}

// sizeCount is the number of classes of one size.
type sizeCount struct {
	size    int
	classes int
}

// histogram orders class counts by size so sums over it are reproducible.
func histogram(counts map[int]int) []sizeCount {
	hist := make([]sizeCount, 0, len(counts))
	for size, classes := range counts {
		if classes > 0 {
			hist = append(hist, sizeCount{size, classes})
		}
	}
	sort.Slice(hist, func(i, j int) bool { return hist[i].size < hist[j].size })
	return hist
}

// risk estimates the population uniqueness of n retained records, given the
// number of classes of each size.
func (c PopulationUniqueness) risk(counts map[int]int, n int) float64 {
	uniques := counts[1]
	if n == 0 || uniques == 0 {
		return 0
	}
	hist := histogram(counts)
	if c.Model == Pitman {
		if r, ok := pitmanRisk(hist, n, c.Population.Size); ok {
			return r
		}
	}
	return c.zayatz(hist, uniques, n)
}

// zayatz returns the estimated fraction of the n retained records that are
// population uniques.
func (c PopulationUniqueness) zayatz(hist []sizeCount, uniques, n int) float64 {
	pi := float64(n) / float64(c.Population.Size)
	if pi > 1 {
		pi = 1
	}
	denom := 0.0
	for _, h := range hist {
		denom += float64(h.classes) * float64(h.size) * math.Pow(1-pi, float64(h.size-1))
	}
	if denom == 0 {
		return 0
	}
	p := float64(uniques) / denom
	if p > 1 {
		p = 1
	}
	return float64(uniques) * p / float64(n)
}

func (c PopulationUniqueness) validate() error {
	if err := unit("uniqueness threshold", c.Threshold); err != nil {
		return err
	}
	if c.Population.Size <= 0 {
		return fmt.Errorf("population size must be positive")
	}
	if c.Model != Pitman && c.Model != Zayatz {
		return fmt.Errorf("unknown risk model %q", c.Model)
	}
	return nil
}
