package anon

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/roach88/latticebench/internal/lattice"
)

// maxStaleGenerations stops the genetic search after this many generations
// without a single new transformation being evaluated.
const maxStaleGenerations = 1000

type individual struct {
	node    *lattice.Node
	fitness float64
}

// genetic evolves one or two populations of transformations.
//
// With the triangle pattern, individual i of a population of size n draws
// every level uniformly from [0, round((i+1)/n * max)], so the population
// spans the lattice from near the bottom to the top. The second population
// of a dual run is the mirror image, seeded from the top down. Every
// ImmigrationInterval generations the best individuals of each population
// replace the worst of the other.
func (s *search) genetic() {
	p := s.eval.cfg.Genetic
	rng := rand.New(rand.NewPCG(s.eval.cfg.Seed, s.eval.cfg.Seed^0x9e3779b97f4a7c15))
	maxLevels := s.eval.data.MaxLevels()

	pops := [][]individual{s.initPopulation(rng, maxLevels, false)}
	if p.DualPopulation {
		pops = append(pops, s.initPopulation(rng, maxLevels, true))
	}

	stale := 0
	for gen := 0; gen < p.Iterations && !s.done(); gen++ {
		before := s.steps
		for i := range pops {
			pops[i] = s.evolve(rng, maxLevels, pops[i])
			if s.done() {
				return
			}
		}
		if len(pops) == 2 && p.ImmigrationInterval > 0 && (gen+1)%p.ImmigrationInterval == 0 {
			s.immigrate(pops)
		}
		if s.steps == before {
			stale++
			if stale >= maxStaleGenerations {
				return
			}
		} else {
			stale = 0
		}
	}
}

func (s *search) initPopulation(rng *rand.Rand, maxLevels []int, mirrored bool) []individual {
	p := s.eval.cfg.Genetic
	size := p.SubpopulationSize
	pop := make([]individual, 0, size)
	for i := 0; i < size && !s.done(); i++ {
		t := make([]int, len(maxLevels))
		for j, m := range maxLevels {
			hi := m
			if p.Triangle {
				hi = int(math.Round(float64(i+1) / float64(size) * float64(m)))
			}
			t[j] = rng.IntN(hi + 1)
			if mirrored {
				t[j] = m - t[j]
			}
		}
		pop = append(pop, s.individual(t))
	}
	if len(pop) == 0 {
		pop = append(pop, s.individual(make([]int, len(maxLevels))))
	}
	sortPopulation(pop)
	return pop
}

func (s *search) individual(t []int) individual {
	n := s.lattice.Node(t)
	return individual{node: n, fitness: s.fitness(s.evaluate(n))}
}

// fitness is the loss of anonymous transformations. Transformations that
// violate the suppression limit rank behind every anonymous one, ordered by
// how much they would have to suppress.
func (s *search) fitness(ev *evaluation) float64 {
	if ev.anonymous {
		return ev.loss
	}
	return 2*s.eval.maxLoss + 1 + ev.suppressedFraction()
}

// evolve produces the next generation: elites survive unchanged, a crossover
// share is bred from pairs of parents, and the rest are mutated copies.
// Parents are drawn from the best ProductionFraction of the population.
func (s *search) evolve(rng *rand.Rand, maxLevels []int, pop []individual) []individual {
	p := s.eval.cfg.Genetic
	size := len(pop)

	elites := clamp(int(math.Ceil(p.EliteFraction*float64(size))), 1, size)
	crossovers := clamp(int(math.Round(p.CrossoverFraction*float64(size))), 0, size-elites)
	parents := clamp(int(math.Ceil(p.ProductionFraction*float64(size))), 1, size)

	next := make([]individual, 0, size)
	next = append(next, pop[:elites]...)

	for len(next) < elites+crossovers {
		a := pop[rng.IntN(parents)].node.Transformation()
		b := pop[rng.IntN(parents)].node.Transformation()
		child := make([]int, len(a))
		for j := range child {
			if rng.IntN(2) == 0 {
				child[j] = a[j]
			} else {
				child[j] = b[j]
			}
		}
		s.mutate(rng, maxLevels, child, false)
		next = append(next, s.individual(child))
		if s.done() {
			return fill(next, pop)
		}
	}

	for len(next) < size {
		child := pop[rng.IntN(parents)].node.Transformation()
		s.mutate(rng, maxLevels, child, true)
		next = append(next, s.individual(child))
		if s.done() {
			return fill(next, pop)
		}
	}

	sortPopulation(next)
	return next
}

// mutate redraws each level with the mutation probability. When force is
// set and nothing changed, one random level is redrawn.
func (s *search) mutate(rng *rand.Rand, maxLevels []int, t []int, force bool) {
	changed := false
	for j, m := range maxLevels {
		if rng.Float64() < s.eval.cfg.Genetic.MutationProbability {
			t[j] = rng.IntN(m + 1)
			changed = true
		}
	}
	if force && !changed && len(t) > 0 {
		j := rng.IntN(len(t))
		t[j] = rng.IntN(maxLevels[j] + 1)
	}
}

// immigrate swaps the best ImmigrationFraction of each population into the
// other, replacing its worst individuals.
func (s *search) immigrate(pops [][]individual) {
	a, b := pops[0], pops[1]
	n := int(math.Ceil(s.eval.cfg.Genetic.ImmigrationFraction * float64(min(len(a), len(b)))))
	if n == 0 {
		return
	}
	fromA := append([]individual(nil), a[:n]...)
	fromB := append([]individual(nil), b[:n]...)
	copy(a[len(a)-n:], fromB)
	copy(b[len(b)-n:], fromA)
	sortPopulation(a)
	sortPopulation(b)
}

func sortPopulation(pop []individual) {
	sort.SliceStable(pop, func(i, j int) bool {
		return pop[i].fitness < pop[j].fitness
	})
}

// fill tops up an interrupted generation with the previous one.
func fill(next, prev []individual) []individual {
	for i := len(next); i < len(prev); i++ {
		next = append(next, prev[i])
	}
	sortPopulation(next)
	return next
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
