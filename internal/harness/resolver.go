package harness

import (
	"errors"

	"github.com/roach88/latticebench/internal/anon"
	"github.com/roach88/latticebench/internal/lattice"
)

// ErrNoLattice is returned when a trajectory is resolved against a result
// without a search lattice.
var ErrNoLattice = errors.New("result has no lattice")

// ResolveUtilities sets the external utility of every checkpoint to the
// utility s assigns to the checkpoint's transformation.
func ResolveUtilities(s Scorer, trajectory []anon.Checkpoint) error {
	if len(trajectory) == 0 {
		return nil
	}
	lat := s.Lattice()
	if lat == nil {
		return ErrNoLattice
	}
	for i := range trajectory {
		trajectory[i].ExternalUtility = resolve(s, lat, trajectory[i].Transformation)
	}
	return nil
}

// resolve walks up from the bottom toward target, expanding nodes on the
// way and stepping to the first successor at minimal distance. Every step
// raises the level, so the walk ends at target or at a node without
// successors; the latter scores 0, as does a target of the wrong dimension.
func resolve(s Scorer, lat *lattice.Lattice, target []int) float64 {
	if len(target) != lat.Dimensions() {
		return 0
	}
	node := lat.Bottom()
	for !node.Equal(target) {
		node.Expand()
		successors := node.Successors()
		if len(successors) == 0 {
			return 0
		}
		next := successors[0]
		best := lattice.Distance(next.Transformation(), target)
		for _, c := range successors[1:] {
			if d := lattice.Distance(c.Transformation(), target); d < best {
				next, best = c, d
			}
		}
		node = next
	}
	return s.UtilityOf(node)
}
