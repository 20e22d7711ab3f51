package lattice

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullDomain_SuccessorsInAttributeOrder(t *testing.T) {
	l := FullDomain([]int{2, 2})

	bottom := l.Bottom()
	assert.Nil(t, bottom.Successors(), "successors must be nil before expansion")
	assert.False(t, bottom.Expanded())

	bottom.Expand()
	require.Len(t, bottom.Successors(), 2)
	assert.Equal(t, []int{1, 0}, bottom.Successors()[0].Transformation())
	assert.Equal(t, []int{0, 1}, bottom.Successors()[1].Transformation())
}

func TestFullDomain_TopHasNoSuccessors(t *testing.T) {
	l := FullDomain([]int{1, 2})

	top := l.Top()
	require.NotNil(t, top)
	top.Expand()
	assert.Empty(t, top.Successors())
	assert.Equal(t, 3, top.Level())
}

func TestNode_ExpandIsIdempotent(t *testing.T) {
	calls := 0
	l := New([]int{0}, func(t []int) [][]int {
		calls++
		if t[0] < 3 {
			return [][]int{{t[0] + 1}}
		}
		return nil
	})

	l.Bottom().Expand()
	l.Bottom().Expand()

	assert.Equal(t, 1, calls)
	assert.Len(t, l.Bottom().Successors(), 1)
}

func TestLattice_NodesAreInterned(t *testing.T) {
	l := FullDomain([]int{1, 1})

	l.Bottom().Expand()
	a := l.Bottom().Successors()[0]
	a.Expand()
	b := l.Bottom().Successors()[1]
	b.Expand()

	// (1,1) is reachable from both (1,0) and (0,1).
	assert.Same(t, a.Successors()[0], b.Successors()[0])
	assert.Equal(t, 4, l.Size())
}

func TestNode_TransformationIsCopy(t *testing.T) {
	l := FullDomain([]int{1, 1})

	v := l.Bottom().Transformation()
	v[0] = 9

	assert.Equal(t, []int{0, 0}, l.Bottom().Transformation())
}

func TestNode_Predecessors(t *testing.T) {
	l := FullDomain([]int{2, 2})

	n := l.Node([]int{1, 2})
	preds := n.Predecessors()
	require.Len(t, preds, 2)
	assert.Equal(t, []int{0, 2}, preds[0].Transformation())
	assert.Equal(t, []int{1, 1}, preds[1].Transformation())

	custom := New([]int{0}, func([]int) [][]int { return nil })
	assert.Nil(t, custom.Bottom().Predecessors())
	assert.Nil(t, custom.Top())
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name    string
		current []int
		target  []int
		want    int
	}{
		{"equal", []int{1, 1}, []int{1, 1}, 0},
		{"below", []int{0, 0}, []int{1, 2}, 3},
		{"overshoot first", []int{2, 0}, []int{1, 1}, math.MaxInt},
		{"overshoot last", []int{0, 3}, []int{1, 1}, math.MaxInt},
		{"longer target", []int{0, 0}, []int{1, 1, 1}, math.MaxInt},
		{"shorter target", []int{0, 0}, []int{1}, math.MaxInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.current, tt.target))
		})
	}
}

func TestDominates(t *testing.T) {
	assert.True(t, Dominates([]int{1, 1}, []int{1, 0}))
	assert.True(t, Dominates([]int{1, 1}, []int{1, 1}))
	assert.False(t, Dominates([]int{1, 0}, []int{0, 1}))
}
