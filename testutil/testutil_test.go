package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/nodestore/internal/arena"
)

func TestRNG_Deterministic(t *testing.T) {
	r1 := NewRNG(4711)
	r2 := NewRNG(4711)

	for range 10 {
		assert.Equal(t, r1.Uint64(), r2.Uint64())
	}

	first := r1.Intn(1000)
	r1.Reset()
	for range 10 {
		r1.Uint64()
	}
	assert.Equal(t, first, r1.Intn(1000))
	assert.Equal(t, int64(4711), r1.Seed())
}

func TestRNG_Sample(t *testing.T) {
	rng := NewRNG(1)
	ids := []arena.NodeID{{Index: 0, Generation: 1}, {Index: 1, Generation: 1}, {Index: 2, Generation: 1}}

	got := rng.Sample(ids, 2)
	assert.Len(t, got, 2)
	assert.NotEqual(t, got[0], got[1])

	assert.Len(t, rng.Sample(ids, 10), 3)
}

func TestGraph_Reachable(t *testing.T) {
	a := arena.NodeID{Index: 0, Generation: 1}
	b := arena.NodeID{Index: 1, Generation: 1}
	c := arena.NodeID{Index: 2, Generation: 1}
	d := arena.NodeID{Index: 3, Generation: 1}

	g := NewGraph()
	g.AddEdge(a, b)
	g.AddEdge(b, c)
	g.AddEdge(c, a) // cycle

	reach := g.Reachable(a)
	assert.Len(t, reach, 3)
	assert.Contains(t, reach, c)
	assert.NotContains(t, reach, d)
	assert.Equal(t, []arena.NodeID{b}, g.Edges(a))
}

func TestBuildForest(t *testing.T) {
	rng := NewRNG(42)
	a := arena.New[int](0)

	f, err := BuildForest(rng, a, ForestOptions{Nodes: 500, RootRate: 0.05, BackEdges: true}, func(i int) int { return i })
	require.NoError(t, err)

	assert.Len(t, f.IDs, 500)
	assert.Equal(t, 500, a.Len())
	assert.NotEmpty(t, f.Roots)
	assert.Equal(t, f.IDs[0], f.Roots[0])

	// Every node is reachable from the union of roots.
	assert.Len(t, f.Reachable(f.Roots...), 500)
}
