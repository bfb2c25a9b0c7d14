package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/nodestore/internal/arena"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float64 returns, as a float64, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Sample returns k distinct elements of ids in random order.
func (r *RNG) Sample(ids []arena.NodeID, k int) []arena.NodeID {
	r.mu.Lock()
	defer r.mu.Unlock()

	k = min(k, len(ids))
	perm := r.rand.Perm(len(ids))
	out := make([]arena.NodeID, k)
	for i := range out {
		out[i] = ids[perm[i]]
	}
	return out
}

// Graph is an adjacency list over arena handles. It is safe for concurrent use.
type Graph struct {
	mu    sync.RWMutex
	edges map[arena.NodeID][]arena.NodeID
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{edges: make(map[arena.NodeID][]arena.NodeID)}
}

// AddEdge adds a directed edge.
func (g *Graph) AddEdge(from, to arena.NodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edges[from] = append(g.edges[from], to)
}

// Edges returns the targets of id. It has the shape of gc.EdgeFunc.
func (g *Graph) Edges(id arena.NodeID) []arena.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edges[id]
}

// Reachable computes the exact transitive closure of roots (ground truth).
func (g *Graph) Reachable(roots ...arena.NodeID) map[arena.NodeID]struct{} {
	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := make(map[arena.NodeID]struct{})
	queue := append([]arena.NodeID(nil), roots...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		queue = append(queue, g.edges[id]...)
	}
	return seen
}

// Forest is a randomly shaped set of trees allocated in an arena.
type Forest struct {
	*Graph
	IDs   []arena.NodeID
	Roots []arena.NodeID
}

// ForestOptions controls BuildForest.
type ForestOptions struct {
	// Nodes is the total number of nodes to allocate.
	Nodes int
	// RootRate is the probability that a node starts a new tree.
	RootRate float64
	// BackEdges adds child->parent edges, turning every tree into a cyclic graph.
	BackEdges bool
}

// BuildForest allocates opts.Nodes payloads in a and links each to a random
// earlier node (or makes it a new root).
func BuildForest[T any](rng *RNG, a *arena.Arena[T], opts ForestOptions, payload func(i int) T) (*Forest, error) {
	f := &Forest{
		Graph: NewGraph(),
		IDs:   make([]arena.NodeID, 0, opts.Nodes),
	}

	for i := range opts.Nodes {
		id, err := a.Allocate(payload(i))
		if err != nil {
			return nil, err
		}

		if i == 0 || rng.Float64() < opts.RootRate {
			f.Roots = append(f.Roots, id)
		} else {
			parent := f.IDs[rng.Intn(len(f.IDs))]
			f.AddEdge(parent, id)
			if opts.BackEdges {
				f.AddEdge(id, parent)
			}
		}
		f.IDs = append(f.IDs, id)
	}
	return f, nil
}
