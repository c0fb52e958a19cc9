// Package causal implements the Causal Graph (C12): directed cause ->
// effect edges over engram ids, with forward/backward traversal and
// zombie-decision detection. The graph is held as two directed lvlath
// graphs (forward, backward) so ImpactChain and RootCauses reduce to a
// single bfs.BFS call apiece; relation/strength metadata, which
// lvlath's int64 edge weight can't carry, lives in a side map.
package causal

import (
	"sync"

	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"

	"github.com/cortex-memory/cortex/internal/cortex/types"
)

// Graph is the in-memory causal graph over engram ids. Safe for concurrent use.
type Graph struct {
	mu       sync.RWMutex
	forward  *core.Graph                  // cause -> effect
	backward *core.Graph                  // effect -> cause
	edges    map[string]*types.CausalEdge // keyed by cause+"\x00"+effect+"\x00"+relation
}

// New constructs an empty causal graph.
func New() *Graph {
	return &Graph{
		forward:  core.NewGraph(core.WithDirected(true)),
		backward: core.NewGraph(core.WithDirected(true)),
		edges:    make(map[string]*types.CausalEdge),
	}
}

func edgeKey(e *types.CausalEdge) string {
	return e.CauseID + "\x00" + e.EffectID + "\x00" + string(e.Relation)
}

// AddEdge inserts a causal relationship.
func (g *Graph) AddEdge(e *types.CausalEdge) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.edges[edgeKey(e)] = e
	// lvlath's AddEdge is idempotent about vertex creation; weight carries
	// no meaning here (relation/strength live in g.edges), so pass 0.
	_, _ = g.forward.AddEdge(e.CauseID, e.EffectID, 0)
	_, _ = g.backward.AddEdge(e.EffectID, e.CauseID, 0)
}

// RemoveEngram drops every causal edge touching id, as either cause or
// effect, mirroring the store's DeleteCausalEdgesFor cleanup when an
// engram is destroyed.
func (g *Graph) RemoveEngram(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for key, e := range g.edges {
		if e.CauseID == id || e.EffectID == id {
			delete(g.edges, key)
		}
	}
	_ = g.forward.RemoveVertex(id)
	_ = g.backward.RemoveVertex(id)
}

// EffectsOf returns the direct outgoing causal edges from id.
func (g *Graph) EffectsOf(id string) []*types.CausalEdge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.directEdges(id, true)
}

// CausesOf returns the direct incoming causal edges into id.
func (g *Graph) CausesOf(id string) []*types.CausalEdge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.directEdges(id, false)
}

func (g *Graph) directEdges(id string, forward bool) []*types.CausalEdge {
	var out []*types.CausalEdge
	for _, e := range g.edges {
		if forward && e.CauseID == id {
			out = append(out, e)
		}
		if !forward && e.EffectID == id {
			out = append(out, e)
		}
	}
	return out
}

// ImpactChain traces the full downstream impact of id via BFS over the
// forward graph, excluding id itself.
func (g *Graph) ImpactChain(id string, maxDepth int) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.bfsIDs(g.forward, id, maxDepth)
}

// RootCauses traces backward from id via BFS over the backward graph,
// returning ids that have no incoming causal edge of their own.
func (g *Graph) RootCauses(id string, maxDepth int) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := g.bfsIDs(g.backward, id, maxDepth)
	var roots []string
	for _, v := range visited {
		if len(g.directEdges(v, false)) == 0 {
			roots = append(roots, v)
		}
	}
	return roots
}

// bfsIDs runs lvlath's bfs.BFS from start and returns every id reached
// other than start itself, honoring maxDepth (0 = unbounded). A
// missing start vertex (no edges touch it yet) is not an error — it
// simply has no reachable ids.
func (g *Graph) bfsIDs(graph *core.Graph, start string, maxDepth int) []string {
	if !graph.HasVertex(start) {
		return nil
	}
	result, err := bfs.BFS(graph, start, bfs.WithMaxDepth(maxDepth))
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(result.Order))
	for _, id := range result.Order {
		if id != start {
			out = append(out, id)
		}
	}
	return out
}

// FindZombies returns ids that are alive (present in aliveSet) but
// whose every root cause has been pruned away — candidates for
// deprecation.
func (g *Graph) FindZombies(aliveSet map[string]bool) []string {
	g.mu.RLock()
	ids := make(map[string]bool)
	for _, e := range g.edges {
		ids[e.EffectID] = true
	}
	g.mu.RUnlock()

	var zombies []string
	for id := range ids {
		if !aliveSet[id] {
			continue
		}
		roots := g.RootCauses(id, 5)
		if len(roots) == 0 {
			continue
		}
		allDead := true
		for _, r := range roots {
			if aliveSet[r] {
				allDead = false
				break
			}
		}
		if allDead {
			zombies = append(zombies, id)
		}
	}
	return zombies
}

// NodeCount returns the number of distinct engram ids touched by any
// causal edge.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.forward.VertexCount()
}

// EdgeCount returns the number of causal edges currently tracked.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}
