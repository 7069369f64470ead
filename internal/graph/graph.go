// Package graph provides the small directed-graph utilities shared by the
// migration index (ordering historical migrations) and the migration
// assembler (ordering operations within one migration): a deterministic
// topological sort with cycle detection, and a greedy feedback-arc-set for
// breaking cycles when they are expected to occur.
package graph

import "errors"

// ErrCycle is returned by Toposort when the graph contains a cycle.
var ErrCycle = errors.New("graph: cycle detected")

// Graph is a directed graph over the integer vertex range [0, N). Edge
// insertion order is preserved, and Toposort and GreedyFeedbackArcSet
// break ties among structurally-equivalent vertices by vertex index, so
// both are pure functions of vertex numbering and edge insertion order.
type Graph struct {
	n     int
	edges [][]int
}

// New creates a graph with n vertices (0..n-1) and no edges.
func New(n int) *Graph {
	return &Graph{n: n, edges: make([][]int, n)}
}

// Len returns the number of vertices.
func (g *Graph) Len() int { return g.n }

// AddEdge adds a directed edge from -> to. Both must be valid vertex indices.
func (g *Graph) AddEdge(from, to int) {
	g.edges[from] = append(g.edges[from], to)
}

// Out returns the insertion-ordered out-neighbors of v.
func (g *Graph) Out(v int) []int { return g.edges[v] }

// Toposort returns a permutation of [0, n) such that for every edge u->v, u
// appears before v in the result. Vertices with no path between them keep
// their relative input order: at each step the lowest-index vertex with
// every dependency already placed is emitted next, a stable variant of
// Kahn's algorithm (plain DFS post-order would put unrelated vertices out
// in the reverse of their input order, since a vertex's subtree always
// finishes before the vertex itself).
//
// Returns ErrCycle if the graph contains a cycle.
func (g *Graph) Toposort() ([]int, error) {
	indegree := make([]int, g.n)
	for v := 0; v < g.n; v++ {
		for _, to := range g.edges[v] {
			indegree[to]++
		}
	}

	done := make([]bool, g.n)
	order := make([]int, 0, g.n)
	for len(order) < g.n {
		next := -1
		for v := 0; v < g.n; v++ {
			if !done[v] && indegree[v] == 0 {
				next = v
				break
			}
		}
		if next == -1 {
			return nil, ErrCycle
		}
		done[next] = true
		order = append(order, next)
		for _, to := range g.edges[next] {
			indegree[to]--
		}
	}
	return order, nil
}

// Edge is a directed edge reported by GreedyFeedbackArcSet.
type Edge struct {
	From, To int
}

// GreedyFeedbackArcSet computes an approximately-minimum feedback arc set
// using the Eades-Lin-Smith heuristic: repeatedly strip sinks to the end of
// a sequence and sources to the front, and when neither exists remove the
// vertex with the highest (out-degree - in-degree) to the front. Edges that
// run backward relative to the resulting vertex sequence form the feedback
// arc set.
//
// Ties are broken by vertex index, so callers needing a deterministic cut
// among structurally-equivalent cycles must pre-sort their vertex set before
// building the graph.
func GreedyFeedbackArcSet(g *Graph) []Edge {
	n := g.n
	removed := make([]bool, n)
	outDeg := make([]int, n)
	inDeg := make([]int, n)
	outEdges := make([][]int, n)
	inEdges := make([][]int, n)

	for v := 0; v < n; v++ {
		for _, to := range g.edges[v] {
			outDeg[v]++
			inDeg[to]++
			outEdges[v] = append(outEdges[v], to)
			inEdges[to] = append(inEdges[to], v)
		}
	}

	var seqStart, seqEnd []int
	remaining := n

	removeVertex := func(v int) {
		removed[v] = true
		remaining--
		for _, u := range inEdges[v] {
			if !removed[u] {
				outDeg[u]--
			}
		}
		for _, u := range outEdges[v] {
			if !removed[u] {
				inDeg[u]--
			}
		}
	}

	for remaining > 0 {
		progressed := true
		for progressed {
			progressed = false
			for v := 0; v < n; v++ {
				if removed[v] || outDeg[v] != 0 {
					continue
				}
				seqEnd = append([]int{v}, seqEnd...)
				removeVertex(v)
				progressed = true
			}
			for v := 0; v < n; v++ {
				if removed[v] || inDeg[v] != 0 {
					continue
				}
				seqStart = append(seqStart, v)
				removeVertex(v)
				progressed = true
			}
		}
		if remaining == 0 {
			break
		}
		best, bestScore := -1, 0
		for v := 0; v < n; v++ {
			if removed[v] {
				continue
			}
			score := outDeg[v] - inDeg[v]
			if best == -1 || score > bestScore {
				best, bestScore = v, score
			}
		}
		seqStart = append(seqStart, best)
		removeVertex(best)
	}

	sequence := append(seqStart, seqEnd...)
	position := make([]int, n)
	for i, v := range sequence {
		position[v] = i
	}

	var feedback []Edge
	for v := 0; v < n; v++ {
		for _, to := range g.edges[v] {
			if position[v] > position[to] {
				feedback = append(feedback, Edge{From: v, To: to})
			}
		}
	}
	return feedback
}
