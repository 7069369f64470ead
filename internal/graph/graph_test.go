package graph

import (
	"reflect"
	"testing"
)

func TestToposort(t *testing.T) {
	g := New(8)
	edges := [][2]int{
		{0, 3}, {1, 3}, {1, 4}, {2, 4}, {2, 7}, {3, 5}, {3, 6}, {3, 7}, {4, 6},
	}
	for _, e := range edges {
		g.AddEdge(e[0], e[1])
	}

	got, err := g.Toposort()
	if err != nil {
		t.Fatalf("Toposort returned error: %v", err)
	}

	want := []int{0, 1, 2, 3, 4, 5, 6, 7}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Toposort() = %v, want %v", got, want)
	}

	position := make(map[int]int, len(got))
	for i, v := range got {
		position[v] = i
	}
	for _, e := range edges {
		if position[e[0]] >= position[e[1]] {
			t.Errorf("edge %v->%v violated in order %v", e[0], e[1], got)
		}
	}
}

func TestToposortCycle(t *testing.T) {
	g := New(3)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(2, 0)

	_, err := g.Toposort()
	if err != ErrCycle {
		t.Fatalf("Toposort() error = %v, want ErrCycle", err)
	}
}

func TestToposortPreservesInputOrderForUnrelatedVertices(t *testing.T) {
	g := New(4)
	got, err := g.Toposort()
	if err != nil {
		t.Fatalf("Toposort returned error: %v", err)
	}
	want := []int{0, 1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Toposort() = %v, want %v", got, want)
	}
}

func TestGreedyFeedbackArcSetBreaksCycle(t *testing.T) {
	g := New(3)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(2, 0)

	feedback := GreedyFeedbackArcSet(g)
	if len(feedback) == 0 {
		t.Fatal("GreedyFeedbackArcSet returned no edges for a cyclic graph")
	}

	remaining := New(3)
	skip := make(map[Edge]bool, len(feedback))
	for _, e := range feedback {
		skip[e] = true
	}
	for v := 0; v < 3; v++ {
		for _, to := range g.Out(v) {
			if skip[Edge{From: v, To: to}] {
				continue
			}
			remaining.AddEdge(v, to)
		}
	}

	if _, err := remaining.Toposort(); err != nil {
		t.Fatalf("graph still cyclic after removing feedback set %v: %v", feedback, err)
	}
}

func TestGreedyFeedbackArcSetAcyclicIsNoop(t *testing.T) {
	g := New(4)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(2, 3)

	if feedback := GreedyFeedbackArcSet(g); len(feedback) != 0 {
		t.Fatalf("GreedyFeedbackArcSet() = %v, want empty for acyclic graph", feedback)
	}
}
