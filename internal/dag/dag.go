package dag

import (
	"fmt"
	"sort"
	"strings"
)

// CycleError indicates that the graph contains a cycle, preventing
// topological ordering. Path holds the full closed walk, with the entry
// node repeated at the end, e.g. [a b c a].
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Path, " -> "))
}

// Graph is a directed graph of module names. An edge from A to B means B
// depends on A, so A must come first in any valid order.
type Graph struct {
	nodes map[string]*node
}

type node struct {
	id         string
	hint       int
	deps       map[string]*node
	dependents map[string]*node
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// AddNode adds a new node with the given ID and ordering hint. If a node
// with the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string, orderHint int) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{
		id:         id,
		hint:       orderHint,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
}

// AddEdge creates a directed edge recording that `dependent` depends on
// `dependency`. An error is returned if either node does not exist or if
// the edge would be self-referential.
func (g *Graph) AddEdge(dependency, dependent string) error {
	if dependency == dependent {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", dependency, dependency)
	}

	from, ok := g.nodes[dependency]
	if !ok {
		return fmt.Errorf("dependency node not found: %s", dependency)
	}
	to, ok := g.nodes[dependent]
	if !ok {
		return fmt.Errorf("dependent node not found: %s", dependent)
	}

	to.deps[dependency] = from
	from.dependents[dependent] = to
	return nil
}

// Dependencies returns the sorted IDs the given node depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.deps), nil
}

// Dependents returns the sorted IDs that depend on the given node.
func (g *Graph) Dependents(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.dependents), nil
}

// DetectCycles checks the graph for cycles using depth-first traversal
// with an explicit recursion stack. The first cycle found is returned with
// its full path; traversal order is sorted, so the result is deterministic
// for a given graph.
func (g *Graph) DetectCycles() *CycleError {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string

	var visit func(n *node) *CycleError
	visit = func(n *node) *CycleError {
		if visited[n.id] {
			return nil // Already explored and known to be safe.
		}
		if onStack[n.id] {
			// Back edge: the cycle runs from n's earlier position on the
			// stack through to here.
			start := 0
			for i, id := range stack {
				if id == n.id {
					start = i
					break
				}
			}
			path := append(append([]string{}, stack[start:]...), n.id)
			return &CycleError{Path: path}
		}

		onStack[n.id] = true
		stack = append(stack, n.id)

		for _, depID := range sortedKeys(n.deps) {
			if err := visit(n.deps[depID]); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, n.id)
		visited[n.id] = true
		return nil
	}

	for _, id := range sortedKeys(g.nodes) {
		if !visited[id] {
			if err := visit(g.nodes[id]); err != nil {
				return err
			}
		}
	}
	return nil
}

// TopoOrder returns a valid topological order using Kahn's algorithm:
// nodes with no unsatisfied dependencies are emitted repeatedly, ties
// broken by (orderHint, name) so identical graphs always yield identical
// orders. Nodes that never reach in-degree zero are, by construction,
// cycle members; they are reported via DetectCycles, cross-checking the
// DFS walk.
func (g *Graph) TopoOrder() ([]string, *CycleError) {
	inDegree := make(map[string]int, len(g.nodes))
	for id, n := range g.nodes {
		inDegree[id] = len(n.deps)
	}

	var ready []string
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		next := g.takeMin(&ready)
		order = append(order, next)

		for _, depID := range sortedKeys(g.nodes[next].dependents) {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				ready = append(ready, depID)
			}
		}
	}

	if len(order) != len(g.nodes) {
		if err := g.DetectCycles(); err != nil {
			return nil, err
		}
		// Unreachable for a well-formed graph: leftovers imply a cycle.
		var leftover []string
		for id := range g.nodes {
			if inDegree[id] > 0 {
				leftover = append(leftover, id)
			}
		}
		sort.Strings(leftover)
		return nil, &CycleError{Path: leftover}
	}

	return order, nil
}

// takeMin removes and returns the ready node with the smallest
// (orderHint, name) pair.
func (g *Graph) takeMin(ready *[]string) string {
	r := *ready
	min := 0
	for i := 1; i < len(r); i++ {
		a, b := g.nodes[r[i]], g.nodes[r[min]]
		if a.hint < b.hint || (a.hint == b.hint && a.id < b.id) {
			min = i
		}
	}
	next := r[min]
	r[min] = r[len(r)-1]
	*ready = r[:len(r)-1]
	return next
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
