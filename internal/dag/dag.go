// Package dag builds the dependency graph implied by schema
// relationships: an object that references another must be created after
// it. It supports cycle detection, topological sorting, and grouping
// into creation levels.
package dag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/schemaflow/pkg/graph"
)

// Node is one schema object in the dependency graph.
type Node struct {
	// ID is the lower-cased short name of the object.
	ID string
	// Object is the underlying schema object.
	Object *graph.SchemaObject
}

// Graph is a directed graph of schema objects keyed by short name.
type Graph struct {
	nodes    map[string]*Node
	children map[string][]string // dependency -> dependents
	parents  map[string][]string // dependent -> dependencies
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// FromResult builds the dependency graph of a conversion result. Each
// relationship source depends on its target (the referenced object must
// exist first). Self-references are skipped.
func FromResult(res *graph.Result) *Graph {
	g := New()
	byID := make(map[string]string, len(res.Objects))
	for _, obj := range res.Objects {
		id := strings.ToLower(obj.Name.ShortName())
		byID[obj.ID] = id
		g.AddNode(id, obj)
	}
	for _, rel := range res.Relationships {
		dep, okDep := byID[rel.TargetID]
		src, okSrc := byID[rel.SourceID]
		if !okDep || !okSrc || dep == src {
			continue
		}
		_ = g.AddEdge(dep, src) // both nodes exist, cannot fail
	}
	return g
}

// AddNode adds or updates a node.
func (g *Graph) AddNode(id string, obj *graph.SchemaObject) {
	if node, exists := g.nodes[id]; exists {
		node.Object = obj
		return
	}
	g.nodes[id] = &Node{ID: id, Object: obj}
	g.children[id] = []string{}
	g.parents[id] = []string{}
}

// AddEdge records that dependent depends on dependency.
func (g *Graph) AddEdge(dependency, dependent string) error {
	if _, exists := g.nodes[dependency]; !exists {
		return fmt.Errorf("dependency node %q does not exist", dependency)
	}
	if _, exists := g.nodes[dependent]; !exists {
		return fmt.Errorf("dependent node %q does not exist", dependent)
	}
	if dependency == dependent {
		return fmt.Errorf("self-loop detected: %s", dependency)
	}
	if !contains(g.children[dependency], dependent) {
		g.children[dependency] = append(g.children[dependency], dependent)
	}
	if !contains(g.parents[dependent], dependency) {
		g.parents[dependent] = append(g.parents[dependent], dependency)
	}
	return nil
}

// Dependencies returns what id depends on.
func (g *Graph) Dependencies(id string) []string {
	return g.parents[id]
}

// Dependents returns what depends on id.
func (g *Graph) Dependents(id string) []string {
	return g.children[id]
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, deps := range g.children {
		count += len(deps)
	}
	return count
}

// HasCycle reports whether the graph contains a cycle, with the cycle
// path when one exists.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	cameFrom := make(map[string]string)

	var cycle []string
	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true
		for _, next := range g.children[id] {
			if !visited[next] {
				cameFrom[next] = id
				if dfs(next) {
					return true
				}
			} else if onStack[next] {
				cycle = []string{next}
				for curr := id; curr != next; curr = cameFrom[curr] {
					cycle = append([]string{curr}, cycle...)
				}
				cycle = append([]string{next}, cycle...)
				return true
			}
		}
		onStack[id] = false
		return false
	}

	for _, id := range g.sortedIDs() {
		if !visited[id] {
			if dfs(id) {
				return true, cycle
			}
		}
	}
	return false, nil
}

// TopologicalSort returns nodes with every dependency before its
// dependents. Output is deterministic for a given graph.
func (g *Graph) TopologicalSort() ([]*Node, error) {
	if cyclic, cycle := g.HasCycle(); cyclic {
		return nil, fmt.Errorf("cycle detected: %v", cycle)
	}

	visited := make(map[string]bool)
	var order []*Node
	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, dep := range g.parents[id] {
			visit(dep)
		}
		order = append(order, g.nodes[id])
	}

	for _, id := range g.sortedIDs() {
		visit(id)
	}
	return order, nil
}

// Levels groups node ids by dependency depth: level 0 has no
// dependencies, and every node sits one level below its deepest
// dependency. All objects of one level can be created together once the
// previous level exists.
func (g *Graph) Levels() ([][]string, error) {
	if cyclic, cycle := g.HasCycle(); cyclic {
		return nil, fmt.Errorf("cycle detected: %v", cycle)
	}
	if len(g.nodes) == 0 {
		return nil, nil
	}

	depth := make(map[string]int)
	var levelOf func(id string) int
	levelOf = func(id string) int {
		if d, ok := depth[id]; ok {
			return d
		}
		max := -1
		for _, dep := range g.parents[id] {
			if d := levelOf(dep); d > max {
				max = d
			}
		}
		depth[id] = max + 1
		return max + 1
	}

	maxDepth := 0
	for id := range g.nodes {
		if d := levelOf(id); d > maxDepth {
			maxDepth = d
		}
	}

	levels := make([][]string, maxDepth+1)
	for _, id := range g.sortedIDs() {
		levels[depth[id]] = append(levels[depth[id]], id)
	}
	return levels, nil
}

func (g *Graph) sortedIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
