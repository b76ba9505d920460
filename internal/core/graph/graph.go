package graph

import (
	"math"

	"github.com/agenthands/forcematch/internal/core/model"
)

// Graph is an undirected view of the relationship data. Nodes are character
// display names and relationship targets; parallel edges collapse into one.
type Graph struct {
	adj   map[string]map[string]model.RelationshipType
	edges int
}

func New() *Graph {
	return &Graph{adj: make(map[string]map[string]model.RelationshipType)}
}

// Build creates the relationship graph for a dataset.
func Build(data model.Dataset) *Graph {
	g := New()
	for _, id := range data.IDs() {
		c := data[id]
		source := c.DisplayName()
		g.AddNode(source)
		for _, rel := range c.Relationships {
			if rel.Target == "" {
				continue
			}
			g.AddEdge(source, rel.Target, rel.Type)
		}
	}
	return g
}

func (g *Graph) AddNode(name string) {
	if _, ok := g.adj[name]; !ok {
		g.adj[name] = make(map[string]model.RelationshipType)
	}
}

func (g *Graph) AddEdge(a, b string, relation model.RelationshipType) {
	g.AddNode(a)
	g.AddNode(b)
	if _, ok := g.adj[a][b]; !ok {
		g.edges++
	}
	g.adj[a][b] = relation
	g.adj[b][a] = relation
}

func (g *Graph) HasNode(name string) bool {
	_, ok := g.adj[name]
	return ok
}

func (g *Graph) NodeCount() int { return len(g.adj) }

func (g *Graph) EdgeCount() int { return g.edges }

// Degree returns the number of edges on a shortest path between source and
// target, or +Inf when either node is missing or they are not connected.
func (g *Graph) Degree(source, target string) float64 {
	path := g.Path(source, target)
	if len(path) == 0 {
		return math.Inf(1)
	}
	return float64(len(path) - 1)
}

// Path returns the nodes along a shortest path from source to target,
// inclusive of both ends. It is empty when no path exists.
func (g *Graph) Path(source, target string) []string {
	if !g.HasNode(source) || !g.HasNode(target) {
		return nil
	}
	if source == target {
		return []string{source}
	}

	parent := map[string]string{source: source}
	queue := []string{source}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for v := range g.adj[u] {
			if _, seen := parent[v]; seen {
				continue
			}
			parent[v] = u
			if v == target {
				return unwind(parent, source, target)
			}
			queue = append(queue, v)
		}
	}
	return nil
}

func unwind(parent map[string]string, source, target string) []string {
	var rev []string
	for n := target; n != source; n = parent[n] {
		rev = append(rev, n)
	}
	rev = append(rev, source)

	path := make([]string, len(rev))
	for i, n := range rev {
		path[len(rev)-1-i] = n
	}
	return path
}
