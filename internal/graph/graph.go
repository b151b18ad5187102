// Package graph computes the table dependency ordering for SheetSync.
//
// Tables form a directed graph where an edge runs from a referenced table to
// each table whose foreign keys point at it. Syncing in topological order
// guarantees that by the time a table's FK cache is populated, every
// referenced table has already been fully loaded in the same run.
package graph

import (
	"sort"

	"github.com/dbsmedya/sheetsync/internal/schema"
)

// Edge represents one foreign-key dependency between tables.
type Edge struct {
	From   string // referenced (parent) table
	To     string // referencing (child) table
	Column string // FK column in the child table
}

// Graph is the dependency structure built from a schema registry.
type Graph struct {
	nodes    map[string]bool
	children map[string][]string // referenced table -> referencing tables
	parents  map[string][]string // referencing table -> referenced tables
	edges    []Edge
}

// Build constructs the dependency graph from all tables in the registry.
// Self-references are ignored for ordering purposes (a table that references
// itself is validated against its own freshly loaded keys either way).
func Build(reg *schema.Registry) *Graph {
	g := &Graph{
		nodes:    make(map[string]bool),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}

	for _, name := range reg.Names() {
		g.nodes[name] = true
	}

	for _, name := range reg.Names() {
		table := reg.Get(name)

		// Deterministic edge order regardless of map iteration.
		fkColumns := make([]string, 0, len(table.ForeignKeys))
		for col := range table.ForeignKeys {
			fkColumns = append(fkColumns, col)
		}
		sort.Strings(fkColumns)

		for _, col := range fkColumns {
			ref := table.ForeignKeys[col]
			if ref == name {
				continue
			}
			g.children[ref] = append(g.children[ref], name)
			g.parents[name] = append(g.parents[name], ref)
			g.edges = append(g.edges, Edge{From: ref, To: name, Column: col})
		}
	}

	return g
}

// NodeCount returns the number of tables in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// Edges returns all FK dependency edges.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// CalculateInDegrees computes the number of incoming dependency edges for
// each table. Tables with in-degree 0 reference nothing and sync first.
func (g *Graph) CalculateInDegrees() map[string]int {
	inDegree := make(map[string]int, len(g.nodes))
	for name := range g.nodes {
		inDegree[name] = 0
	}
	for _, children := range g.children {
		for _, child := range children {
			inDegree[child]++
		}
	}
	return inDegree
}
