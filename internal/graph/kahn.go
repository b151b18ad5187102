package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrCycleDetected is returned when the FK dependency graph contains a cycle,
// making a safe sync order impossible.
var ErrCycleDetected = errors.New("cycle detected in dependency graph")

// CycleError carries the tables that could not be ordered.
type CycleError struct {
	Participants []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected in dependency graph involving tables: %s",
		strings.Join(e.Participants, ", "))
}

func (e *CycleError) Unwrap() error {
	return ErrCycleDetected
}

// SyncOrder returns the tables in topological order using Kahn's algorithm:
// referenced tables before the tables that reference them. Nodes that become
// ready at the same time are emitted in name order so the result is
// deterministic across runs.
func (g *Graph) SyncOrder() ([]string, error) {
	inDegree := g.CalculateInDegrees()

	var ready []string
	for name, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		var unlocked []string
		for _, child := range g.children[name] {
			inDegree[child]--
			if inDegree[child] == 0 {
				unlocked = append(unlocked, child)
			}
		}
		sort.Strings(unlocked)
		ready = append(ready, unlocked...)
	}

	if len(order) != len(g.nodes) {
		var stuck []string
		for name, degree := range inDegree {
			if degree > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, &CycleError{Participants: stuck}
	}

	return order, nil
}

// PurgeOrder returns the reverse of SyncOrder: referencing tables first, so
// clearing all tables never trips a referential constraint in the store.
func (g *Graph) PurgeOrder() ([]string, error) {
	order, err := g.SyncOrder()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}

// HasCycle reports whether the graph contains a dependency cycle.
func (g *Graph) HasCycle() bool {
	_, err := g.SyncOrder()
	return err != nil
}
