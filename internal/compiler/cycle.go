package compiler

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/animgraph/internal/graph"
	"github.com/roach88/animgraph/internal/ir"
)

// CycleWarning represents a cycle among node inputs or dependent edges.
//
// Cycles are warnings, not errors. Evaluation terminates on an input cycle
// because a node stamps its epoch before evaluating, so the node reached a
// second time returns its previous value. Propagation visits each node once
// per pass, so dependent cycles terminate too. Both are usually mistakes.
type CycleWarning struct {
	Kind    string      `json:"kind"`    // "input" or "dependent"
	Path    []ir.NodeID `json:"path"`    // cycle path: [1, 2, 1]
	Message string      `json:"message"` // Human-readable description
	Level   string      `json:"level"`   // "warning"
}

// AnalyzeCycles performs static cycle analysis on a document.
//
// It builds two graphs, node → inputs read from its config and child →
// dependents from the declared edges, and reports every strongly connected
// component with more than one node or with a self-loop.
//
// Event nodes are left out of the input graph; they write into their targets
// rather than read them. Nodes with invalid configs are skipped.
func AnalyzeCycles(doc *Document) []CycleWarning {
	inputGraph := make(dependencyGraph)
	for _, n := range doc.Nodes {
		cfg, err := parseNodeConfig(n.Config)
		if err != nil || cfg == nil || cfg.Kind() == graph.KindEvent {
			continue
		}
		inputGraph.addNode(n.ID)
		for _, in := range inputs(cfg) {
			inputGraph.addEdge(n.ID, in)
		}
	}

	dependentGraph := make(dependencyGraph)
	for _, e := range doc.Edges {
		dependentGraph.addEdge(e.Child, e.Parent)
	}

	warnings := []CycleWarning{}
	warnings = append(warnings, findCycles("input", inputGraph)...)
	warnings = append(warnings, findCycles("dependent", dependentGraph)...)
	return warnings
}

func findCycles(kind string, g dependencyGraph) []CycleWarning {
	var warnings []CycleWarning
	for _, scc := range tarjanSCC(g) {
		if len(scc) > 1 || (len(scc) == 1 && g.hasSelfLoop(scc[0])) {
			warnings = append(warnings, cycleSCCToWarning(kind, scc, g))
		}
	}
	return warnings
}

// dependencyGraph maps a node to the nodes it points at, in insertion order.
type dependencyGraph map[ir.NodeID][]ir.NodeID

func (g dependencyGraph) addNode(id ir.NodeID) {
	if _, ok := g[id]; !ok {
		g[id] = nil
	}
}

func (g dependencyGraph) addEdge(from, to ir.NodeID) {
	g.addNode(to)
	if !slices.Contains(g[from], to) {
		g[from] = append(g[from], to)
	}
}

func (g dependencyGraph) hasSelfLoop(id ir.NodeID) bool {
	return slices.Contains(g[id], id)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Roots are visited in ascending id order, so the output is deterministic.
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(g dependencyGraph) [][]ir.NodeID {
	var (
		index   = 0
		stack   []ir.NodeID
		indices = make(map[ir.NodeID]int)
		lowlink = make(map[ir.NodeID]int)
		onStack = make(map[ir.NodeID]bool)
		sccs    [][]ir.NodeID
	)

	var strongConnect func(ir.NodeID)
	strongConnect = func(v ir.NodeID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root: pop its component.
		if lowlink[v] == indices[v] {
			var scc []ir.NodeID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	roots := make([]ir.NodeID, 0, len(g))
	for id := range g {
		roots = append(roots, id)
	}
	slices.Sort(roots)
	for _, id := range roots {
		if _, visited := indices[id]; !visited {
			strongConnect(id)
		}
	}
	return sccs
}

func cycleSCCToWarning(kind string, scc []ir.NodeID, g dependencyGraph) CycleWarning {
	path := []ir.NodeID{scc[0], scc[0]}
	if len(scc) > 1 {
		path = reconstructCyclePath(scc, g)
	}
	return CycleWarning{
		Kind:    kind,
		Path:    path,
		Message: fmt.Sprintf("%s cycle detected: %s", kind, formatPath(path)),
		Level:   "warning",
	}
}

// reconstructCyclePath follows edges inside the SCC from its smallest id
// until it returns to the start.
func reconstructCyclePath(scc []ir.NodeID, g dependencyGraph) []ir.NodeID {
	start := scc[0]
	current := start
	path := []ir.NodeID{current}
	visited := map[ir.NodeID]bool{}

	for {
		visited[current] = true
		next, found := ir.NodeID(0), false
		for _, w := range g[current] {
			if slices.Contains(scc, w) && (!visited[w] || w == start) {
				next, found = w, true
				break
			}
		}
		if !found {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}

func formatPath(path []ir.NodeID) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, " → ")
}
