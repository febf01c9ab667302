package graph

import (
	"errors"

	"github.com/roach88/animgraph/internal/ir"
)

// PassStats summarizes one propagation pass.
type PassStats struct {
	Epoch   int64 // epoch the pass ran in
	Dirty   int   // dirty entries processed, including ones added mid-pass
	Visited int
	Sinks   int
}

// RunPropUpdates runs one propagation pass.
//
// Starting from every dirty node in marking order, it walks dependent edges
// depth first, visiting each node at most once. Props nodes are sinks: their
// update runs and the walk does not descend past them. Nodes marked dirty
// while the pass runs are walked in the same pass, but the visited set is
// shared: dependents already visited earlier in the pass are not visited
// again, so a sink that already ran does not see the new value until a later
// mark. Afterwards the dirty list is cleared and the epoch advances by one.
//
// Sink errors do not stop the pass; they are joined into the returned error.
// Ids of dropped nodes are skipped.
func RunPropUpdates(env *Env) (PassStats, error) {
	if err := env.check(0); err != nil {
		return PassStats{}, err
	}

	stats := PassStats{Epoch: env.Update.Epoch}
	visited := make(map[ir.NodeID]struct{})
	var errs []error

	// Dirty may grow while we iterate.
	for i := 0; i < len(env.Update.Dirty); i++ {
		errs = findAndUpdate(env, env.Update.Dirty[i], visited, &stats, errs)
	}
	stats.Dirty = len(env.Update.Dirty)

	env.Update.Dirty = nil
	env.Update.Epoch++
	return stats, errors.Join(errs...)
}

func findAndUpdate(env *Env, id ir.NodeID, visited map[ir.NodeID]struct{}, stats *PassStats, errs []error) []error {
	if _, seen := visited[id]; seen {
		return errs
	}
	visited[id] = struct{}{}

	n, ok := env.Nodes.Lookup(id)
	if !ok {
		return errs
	}
	stats.Visited++

	if p, ok := n.payload.(*propsNode); ok {
		stats.Sinks++
		if err := p.update(env, n); err != nil {
			errs = append(errs, err)
		}
		return errs
	}

	for _, child := range n.children {
		errs = findAndUpdate(env, child, visited, stats, errs)
	}
	return errs
}
