package montecarlo

import (
	"schedrisk/domain/core"
	"schedrisk/domain/schedule"
	apperrors "schedrisk/internal/errors"
)

// network is the precomputed topology for one simulate() call: the
// predecessor-adjacency matrix, the parallel lag matrix, and one Kahn
// topological order shared by every trial. Only Finish-to-Start edges are
// represented; other kinds are counted so the engine can warn about them.
type network struct {
	order []core.ActivityID
	index map[core.ActivityID]int

	// pred[i][j] is true iff activity j immediately precedes activity i
	// via a Finish-to-Start edge; lag[i][j] holds that edge's signed lag.
	pred [][]bool
	lag  [][]float64

	// preds[i] lists predecessor indices of i, in ascending index order.
	preds [][]int
	// succs[i] lists successor indices of i.
	succs [][]int

	topo       []int
	nonFSEdges int
}

// buildNetwork derives the adjacency/lag matrices and a topological order
// from the activity and dependency sets. A dependency cycle is a fatal
// configuration error.
func buildNetwork(activities []schedule.Activity, dependencies []schedule.Dependency) (*network, error) {
	n := len(activities)
	nw := &network{
		order: make([]core.ActivityID, n),
		index: make(map[core.ActivityID]int, n),
		pred:  make([][]bool, n),
		lag:   make([][]float64, n),
		preds: make([][]int, n),
		succs: make([][]int, n),
	}
	for i, a := range activities {
		nw.order[i] = a.ID
		nw.index[a.ID] = i
		nw.pred[i] = make([]bool, n)
		nw.lag[i] = make([]float64, n)
	}

	for _, d := range dependencies {
		if d.Kind != schedule.FinishToStart {
			nw.nonFSEdges++
			continue
		}
		j := nw.index[d.Predecessor]
		i := nw.index[d.Successor]
		if !nw.pred[i][j] {
			nw.pred[i][j] = true
			nw.preds[i] = append(nw.preds[i], j)
			nw.succs[j] = append(nw.succs[j], i)
		}
		nw.lag[i][j] = d.Lag
	}

	topo, err := kahnOrder(nw)
	if err != nil {
		return nil, err
	}
	nw.topo = topo
	return nw, nil
}

// kahnOrder computes a topological order by repeatedly removing
// zero-in-degree nodes. Lower activity indices are dequeued first so the
// order is deterministic for identical inputs.
func kahnOrder(nw *network) ([]int, error) {
	n := len(nw.order)
	inDegree := make([]int, n)
	for i := 0; i < n; i++ {
		inDegree[i] = len(nw.preds[i])
	}

	queue := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]int, 0, n)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, succ := range nw.succs[node] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	if len(order) != n {
		return nil, apperrors.CycleDetected("dependency cycle prevents topological ordering")
	}
	return order, nil
}
