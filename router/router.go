package router

import (
	"sync"

	"github.com/Readm/tring_sim/topology"
)

// Table answers minimal hop counts over a topology's physical links. Rows
// are computed on first use and cached, so a Table is cheap to share
// between the stats collector and the API.
type Table struct {
	graph *Graph[topology.NodeID]
	mu    sync.RWMutex
	// map[source]map[target]hops
	hops map[topology.NodeID]map[topology.NodeID]int
}

// NewTable builds the link graph of topo.
func NewTable(topo topology.Topology) *Table {
	g := NewGraph[topology.NodeID]()
	for node := topology.NodeID(0); int(node) < topo.NodeCount(); node++ {
		conns, ok := topo.Connections(node)
		if !ok {
			continue
		}
		for port := topology.Port(0); int(port) < conns; port++ {
			if end, ok := topo.Link(node, port); ok {
				g.AddEdge(node, end.Node, 1)
			}
		}
	}
	return &Table{graph: g, hops: make(map[topology.NodeID]map[topology.NodeID]int)}
}

// MinHops returns the fewest links between source and target.
func (t *Table) MinHops(source, target topology.NodeID) (int, bool) {
	if t == nil {
		return 0, false
	}
	t.mu.RLock()
	row, ok := t.hops[source]
	t.mu.RUnlock()
	if !ok {
		row = t.graph.Distances(source)
		t.mu.Lock()
		t.hops[source] = row
		t.mu.Unlock()
	}
	hops, ok := row[target]
	return hops, ok
}

// Path returns one minimal node path from source to target.
func (t *Table) Path(source, target topology.NodeID) ([]topology.NodeID, bool) {
	if t == nil {
		return nil, false
	}
	return t.graph.ShortestPath(source, target)
}

// Graph exposes the underlying link graph.
func (t *Table) Graph() *Graph[topology.NodeID] {
	return t.graph
}
