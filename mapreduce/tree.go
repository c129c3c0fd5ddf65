package mapreduce

import (
	"github.com/pkg/errors"

	"github.com/Readm/tring_sim/topology"
)

// ErrLeafMaster is returned when the master sits on the leaf level, where
// it has nobody to split work to.
var ErrLeafMaster = errors.New("master node must not be on the leaf level")

// Tree is the reduction tree a topology induces around its master.
type Tree interface {
	Master() topology.NodeID
	// RootFanout lists the master's recipients. When local is true the
	// master also keeps one extra part and maps it like any inner node.
	RootFanout() (recipients []topology.NodeID, local bool)
	// Fanout lists the children of an inner node; nil on leaves. When
	// keepFirst is true the node keeps the first part for itself.
	Fanout(node topology.NodeID) (children []topology.NodeID, keepFirst bool)
	// Parent is where node sends its reduced chunk.
	Parent(node topology.NodeID) (topology.NodeID, bool)
}

// NewTree builds the reduction tree for a Tring or a Mesh. Tring masters
// must sit in the root ring; mesh masters must not be on the leaf level.
func NewTree(topo topology.Topology, master topology.NodeID) (Tree, error) {
	switch t := topo.(type) {
	case topology.Tring:
		if !master.Valid() || int(master) >= t.NodeCount() {
			return nil, errors.Errorf("master %d outside %s", master, t.Name())
		}
		if t.K() < 2 {
			return nil, errors.Errorf("%s has no rings to split work over", t.Name())
		}
		if t.LevelOf(master) != 1 {
			return nil, errors.Errorf("master %d of %s must be in the root ring", master, t.Name())
		}
		return tringTree{t: t, master: master}, nil
	case topology.Mesh:
		if master != t.Master() {
			return nil, errors.Errorf("master %d differs from the mesh master %d", master, t.Master())
		}
		if t.IsLeaf(master) {
			return nil, errors.Wrapf(ErrLeafMaster, "master %d of %s", master, t.Name())
		}
		return meshTree{m: t}, nil
	}
	return nil, errors.Errorf("no reduction tree for %s", topo.Name())
}

type tringTree struct {
	t      topology.Tring
	master topology.NodeID
}

func (tt tringTree) Master() topology.NodeID { return tt.master }

func (tt tringTree) RootFanout() ([]topology.NodeID, bool) {
	return tt.t.NodesInRing(tt.master), true
}

func (tt tringTree) Fanout(node topology.NodeID) ([]topology.NodeID, bool) {
	if tt.t.LevelOf(node) >= tt.t.N() {
		return nil, false
	}
	return tt.t.NodesInLowerRing(node), false
}

func (tt tringTree) Parent(node topology.NodeID) (topology.NodeID, bool) {
	if node == tt.master {
		return topology.NoNode, false
	}
	if tt.t.LevelOf(node) == 1 {
		return tt.master, true
	}
	return tt.t.UpperRingConnector(node)
}

type meshTree struct {
	m topology.Mesh
}

func (mt meshTree) Master() topology.NodeID { return mt.m.Master() }

func (mt meshTree) RootFanout() ([]topology.NodeID, bool) {
	return mt.m.NeighborsInAllDirections(mt.m.Master()), false
}

func (mt meshTree) Fanout(node topology.NodeID) ([]topology.NodeID, bool) {
	children := mt.m.LowerNeighbors(node)
	if len(children) == 0 {
		return nil, false
	}
	return children, true
}

func (mt meshTree) Parent(node topology.NodeID) (topology.NodeID, bool) {
	return mt.m.UpNode(node)
}
