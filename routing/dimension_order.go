package routing

import (
	"github.com/Readm/tring_sim/topology"
)

// DimensionOrder routes on a mesh by correcting dimension 0 first, then
// dimension 1 and so on. It uses one virtual channel and, lacking
// wraparound links, cannot form a cyclic dependency.
type DimensionOrder struct {
	mesh topology.Mesh
}

func NewDimensionOrder(m topology.Mesh) *DimensionOrder {
	return &DimensionOrder{mesh: m}
}

func (r *DimensionOrder) Name() string { return "dimension-order" }

// NumVCs implements Function.
func (r *DimensionOrder) NumVCs() int { return 1 }

// OutputPort implements Function.
func (r *DimensionOrder) OutputPort(current topology.NodeID, inputVC VC, source, dest topology.NodeID) (topology.Port, bool) {
	conns, ok := r.mesh.Connections(current)
	if !ok || dest < 0 || int(dest) >= r.mesh.NodeCount() {
		return topology.NoPort, false
	}
	k := r.mesh.K()
	cur, dst := int(current), int(dest)
	for dim := 0; dim < r.mesh.N(); dim++ {
		c, d := cur%k, dst%k
		switch {
		case c < d:
			return r.mesh.RightPort(current, dim)
		case c > d:
			return r.mesh.LeftPort(current, dim)
		}
		cur /= k
		dst /= k
	}
	return topology.Port(conns), true
}

// OutputVC implements Function.
func (r *DimensionOrder) OutputVC(current topology.NodeID, inputVC VC, source, dest topology.NodeID) (VC, bool) {
	return NoVC, false
}
