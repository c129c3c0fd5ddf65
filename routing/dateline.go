package routing

import (
	"github.com/Readm/tring_sim/topology"
)

// Channel numbers used by Dateline.
const (
	ChannelRing             VC = 0
	ChannelRingCrossed      VC = 1
	ChannelInterRing        VC = 2
	ChannelInterRingCrossed VC = 3
)

// Dateline adds virtual channel selection on top of a Deterministic router.
// Ring hops use channels 0/1, hops that leave a ring sideways use 2/3, and
// tree hops use 2. Crossing the dateline edge moves a packet to the
// crossed channel of its pair and it stays there for the rest of the pair.
type Dateline struct {
	det *Deterministic
}

// NewDateline wraps a deterministic router over tr. The dateline defaults
// to edge (0,1); shortest-path mode is always off.
func NewDateline(tr topology.Tring, opts ...Option) *Dateline {
	opts = append(opts, WithShortestPath(false))
	return &Dateline{det: NewDeterministic(tr, opts...)}
}

// Deterministic returns the wrapped port router.
func (v *Dateline) Deterministic() *Deterministic { return v.det }

func (v *Dateline) Name() string { return "dateline" }

// NumVCs implements Function.
func (v *Dateline) NumVCs() int { return 4 }

// OutputPort implements Function by delegation.
func (v *Dateline) OutputPort(current topology.NodeID, inputVC VC, source, dest topology.NodeID) (topology.Port, bool) {
	return v.det.OutputPort(current, inputVC, source, dest)
}

// OutputVC implements Function. Local delivery allocates nothing.
func (v *Dateline) OutputVC(current topology.NodeID, inputVC VC, source, dest topology.NodeID) (VC, bool) {
	port, ok := v.det.OutputPort(current, inputVC, source, dest)
	if !ok {
		return NoVC, false
	}
	tr := v.det.Tring()
	conns, _ := tr.Connections(current)
	if port == topology.Port(conns) {
		return NoVC, false
	}
	if port != topology.PortLeft && port != topology.PortRight {
		return ChannelInterRing, true
	}

	curPos, _ := tr.NodeWithinRing(current)
	if tr.IsNodeInRing(dest, current) {
		destPos, _ := tr.NodeWithinRing(dest)
		return v.pick(ChannelRing, curPos, destPos, inputVC), true
	}

	var (
		neighbour topology.NodeID
		found     bool
	)
	if port == topology.PortLeft {
		neighbour, found = tr.Left(current)
	} else {
		neighbour, found = tr.Right(current)
	}
	if !found {
		return NoVC, false
	}
	nextPos, _ := tr.NodeWithinRing(neighbour)
	return v.pick(ChannelInterRing, curPos, nextPos, inputVC), true
}

// pick returns the crossed channel of the pair starting at base when the
// edge (a,b) is the dateline or the packet already rides it.
func (v *Dateline) pick(base VC, a, b int, inputVC VC) VC {
	if v.det.Crosses(a, b) || inputVC == base+1 {
		return base + 1
	}
	return base
}
