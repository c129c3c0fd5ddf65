// Package routing holds the routing functions the flow-control layer asks,
// once per head flit, for an output port and an output virtual channel.
package routing

import (
	"github.com/Readm/tring_sim/topology"
)

// VC is a virtual channel index on a physical link.
type VC int

// NoVC means the function leaves channel choice to the caller.
const NoVC VC = -1

// Valid reports whether vc indexes a channel.
func (vc VC) Valid() bool {
	return vc >= 0
}

// Direction is the travel direction inside a ring. Clockwise walks towards
// increasing ring positions and leaves through the left port.
type Direction int

const (
	Clockwise Direction = iota
	Anticlockwise
)

func (d Direction) String() string {
	if d == Clockwise {
		return "clockwise"
	}
	return "anticlockwise"
}

// Function is the routing contract. OutputPort never answers for a packet
// already at its destination position except with the local port, whose
// index equals the node's connection count. OutputVC reports ok == false
// when the function does not allocate channels.
type Function interface {
	OutputPort(current topology.NodeID, inputVC VC, source, dest topology.NodeID) (topology.Port, bool)
	OutputVC(current topology.NodeID, inputVC VC, source, dest topology.NodeID) (VC, bool)
	// NumVCs is the number of virtual channels per link the function uses.
	NumVCs() int
	Name() string
}
