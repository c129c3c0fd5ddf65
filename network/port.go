package network

import (
	"fmt"

	"github.com/Readm/tring_sim/core"
	"github.com/Readm/tring_sim/queue"
	"github.com/Readm/tring_sim/routing"
	"github.com/Readm/tring_sim/topology"
)

// inputVC is one virtual channel buffer of an input port plus the route
// state of the packet whose flits are at its head.
type inputVC struct {
	vc  routing.VC
	buf *queue.Buffer[*core.Flit]

	port      topology.Port // NoPort until the head flit is routed
	outVC     routing.VC
	allocated bool // holds outVC on the output port
}

func (v *inputVC) release() {
	v.port = topology.NoPort
	v.outVC = routing.NoVC
	v.allocated = false
}

type inputPort struct {
	index topology.Port
	link  *Link // nil for the processor injection port
	vcs   []*inputVC
}

func newInputPort(node topology.NodeID, index topology.Port, numVCs, depth int) *inputPort {
	ip := &inputPort{index: index, vcs: make([]*inputVC, numVCs)}
	for vc := range ip.vcs {
		name := fmt.Sprintf("n%d.in%d.vc%d", node, index, vc)
		ip.vcs[vc] = &inputVC{
			vc:    routing.VC(vc),
			buf:   queue.NewBuffer(name, depth, nil, queue.BufferHooks[*core.Flit]{}),
			port:  topology.NoPort,
			outVC: routing.NoVC,
		}
	}
	return ip
}

type outputPort struct {
	index topology.Port
	link  *Link // nil for the processor ejection port

	// credits[vc] is the free space of the downstream input buffer.
	credits []int
	// owner[vc] is the input channel whose packet holds vc until its tail passes.
	owner []*inputVC
	next  int
}

func newOutputPort(index topology.Port, link *Link, numVCs, depth int) *outputPort {
	op := &outputPort{
		index:   index,
		link:    link,
		credits: make([]int, numVCs),
		owner:   make([]*inputVC, numVCs),
	}
	for vc := range op.credits {
		op.credits[vc] = depth
	}
	return op
}

func (o *outputPort) ejection() bool { return o.link == nil }

func (o *outputPort) hasCredit(vc routing.VC) bool {
	return o.ejection() || o.credits[vc] > 0
}
