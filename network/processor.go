package network

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/Readm/tring_sim/core"
	"github.com/Readm/tring_sim/hooks"
	"github.com/Readm/tring_sim/topology"
)

// injectVC is the channel processors inject on.
const injectVC = 0

// processor is the traffic endpoint attached to a router's local port.
// It injects one flit per cycle and reassembles packets from their flits.
type processor struct {
	node    topology.NodeID
	port    *inputPort
	pending []*core.Packet
	sending []*core.Flit

	// payload collects body flit data per packet until its tail arrives.
	payload map[int64][]int
}

func newProcessor(node topology.NodeID, port *inputPort) *processor {
	return &processor{node: node, port: port, payload: make(map[int64][]int)}
}

// inject moves the next flit into the router's injection buffer when it
// has room. It reports whether a flit moved.
func (p *processor) inject(n *Network) (bool, error) {
	if len(p.sending) == 0 {
		if len(p.pending) == 0 {
			return false, nil
		}
		p.sending = p.pending[0].Flits()
		p.pending = slices.Delete(p.pending, 0, 1)
	}
	flit := p.sending[0]
	if !p.port.vcs[injectVC].buf.Enqueue(flit, n.cycle) {
		return false, nil
	}
	p.sending = slices.Delete(p.sending, 0, 1)
	if flit.IsHead() {
		flit.Packet.InjectedAt = n.cycle
		n.injected++
		ctx := &hooks.PacketContext{Packet: flit.Packet, Node: p.node, Cycle: n.cycle}
		if err := n.broker.EmitInject(ctx); err != nil {
			return true, errors.Wrapf(err, "inject hook at node %d", p.node)
		}
	}
	return true, nil
}

// receive consumes an ejected flit. Credits are not needed on this side:
// the processor always drains.
func (p *processor) receive(n *Network, flit *core.Flit) error {
	pkt := flit.Packet
	switch flit.Kind {
	case core.FlitHead:
		p.payload[pkt.ID] = make([]int, 0, pkt.Length)
	case core.FlitBody:
		p.payload[pkt.ID] = append(p.payload[pkt.ID], flit.Data)
	case core.FlitTail:
		data, ok := p.payload[pkt.ID]
		if !ok {
			return errors.Errorf("node %d: tail of %s without head", p.node, pkt)
		}
		delete(p.payload, pkt.ID)
		if pkt.Dest != p.node {
			return errors.Errorf("node %d: received %s addressed elsewhere", p.node, pkt)
		}
		if len(pkt.Data) > 0 {
			pkt.Data = data
		}
		return n.deliver(pkt)
	}
	return nil
}

// backlog counts packets and flits not yet in the network.
func (p *processor) backlog() int {
	return len(p.pending) + len(p.sending)
}
