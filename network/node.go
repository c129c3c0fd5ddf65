package network

import (
	"github.com/pkg/errors"

	"github.com/Readm/tring_sim/hooks"
	"github.com/Readm/tring_sim/routing"
	"github.com/Readm/tring_sim/topology"
)

// routerNode is one switch. Ports 0..local-1 face links; port local faces
// the processor on both the input and the output side.
type routerNode struct {
	id    topology.NodeID
	local topology.Port
	in    []*inputPort
	out   []*outputPort
	proc  *processor

	inputUsed []bool
}

// route computes the output port and channel for every head flit that
// reached the front of its buffer this cycle.
func (n *Network) route(node *routerNode) error {
	for _, ip := range node.in {
		for _, v := range ip.vcs {
			if v.port != topology.NoPort {
				continue
			}
			flit, ok := v.buf.Peek()
			if !ok {
				continue
			}
			if !flit.IsHead() {
				return errors.Errorf("node %d: %s at buffer head without a route", node.id, flit)
			}
			pkt := flit.Packet
			ctx := &hooks.RouteContext{
				Packet:  pkt,
				Node:    node.id,
				InputVC: v.vc,
				Port:    topology.NoPort,
				VC:      routing.NoVC,
				Cycle:   n.cycle,
			}
			if err := n.broker.EmitBeforeRoute(ctx); err != nil {
				return errors.Wrapf(err, "before-route hook at node %d", node.id)
			}
			port, ok := n.fn.OutputPort(node.id, v.vc, pkt.Src, pkt.Dest)
			if !ok || port < 0 || port > node.local {
				return errors.Wrapf(ErrNoRoute, "%s at node %d for %s", n.fn.Name(), node.id, pkt)
			}
			out := v.vc
			if port == node.local {
				out = 0
			} else if vc, ok := n.fn.OutputVC(node.id, v.vc, pkt.Src, pkt.Dest); ok {
				if int(vc) >= n.fn.NumVCs() {
					return errors.Errorf("%s at node %d: channel %d out of range", n.fn.Name(), node.id, vc)
				}
				out = vc
			}
			ctx.Port, ctx.VC = port, out
			if err := n.broker.EmitAfterRoute(ctx); err != nil {
				return errors.Wrapf(err, "after-route hook at node %d", node.id)
			}
			v.port, v.outVC = port, out
		}
	}
	return nil
}

// traverse moves at most one flit through every output port, honouring
// channel ownership, downstream credits and one read per input port.
func (n *Network) traverse(node *routerNode) (int, error) {
	for i := range node.inputUsed {
		node.inputUsed[i] = false
	}
	moved := 0
	numVCs := n.fn.NumVCs()
	for _, op := range node.out {
		slots := len(node.in) * numVCs
		for step := 0; step < slots; step++ {
			slot := (op.next + step) % slots
			pi, v := slot/numVCs, node.in[slot/numVCs].vcs[slot%numVCs]
			if node.inputUsed[pi] || v.port != op.index || v.buf.Len() == 0 {
				continue
			}
			if !v.allocated {
				if op.owner[v.outVC] != nil {
					continue
				}
				op.owner[v.outVC] = v
				v.allocated = true
			}
			if !op.hasCredit(v.outVC) {
				continue
			}
			if err := n.forward(node, node.in[pi], v, op); err != nil {
				return moved, err
			}
			node.inputUsed[pi] = true
			op.next = slot + 1
			moved++
			break
		}
	}
	return moved, nil
}

func (n *Network) forward(node *routerNode, ip *inputPort, v *inputVC, op *outputPort) error {
	flit, ok := v.buf.Dequeue(n.cycle)
	if !ok {
		return errors.Errorf("node %d: empty buffer on port %d vc %d", node.id, ip.index, v.vc)
	}
	if ip.link != nil {
		ip.link.credits.send(v.vc, n.cycle)
	}
	tail := flit.IsTail()
	outVC := v.outVC
	if tail {
		op.owner[outVC] = nil
		v.release()
	}
	if op.ejection() {
		return node.proc.receive(n, flit)
	}
	op.credits[outVC]--
	if flit.IsHead() {
		flit.Packet.Hops++
	}
	op.link.flits.send(wireFlit{flit: flit, vc: outVC}, n.cycle)
	return nil
}
