package network

import (
	"github.com/Readm/tring_sim/core"
	"github.com/Readm/tring_sim/visual"
)

// Snapshot captures the occupied buffers of every router for display.
func (n *Network) Snapshot() visual.Frame {
	frame := visual.Frame{
		Cycle:       n.cycle,
		Topology:    n.topo.Name(),
		Routing:     n.fn.Name(),
		Nodes:       make([]visual.NodeFrame, 0, len(n.nodes)),
		Injected:    n.injected,
		Delivered:   n.delivered,
		Outstanding: n.outstanding,
		Finished:    n.Finished(),
	}
	for _, link := range n.links {
		frame.InFlight += link.FlitsInFlight()
	}
	for _, node := range n.nodes {
		nf := visual.NodeFrame{ID: int(node.id), Backlog: node.proc.backlog()}
		for _, ip := range node.in {
			for _, v := range ip.vcs {
				if v.buf.Len() == 0 {
					continue
				}
				info := core.QueueInfo{
					Name:     v.buf.Name(),
					Length:   v.buf.Len(),
					Capacity: v.buf.Capacity(),
				}
				seen := make(map[int64]bool)
				v.buf.ForEach(func(f *core.Flit) {
					if seen[f.Packet.ID] {
						return
					}
					seen[f.Packet.ID] = true
					info.Packets = append(info.Packets, f.Packet.Info())
				})
				nf.Buffers = append(nf.Buffers, info)
			}
		}
		frame.Nodes = append(frame.Nodes, nf)
	}
	return frame
}
