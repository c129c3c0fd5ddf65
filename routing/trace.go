package routing

import (
	"github.com/pkg/errors"

	"github.com/Readm/tring_sim/router"
	"github.com/Readm/tring_sim/topology"
)

// Hop is one routing decision along a path.
type Hop struct {
	Node    topology.NodeID `json:"node" yaml:"node"`
	InputVC VC              `json:"input_vc" yaml:"input_vc"`
	Port    topology.Port   `json:"port" yaml:"port"`
	VC      VC              `json:"vc" yaml:"vc"`
	Local   bool            `json:"local" yaml:"local"`
}

// Channel is a virtual channel leaving a node through a port.
type Channel struct {
	Node topology.NodeID
	Port topology.Port
	VC   VC
}

// Trace follows fn hop by hop from source to dest the way the network
// would: a packet enters on channel 0 and keeps its input channel whenever
// fn does not allocate one. The last hop is the local delivery.
func Trace(fn Function, topo topology.Topology, source, dest topology.NodeID) ([]Hop, error) {
	limit := 4 * topo.NodeCount()
	cur, vc := source, VC(0)
	var path []Hop
	for step := 0; step <= limit; step++ {
		conns, ok := topo.Connections(cur)
		if !ok {
			return path, errors.Errorf("trace %d->%d: node %d is outside %s", source, dest, cur, topo.Name())
		}
		port, ok := fn.OutputPort(cur, vc, source, dest)
		if !ok {
			return path, errors.Errorf("trace %d->%d: %s has no port at node %d", source, dest, fn.Name(), cur)
		}
		out, ok := fn.OutputVC(cur, vc, source, dest)
		if !ok {
			out = vc
		}
		hop := Hop{Node: cur, InputVC: vc, Port: port, VC: out, Local: int(port) == conns}
		path = append(path, hop)
		if hop.Local {
			if cur != dest {
				return path, errors.Errorf("trace %d->%d: delivered at %d", source, dest, cur)
			}
			return path, nil
		}
		end, ok := topo.Link(cur, port)
		if !ok {
			return path, errors.Errorf("trace %d->%d: port %d of node %d is not linked", source, dest, port, cur)
		}
		cur, vc = end.Node, out
	}
	return path, errors.Errorf("trace %d->%d: no delivery within %d hops", source, dest, limit)
}

// DependencyGraph builds the channel dependency graph of fn over every
// ordered pair of distinct nodes. An edge a -> b means a packet holding
// channel a may wait for channel b. Routing is deadlock free when the graph
// is acyclic.
func DependencyGraph(fn Function, topo topology.Topology) (*router.Graph[Channel], error) {
	g := router.NewGraph[Channel]()
	for src := topology.NodeID(0); int(src) < topo.NodeCount(); src++ {
		for dst := topology.NodeID(0); int(dst) < topo.NodeCount(); dst++ {
			if src == dst {
				continue
			}
			path, err := Trace(fn, topo, src, dst)
			if err != nil {
				return nil, err
			}
			var prev *Channel
			for _, hop := range path {
				if hop.Local {
					break
				}
				ch := Channel{Node: hop.Node, Port: hop.Port, VC: hop.VC}
				if prev != nil {
					g.AddEdge(*prev, ch, 1)
				}
				prev = &ch
			}
		}
	}
	return g, nil
}
