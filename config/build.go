package config

import (
	"github.com/pkg/errors"

	"github.com/Readm/tring_sim/network"
	"github.com/Readm/tring_sim/routing"
	"github.com/Readm/tring_sim/topology"
)

// BuildTopology constructs the configured topology.
func (c *Config) BuildTopology() (topology.Topology, error) {
	switch c.Topology.Type {
	case TopologyTring:
		tr, err := topology.NewTring(c.Topology.K, c.Topology.N)
		return tr, errors.Wrap(err, "build tring")
	case TopologyMesh:
		m, err := topology.NewMesh(c.Topology.K, c.Topology.N, topology.NodeID(c.MasterNode()))
		return m, errors.Wrap(err, "build mesh")
	}
	return nil, errors.Wrapf(ErrInvalid, "unknown topology type %q", c.Topology.Type)
}

// BuildRouting constructs the routing function for topo.
func (c *Config) BuildRouting(topo topology.Topology) (routing.Function, error) {
	switch t := topo.(type) {
	case topology.Tring:
		var opts []routing.Option
		if len(c.Routing.Dateline) == 2 {
			opts = append(opts, routing.WithDisabledEdge(c.Routing.Dateline[0], c.Routing.Dateline[1]))
		}
		if c.Routing.ShortestPath {
			opts = append(opts, routing.WithShortestPath(true))
		}
		switch c.Routing.Algorithm {
		case RoutingDeterministic:
			return routing.NewDeterministic(t, opts...), nil
		case RoutingDateline:
			return routing.NewDateline(t, opts...), nil
		}
	case topology.Mesh:
		if c.Routing.Algorithm == RoutingDimensionOrder {
			return routing.NewDimensionOrder(t), nil
		}
	}
	return nil, errors.Wrapf(ErrInvalid, "routing %q does not apply to %s", c.Routing.Algorithm, topo.Name())
}

// NetworkConfig converts the network section.
func (c *Config) NetworkConfig() network.Config {
	return network.Config{
		BufferDepth: c.Network.BufferDepth,
		LinkLatency: c.Network.LinkLatency,
		StallCycles: c.Network.StallCycles,
		TotalCycles: c.Network.TotalCycles,
	}
}
