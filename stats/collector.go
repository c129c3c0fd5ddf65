// Package stats collects per-packet latency and hop statistics from the
// network's hook broker.
package stats

import (
	"sync"

	"github.com/Readm/tring_sim/hooks"
	"github.com/Readm/tring_sim/router"
	"github.com/Readm/tring_sim/routing"
	"github.com/Readm/tring_sim/topology"
)

// Summary is a point-in-time copy of the collected statistics.
type Summary struct {
	Injected       int `json:"injected"`
	Delivered      int `json:"delivered"`
	FlitsDelivered int `json:"flitsDelivered"`

	AvgLatency float64 `json:"avgLatency"`
	MaxLatency int     `json:"maxLatency"`
	MinLatency int     `json:"minLatency"`
	AvgHops    float64 `json:"avgHops"`
	MaxHops    int     `json:"maxHops"`
	// AvgStretch is the mean ratio of hops taken to the topology's minimum
	// hop count, over packets that left their source node. Zero without a
	// hop table.
	AvgStretch float64 `json:"avgStretch"`

	PerNode  map[topology.NodeID]int `json:"perNode"`
	VCRoutes map[routing.VC]int      `json:"vcRoutes"`
}

// Collector accumulates statistics. It is safe to read while the network
// runs on another goroutine.
type Collector struct {
	mu    sync.Mutex
	table *router.Table

	injected       int
	delivered      int
	flitsDelivered int
	latencySum     int
	maxLatency     int
	minLatency     int
	hopSum         int
	maxHops        int
	stretchSum     float64
	stretchCount   int

	perNode  map[topology.NodeID]int
	vcRoutes map[routing.VC]int
}

// NewCollector returns an empty collector. table may be nil, in which case
// no stretch is computed.
func NewCollector(table *router.Table) *Collector {
	c := &Collector{table: table}
	c.Reset()
	return c
}

// Reset clears every counter.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.injected, c.delivered, c.flitsDelivered = 0, 0, 0
	c.latencySum, c.maxLatency, c.minLatency = 0, 0, 0
	c.hopSum, c.maxHops = 0, 0
	c.stretchSum, c.stretchCount = 0, 0
	c.perNode = make(map[topology.NodeID]int)
	c.vcRoutes = make(map[routing.VC]int)
}

// Bundle returns the hooks that feed the collector.
func (c *Collector) Bundle() hooks.HookBundle {
	return hooks.HookBundle{
		AfterRoute: []hooks.AfterRouteHook{c.onRoute},
		Inject:     []hooks.InjectHook{c.onInject},
		Deliver:    []hooks.DeliverHook{c.onDeliver},
	}
}

// Install registers the collector's hooks on broker under desc.
func (c *Collector) Install(broker *hooks.PluginBroker, desc hooks.PluginDescriptor) {
	broker.RegisterBundle(desc, c.Bundle())
}

func (c *Collector) onRoute(ctx *hooks.RouteContext) error {
	c.mu.Lock()
	c.vcRoutes[ctx.VC]++
	c.mu.Unlock()
	return nil
}

func (c *Collector) onInject(*hooks.PacketContext) error {
	c.mu.Lock()
	c.injected++
	c.mu.Unlock()
	return nil
}

func (c *Collector) onDeliver(ctx *hooks.PacketContext) error {
	pkt := ctx.Packet
	latency := pkt.Latency()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.delivered++
	c.flitsDelivered += pkt.Length + 2
	c.latencySum += latency
	if latency > c.maxLatency {
		c.maxLatency = latency
	}
	if c.delivered == 1 || latency < c.minLatency {
		c.minLatency = latency
	}
	c.hopSum += pkt.Hops
	if pkt.Hops > c.maxHops {
		c.maxHops = pkt.Hops
	}
	c.perNode[ctx.Node]++
	if c.table != nil && pkt.Src != pkt.Dest {
		if shortest, ok := c.table.MinHops(pkt.Src, pkt.Dest); ok && shortest > 0 {
			c.stretchSum += float64(pkt.Hops) / float64(shortest)
			c.stretchCount++
		}
	}
	return nil
}

// Summary copies the current statistics.
func (c *Collector) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Summary{
		Injected:       c.injected,
		Delivered:      c.delivered,
		FlitsDelivered: c.flitsDelivered,
		MaxLatency:     c.maxLatency,
		MinLatency:     c.minLatency,
		MaxHops:        c.maxHops,
		PerNode:        make(map[topology.NodeID]int, len(c.perNode)),
		VCRoutes:       make(map[routing.VC]int, len(c.vcRoutes)),
	}
	if c.delivered > 0 {
		s.AvgLatency = float64(c.latencySum) / float64(c.delivered)
		s.AvgHops = float64(c.hopSum) / float64(c.delivered)
	}
	if c.stretchCount > 0 {
		s.AvgStretch = c.stretchSum / float64(c.stretchCount)
	}
	for node, n := range c.perNode {
		s.PerNode[node] = n
	}
	for vc, n := range c.vcRoutes {
		s.VCRoutes[vc] = n
	}
	return s
}
