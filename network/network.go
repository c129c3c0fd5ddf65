// Package network is the cycle-driven flow-control layer: routers with
// per-channel input buffers, credit-based links and processors that turn
// packets into flits and back.
package network

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Readm/tring_sim/core"
	"github.com/Readm/tring_sim/hooks"
	"github.com/Readm/tring_sim/routing"
	"github.com/Readm/tring_sim/topology"
)

var (
	// ErrDeadlock is returned when no flit moved for StallCycles cycles
	// while packets were still outstanding.
	ErrDeadlock = errors.New("network deadlock")
	// ErrUnknownNode is returned for packets addressed outside the topology.
	ErrUnknownNode = errors.New("unknown node")
	// ErrNoRoute is returned when the routing function has no answer.
	ErrNoRoute = errors.New("no route")
)

// Config sizes the flow-control resources.
type Config struct {
	BufferDepth int // flits per virtual channel buffer
	LinkLatency int // cycles per link traversal, for flits and credits
	StallCycles int // idle cycles tolerated with packets outstanding
	TotalCycles int // cycle limit for Run; 0 runs until the workload is done
}

// DefaultConfig returns the settings used when a field is left zero.
func DefaultConfig() Config {
	return Config{BufferDepth: 4, LinkLatency: 1, StallCycles: 1000}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BufferDepth <= 0 {
		c.BufferDepth = d.BufferDepth
	}
	if c.LinkLatency <= 0 {
		c.LinkLatency = d.LinkLatency
	}
	if c.StallCycles <= 0 {
		c.StallCycles = d.StallCycles
	}
	return c
}

// Message is a packet request. Length defaults to len(Data).
type Message struct {
	Src    topology.NodeID
	Dest   topology.NodeID
	Length int
	Data   []int
	Job    int
	Tag    core.Tag
}

// Sender is the part of the network a workload drives.
type Sender interface {
	Send(m Message) (*core.Packet, error)
	Cycle() int
}

// Workload produces traffic. Start runs when the workload is attached,
// Tick at the start of every cycle and OnDeliver for every packet that
// reaches its destination processor.
type Workload interface {
	Start(net Sender) error
	Tick(cycle int, net Sender) error
	OnDeliver(pkt *core.Packet, net Sender) error
	Done() bool
}

// Network is a built interconnect. It is not safe for concurrent use.
type Network struct {
	topo   topology.Topology
	fn     routing.Function
	cfg    Config
	broker *hooks.PluginBroker
	log    logrus.FieldLogger

	nodes    []*routerNode
	links    []*Link
	workload Workload

	cycle        int
	nextID       int64
	injected     int
	delivered    int
	outstanding  int
	lastProgress int
}

// Build wires one router and processor per node of topo. Every port
// below Connections(node) is joined to the port topo.Link names; the
// local port index equals the connection count.
func Build(topo topology.Topology, fn routing.Function, cfg Config, broker *hooks.PluginBroker, logger logrus.FieldLogger) (*Network, error) {
	if topo == nil || fn == nil {
		return nil, errors.New("network: topology and routing function are required")
	}
	if fn.NumVCs() < 1 {
		return nil, errors.Errorf("network: %s uses no virtual channels", fn.Name())
	}
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	if broker == nil {
		broker = hooks.NewPluginBroker()
	}
	cfg = cfg.withDefaults()
	n := &Network{
		topo:   topo,
		fn:     fn,
		cfg:    cfg,
		broker: broker,
		log:    logger.WithField("module", "network"),
		nodes:  make([]*routerNode, topo.NodeCount()),
	}
	numVCs := fn.NumVCs()

	for i := range n.nodes {
		id := topology.NodeID(i)
		conns, ok := topo.Connections(id)
		if !ok {
			return nil, errors.Errorf("network: %s has no connection count for node %d", topo.Name(), id)
		}
		node := &routerNode{
			id:        id,
			local:     topology.Port(conns),
			in:        make([]*inputPort, conns+1),
			out:       make([]*outputPort, conns+1),
			inputUsed: make([]bool, conns+1),
		}
		for p := range node.in {
			node.in[p] = newInputPort(id, topology.Port(p), numVCs, cfg.BufferDepth)
		}
		node.out[conns] = newOutputPort(node.local, nil, 1, 0)
		node.proc = newProcessor(id, node.in[conns])
		n.nodes[i] = node
	}

	for _, node := range n.nodes {
		for p := topology.Port(0); p < node.local; p++ {
			end, ok := topo.Link(node.id, p)
			if !ok {
				return nil, errors.Errorf("network: port %d of node %d is not linked in %s", p, node.id, topo.Name())
			}
			if !end.Node.Valid() || int(end.Node) >= len(n.nodes) || end.Port >= n.nodes[end.Node].local {
				return nil, errors.Errorf("network: node %d port %d links to missing %d/%d", node.id, p, end.Node, end.Port)
			}
			link := newLink(topology.Endpoint{Node: node.id, Port: p}, end, cfg.LinkLatency)
			node.out[p] = newOutputPort(p, link, numVCs, cfg.BufferDepth)
			n.nodes[end.Node].in[end.Port].link = link
			n.links = append(n.links, link)
		}
	}

	n.log.WithFields(logrus.Fields{
		"topology": topo.Name(),
		"routing":  fn.Name(),
		"nodes":    len(n.nodes),
		"links":    len(n.links),
		"vcs":      numVCs,
		"depth":    cfg.BufferDepth,
	}).Info("network built")
	return n, nil
}

// Attach installs w and lets it queue its first packets.
func (n *Network) Attach(w Workload) error {
	n.workload = w
	if w == nil {
		return nil
	}
	return errors.Wrap(w.Start(n), "workload start")
}

func (n *Network) Topology() topology.Topology { return n.topo }
func (n *Network) Routing() routing.Function   { return n.fn }
func (n *Network) Broker() *hooks.PluginBroker { return n.broker }
func (n *Network) Config() Config              { return n.cfg }

// Cycle is the number of completed cycles.
func (n *Network) Cycle() int { return n.cycle }

func (n *Network) Injected() int    { return n.injected }
func (n *Network) Delivered() int   { return n.delivered }
func (n *Network) Outstanding() int { return n.outstanding }

// Links returns every directed link in build order.
func (n *Network) Links() []*Link { return n.links }

// Send queues a packet at its source processor.
func (n *Network) Send(m Message) (*core.Packet, error) {
	for _, id := range []topology.NodeID{m.Src, m.Dest} {
		if !id.Valid() || int(id) >= len(n.nodes) {
			return nil, errors.Wrapf(ErrUnknownNode, "node %d in %s", id, n.topo.Name())
		}
	}
	length := m.Length
	if length == 0 {
		length = len(m.Data)
	}
	if length < len(m.Data) {
		return nil, errors.Errorf("packet %d->%d: length %d shorter than payload %d", m.Src, m.Dest, length, len(m.Data))
	}
	pkt := &core.Packet{
		ID:          n.nextID,
		Src:         m.Src,
		Dest:        m.Dest,
		Length:      length,
		Data:        m.Data,
		Job:         m.Job,
		Tag:         m.Tag,
		GeneratedAt: n.cycle,
	}
	n.nextID++
	n.outstanding++
	proc := n.nodes[m.Src].proc
	proc.pending = append(proc.pending, pkt)
	return pkt, nil
}

func (n *Network) deliver(pkt *core.Packet) error {
	pkt.DeliveredAt = n.cycle
	n.outstanding--
	n.delivered++
	n.log.WithFields(logrus.Fields{
		"packet":  pkt.ID,
		"src":     pkt.Src,
		"dest":    pkt.Dest,
		"latency": pkt.Latency(),
		"hops":    pkt.Hops,
	}).Debug("packet delivered")
	ctx := &hooks.PacketContext{Packet: pkt, Node: pkt.Dest, Cycle: n.cycle}
	if err := n.broker.EmitDeliver(ctx); err != nil {
		return errors.Wrapf(err, "deliver hook for %s", pkt)
	}
	if n.workload != nil {
		return errors.Wrapf(n.workload.OnDeliver(pkt, n), "workload delivery of %s", pkt)
	}
	return nil
}

// Finished reports whether every packet arrived and the workload has
// nothing more to send.
func (n *Network) Finished() bool {
	return n.outstanding == 0 && (n.workload == nil || n.workload.Done())
}

// Step advances the network by one cycle: link arrivals, workload tick,
// injection, routing of new head flits, then switch traversal.
func (n *Network) Step() error {
	moved, err := n.arrive()
	if err != nil {
		return errors.Wrapf(err, "cycle %d", n.cycle)
	}
	if n.workload != nil {
		if err := n.workload.Tick(n.cycle, n); err != nil {
			return errors.Wrapf(err, "workload tick at cycle %d", n.cycle)
		}
	}
	for _, node := range n.nodes {
		ok, err := node.proc.inject(n)
		if err != nil {
			return err
		}
		if ok {
			moved++
		}
	}
	for _, node := range n.nodes {
		if err := n.route(node); err != nil {
			return errors.Wrapf(err, "cycle %d", n.cycle)
		}
	}
	for _, node := range n.nodes {
		m, err := n.traverse(node)
		moved += m
		if err != nil {
			return errors.Wrapf(err, "cycle %d", n.cycle)
		}
	}

	if moved > 0 || n.onWire() > 0 || n.outstanding == 0 {
		n.lastProgress = n.cycle
	} else if n.cycle-n.lastProgress >= n.cfg.StallCycles {
		n.log.WithFields(logrus.Fields{
			"cycle":       n.cycle,
			"outstanding": n.outstanding,
			"routing":     n.fn.Name(),
		}).Error("no flit moved, network is deadlocked")
		return errors.Wrapf(ErrDeadlock, "%s on %s: %d packets stuck since cycle %d",
			n.fn.Name(), n.topo.Name(), n.outstanding, n.lastProgress)
	}
	n.cycle++
	return nil
}

// arrive lands flits and credits whose link latency elapsed.
func (n *Network) arrive() (int, error) {
	moved := 0
	for _, link := range n.links {
		for _, wf := range link.flits.collect(n.cycle) {
			v := n.nodes[link.To.Node].in[link.To.Port].vcs[wf.vc]
			if !v.buf.Enqueue(wf.flit, n.cycle) {
				return moved, errors.Errorf("node %d port %d vc %d: buffer overflow", link.To.Node, link.To.Port, wf.vc)
			}
			moved++
		}
		for _, vc := range link.credits.collect(n.cycle) {
			n.nodes[link.From.Node].out[link.From.Port].credits[vc]++
		}
	}
	return moved, nil
}

func (n *Network) onWire() int {
	total := 0
	for _, link := range n.links {
		total += link.FlitsInFlight() + link.CreditsInFlight()
	}
	return total
}

// Run steps until the workload finishes, the cycle limit is reached, ctx
// is cancelled or an error (including ErrDeadlock) occurs.
func (n *Network) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if n.Finished() {
			n.log.WithFields(logrus.Fields{
				"cycle":     n.cycle,
				"delivered": n.delivered,
			}).Info("run finished")
			return nil
		}
		if n.cfg.TotalCycles > 0 && n.cycle >= n.cfg.TotalCycles {
			n.log.WithFields(logrus.Fields{
				"cycle":       n.cycle,
				"outstanding": n.outstanding,
			}).Warn("cycle limit reached")
			return nil
		}
		if err := n.Step(); err != nil {
			return err
		}
	}
}
