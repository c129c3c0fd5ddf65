package routing

import (
	"fmt"

	"github.com/Readm/tring_sim/topology"
)

// Deterministic routes over a tree of rings with a single virtual channel.
// Inside a ring it walks clockwise unless the walk would use the disabled
// edge, in which case the whole trip goes anticlockwise. Between rings it
// climbs to the apex, crosses levels through port 2, and descends into the
// destination's family.
type Deterministic struct {
	tring        topology.Tring
	disabled     [2]int
	shortestPath bool
}

// Option configures a Deterministic router.
type Option func(*Deterministic)

// WithDisabledEdge disables the ring edge between positions a and b. A
// pair that is not a ring edge of the router's tring is ignored and the
// default edge (0,1) stays disabled.
func WithDisabledEdge(a, b int) Option {
	return func(d *Deterministic) {
		if IsRingEdge(d.tring.K(), a, b) {
			d.disabled = [2]int{a, b}
		}
	}
}

// IsRingEdge reports whether positions a and b are neighbours in a ring of
// k nodes.
func IsRingEdge(k, a, b int) bool {
	if k < 2 || a < 0 || b < 0 || a >= k || b >= k || a == b {
		return false
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff == 1 || diff == k-1
}

// WithShortestPath picks the shorter ring direction instead of the
// disabled-edge walk.
func WithShortestPath(on bool) Option {
	return func(d *Deterministic) {
		d.shortestPath = on
	}
}

// NewDeterministic returns a router over tr with edge (0,1) disabled.
func NewDeterministic(tr topology.Tring, opts ...Option) *Deterministic {
	d := &Deterministic{tring: tr, disabled: [2]int{0, 1}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Tring returns the topology the router works on.
func (d *Deterministic) Tring() topology.Tring { return d.tring }

// DisabledEdge returns the ring positions of the disabled edge.
func (d *Deterministic) DisabledEdge() (int, int) { return d.disabled[0], d.disabled[1] }

// ShortestPath reports whether ring direction is picked by distance.
func (d *Deterministic) ShortestPath() bool { return d.shortestPath }

func (d *Deterministic) Name() string {
	if d.shortestPath {
		return "deterministic-shortest"
	}
	return "deterministic"
}

// NumVCs implements Function.
func (d *Deterministic) NumVCs() int { return 1 }

// Crosses reports whether the ring edge between positions a and b is the
// disabled edge, in either orientation.
func (d *Deterministic) Crosses(a, b int) bool {
	return (a == d.disabled[0] && b == d.disabled[1]) ||
		(a == d.disabled[1] && b == d.disabled[0])
}

func (d *Deterministic) next(pos int) int {
	if pos+1 == d.tring.K() {
		return 0
	}
	return pos + 1
}

func (d *Deterministic) ringModulus(a, b int) int {
	diff := a - b
	if diff < 0 {
		diff += d.tring.K()
	}
	return diff
}

// RouteInRing picks the travel direction from ring position current to
// ring position dest. ok is false when the two coincide or are not ring
// positions.
func (d *Deterministic) RouteInRing(current, dest int) (Direction, bool) {
	k := d.tring.K()
	if current == dest || k < 2 || current < 0 || dest < 0 || current >= k || dest >= k {
		return Clockwise, false
	}
	if d.shortestPath {
		if d.ringModulus(current, dest) < d.ringModulus(dest, current) {
			return Anticlockwise, true
		}
		return Clockwise, true
	}
	for pos := current; pos != dest; pos = d.next(pos) {
		if d.Crosses(pos, d.next(pos)) {
			return Anticlockwise, true
		}
	}
	return Clockwise, true
}

// RouteLeftOrRight turns RouteInRing into a port: clockwise leaves
// through the left port.
func (d *Deterministic) RouteLeftOrRight(current, dest int) (topology.Port, bool) {
	dir, ok := d.RouteInRing(current, dest)
	if !ok {
		return topology.NoPort, false
	}
	if dir == Clockwise {
		return topology.PortLeft, true
	}
	return topology.PortRight, true
}

// RouteUp steers from ring position current towards the apex and out
// through its tree port.
func (d *Deterministic) RouteUp(current int) (topology.Port, bool) {
	if current == d.tring.K()-1 {
		return topology.PortUp, true
	}
	return d.RouteLeftOrRight(current, d.tring.K()-1)
}

// RouteDown handles a destination on a deeper level. When dest belongs to
// the family of current's ring the packet is steered to the ring position
// whose down link leads towards it; otherwise it climbs. The root's last
// child ring hangs off the apex, so climbing there lands on the right
// down link as well.
func (d *Deterministic) RouteDown(current, dest topology.NodeID) (topology.Port, bool) {
	k := d.tring.K()
	if k < 2 || current < 0 || dest < 0 {
		return topology.NoPort, false
	}
	cur, _ := d.tring.Address(current)
	dst, _ := d.tring.Address(dest)

	delta := dst.Level - cur.Level
	span := topology.Pow(k-1, delta)
	lower := cur.Ring * span
	upper := (cur.Ring+1)*span - 1

	if dst.Ring < lower || dst.Ring > upper {
		return d.RouteUp(cur.Position)
	}

	var target int
	if cur.Level == 1 {
		perPosition := d.tring.RingsInLevel(dst.Level) / k
		if perPosition == 0 {
			return topology.NoPort, false
		}
		target = dst.Ring / perPosition
	} else {
		per := topology.Pow(k-1, delta-1)
		if per == 0 {
			return topology.NoPort, false
		}
		target = (dst.Ring - lower) / per
	}
	if cur.Position == target {
		return topology.PortDown, true
	}
	return d.RouteLeftOrRight(cur.Position, target)
}

// OutputPort implements Function.
func (d *Deterministic) OutputPort(current topology.NodeID, inputVC VC, source, dest topology.NodeID) (topology.Port, bool) {
	conns, ok := d.tring.Connections(current)
	if !ok || dest < 0 || int(dest) >= d.tring.TotalNodes() || d.tring.K() < 2 {
		return topology.NoPort, false
	}
	cur, _ := d.tring.Address(current)
	dst, _ := d.tring.Address(dest)

	switch {
	case cur.Level == dst.Level && cur.Ring == dst.Ring && cur.Position == dst.Position:
		return topology.Port(conns), true
	case cur.Level == dst.Level && cur.Ring == dst.Ring:
		return d.RouteLeftOrRight(cur.Position, dst.Position)
	case cur.Level == dst.Level:
		return d.RouteUp(cur.Position)
	case dst.Level < cur.Level:
		return d.RouteUp(cur.Position)
	}
	return d.RouteDown(current, dest)
}

// OutputVC implements Function. A single-channel router never allocates.
func (d *Deterministic) OutputVC(current topology.NodeID, inputVC VC, source, dest topology.NodeID) (VC, bool) {
	return NoVC, false
}

func (d *Deterministic) String() string {
	return fmt.Sprintf("%s on %s, disabled edge (%d,%d)", d.Name(), d.tring.Name(), d.disabled[0], d.disabled[1])
}
