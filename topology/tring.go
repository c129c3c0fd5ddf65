package topology

import (
	"fmt"

	"github.com/pkg/errors"
)

// Tring is a tree of rings. Level 1 is a single ring of k nodes, level 2
// holds k rings and every deeper level L holds k*(k-1)^(L-2) rings. Nodes
// are numbered contiguously ring by ring and level by level, so every
// address attribute is derived from the id. The node at ring position k-1
// (the apex) owns the link to the parent ring.
//
// Queries defined purely over k (levels, rings, positions, left/right/up
// neighbours) answer for any non-negative id. Queries that depend on the
// depth (down links, connection counts, neighbour resolution) are bounded
// by n. A Tring is an immutable value and safe for concurrent use.
type Tring struct {
	k int
	n int
}

// Address is the decomposition of a node id.
type Address struct {
	Node     NodeID `json:"node" yaml:"node"`
	Level    int    `json:"level" yaml:"level"`
	Ring     int    `json:"ring" yaml:"ring"`
	Position int    `json:"position" yaml:"position"`
}

// NewTring returns a tree of rings with k nodes per ring and n levels.
func NewTring(k, n int) (Tring, error) {
	if k < 0 || n < 0 {
		return Tring{}, errors.Errorf("tring: k and n must be non-negative, got k=%d n=%d", k, n)
	}
	return Tring{k: k, n: n}, nil
}

// K returns the ring size.
func (t Tring) K() int { return t.k }

// N returns the number of levels.
func (t Tring) N() int { return t.n }

// Name implements Topology.
func (t Tring) Name() string {
	return fmt.Sprintf("tring(%d,%d)", t.k, t.n)
}

// RingsInLevel returns the number of rings on level.
func (t Tring) RingsInLevel(level int) int {
	switch {
	case level <= 0:
		return 0
	case level == 1:
		return 1
	}
	return t.k * Pow(t.k-1, level-2)
}

// TotalNodes returns the node count of the whole topology.
func (t Tring) TotalNodes() int {
	return t.nodesUpTo(t.n)
}

// NodeCount implements Topology.
func (t Tring) NodeCount() int {
	return t.TotalNodes()
}

// nodesUpTo is the closed-form node count of the first levels levels.
func (t Tring) nodesUpTo(levels int) int {
	k := t.k
	switch {
	case levels <= 0:
		return 0
	case levels == 1:
		return k
	}
	switch {
	case k > 2:
		return k * (Pow(k-1, levels-1)*k - 2) / (k - 2)
	case k == 2:
		return k + k*k*(k-1)*(levels-1)
	case k == 1:
		return levels
	}
	return 0
}

// LevelOf returns the level holding node. k == 0 is the empty topology and
// answers 0; k == 1 is a plain chain where level = node+1.
func (t Tring) LevelOf(node NodeID) int {
	switch t.k {
	case 0:
		return 0
	case 1:
		return int(node) + 1
	}
	level, count := 0, 0
	for count <= int(node) {
		level++
		count += t.k * t.RingsInLevel(level)
	}
	return level
}

// FirstNodeOfLevel returns the first id on the level holding node.
func (t Tring) FirstNodeOfLevel(node NodeID) (NodeID, bool) {
	switch {
	case t.k == 0:
		return 0, true
	case node < 0:
		return NoNode, false
	case t.k == 1:
		return node, true
	}
	level, count, previous := 0, 0, 0
	for count <= int(node) {
		level++
		previous = count
		count += t.k * t.RingsInLevel(level)
	}
	return NodeID(previous), true
}

// FirstNodeOfLevelN returns the first id on level.
func (t Tring) FirstNodeOfLevelN(level int) (NodeID, bool) {
	switch {
	case level <= 0:
		return NoNode, false
	case t.k == 0:
		return 0, true
	case t.k == 1:
		return NodeID(level - 1), true
	}
	return NodeID(t.nodesUpTo(level - 1)), true
}

// RingOf returns the ring id of node within its level.
func (t Tring) RingOf(node NodeID) (int, bool) {
	if t.k == 0 || node < 0 {
		return -1, false
	}
	if t.k == 1 {
		return 0, true
	}
	first, _ := t.FirstNodeOfLevel(node)
	return int(node-first) / t.k, true
}

// NodeWithinRing returns the position of node within its ring.
func (t Tring) NodeWithinRing(node NodeID) (int, bool) {
	if t.k == 0 || node < 0 {
		return -1, false
	}
	first, _ := t.FirstNodeOfLevel(node)
	return int(node-first) % t.k, true
}

// Address decomposes node into level, ring and position.
func (t Tring) Address(node NodeID) (Address, bool) {
	ring, ok := t.RingOf(node)
	if !ok {
		return Address{}, false
	}
	pos, _ := t.NodeWithinRing(node)
	return Address{Node: node, Level: t.LevelOf(node), Ring: ring, Position: pos}, true
}

// IDFromRingAndPosition is the inverse of RingOf and NodeWithinRing on the
// given level.
func (t Tring) IDFromRingAndPosition(position, ring, level int) (NodeID, bool) {
	if t.k == 0 || position < 0 || position > t.k-1 || ring < 0 {
		return NoNode, false
	}
	rings := t.RingsInLevel(level)
	if t.k == 1 {
		// every level of a chain is one ring of one node
		rings = 1
	}
	if ring >= rings {
		return NoNode, false
	}
	first, ok := t.FirstNodeOfLevelN(level)
	if !ok {
		return NoNode, false
	}
	return NodeID(ring*t.k+position) + first, true
}

// Left returns the neighbour at position+1, wrapping k-1 to 0.
func (t Tring) Left(node NodeID) (NodeID, bool) {
	if t.k <= 1 || node < 0 {
		return NoNode, false
	}
	pos, _ := t.NodeWithinRing(node)
	ring, _ := t.RingOf(node)
	next := pos + 1
	if pos == t.k-1 {
		next = 0
	}
	return t.IDFromRingAndPosition(next, ring, t.LevelOf(node))
}

// Right returns the neighbour at position-1, wrapping 0 to k-1.
func (t Tring) Right(node NodeID) (NodeID, bool) {
	if t.k <= 1 || node < 0 {
		return NoNode, false
	}
	pos, _ := t.NodeWithinRing(node)
	ring, _ := t.RingOf(node)
	next := pos - 1
	if pos == 0 {
		next = t.k - 1
	}
	return t.IDFromRingAndPosition(next, ring, t.LevelOf(node))
}

// RingInNeighbourhood returns the ring id of node modulo the number of
// sibling rings hanging off the same parent ring.
func (t Tring) RingInNeighbourhood(node NodeID) int {
	var siblings int
	switch level := t.LevelOf(node); {
	case level <= 0:
		siblings = 0
	case level == 1:
		siblings = 1
	case level == 2:
		siblings = t.k
	default:
		siblings = t.k - 1
	}
	switch t.k {
	case 0:
		siblings = 0
	case 1:
		siblings = 1
	}
	ring, ok := t.RingOf(node)
	if !ok || siblings == 0 {
		return 0
	}
	return ring % siblings
}

// ParentRing returns the ring id, one level up, of the parent of node's ring.
func (t Tring) ParentRing(node NodeID) (int, bool) {
	if t.k == 0 || node < 0 {
		return -1, false
	}
	if t.k == 1 {
		return 0, true
	}
	ring, _ := t.RingOf(node)
	switch t.LevelOf(node) {
	case 1:
		return -1, false
	case 2:
		return ring / t.k, true
	}
	return ring / (t.k - 1), true
}

// ChildRing returns the id, on level+1, of the ring hanging below position
// ringNo of ring parent on level.
func (t Tring) ChildRing(ringNo, parent, level int) (int, bool) {
	k := t.k
	switch {
	case k == 0:
		return -1, false
	case k == 1:
		if ringNo == 0 && parent == 0 {
			return 0, true
		}
		return -1, false
	case ringNo < 0 || parent < 0:
		return -1, false
	case level == 1 && ringNo < k && parent == 0:
		return parent*k + ringNo, true
	case level >= 2 && ringNo < k-1 && parent < t.RingsInLevel(level):
		return parent*(k-1) + ringNo, true
	}
	return -1, false
}

// Up returns the parent-ring node linked to node. Only apex nodes below the
// root have one.
func (t Tring) Up(node NodeID) (NodeID, bool) {
	if t.k == 0 || node < 0 {
		return NoNode, false
	}
	pos, _ := t.NodeWithinRing(node)
	parentLevel := t.LevelOf(node) - 1
	if parentLevel <= 0 || pos != t.k-1 {
		return NoNode, false
	}
	parent, ok := t.ParentRing(node)
	if !ok {
		return NoNode, false
	}
	return t.IDFromRingAndPosition(t.RingInNeighbourhood(node), parent, parentLevel)
}

// Down returns the apex of the child ring linked to node, if node's level
// is above the deepest one. Apex nodes only link down from the root ring.
func (t Tring) Down(node NodeID) (NodeID, bool) {
	if t.k == 0 || node < 0 {
		return NoNode, false
	}
	level := t.LevelOf(node)
	childLevel := level + 1
	if childLevel > t.n {
		return NoNode, false
	}
	if t.k == 1 {
		return node + 1, true
	}
	pos, _ := t.NodeWithinRing(node)
	if pos == t.k-1 && childLevel != 2 {
		return NoNode, false
	}
	ring, _ := t.RingOf(node)
	child, ok := t.ChildRing(pos, ring, level)
	if !ok {
		return NoNode, false
	}
	return t.IDFromRingAndPosition(t.k-1, child, childLevel)
}

// IsTreeConnected reports whether node holds an up or down link.
func (t Tring) IsTreeConnected(node NodeID) bool {
	if node < 0 || int(node) >= t.TotalNodes() {
		return false
	}
	if int(node) < t.nodesUpTo(t.n-1) {
		return true
	}
	pos, ok := t.NodeWithinRing(node)
	return ok && pos == t.k-1
}

// Connections returns the number of network ports of node: 3 for nodes in
// the tree, 2 for ring-only leaves, 0 to 2 for the k == 1 chain.
func (t Tring) Connections(node NodeID) (int, bool) {
	if node < 0 || int(node) >= t.TotalNodes() {
		return -1, false
	}
	if t.k == 1 {
		if t.n == 1 {
			return 0, true
		}
		limit := NodeID(t.nodesUpTo(t.n - 1))
		if node == limit || node == limit+1 {
			return 1, true
		}
		return 2, true
	}
	if t.n == 1 {
		return 2, true
	}
	if int(node) < t.nodesUpTo(t.n-1) || t.IsTreeConnected(node) {
		return 3, true
	}
	return 2, true
}

// IsNodeInRing reports whether node sits in the same ring as sample.
func (t Tring) IsNodeInRing(node, sample NodeID) bool {
	pos, ok := t.NodeWithinRing(sample)
	if !ok {
		return false
	}
	first := sample - NodeID(pos)
	last := sample + NodeID(t.k-1-pos)
	return node >= first && node <= last
}

// NodesInRing lists the other k-1 members of node's ring, walking left.
func (t Tring) NodesInRing(node NodeID) []NodeID {
	if t.k <= 1 || node < 0 {
		return nil
	}
	return t.walkLeft(node)
}

// NodesInLowerRing lists the members of the ring below node, except the
// apex the down link lands on, walking left from the apex.
func (t Tring) NodesInLowerRing(node NodeID) []NodeID {
	if t.k <= 1 {
		return nil
	}
	down, ok := t.Down(node)
	if !ok {
		return nil
	}
	return t.walkLeft(down)
}

func (t Tring) walkLeft(from NodeID) []NodeID {
	out := make([]NodeID, 0, t.k-1)
	next := from
	for i := 0; i < t.k-1; i++ {
		left, ok := t.Left(next)
		if !ok {
			return nil
		}
		out = append(out, left)
		next = left
	}
	return out
}

// UpperRingConnector returns where the apex of node's ring links up to,
// i.e. where a reduced result leaving this ring lands.
func (t Tring) UpperRingConnector(node NodeID) (NodeID, bool) {
	switch {
	case t.k == 0 || node < 0:
		return NoNode, false
	case t.k == 1:
		return t.Up(node)
	case t.LevelOf(node) == 1:
		return NoNode, false
	}
	pos, _ := t.NodeWithinRing(node)
	return t.Up(node + NodeID(t.k-1-pos))
}

// Neighbor resolves the node reached through port. Port 2 is the up link
// on apex nodes and the down link everywhere else.
func (t Tring) Neighbor(node NodeID, port Port) (NodeID, bool) {
	if node < 0 || int(node) >= t.TotalNodes() {
		return NoNode, false
	}
	switch port {
	case PortLeft:
		return t.Left(node)
	case PortRight:
		return t.Right(node)
	case PortUp:
		if up, ok := t.Up(node); ok {
			return up, true
		}
		return t.Down(node)
	}
	return NoNode, false
}

// Link implements Topology. Left links land on the neighbour's right port
// and vice versa; tree links use port 2 at both ends.
func (t Tring) Link(node NodeID, port Port) (Endpoint, bool) {
	nb, ok := t.Neighbor(node, port)
	if !ok {
		return Endpoint{}, false
	}
	peer := PortUp
	switch port {
	case PortLeft:
		peer = PortRight
	case PortRight:
		peer = PortLeft
	}
	return Endpoint{Node: nb, Port: peer}, true
}
