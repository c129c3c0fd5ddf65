package topology

import (
	"fmt"

	"github.com/pkg/errors"
)

// Direction names a grid move on the two-dimensional mesh. Up and Down move
// along y (dimension 0), Left and Right along x (dimension 1).
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// Mesh is a k-ary n-cube without wraparound and a master node that roots
// the reduction tree. Node coordinates on the 2-D grid are
// (x, y) = (node / k, node % k). The level of a node is its concentric ring
// counted inward from the border, whose level is k/2; the directional
// predicates are relative to the master, not to the grid centre.
type Mesh struct {
	k      int
	n      int
	master NodeID
}

// NewMesh returns a mesh with radix k, n dimensions and the given master.
func NewMesh(k, n int, master NodeID) (Mesh, error) {
	if k < 2 || n < 1 {
		return Mesh{}, errors.Errorf("mesh: need k >= 2 and n >= 1, got k=%d n=%d", k, n)
	}
	m := Mesh{k: k, n: n, master: master}
	if master < 0 || int(master) >= m.NodeCount() {
		return Mesh{}, errors.Errorf("mesh: master %d outside [0,%d)", master, m.NodeCount())
	}
	return m, nil
}

// DefaultMaster returns the centre node (k/2, k/2) of a k-ary 2-D grid.
func DefaultMaster(k int) NodeID {
	return NodeID((k/2)*k + k/2)
}

// K returns the radix.
func (m Mesh) K() int { return m.k }

// N returns the number of dimensions.
func (m Mesh) N() int { return m.n }

// Master returns the reduction master.
func (m Mesh) Master() NodeID { return m.master }

// Name implements Topology.
func (m Mesh) Name() string {
	return fmt.Sprintf("mesh(%d,%d)", m.k, m.n)
}

// NodeCount implements Topology.
func (m Mesh) NodeCount() int {
	return Pow(m.k, m.n)
}

func (m Mesh) coords(node NodeID) (x, y int) {
	return int(node) / m.k, int(node) % m.k
}

func (m Mesh) at(x, y int) (NodeID, bool) {
	if x < 0 || y < 0 || x >= m.k || y >= m.k {
		return NoNode, false
	}
	return NodeID(x*m.k + y), true
}

func (m Mesh) inGrid(node NodeID) bool {
	return node >= 0 && int(node) < m.k*m.k
}

// Level returns the concentric ring level of node on the 2-D grid.
func (m Mesh) Level(node NodeID) (int, bool) {
	if !m.inGrid(node) {
		return -1, false
	}
	x, y := m.coords(node)
	ring := min(x, y, m.k-1-x, m.k-1-y)
	return m.k/2 - ring, true
}

// IsLeaf reports whether node sits on the border ring, the deepest level of
// the reduction tree.
func (m Mesh) IsLeaf(node NodeID) bool {
	level, ok := m.Level(node)
	if !ok {
		return false
	}
	border, _ := m.Level(0)
	return level == border
}

// IsUpAllowed reports node.y >= master.y.
func (m Mesh) IsUpAllowed(node NodeID) bool {
	_, ny := m.coords(node)
	_, my := m.coords(m.master)
	return ny >= my
}

// IsDownAllowed reports node.y <= master.y.
func (m Mesh) IsDownAllowed(node NodeID) bool {
	_, ny := m.coords(node)
	_, my := m.coords(m.master)
	return ny <= my
}

// IsRightAllowed reports a node on the master's row with node.x >= master.x.
func (m Mesh) IsRightAllowed(node NodeID) bool {
	nx, ny := m.coords(node)
	mx, my := m.coords(m.master)
	return ny == my && nx >= mx
}

// IsLeftAllowed reports a node on the master's row with node.x <= master.x.
func (m Mesh) IsLeftAllowed(node NodeID) bool {
	nx, ny := m.coords(node)
	mx, my := m.coords(m.master)
	return ny == my && nx <= mx
}

func (m Mesh) isLeftOrRightAllowed(node NodeID) bool {
	return m.IsLeftAllowed(node) || m.IsRightAllowed(node)
}

// ChooseDirection returns the grid neighbour of node in dir.
func (m Mesh) ChooseDirection(node NodeID, dir Direction) (NodeID, bool) {
	if !m.inGrid(node) {
		return NoNode, false
	}
	x, y := m.coords(node)
	switch dir {
	case Up:
		return m.at(x, y+1)
	case Down:
		return m.at(x, y-1)
	case Left:
		return m.at(x-1, y)
	case Right:
		return m.at(x+1, y)
	}
	return NoNode, false
}

// NeighborsInAllDirections returns the up, down, right and left neighbours
// of node, or nil when node is a leaf.
func (m Mesh) NeighborsInAllDirections(node NodeID) []NodeID {
	if !m.inGrid(node) || m.IsLeaf(node) {
		return nil
	}
	return m.pick(node, Up, Down, Right, Left)
}

// LowerNeighbors returns the neighbours one step further from the master
// than node, in up, down, left, right order, or nil when node is a leaf.
func (m Mesh) LowerNeighbors(node NodeID) []NodeID {
	if !m.inGrid(node) || m.IsLeaf(node) {
		return nil
	}
	dirs := make([]Direction, 0, 4)
	if m.IsUpAllowed(node) {
		dirs = append(dirs, Up)
	}
	if m.IsDownAllowed(node) {
		dirs = append(dirs, Down)
	}
	if m.IsLeftAllowed(node) {
		dirs = append(dirs, Left)
	}
	if m.IsRightAllowed(node) {
		dirs = append(dirs, Right)
	}
	return m.pick(node, dirs...)
}

func (m Mesh) pick(node NodeID, dirs ...Direction) []NodeID {
	out := make([]NodeID, 0, len(dirs))
	for _, d := range dirs {
		if nb, ok := m.ChooseDirection(node, d); ok {
			out = append(out, nb)
		}
	}
	return out
}

// UpNode returns the neighbour one step closer to the master. Off the
// master's row the move is vertical; on it, horizontal.
func (m Mesh) UpNode(node NodeID) (NodeID, bool) {
	if node == m.master || !m.inGrid(node) {
		return NoNode, false
	}
	switch {
	case m.IsUpAllowed(node) && !m.isLeftOrRightAllowed(node):
		return m.ChooseDirection(node, Down)
	case m.IsDownAllowed(node) && !m.isLeftOrRightAllowed(node):
		return m.ChooseDirection(node, Up)
	case m.IsLeftAllowed(node):
		return m.ChooseDirection(node, Right)
	case m.IsRightAllowed(node):
		return m.ChooseDirection(node, Left)
	}
	return NoNode, false
}

// IsAdjacentToMaster reports whether node is one of the master's grid
// neighbours.
func (m Mesh) IsAdjacentToMaster(node NodeID) bool {
	for _, d := range []Direction{Up, Down, Right, Left} {
		if nb, ok := m.ChooseDirection(m.master, d); ok && nb == node {
			return true
		}
	}
	return false
}

func (m Mesh) posInDim(node NodeID, dim int) int {
	return (int(node) / Pow(m.k, dim)) % m.k
}

func (m Mesh) validDim(node NodeID, dim int) bool {
	return node >= 0 && int(node) < m.NodeCount() && dim >= 0 && dim < m.n
}

// LeftNeighbor returns node - k^dim unless node is on the low edge of dim.
func (m Mesh) LeftNeighbor(node NodeID, dim int) (NodeID, bool) {
	if !m.validDim(node, dim) || m.posInDim(node, dim) == 0 {
		return NoNode, false
	}
	return node - NodeID(Pow(m.k, dim)), true
}

// RightNeighbor returns node + k^dim unless node is on the high edge of dim.
func (m Mesh) RightNeighbor(node NodeID, dim int) (NodeID, bool) {
	if !m.validDim(node, dim) || m.posInDim(node, dim) == m.k-1 {
		return NoNode, false
	}
	return node + NodeID(Pow(m.k, dim)), true
}

// LeftPort returns the port index of the dim- link of node. Ports are
// numbered dimension by dimension, left before right, skipping links that
// do not exist on the grid edge.
func (m Mesh) LeftPort(node NodeID, dim int) (Port, bool) {
	if _, ok := m.LeftNeighbor(node, dim); !ok {
		return NoPort, false
	}
	port := -1
	for d := 0; d <= dim; d++ {
		pos := m.posInDim(node, d)
		if pos > 0 {
			port++
		}
		if pos < m.k-1 && d < dim {
			port++
		}
	}
	return Port(port), true
}

// RightPort returns the port index of the dim+ link of node.
func (m Mesh) RightPort(node NodeID, dim int) (Port, bool) {
	if _, ok := m.RightNeighbor(node, dim); !ok {
		return NoPort, false
	}
	port := -1
	for d := 0; d <= dim; d++ {
		pos := m.posInDim(node, d)
		if pos > 0 {
			port++
		}
		if pos < m.k-1 {
			port++
		}
	}
	return Port(port), true
}

// Connections implements Topology: two links per dimension, one fewer on
// each edge.
func (m Mesh) Connections(node NodeID) (int, bool) {
	if node < 0 || int(node) >= m.NodeCount() {
		return -1, false
	}
	conns := 2 * m.n
	for dim := 0; dim < m.n; dim++ {
		pos := m.posInDim(node, dim)
		if pos == 0 || pos == m.k-1 {
			conns--
		}
	}
	return conns, true
}

// Link implements Topology.
func (m Mesh) Link(node NodeID, port Port) (Endpoint, bool) {
	for dim := 0; dim < m.n; dim++ {
		if p, ok := m.LeftPort(node, dim); ok && p == port {
			nb, _ := m.LeftNeighbor(node, dim)
			peer, _ := m.RightPort(nb, dim)
			return Endpoint{Node: nb, Port: peer}, true
		}
		if p, ok := m.RightPort(node, dim); ok && p == port {
			nb, _ := m.RightNeighbor(node, dim)
			peer, _ := m.LeftPort(nb, dim)
			return Endpoint{Node: nb, Port: peer}, true
		}
	}
	return Endpoint{}, false
}
