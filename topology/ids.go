package topology

// NodeID identifies a node by its flat index in the canonical numbering.
type NodeID int

// NoNode is returned alongside ok == false when no node answers a query.
const NoNode NodeID = -1

// Valid reports whether the id can index a node array.
func (n NodeID) Valid() bool {
	return n >= 0
}

// Port is a topology port index on a node.
type Port int

// NoPort marks a port that does not exist.
const NoPort Port = -1

// Ring topology ports. Up and down share an index: a node carries at most
// one of the two links.
const (
	PortLeft  Port = 0
	PortRight Port = 1
	PortUp    Port = 2
	PortDown  Port = 2
)

// Valid reports whether the port can index a port array.
func (p Port) Valid() bool {
	return p >= 0
}

// Endpoint is one end of a physical link.
type Endpoint struct {
	Node NodeID
	Port Port
}

// Topology is the part of a topology the network builder needs.
type Topology interface {
	// NodeCount returns the number of nodes.
	NodeCount() int
	// Connections returns the number of network ports on node. The local
	// processor port index equals this count.
	Connections(node NodeID) (int, bool)
	// Link resolves the far end of the link leaving node through port.
	Link(node NodeID, port Port) (Endpoint, bool)
	// Name returns a short label, e.g. "tring(4,3)".
	Name() string
}

// Pow raises base to exp. A negative exponent truncates toward zero the
// way an integer cast of a fractional power would, so only base 1 survives.
func Pow(base, exp int) int {
	if exp < 0 {
		if base == 1 {
			return 1
		}
		return 0
	}
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}
