package topology

// PortInfo is one physical link leaving a node.
type PortInfo struct {
	Port     Port   `json:"port" yaml:"port"`
	Peer     NodeID `json:"peer" yaml:"peer"`
	PeerPort Port   `json:"peerPort" yaml:"peer_port"`
}

// NodeInfo is one row of a topology's node table. Fields that do not apply
// to the topology are -1.
type NodeInfo struct {
	ID       NodeID     `json:"id" yaml:"id"`
	Level    int        `json:"level" yaml:"level"`
	Ring     int        `json:"ring" yaml:"ring"`
	Position int        `json:"position" yaml:"position"`
	Leaf     bool       `json:"leaf" yaml:"leaf"`
	Local    Port       `json:"localPort" yaml:"local_port"`
	Ports    []PortInfo `json:"ports" yaml:"ports"`
}

// Describe lists every node of topo with its address and links.
func Describe(topo Topology) []NodeInfo {
	rows := make([]NodeInfo, 0, topo.NodeCount())
	for node := NodeID(0); int(node) < topo.NodeCount(); node++ {
		info := NodeInfo{ID: node, Level: -1, Ring: -1, Position: -1, Local: NoPort}
		switch t := topo.(type) {
		case Tring:
			if addr, ok := t.Address(node); ok {
				info.Level, info.Ring, info.Position = addr.Level, addr.Ring, addr.Position
			}
			info.Leaf = info.Level == t.N()
		case Mesh:
			if level, ok := t.Level(node); ok {
				info.Level = level
			}
			info.Leaf = t.IsLeaf(node)
		}
		conns, ok := topo.Connections(node)
		if ok {
			info.Local = Port(conns)
			for port := Port(0); int(port) < conns; port++ {
				if end, ok := topo.Link(node, port); ok {
					info.Ports = append(info.Ports, PortInfo{Port: port, Peer: end.Node, PeerPort: end.Port})
				}
			}
		}
		rows = append(rows, info)
	}
	return rows
}
