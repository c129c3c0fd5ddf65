package core

import (
	"fmt"

	"github.com/Readm/tring_sim/topology"
)

// Tag marks what a packet carries for the map/reduce workload.
type Tag int

const (
	TagNone Tag = iota
	TagMap
	TagReduce
)

func (t Tag) String() string {
	switch t {
	case TagMap:
		return "map"
	case TagReduce:
		return "reduce"
	}
	return "none"
}

// Packet is a message between two processors. A packet of Length body
// flits travels as one head flit, Length body flits and one tail flit.
type Packet struct {
	ID     int64
	Src    topology.NodeID
	Dest   topology.NodeID
	Length int

	// Data holds one value per body flit when the packet carries a payload.
	Data []int
	Job  int
	Tag  Tag

	GeneratedAt int // cycle the processor queued it
	InjectedAt  int // cycle the head flit entered the source router
	DeliveredAt int // cycle the tail flit reached the destination processor
	Hops        int // router-to-router links the head traversed
}

// Latency is the generation-to-delivery delay in cycles.
func (p *Packet) Latency() int {
	if p == nil {
		return 0
	}
	return p.DeliveredAt - p.GeneratedAt
}

func (p *Packet) String() string {
	if p == nil {
		return "<nil packet>"
	}
	return fmt.Sprintf("P%d[%d->%d len=%d]", p.ID, p.Src, p.Dest, p.Length)
}

// Flits splits the packet into its head, body and tail flits.
func (p *Packet) Flits() []*Flit {
	flits := make([]*Flit, 0, p.Length+2)
	flits = append(flits, &Flit{Kind: FlitHead, Packet: p})
	for i := 0; i < p.Length; i++ {
		f := &Flit{Kind: FlitBody, Packet: p, Seq: i}
		if i < len(p.Data) {
			f.Data = p.Data[i]
		}
		flits = append(flits, f)
	}
	return append(flits, &Flit{Kind: FlitTail, Packet: p})
}

// PacketInfo is the serialisable view of a packet.
type PacketInfo struct {
	ID          int64  `json:"id"`
	Src         int    `json:"src"`
	Dest        int    `json:"dest"`
	Length      int    `json:"length"`
	Job         int    `json:"job"`
	Tag         string `json:"tag"`
	GeneratedAt int    `json:"generatedAt"`
	InjectedAt  int    `json:"injectedAt"`
	DeliveredAt int    `json:"deliveredAt"`
	Hops        int    `json:"hops"`
}

// Info returns the serialisable view of p.
func (p *Packet) Info() PacketInfo {
	if p == nil {
		return PacketInfo{}
	}
	return PacketInfo{
		ID:          p.ID,
		Src:         int(p.Src),
		Dest:        int(p.Dest),
		Length:      p.Length,
		Job:         p.Job,
		Tag:         p.Tag.String(),
		GeneratedAt: p.GeneratedAt,
		InjectedAt:  p.InjectedAt,
		DeliveredAt: p.DeliveredAt,
		Hops:        p.Hops,
	}
}

// QueueInfo describes one buffer for visualization.
type QueueInfo struct {
	Name     string       `json:"name"`
	Length   int          `json:"length"`
	Capacity int          `json:"capacity"`
	Packets  []PacketInfo `json:"packets,omitempty"`
}
