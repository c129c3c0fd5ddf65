package core

import "fmt"

// FlitKind distinguishes the flits of a packet.
type FlitKind int

const (
	FlitHead FlitKind = iota
	FlitBody
	FlitTail
)

// Flit is the unit of flow control. Only the head carries routing
// information; body and tail follow the channel the head opened.
type Flit struct {
	Kind   FlitKind
	Packet *Packet
	Seq    int
	Data   int
}

// IsHead reports whether f opens a route.
func (f *Flit) IsHead() bool { return f != nil && f.Kind == FlitHead }

// IsTail reports whether f releases a route.
func (f *Flit) IsTail() bool { return f != nil && f.Kind == FlitTail }

func (f *Flit) String() string {
	if f == nil {
		return "<nil flit>"
	}
	switch f.Kind {
	case FlitHead:
		return fmt.Sprintf("[H%d:%d]", f.Packet.ID, f.Packet.Dest)
	case FlitBody:
		return fmt.Sprintf("[B%d.%d]", f.Packet.ID, f.Seq)
	}
	return fmt.Sprintf("[T%d]", f.Packet.ID)
}
