package visual

import "github.com/Readm/tring_sim/core"

// Frame is a snapshot of the network at the end of a cycle.
type Frame struct {
	Cycle       int         `json:"cycle"`
	Topology    string      `json:"topology"`
	Routing     string      `json:"routing"`
	Nodes       []NodeFrame `json:"nodes"`
	InFlight    int         `json:"inFlight"`
	Injected    int         `json:"injected"`
	Delivered   int         `json:"delivered"`
	Outstanding int         `json:"outstanding"`
	Paused      bool        `json:"paused"`
	Finished    bool        `json:"finished"`
	Error       string      `json:"error,omitempty"`
}

// NodeFrame holds the occupied buffers of one router.
type NodeFrame struct {
	ID      int              `json:"id"`
	Backlog int              `json:"backlog"`
	Buffers []core.QueueInfo `json:"buffers,omitempty"`
}
