// Package traffic drives the network from trace files.
package traffic

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/Readm/tring_sim/core"
	"github.com/Readm/tring_sim/network"
	"github.com/Readm/tring_sim/topology"
)

// Event asks src to send a packet of Length body flits to Dest at Cycle.
type Event struct {
	Cycle  int             `json:"cycle" yaml:"cycle"`
	Src    topology.NodeID `json:"src" yaml:"src"`
	Dest   topology.NodeID `json:"dest" yaml:"dest"`
	Length int             `json:"length" yaml:"length"`
}

// Parse reads one event per line in the form "cycle src dest length".
// Blank lines and text after '#' are ignored. Events come back ordered by
// cycle, keeping file order within a cycle.
func Parse(r io.Reader) ([]Event, error) {
	var events []Event
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 4 {
			return nil, errors.Errorf("line %d: want 4 fields (cycle src dest length), got %d", line, len(fields))
		}
		var vals [4]int
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d field %d", line, i+1)
			}
			if v < 0 {
				return nil, errors.Errorf("line %d field %d: negative value %d", line, i+1, v)
			}
			vals[i] = v
		}
		events = append(events, Event{
			Cycle:  vals[0],
			Src:    topology.NodeID(vals[1]),
			Dest:   topology.NodeID(vals[2]),
			Length: vals[3],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read trace")
	}
	slices.SortStableFunc(events, func(a, b Event) int { return a.Cycle - b.Cycle })
	return events, nil
}

// Load parses the trace file at path.
func Load(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open trace %s", path)
	}
	defer f.Close()
	events, err := Parse(f)
	return events, errors.Wrapf(err, "trace %s", path)
}

// Trace replays events as a network workload.
type Trace struct {
	events []Event
	next   int
}

// NewTrace builds a workload over events sorted by cycle.
func NewTrace(events []Event) *Trace {
	return &Trace{events: events}
}

func (t *Trace) Start(network.Sender) error { return nil }

// Tick sends every event due at or before cycle.
func (t *Trace) Tick(cycle int, net network.Sender) error {
	for t.next < len(t.events) && t.events[t.next].Cycle <= cycle {
		e := t.events[t.next]
		t.next++
		if _, err := net.Send(network.Message{Src: e.Src, Dest: e.Dest, Length: e.Length}); err != nil {
			return errors.Wrapf(err, "trace event %d", t.next-1)
		}
	}
	return nil
}

func (t *Trace) OnDeliver(*core.Packet, network.Sender) error { return nil }

// Done reports whether every event was sent.
func (t *Trace) Done() bool { return t.next >= len(t.events) }

// Remaining counts events not yet sent.
func (t *Trace) Remaining() int { return len(t.events) - t.next }
