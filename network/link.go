package network

import (
	"github.com/Readm/tring_sim/core"
	"github.com/Readm/tring_sim/routing"
	"github.com/Readm/tring_sim/topology"
)

type inFlight[T any] struct {
	item    T
	arrival int
}

// pipe models a fixed delay: items sent at cycle c surface at c+latency.
type pipe[T any] struct {
	latency int
	items   []inFlight[T]
}

func (p *pipe[T]) send(item T, cycle int) {
	p.items = append(p.items, inFlight[T]{item: item, arrival: cycle + p.latency})
}

// collect returns, in send order, every item due at cycle and drops it.
func (p *pipe[T]) collect(cycle int) []T {
	if len(p.items) == 0 {
		return nil
	}
	var arrivals []T
	kept := p.items[:0]
	for _, it := range p.items {
		if it.arrival <= cycle {
			arrivals = append(arrivals, it.item)
		} else {
			kept = append(kept, it)
		}
	}
	p.items = kept
	return arrivals
}

func (p *pipe[T]) len() int { return len(p.items) }

type wireFlit struct {
	flit *core.Flit
	vc   routing.VC
}

// Link is a unidirectional physical channel. Flits travel From -> To and
// credits for the To side's input buffers travel back To -> From, both
// with the same latency.
type Link struct {
	From topology.Endpoint
	To   topology.Endpoint

	flits   pipe[wireFlit]
	credits pipe[routing.VC]
}

func newLink(from, to topology.Endpoint, latency int) *Link {
	return &Link{
		From:    from,
		To:      to,
		flits:   pipe[wireFlit]{latency: latency},
		credits: pipe[routing.VC]{latency: latency},
	}
}

// FlitsInFlight counts flits on the wire.
func (l *Link) FlitsInFlight() int { return l.flits.len() }

// CreditsInFlight counts credits travelling back upstream.
func (l *Link) CreditsInFlight() int { return l.credits.len() }
