package stats

import (
	"fmt"
	"io"

	"golang.org/x/exp/slices"

	"github.com/Readm/tring_sim/routing"
	"github.com/Readm/tring_sim/topology"
)

// Print writes a human-readable report of s.
func Print(w io.Writer, s Summary) {
	if s.Injected == 0 && s.Delivered == 0 {
		fmt.Fprintln(w, "No stats available")
		return
	}
	fmt.Fprintln(w, "=== Network Statistics ===")
	fmt.Fprintf(w, "Injected Packets: %d\n", s.Injected)
	fmt.Fprintf(w, "Delivered Packets: %d\n", s.Delivered)
	fmt.Fprintf(w, "Delivered Flits: %d\n", s.FlitsDelivered)
	fmt.Fprintf(w, "Average Latency: %.2f cycles\n", s.AvgLatency)
	fmt.Fprintf(w, "Max Latency: %d cycles\n", s.MaxLatency)
	fmt.Fprintf(w, "Min Latency: %d cycles\n", s.MinLatency)
	fmt.Fprintf(w, "Average Hops: %.2f\n", s.AvgHops)
	fmt.Fprintf(w, "Max Hops: %d\n", s.MaxHops)
	if s.AvgStretch > 0 {
		fmt.Fprintf(w, "Average Stretch: %.3f\n", s.AvgStretch)
	}

	if len(s.VCRoutes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Routing Decisions per VC ===")
		vcs := make([]routing.VC, 0, len(s.VCRoutes))
		for vc := range s.VCRoutes {
			vcs = append(vcs, vc)
		}
		slices.Sort(vcs)
		for _, vc := range vcs {
			fmt.Fprintf(w, "VC %d: %d\n", vc, s.VCRoutes[vc])
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Per-Node Deliveries ===")
	nodes := make([]topology.NodeID, 0, len(s.PerNode))
	for node := range s.PerNode {
		nodes = append(nodes, node)
	}
	slices.Sort(nodes)
	for _, node := range nodes {
		fmt.Fprintf(w, "Node %d: Delivered=%d\n", node, s.PerNode[node])
	}
}
