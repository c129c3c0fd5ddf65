package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Readm/tring_sim/routing"
	"github.com/Readm/tring_sim/topology"
)

func parseNode(raw string, topo topology.Topology) (topology.NodeID, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return topology.NoNode, errors.Wrapf(err, "node %q", raw)
	}
	if v < 0 || v >= topo.NodeCount() {
		return topology.NoNode, errors.Errorf("node %d is outside %s", v, topo.Name())
	}
	return topology.NodeID(v), nil
}

func newRouteCommand(input *Input) *cobra.Command {
	return &cobra.Command{
		Use:   "route SOURCE DEST",
		Short: "Print the hop-by-hop path and virtual channels between two nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd, input)
			if err != nil {
				return err
			}
			topo, err := cfg.BuildTopology()
			if err != nil {
				return err
			}
			fn, err := cfg.BuildRouting(topo)
			if err != nil {
				return err
			}
			src, err := parseNode(args[0], topo)
			if err != nil {
				return err
			}
			dst, err := parseNode(args[1], topo)
			if err != nil {
				return err
			}
			path, err := routing.Trace(fn, topo, src, dst)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s, %s: %d -> %d in %d hops\n", topo.Name(), fn.Name(), src, dst, len(path)-1)
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NODE\tIN VC\tPORT\tOUT VC")
			for _, hop := range path {
				port := strconv.Itoa(int(hop.Port))
				if hop.Local {
					port += " (local)"
				}
				fmt.Fprintf(w, "%d\t%d\t%s\t%d\n", hop.Node, hop.InputVC, port, hop.VC)
			}
			return w.Flush()
		},
	}
}

func newTopologyCommand(input *Input) *cobra.Command {
	var asYAML, deps bool
	cmd := &cobra.Command{
		Use:   "topology",
		Short: "Print the node table of the configured topology",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := setup(cmd, input)
			if err != nil {
				return err
			}
			topo, err := cfg.BuildTopology()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			rows := topology.Describe(topo)

			if asYAML {
				data, err := yaml.Marshal(map[string]any{"name": topo.Name(), "nodes": rows})
				if err != nil {
					return errors.Wrap(err, "marshal topology")
				}
				_, err = out.Write(data)
				return err
			}

			fmt.Fprintf(out, "%s: %d nodes\n", topo.Name(), topo.NodeCount())
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLEVEL\tRING\tPOS\tLEAF\tLINKS")
			for _, row := range rows {
				links := ""
				for i, p := range row.Ports {
					if i > 0 {
						links += " "
					}
					links += fmt.Sprintf("%d:%d", p.Port, p.Peer)
				}
				fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%t\t%s\n", row.ID, row.Level, row.Ring, row.Position, row.Leaf, links)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if deps {
				fn, err := cfg.BuildRouting(topo)
				if err != nil {
					return err
				}
				g, err := routing.DependencyGraph(fn, topo)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\n%s channel dependencies: %d channels, %d edges, ", fn.Name(), g.Len(), g.EdgeCount())
				if cycle := g.FindCycle(); cycle != nil {
					fmt.Fprintf(out, "cyclic (%d channels in cycle)\n", len(cycle)-1)
				} else {
					fmt.Fprintln(out, "acyclic")
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the node table as YAML")
	cmd.Flags().BoolVar(&deps, "deps", false, "check the routing function's channel dependency graph for cycles")
	return cmd
}
