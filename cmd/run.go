package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Readm/tring_sim/simulator"
	"github.com/Readm/tring_sim/stats"
)

func newRunCommand(input *Input) *cobra.Command {
	var cycles int
	var plugins []string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation headless and print its statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(cmd, input)
			if err != nil {
				return err
			}
			if cycles > 0 {
				cfg.Network.TotalCycles = cycles
			}
			cfg.Network.Plugins = append(cfg.Network.Plugins, plugins...)
			runs, err := input.openStore(cfg)
			if err != nil {
				return err
			}
			opts := []simulator.Option{}
			if runs != nil {
				opts = append(opts, simulator.WithStore(runs))
			}
			c, err := simulator.NewController(cfg, logger, opts...)
			if err != nil {
				return err
			}
			runErr := c.Run(cmd.Context())

			out := cmd.OutOrStdout()
			frame := c.Frame()
			fmt.Fprintf(out, "%s on %s (%s): %d cycles, %d/%d packets delivered\n",
				cfg.Name, frame.Topology, frame.Routing, frame.Cycle, frame.Delivered, frame.Injected)
			if last := c.LastRun(); last != nil && last.ID != 0 {
				fmt.Fprintf(out, "recorded as run %d\n", last.ID)
			}
			for _, job := range c.Session().Jobs {
				fmt.Fprintf(out, "job %s: %d values, done=%t\n", job.Name, len(job.Input), job.Done)
			}
			fmt.Fprintln(out)
			stats.Print(out, c.Stats())
			return runErr
		},
	}
	cmd.Flags().IntVar(&cycles, "cycles", 0, "cycle limit, overrides network.total_cycles")
	cmd.Flags().StringSliceVar(&plugins, "plugin", nil, "extra plugin to load (repeatable)")
	return cmd
}
