package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Readm/tring_sim/config"
	"github.com/Readm/tring_sim/stats"
	"github.com/Readm/tring_sim/store"
)

func newResultsCommand(input *Input) *cobra.Command {
	var filter store.Filter
	var remove bool
	cmd := &cobra.Command{
		Use:   "results [ID]",
		Short: "List recorded runs, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd, input)
			if err != nil {
				return err
			}
			runs, err := store.New(cfg.Store.Path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				id, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return errors.Wrapf(err, "run id %q", args[0])
				}
				if remove {
					if err := runs.Delete(id); err != nil {
						return err
					}
					fmt.Fprintf(out, "deleted run %d\n", id)
					return nil
				}
				run, err := runs.Get(id)
				if err != nil {
					return err
				}
				return showRun(cmd, run)
			}
			if remove {
				return errors.New("--delete needs a run id")
			}

			list, err := runs.List(filter)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintf(out, "no runs recorded in %s\n", runs.Path())
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tCONFIG\tTOPOLOGY\tROUTING\tWORKLOAD\tCYCLES\tDELIVERED\tSTATUS")
			for _, run := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
					run.ID, time.Unix(run.CreatedAt, 0).Format(time.DateTime), run.Config, run.Topology,
					run.Routing, run.Workload, run.Cycles, run.Stats.Delivered, status(run))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&filter.Config, "filter-config", "", "only runs of this config name")
	cmd.Flags().StringVar(&filter.Topology, "filter-topology", "", "only runs on this topology, e.g. tring(4,3)")
	cmd.Flags().IntVar(&filter.Limit, "limit", 20, "maximum number of runs listed (0 lists all)")
	cmd.Flags().BoolVar(&remove, "delete", false, "delete the given run")
	return cmd
}

func status(run *store.Run) string {
	switch {
	case run.Error != "":
		return "failed"
	case run.Finished:
		return "finished"
	}
	return "stopped"
}

func showRun(cmd *cobra.Command, run *store.Run) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %d: %s on %s (%s), workload %s\n", run.ID, run.Config, run.Topology, run.Routing, run.Workload)
	fmt.Fprintf(out, "cycles: %d, status: %s\n", run.Cycles, status(run))
	if run.Error != "" {
		fmt.Fprintf(out, "error: %s\n", run.Error)
	}
	for _, job := range run.Jobs {
		fmt.Fprintf(out, "job %s: %d values, %d cycles, sha256 %s\n", job.Name, job.Values, job.Cycles, job.Digest)
	}
	fmt.Fprintln(out)
	stats.Print(out, run.Stats)
	return nil
}

func newConfigsCommand() *cobra.Command {
	var show bool
	cmd := &cobra.Command{
		Use:   "configs [NAME]",
		Short: "List the predefined configs, or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				cfg, err := config.ByName(args[0])
				if err != nil {
					return err
				}
				data, err := cfg.YAML()
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}
			for _, named := range config.Predefined() {
				if show {
					fmt.Fprintf(out, "%s\t%s\n", named.Name, named.Description)
				} else {
					fmt.Fprintln(out, named.Name)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&show, "describe", "d", false, "also print each config's description")
	return cmd
}
