package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Readm/tring_sim/logging"
	"github.com/Readm/tring_sim/mapreduce"
)

func newGenJobsCommand(input *Input) *cobra.Command {
	var (
		files, count, bound int
		seed                int64
	)
	cmd := &cobra.Command{
		Use:   "gen-jobs [DIR]",
		Short: "Write random map/reduce job files",
		Long: "Write FILES job files named input<i>.mr, each holding COUNT integers in [-BOUND, BOUND].\n" +
			"DIR defaults to the config's workload.job_dir. The same seed always writes the same files.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd, input)
			if err != nil {
				return err
			}
			dir := cfg.Workload.JobDir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return errors.New("no job directory: pass DIR or set workload.job_dir")
			}
			paths, err := mapreduce.GenerateJobs(dir, files, count, bound, seed)
			if err != nil {
				return err
			}
			logging.Logger(cmd.Context()).WithField("dir", dir).Infof("wrote %d job files", len(paths))
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&files, "files", 4, "number of job files")
	cmd.Flags().IntVar(&count, "count", 1000, "integers per file")
	cmd.Flags().IntVar(&bound, "bound", 10000, "absolute bound of the generated integers")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	return cmd
}
