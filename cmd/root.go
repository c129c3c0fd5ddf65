// Package cmd is the tring_sim command line.
package cmd

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Readm/tring_sim/config"
	"github.com/Readm/tring_sim/logging"
)

// Execute is the entry point to running the CLI.
func Execute(ctx context.Context, version string, args []string) error {
	root := newRootCommand(&Input{})
	root.Version = version
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCommand(input *Input) *cobra.Command {
	root := &cobra.Command{
		Use:           "tring_sim",
		Short:         "Simulate tree-of-rings and mesh interconnects under trace and map/reduce traffic.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if input.envFile == "" {
				return nil
			}
			if err := godotenv.Load(input.envFile); err != nil {
				return errors.Wrapf(err, "load env file %s", input.envFile)
			}
			return nil
		},
	}
	addGlobalFlags(root.PersistentFlags(), input)
	root.AddCommand(
		newRunCommand(input),
		newRouteCommand(input),
		newTopologyCommand(input),
		newServeCommand(input),
		newGenJobsCommand(input),
		newResultsCommand(input),
		newConfigsCommand(),
	)
	return root
}

// setup resolves the configuration and the logger every command runs with,
// and stores the logger in the command's context.
func setup(cmd *cobra.Command, input *Input) (*config.Config, logrus.FieldLogger, error) {
	cfg, err := input.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	level := cfg.Log.Level
	if input.logLevel != "" {
		level = input.logLevel
	}
	logger, err := logging.Configure(level, cmd.ErrOrStderr(), input.jsonLogs || cfg.Log.JSON)
	if err != nil {
		return nil, nil, err
	}
	cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
	logger.WithFields(logrus.Fields{
		"config":   cfg.Name,
		"topology": cfg.Topology.Type,
		"routing":  cfg.Routing.Algorithm,
	}).Debug("configuration loaded")
	return cfg, logger, nil
}
