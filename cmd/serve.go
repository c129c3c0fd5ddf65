package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Readm/tring_sim/plugins/visualization"
	"github.com/Readm/tring_sim/simulator"
	"github.com/Readm/tring_sim/visual"
	"github.com/Readm/tring_sim/web"
)

const webMode = "web"

func newServeCommand(input *Input) *cobra.Command {
	var (
		addr   string
		every  int
		delay  time.Duration
		paused bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a simulation behind the HTTP API and websocket frame stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(cmd, input)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Web.Addr
			}
			runs, err := input.openStore(cfg)
			if err != nil {
				return err
			}

			server := web.NewServer(runs, logger)
			opts := []simulator.Option{
				simulator.WithVisualizers(webMode, map[string]visualization.Factory{
					webMode: func() (visual.Visualizer, error) { return server, nil },
				}),
				simulator.WithKeepAlive(true),
				simulator.WithFramePacing(every, delay),
			}
			if runs != nil {
				opts = append(opts, simulator.WithStore(runs))
			}
			c, err := simulator.NewController(cfg, logger, opts...)
			if err != nil {
				return err
			}
			server.Attach(c)
			if paused {
				server.PublishFrame(c.Frame())
				if !server.QueueCommand(visual.ControlCommand{Type: visual.CommandPause}) {
					logger.Warn("could not start paused")
				}
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return server.ListenAndServe(ctx, addr) })
			g.Go(func() error { return c.Run(ctx) })
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the config's web.addr")
	cmd.Flags().IntVar(&every, "frame-every", 1, "publish one frame every N cycles")
	cmd.Flags().DurationVar(&delay, "frame-delay", 20*time.Millisecond, "pause after each published frame")
	cmd.Flags().BoolVar(&paused, "paused", false, "start paused and wait for resume or step commands")
	return cmd
}
