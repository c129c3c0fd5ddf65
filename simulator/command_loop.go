package simulator

import (
	"context"

	"github.com/Readm/tring_sim/visual"
)

// commandLoop drains and dispatches control commands from a visualizer.
type commandLoop struct {
	source  visual.Visualizer
	handler func(visual.ControlCommand) error
}

// drainPending handles every queued command, stopping at the first error.
func (c *commandLoop) drainPending() error {
	if c == nil || c.source == nil || c.handler == nil {
		return nil
	}
	for {
		cmd, ok := c.source.NextCommand()
		if !ok {
			return nil
		}
		if err := c.handler(cmd); err != nil {
			return err
		}
	}
}

// waitAndHandle blocks until a command arrives or ctx is done.
func (c *commandLoop) waitAndHandle(ctx context.Context) error {
	if c == nil || c.source == nil || c.handler == nil {
		<-ctx.Done()
		return nil
	}
	cmd, ok := c.source.WaitCommand(ctx)
	if !ok {
		return nil
	}
	return c.handler(cmd)
}
