// Package simulator drives an assembled network cycle by cycle under
// external control (pause, resume, step, reset) and publishes frames.
package simulator

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Readm/tring_sim/config"
	"github.com/Readm/tring_sim/hooks"
	"github.com/Readm/tring_sim/plugins/visualization"
	"github.com/Readm/tring_sim/routing"
	"github.com/Readm/tring_sim/stats"
	"github.com/Readm/tring_sim/store"
	"github.com/Readm/tring_sim/topology"
	"github.com/Readm/tring_sim/visual"
)

// Option configures a Controller.
type Option func(*Controller)

// WithVisualizers makes extra frame sinks available by mode, and selects
// mode as the active one. Without it the controller runs headless.
func WithVisualizers(mode string, factories map[string]visualization.Factory) Option {
	return func(c *Controller) {
		c.mode = mode
		c.factories = factories
	}
}

// WithFramePacing publishes one frame every `every` cycles and waits delay
// after each.
func WithFramePacing(every int, delay time.Duration) Option {
	return func(c *Controller) {
		c.bridge.every = every
		c.bridge.delay = delay
	}
}

// WithKeepAlive keeps Run waiting for commands after the run ends, until
// its context is cancelled.
func WithKeepAlive(on bool) Option {
	return func(c *Controller) { c.keepAlive = on }
}

// WithStore saves a record of every run that ends.
func WithStore(s *store.Store) Option {
	return func(c *Controller) { c.store = s }
}

// WithPlugins registers extra plugins before the configured ones load.
func WithPlugins(register ...func(*hooks.Registry) error) Option {
	return func(c *Controller) { c.extra = append(c.extra, register...) }
}

// Controller owns the running session. Its read accessors are safe to call
// from other goroutines while Run steps the network.
type Controller struct {
	cfg       *config.Config
	log       logrus.FieldLogger
	keepAlive bool
	store     *store.Store
	extra     []func(*hooks.Registry) error
	mode      string
	factories map[string]visualization.Factory

	bridge visualBridge

	mu      sync.RWMutex
	session *Session
	paused  bool
	steps   int
	done    bool
	runErr  error
	last    *store.Run
}

// NewController assembles the session cfg describes.
func NewController(cfg *config.Config, logger logrus.FieldLogger, opts ...Option) (*Controller, error) {
	if cfg == nil {
		return nil, errors.Wrap(config.ErrInvalid, "config is nil")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	c := &Controller{
		cfg:  cfg,
		log:  logger.WithField("module", "simulator"),
		mode: visualization.Headless,
	}
	for _, opt := range opts {
		opt(c)
	}
	session, err := c.assemble()
	if err != nil {
		return nil, err
	}
	c.session = session
	return c, nil
}

func (c *Controller) assemble() (*Session, error) {
	register := func(reg *hooks.Registry) error {
		return visualization.Register(reg, visualization.Options{
			Factories:     c.factories,
			SetVisualizer: func(v visual.Visualizer) { c.bridge.target = v },
		})
	}
	extra := append([]func(*hooks.Registry) error{register}, c.extra...)
	session, err := Assemble(c.cfg, c.log, extra...)
	if err != nil {
		return nil, err
	}
	// the frame sink outlives resets, so it is only picked once
	if c.bridge.target == nil {
		if err := session.Registry.Load([]string{visualization.PluginName(c.mode)}); err != nil {
			return nil, errors.Wrap(err, "select visualizer")
		}
	}
	return session, nil
}

// Session returns the current session.
func (c *Controller) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Topology returns the current session's topology.
func (c *Controller) Topology() topology.Topology { return c.Session().Topology }

// Routing returns the current session's routing function.
func (c *Controller) Routing() routing.Function { return c.Session().Routing }

// Frame snapshots the network with the controller's state.
func (c *Controller) Frame() visual.Frame {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frameLocked()
}

func (c *Controller) frameLocked() visual.Frame {
	frame := c.session.Network.Snapshot()
	frame.Paused = c.paused
	frame.Finished = c.done
	if c.runErr != nil {
		frame.Error = c.runErr.Error()
	}
	return frame
}

// Stats returns the current statistics.
func (c *Controller) Stats() stats.Summary {
	return c.Session().Collector.Summary()
}

// Paused reports whether the run is paused.
func (c *Controller) Paused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paused
}

// LastRun returns the record of the most recently ended run, or nil.
func (c *Controller) LastRun() *store.Run {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// Run steps the network until it finishes, hits the cycle limit, fails or
// ctx is cancelled, handling commands between cycles. It returns the error
// the run ended with. In keep-alive mode it then keeps serving commands
// (a reset starts over) and returns nil once ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	loop := &commandLoop{source: c.bridge.target, handler: c.handle}
	for {
		if err := loop.drainPending(); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			if c.keepAlive {
				return nil
			}
			return err
		}

		c.mu.RLock()
		done, runErr := c.done, c.runErr
		idle := done || (c.paused && c.steps == 0)
		c.mu.RUnlock()

		if done && !c.keepAlive {
			return runErr
		}
		if idle {
			if err := loop.waitAndHandle(ctx); err != nil {
				return err
			}
			continue
		}
		c.step(ctx)
	}
}

func (c *Controller) step(ctx context.Context) {
	c.mu.Lock()
	net := c.session.Network
	limit := c.cfg.Network.TotalCycles
	switch {
	case net.Finished():
		c.done = true
		c.log.WithFields(logrus.Fields{
			"cycle":     net.Cycle(),
			"delivered": net.Delivered(),
		}).Info("run finished")
	case limit > 0 && net.Cycle() >= limit:
		c.done = true
		c.log.WithFields(logrus.Fields{
			"cycle":       net.Cycle(),
			"outstanding": net.Outstanding(),
		}).Warn("cycle limit reached")
	default:
		if err := net.Step(); err != nil {
			c.done = true
			c.runErr = err
			c.log.WithError(err).Error("run failed")
		}
		if c.steps > 0 {
			c.steps--
		}
	}
	frame := c.frameLocked()
	done := c.done
	c.mu.Unlock()

	c.bridge.publish(ctx, frame, done)
	if done {
		c.complete()
	}
}

// complete persists what the ended run produced.
func (c *Controller) complete() {
	c.mu.Lock()
	session, runErr := c.session, c.runErr
	c.mu.Unlock()

	record := session.Record(runErr)
	if err := session.WriteResults(); err != nil {
		c.log.WithError(err).Error("writing job results failed")
	}
	if c.store != nil {
		if err := c.store.Save(record); err != nil {
			c.log.WithError(err).Error("saving run failed")
		} else {
			c.log.WithField("run", record.ID).Info("run saved")
		}
	}
	c.mu.Lock()
	c.last = record
	c.mu.Unlock()
}

func (c *Controller) handle(cmd visual.ControlCommand) error {
	switch cmd.Type {
	case visual.CommandPause:
		c.mu.Lock()
		c.paused = true
		c.mu.Unlock()
	case visual.CommandResume:
		c.mu.Lock()
		c.paused, c.steps = false, 0
		c.mu.Unlock()
	case visual.CommandStep:
		n := cmd.Steps
		if n <= 0 {
			n = 1
		}
		c.mu.Lock()
		// stepping only applies to a paused run
		if c.paused {
			c.steps += n
		}
		c.mu.Unlock()
	case visual.CommandReset:
		return c.Reset()
	}
	return nil
}

// Reset discards the current session and assembles a fresh one from the
// same configuration.
func (c *Controller) Reset() error {
	session, err := c.assemble()
	if err != nil {
		return errors.Wrap(err, "reset")
	}
	c.mu.Lock()
	c.session = session
	c.paused, c.steps, c.done, c.runErr = false, 0, false, nil
	frame := c.frameLocked()
	c.mu.Unlock()
	c.log.Info("simulation reset")
	c.bridge.publish(context.Background(), frame, true)
	return nil
}
