// Package instrumentation registers the built-in observation plugins that
// configuration can enable through network.plugins.
package instrumentation

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Readm/tring_sim/hooks"
	"github.com/Readm/tring_sim/stats"
)

const (
	// StatsPlugin feeds a stats.Collector.
	StatsPlugin = "stats"
	// DeliveryLogPlugin logs every delivered packet at Info.
	DeliveryLogPlugin = "delivery-log"
)

// Options configure instrumentation plugin registration.
type Options struct {
	Collector *stats.Collector
	Logger    logrus.FieldLogger
}

// Register makes the instrumentation plugins available on reg. The stats
// plugin is only registered when a collector is given.
func Register(reg *hooks.Registry, opts Options) error {
	if reg == nil {
		return errors.New("registry is nil")
	}
	if opts.Collector != nil {
		desc := hooks.PluginDescriptor{
			Name:        StatsPlugin,
			Category:    hooks.PluginCategoryInstrumentation,
			Description: "latency, hop and per-node delivery statistics",
		}
		collector := opts.Collector
		if err := reg.Register(desc, func(b *hooks.PluginBroker) error {
			if b == nil {
				return errors.New("plugin broker is nil")
			}
			collector.Install(b, desc)
			return nil
		}); err != nil {
			return err
		}
	}
	if opts.Logger != nil {
		desc := hooks.PluginDescriptor{
			Name:        DeliveryLogPlugin,
			Category:    hooks.PluginCategoryInstrumentation,
			Description: "logs each delivered packet",
		}
		log := opts.Logger.WithField("module", "delivery-log")
		if err := reg.Register(desc, func(b *hooks.PluginBroker) error {
			if b == nil {
				return errors.New("plugin broker is nil")
			}
			b.RegisterDeliver(func(ctx *hooks.PacketContext) error {
				pkt := ctx.Packet
				log.WithFields(logrus.Fields{
					"cycle":   ctx.Cycle,
					"packet":  pkt.ID,
					"src":     pkt.Src,
					"dest":    pkt.Dest,
					"tag":     pkt.Tag.String(),
					"latency": pkt.Latency(),
					"hops":    pkt.Hops,
				}).Info("delivered")
				return nil
			})
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}
