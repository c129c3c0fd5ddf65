// Package visualization registers the frame sinks a run can publish to.
// Exactly one is active per run; loading another replaces it.
package visualization

import (
	"github.com/pkg/errors"

	"github.com/Readm/tring_sim/hooks"
	"github.com/Readm/tring_sim/visual"
)

// Headless is always available and discards frames.
const Headless = "headless"

// Factory creates a visualizer instance.
type Factory func() (visual.Visualizer, error)

// Options configure visualization plugin registration.
type Options struct {
	Factories     map[string]Factory
	SetVisualizer func(visual.Visualizer)
}

// Register adds one plugin per factory, plus the headless one.
func Register(reg *hooks.Registry, opts Options) error {
	if reg == nil {
		return errors.New("registry is nil")
	}
	if opts.SetVisualizer == nil {
		return errors.New("SetVisualizer callback is required")
	}
	factories := map[string]Factory{
		Headless: func() (visual.Visualizer, error) { return visual.NullVisualizer{}, nil },
	}
	for mode, factory := range opts.Factories {
		if factory != nil {
			factories[mode] = factory
		}
	}
	for mode, factory := range factories {
		desc := hooks.PluginDescriptor{
			Name:        PluginName(mode),
			Category:    hooks.PluginCategoryVisualization,
			Description: mode + " frame sink",
		}
		factory := factory
		if err := reg.Register(desc, func(*hooks.PluginBroker) error {
			v, err := factory()
			if err != nil {
				return err
			}
			if v == nil {
				return errors.Errorf("%s: factory returned no visualizer", desc.Name)
			}
			opts.SetVisualizer(v)
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// PluginName is the registry name of a visualization mode.
func PluginName(mode string) string {
	return "visualization/" + mode
}
