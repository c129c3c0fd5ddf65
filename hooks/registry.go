package hooks

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// PluginFactory installs a plugin's hooks into the broker.
type PluginFactory func(broker *PluginBroker) error

type registryEntry struct {
	desc    PluginDescriptor
	factory PluginFactory
}

// Registry keeps plugin factories that can be activated by name from
// configuration (network.plugins).
type Registry struct {
	mu      sync.RWMutex
	broker  *PluginBroker
	entries map[string]registryEntry
}

// NewRegistry creates an empty plugin registry bound to a broker.
func NewRegistry(broker *PluginBroker) *Registry {
	if broker == nil {
		broker = NewPluginBroker()
	}
	return &Registry{
		broker:  broker,
		entries: make(map[string]registryEntry),
	}
}

func (r *Registry) Broker() *PluginBroker {
	if r == nil {
		return nil
	}
	return r.broker
}

// Register makes a factory available under desc.Name.
func (r *Registry) Register(desc PluginDescriptor, factory PluginFactory) error {
	if r == nil {
		return errors.New("registry is nil")
	}
	if desc.Name == "" {
		return errors.New("plugin name cannot be empty")
	}
	if factory == nil {
		return errors.Errorf("plugin %s: factory cannot be nil", desc.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[desc.Name]; exists {
		return errors.Errorf("plugin already registered: %s", desc.Name)
	}
	r.entries[desc.Name] = registryEntry{desc: desc, factory: factory}
	return nil
}

// Load activates the named plugins in order.
func (r *Registry) Load(names []string) error {
	if r == nil {
		return errors.New("registry is nil")
	}
	for _, name := range names {
		r.mu.RLock()
		entry, ok := r.entries[name]
		r.mu.RUnlock()
		if !ok {
			return errors.Errorf("plugin not found: %s", name)
		}
		if err := entry.factory(r.broker); err != nil {
			return errors.Wrapf(err, "plugin %s", name)
		}
		r.broker.mu.Lock()
		r.broker.registerDescriptorLocked(entry.desc)
		r.broker.mu.Unlock()
	}
	return nil
}

// Names lists the registered plugin names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
