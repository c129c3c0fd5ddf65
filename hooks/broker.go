package hooks

import (
	"sync"

	"github.com/Readm/tring_sim/core"
	"github.com/Readm/tring_sim/routing"
	"github.com/Readm/tring_sim/topology"
)

// PluginCategory represents the high-level role of a plugin.
type PluginCategory string

const (
	// PluginCategoryInstrumentation covers statistics and tracing.
	PluginCategoryInstrumentation PluginCategory = "instrumentation"
	// PluginCategoryVisualization covers frame and monitoring plugins.
	PluginCategoryVisualization PluginCategory = "visualization"
	// PluginCategoryWorkload covers traffic sources that react to deliveries.
	PluginCategoryWorkload PluginCategory = "workload"
)

// PluginDescriptor describes a plugin registered with the broker.
type PluginDescriptor struct {
	Name        string
	Category    PluginCategory
	Description string
}

// HookBundle groups the handlers that belong to one plugin.
type HookBundle struct {
	BeforeRoute []BeforeRouteHook
	AfterRoute  []AfterRouteHook
	Inject      []InjectHook
	Deliver     []DeliverHook
}

// RouteContext describes one routing decision for a head flit.
// After-route hooks see the port and VC chosen by the routing function.
type RouteContext struct {
	Packet  *core.Packet
	Node    topology.NodeID
	InputVC routing.VC
	Port    topology.Port
	VC      routing.VC
	Cycle   int
}

// PacketContext describes a packet entering or leaving the network.
type PacketContext struct {
	Packet *core.Packet
	Node   topology.NodeID
	Cycle  int
}

type BeforeRouteHook func(ctx *RouteContext) error
type AfterRouteHook func(ctx *RouteContext) error

// InjectHook runs when a head flit leaves its source processor.
type InjectHook func(ctx *PacketContext) error

// DeliverHook runs when a tail flit reaches the destination processor.
type DeliverHook func(ctx *PacketContext) error

// PluginBroker coordinates hook registration and triggering.
type PluginBroker struct {
	mu sync.RWMutex

	beforeRouteHooks []BeforeRouteHook
	afterRouteHooks  []AfterRouteHook
	injectHooks      []InjectHook
	deliverHooks     []DeliverHook

	pluginCatalog map[PluginCategory][]PluginDescriptor
	pluginIndex   map[string]PluginDescriptor
}

// NewPluginBroker creates an empty broker instance.
func NewPluginBroker() *PluginBroker {
	return &PluginBroker{
		pluginCatalog: make(map[PluginCategory][]PluginDescriptor),
		pluginIndex:   make(map[string]PluginDescriptor),
	}
}

func (p *PluginBroker) RegisterBeforeRoute(h BeforeRouteHook) {
	if p == nil || h == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.beforeRouteHooks = append(p.beforeRouteHooks, h)
}

func (p *PluginBroker) RegisterAfterRoute(h AfterRouteHook) {
	if p == nil || h == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.afterRouteHooks = append(p.afterRouteHooks, h)
}

// RegisterInject registers a hook for packet injection.
func (p *PluginBroker) RegisterInject(h InjectHook) {
	if p == nil || h == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.injectHooks = append(p.injectHooks, h)
}

// RegisterDeliver registers a hook for packet delivery.
func (p *PluginBroker) RegisterDeliver(h DeliverHook) {
	if p == nil || h == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deliverHooks = append(p.deliverHooks, h)
}

func (p *PluginBroker) EmitBeforeRoute(ctx *RouteContext) error {
	if p == nil || ctx == nil {
		return nil
	}
	p.mu.RLock()
	handlers := append([]BeforeRouteHook(nil), p.beforeRouteHooks...)
	p.mu.RUnlock()
	for _, handler := range handlers {
		if err := handler(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (p *PluginBroker) EmitAfterRoute(ctx *RouteContext) error {
	if p == nil || ctx == nil {
		return nil
	}
	p.mu.RLock()
	handlers := append([]AfterRouteHook(nil), p.afterRouteHooks...)
	p.mu.RUnlock()
	for _, handler := range handlers {
		if err := handler(ctx); err != nil {
			return err
		}
	}
	return nil
}

// EmitInject triggers injection hooks, stopping at the first error.
func (p *PluginBroker) EmitInject(ctx *PacketContext) error {
	if p == nil || ctx == nil {
		return nil
	}
	p.mu.RLock()
	handlers := append([]InjectHook(nil), p.injectHooks...)
	p.mu.RUnlock()
	for _, handler := range handlers {
		if err := handler(ctx); err != nil {
			return err
		}
	}
	return nil
}

// EmitDeliver triggers delivery hooks, stopping at the first error.
func (p *PluginBroker) EmitDeliver(ctx *PacketContext) error {
	if p == nil || ctx == nil {
		return nil
	}
	p.mu.RLock()
	handlers := append([]DeliverHook(nil), p.deliverHooks...)
	p.mu.RUnlock()
	for _, handler := range handlers {
		if err := handler(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RegisterBundle registers a plugin descriptor together with all hook handlers.
func (p *PluginBroker) RegisterBundle(desc PluginDescriptor, bundle HookBundle) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.registerDescriptorLocked(desc)
	p.beforeRouteHooks = append(p.beforeRouteHooks, bundle.BeforeRoute...)
	p.afterRouteHooks = append(p.afterRouteHooks, bundle.AfterRoute...)
	p.injectHooks = append(p.injectHooks, bundle.Inject...)
	p.deliverHooks = append(p.deliverHooks, bundle.Deliver...)
}

// ListPlugins returns descriptors for plugins in the requested category.
func (p *PluginBroker) ListPlugins(category PluginCategory) []PluginDescriptor {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	catalog := p.pluginCatalog[category]
	if len(catalog) == 0 {
		return nil
	}
	return append([]PluginDescriptor(nil), catalog...)
}

func (p *PluginBroker) registerDescriptorLocked(desc PluginDescriptor) {
	if desc.Name == "" {
		return
	}
	if _, exists := p.pluginIndex[desc.Name]; exists {
		return
	}
	p.pluginIndex[desc.Name] = desc
	p.pluginCatalog[desc.Category] = append(p.pluginCatalog[desc.Category], desc)
}
