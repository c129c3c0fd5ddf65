package hooks

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Readm/tring_sim/core"
	"github.com/Readm/tring_sim/topology"
)

func TestRouteHooksSeeDecision(t *testing.T) {
	b := NewPluginBroker()
	var seen []topology.Port
	b.RegisterBeforeRoute(func(ctx *RouteContext) error {
		seen = append(seen, ctx.Port)
		return nil
	})
	b.RegisterAfterRoute(func(ctx *RouteContext) error {
		seen = append(seen, ctx.Port)
		return nil
	})

	ctx := &RouteContext{Packet: &core.Packet{ID: 1}, Node: 4, Port: topology.NoPort}
	require.NoError(t, b.EmitBeforeRoute(ctx))
	ctx.Port = topology.PortLeft
	require.NoError(t, b.EmitAfterRoute(ctx))
	assert.Equal(t, []topology.Port{topology.NoPort, topology.PortLeft}, seen)
}

func TestHookErrorStopsProcessing(t *testing.T) {
	b := NewPluginBroker()
	calls := 0
	b.RegisterDeliver(func(ctx *PacketContext) error {
		calls++
		return errors.New("hook fail")
	})
	b.RegisterDeliver(func(ctx *PacketContext) error {
		calls++
		return nil
	})

	err := b.EmitDeliver(&PacketContext{Node: 3})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestBundleRegistersDescriptorOnce(t *testing.T) {
	b := NewPluginBroker()
	injected := 0
	desc := PluginDescriptor{Name: "counter", Category: PluginCategoryInstrumentation}
	bundle := HookBundle{Inject: []InjectHook{func(ctx *PacketContext) error {
		injected++
		return nil
	}}}
	b.RegisterBundle(desc, bundle)
	b.RegisterBundle(desc, HookBundle{})

	require.NoError(t, b.EmitInject(&PacketContext{}))
	assert.Equal(t, 1, injected)
	assert.Len(t, b.ListPlugins(PluginCategoryInstrumentation), 1)
	assert.Nil(t, b.ListPlugins(PluginCategoryVisualization))
}

func TestNilBrokerIsInert(t *testing.T) {
	var b *PluginBroker
	b.RegisterDeliver(func(ctx *PacketContext) error { return errors.New("never") })
	assert.NoError(t, b.EmitDeliver(&PacketContext{}))
	assert.NoError(t, b.EmitBeforeRoute(&RouteContext{}))
}
