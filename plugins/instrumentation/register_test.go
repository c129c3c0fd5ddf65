package instrumentation

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Readm/tring_sim/core"
	"github.com/Readm/tring_sim/hooks"
	"github.com/Readm/tring_sim/stats"
)

func TestRegisterAndLoad(t *testing.T) {
	broker := hooks.NewPluginBroker()
	reg := hooks.NewRegistry(broker)

	logger, hook := test.NewNullLogger()
	collector := stats.NewCollector(nil)

	require.NoError(t, Register(reg, Options{Collector: collector, Logger: logger}))
	assert.Equal(t, []string{DeliveryLogPlugin, StatsPlugin}, reg.Names())
	require.NoError(t, reg.Load([]string{StatsPlugin, DeliveryLogPlugin}))

	pkt := &core.Packet{ID: 3, Src: 1, Dest: 2, Length: 1, GeneratedAt: 0, DeliveredAt: 9, Hops: 2}
	require.NoError(t, broker.EmitDeliver(&hooks.PacketContext{Packet: pkt, Node: 2, Cycle: 9}))

	s := collector.Summary()
	assert.Equal(t, 1, s.Delivered)
	assert.Equal(t, 9, s.MaxLatency)
	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, "delivered", entry.Message)
	assert.Equal(t, 9, entry.Data["latency"])
	assert.Equal(t, "delivery-log", entry.Data["module"])
	assert.Len(t, broker.ListPlugins(hooks.PluginCategoryInstrumentation), 2)
}

func TestRegisterWithoutSinks(t *testing.T) {
	reg := hooks.NewRegistry(nil)
	require.NoError(t, Register(reg, Options{}))
	assert.Empty(t, reg.Names())
	assert.Error(t, Register(nil, Options{}))
}
