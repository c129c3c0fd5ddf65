package stats

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Readm/tring_sim/hooks"
	"github.com/Readm/tring_sim/network"
	"github.com/Readm/tring_sim/router"
	"github.com/Readm/tring_sim/routing"
	"github.com/Readm/tring_sim/topology"
	"github.com/Readm/tring_sim/traffic"
)

func TestCollectorFollowsRun(t *testing.T) {
	tr, err := topology.NewTring(4, 2)
	require.NoError(t, err)
	c := NewCollector(router.NewTable(tr))
	broker := hooks.NewPluginBroker()
	c.Install(broker, hooks.PluginDescriptor{Name: "stats", Category: hooks.PluginCategoryInstrumentation})

	net, err := network.Build(tr, routing.NewDateline(tr), network.DefaultConfig(), broker, nil)
	require.NoError(t, err)
	events := []traffic.Event{
		{Cycle: 0, Src: 0, Dest: 5, Length: 3},
		{Cycle: 1, Src: 9, Dest: 2, Length: 1},
		{Cycle: 2, Src: 4, Dest: 4, Length: 2},
	}
	require.NoError(t, net.Attach(traffic.NewTrace(events)))
	require.NoError(t, net.Run(context.Background()))

	s := c.Summary()
	assert.Equal(t, 3, s.Injected)
	assert.Equal(t, 3, s.Delivered)
	assert.Equal(t, 3+2+1+2+2+2, s.FlitsDelivered)
	assert.Equal(t, 1, s.PerNode[5])
	assert.Equal(t, 1, s.PerNode[4])
	assert.GreaterOrEqual(t, s.MaxLatency, s.MinLatency)
	assert.Greater(t, s.AvgHops, 0.0)
	assert.GreaterOrEqual(t, s.AvgStretch, 1.0)
	assert.NotEmpty(t, s.VCRoutes)

	s.PerNode[5] = 100
	assert.Equal(t, 1, c.Summary().PerNode[5], "summary is a copy")

	c.Reset()
	assert.Zero(t, c.Summary().Delivered)
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, Summary{})
	assert.Equal(t, "No stats available\n", buf.String())

	buf.Reset()
	Print(&buf, Summary{
		Injected:   2,
		Delivered:  2,
		AvgLatency: 4.5,
		MaxLatency: 6,
		PerNode:    map[topology.NodeID]int{7: 1, 3: 1},
		VCRoutes:   map[routing.VC]int{1: 4, 0: 2},
	})
	out := buf.String()
	assert.Contains(t, out, "Average Latency: 4.50 cycles")
	assert.Contains(t, out, "VC 0: 2\nVC 1: 4\n")
	assert.Contains(t, out, "Node 3: Delivered=1\nNode 7: Delivered=1\n")
	assert.NotContains(t, out, "Stretch")
}
