package traffic

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Readm/tring_sim/network"
	"github.com/Readm/tring_sim/routing"
	"github.com/Readm/tring_sim/topology"
)

const sample = `# cycle src dest length
5 3 10 2
0 1 2 4   # first
5 0 19 1

2 19 0 3
`

func TestParseOrdersByCycle(t *testing.T) {
	events, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, []Event{
		{Cycle: 0, Src: 1, Dest: 2, Length: 4},
		{Cycle: 2, Src: 19, Dest: 0, Length: 3},
		{Cycle: 5, Src: 3, Dest: 10, Length: 2},
		{Cycle: 5, Src: 0, Dest: 19, Length: 1},
	}, events)
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"1 2 3", "1 2 3 x", "1 -2 3 4", "1 2 3 4 5"} {
		_, err := Parse(strings.NewReader(in))
		assert.Error(t, err, in)
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.trace"))
	assert.Error(t, err)
}

func TestTraceWorkloadDelivers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.trace")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	events, err := Load(path)
	require.NoError(t, err)

	tr, err := topology.NewTring(4, 2)
	require.NoError(t, err)
	net, err := network.Build(tr, routing.NewDateline(tr), network.Config{}, nil, nil)
	require.NoError(t, err)
	w := NewTrace(events)
	require.NoError(t, net.Attach(w))
	assert.False(t, w.Done())

	require.NoError(t, net.Run(context.Background()))
	assert.True(t, w.Done())
	assert.Equal(t, 0, w.Remaining())
	assert.Equal(t, 4, net.Delivered())
	assert.GreaterOrEqual(t, net.Cycle(), 5)
}

func TestTraceRejectsUnknownNode(t *testing.T) {
	tr, err := topology.NewTring(4, 2)
	require.NoError(t, err)
	net, err := network.Build(tr, routing.NewDeterministic(tr), network.Config{}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, net.Attach(NewTrace([]Event{{Cycle: 0, Src: 0, Dest: 99, Length: 1}})))
	err = net.Run(context.Background())
	assert.ErrorIs(t, err, network.ErrUnknownNode)
}
