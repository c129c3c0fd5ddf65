package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Readm/tring_sim/topology"
)

func TestGraphShortestPath(t *testing.T) {
	g := NewGraph[int]()
	g.AddEdge(1, 2, 1)
	g.AddEdge(2, 3, 1)
	g.AddEdge(1, 4, 1)
	g.AddEdge(4, 3, 5)
	g.AddEdge(3, 5, 1)

	path, ok := g.ShortestPath(1, 5)
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3, 5}, path)

	hop, latency, ok := g.NextHop(1, 3)
	require.True(t, ok)
	assert.Equal(t, 2, hop)
	assert.Equal(t, 2, latency)

	_, ok = g.ShortestPath(5, 1)
	assert.False(t, ok)
}

func TestGraphIgnoresDuplicateEdges(t *testing.T) {
	g := NewGraph[string]()
	g.AddEdge("a", "b", 1)
	g.AddEdge("a", "b", 3)
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 2, g.Len())
}

func TestGraphFindCycle(t *testing.T) {
	g := NewGraph[int]()
	g.AddEdge(0, 1, 1)
	g.AddEdge(1, 2, 1)
	g.AddEdge(2, 3, 1)
	assert.False(t, g.HasCycle())
	assert.Nil(t, g.FindCycle())

	g.AddEdge(3, 1, 1)
	cycle := g.FindCycle()
	require.NotNil(t, cycle)
	assert.Equal(t, []int{1, 2, 3, 1}, cycle)
}

func TestGraphSelfLoopIsCycle(t *testing.T) {
	g := NewGraph[int]()
	g.AddEdge(7, 7, 1)
	assert.Equal(t, []int{7, 7}, g.FindCycle())
}

func TestTableMinHopsOnTring(t *testing.T) {
	tr, err := topology.NewTring(4, 3)
	require.NoError(t, err)
	table := NewTable(tr)

	hops, ok := table.MinHops(0, 0)
	require.True(t, ok)
	assert.Equal(t, 0, hops)

	// 0 -> 3 is one anticlockwise hop on the root ring
	hops, _ = table.MinHops(0, 3)
	assert.Equal(t, 1, hops)

	// 3 is the root apex and links down to 19, the apex of ring 3 on level 2
	hops, _ = table.MinHops(3, 19)
	assert.Equal(t, 1, hops)

	path, ok := table.Path(0, 19)
	require.True(t, ok)
	assert.Equal(t, []topology.NodeID{0, 3, 19}, path)
}

func TestTableOnMesh(t *testing.T) {
	m, err := topology.NewMesh(4, 2, 5)
	require.NoError(t, err)
	table := NewTable(m)
	hops, ok := table.MinHops(0, 15)
	require.True(t, ok)
	assert.Equal(t, 6, hops)
}
