package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Readm/tring_sim/topology"
)

func tring(t *testing.T, k, n int) topology.Tring {
	t.Helper()
	tr, err := topology.NewTring(k, n)
	require.NoError(t, err)
	return tr
}

func TestRouteInRing(t *testing.T) {
	d := NewDeterministic(tring(t, 4, 3))
	cases := []struct {
		cur, dest int
		want      Direction
	}{
		{1, 0, Clockwise},
		{3, 0, Clockwise},
		{0, 1, Anticlockwise},
		{1, 2, Clockwise},
		{3, 2, Anticlockwise},
	}
	for _, c := range cases {
		got, ok := d.RouteInRing(c.cur, c.dest)
		require.True(t, ok)
		assert.Equal(t, c.want, got, "%d->%d", c.cur, c.dest)
	}

	_, ok := d.RouteInRing(3, 3)
	assert.False(t, ok)
	_, ok = d.RouteInRing(0, 4)
	assert.False(t, ok, "position outside the ring")
}

func TestRouteInRingShortestPath(t *testing.T) {
	d := NewDeterministic(tring(t, 4, 3), WithShortestPath(true))
	dir, ok := d.RouteInRing(0, 1)
	require.True(t, ok)
	assert.Equal(t, Clockwise, dir)
	dir, _ = d.RouteInRing(0, 3)
	assert.Equal(t, Anticlockwise, dir)
	dir, _ = d.RouteInRing(1, 3)
	assert.Equal(t, Clockwise, dir, "ties go clockwise")
}

func TestRouteInRingCustomEdge(t *testing.T) {
	d := NewDeterministic(tring(t, 4, 3), WithDisabledEdge(2, 3))
	dir, ok := d.RouteInRing(1, 3)
	require.True(t, ok)
	assert.Equal(t, Anticlockwise, dir)
	dir, _ = d.RouteInRing(0, 1)
	assert.Equal(t, Clockwise, dir)
	a, b := d.DisabledEdge()
	assert.Equal(t, [2]int{2, 3}, [2]int{a, b})
}

func TestRouteUp(t *testing.T) {
	d := NewDeterministic(tring(t, 4, 3))
	cases := []struct {
		pos  int
		want topology.Port
	}{
		{2, topology.PortLeft},
		{0, topology.PortRight},
		{1, topology.PortLeft},
		{3, topology.PortUp},
	}
	for _, c := range cases {
		got, ok := d.RouteUp(c.pos)
		require.True(t, ok)
		assert.Equal(t, c.want, got, "pos=%d", c.pos)
	}
}

func TestRouteLeftOrRight(t *testing.T) {
	d := NewDeterministic(tring(t, 4, 3))
	cases := []struct {
		cur, dest int
		want      topology.Port
	}{
		{2, 3, topology.PortLeft},
		{1, 3, topology.PortLeft},
		{3, 0, topology.PortLeft},
		{3, 1, topology.PortRight},
	}
	for _, c := range cases {
		got, ok := d.RouteLeftOrRight(c.cur, c.dest)
		require.True(t, ok)
		assert.Equal(t, c.want, got, "%d->%d", c.cur, c.dest)
	}
	got, ok := d.RouteLeftOrRight(1, 1)
	assert.False(t, ok)
	assert.Equal(t, topology.NoPort, got)
}

func TestRouteDown(t *testing.T) {
	d := NewDeterministic(tring(t, 4, 3))
	cases := []struct {
		cur, dest topology.NodeID
		want      topology.Port
	}{
		{39, 67, topology.PortDown},
		{1, 49, topology.PortLeft},
		{3, 22, topology.PortLeft},
		{23, 3, topology.PortDown},
		{23, 4, topology.PortDown},
		{59, 65, topology.PortDown},
		{17, 25, topology.PortLeft},
		{35, 70, topology.PortDown},
	}
	for _, c := range cases {
		got, ok := d.RouteDown(c.cur, c.dest)
		require.True(t, ok)
		assert.Equal(t, c.want, got, "%d->%d", c.cur, c.dest)
	}
}

func TestOutputPortLocalDelivery(t *testing.T) {
	d := NewDeterministic(tring(t, 4, 3))
	port, ok := d.OutputPort(5, 0, 0, 5)
	require.True(t, ok)
	assert.Equal(t, topology.Port(3), port)

	port, ok = d.OutputPort(22, 0, 0, 22)
	require.True(t, ok)
	assert.Equal(t, topology.Port(2), port, "leaf nodes have two network ports")

	_, ok = d.OutputPort(5, 0, 0, 68)
	assert.False(t, ok)
	_, ok = d.OutputPort(-1, 0, 0, 5)
	assert.False(t, ok)

	vc, ok := d.OutputVC(5, 0, 0, 7)
	assert.False(t, ok)
	assert.Equal(t, NoVC, vc)
}

func TestTracePath(t *testing.T) {
	tr := tring(t, 4, 3)
	path, err := Trace(NewDeterministic(tr), tr, 1, 49)
	require.NoError(t, err)
	nodes := make([]topology.NodeID, 0, len(path))
	for _, hop := range path {
		nodes = append(nodes, hop.Node)
	}
	assert.Equal(t, []topology.NodeID{1, 2, 15, 14, 13, 51, 50, 49}, nodes)
	assert.True(t, path[len(path)-1].Local)
	for _, hop := range path {
		assert.Equal(t, VC(0), hop.VC)
	}
}

func TestTringDeliversAllPairs(t *testing.T) {
	for _, kn := range [][2]int{{2, 3}, {3, 4}, {4, 3}, {5, 3}} {
		tr := tring(t, kn[0], kn[1])
		fns := []Function{
			NewDeterministic(tr),
			NewDeterministic(tr, WithShortestPath(true)),
			NewDateline(tr),
		}
		for _, fn := range fns {
			for src := topology.NodeID(0); int(src) < tr.NodeCount(); src++ {
				for dst := topology.NodeID(0); int(dst) < tr.NodeCount(); dst++ {
					path, err := Trace(fn, tr, src, dst)
					require.NoError(t, err, "%s on %s", fn.Name(), tr.Name())
					require.Equal(t, dst, path[len(path)-1].Node)
				}
			}
		}
	}
}

func TestIsRingEdge(t *testing.T) {
	cases := []struct {
		k, a, b int
		want    bool
	}{
		{4, 0, 1, true},
		{4, 1, 0, true},
		{4, 3, 0, true},
		{4, 0, 3, true},
		{4, 0, 2, false},
		{4, 1, 1, false},
		{4, 0, 4, false},
		{4, -1, 0, false},
		{2, 0, 1, true},
		{1, 0, 0, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsRingEdge(c.k, c.a, c.b), "k=%d (%d,%d)", c.k, c.a, c.b)
	}
}

func TestNonAdjacentDisabledEdgeIsIgnored(t *testing.T) {
	tr := tring(t, 4, 3)
	d := NewDeterministic(tr, WithDisabledEdge(0, 2))
	v := NewDateline(tr, WithDisabledEdge(0, 2))
	for _, det := range []*Deterministic{d, v.Deterministic()} {
		a, b := det.DisabledEdge()
		assert.Equal(t, [2]int{0, 1}, [2]int{a, b})
	}
	for _, fn := range []Function{d, v} {
		g, err := DependencyGraph(fn, tr)
		require.NoError(t, err)
		assert.Nil(t, g.FindCycle(), fn.Name())
	}
}

func TestDeterministicIsDeadlockFree(t *testing.T) {
	for _, kn := range [][2]int{{3, 3}, {4, 3}, {5, 3}, {6, 2}} {
		tr := tring(t, kn[0], kn[1])
		g, err := DependencyGraph(NewDeterministic(tr), tr)
		require.NoError(t, err)
		assert.Nil(t, g.FindCycle(), "%s", tr.Name())
	}
}

func TestShortestPathSingleChannelHasCycle(t *testing.T) {
	tr := tring(t, 4, 3)
	g, err := DependencyGraph(NewDeterministic(tr, WithShortestPath(true)), tr)
	require.NoError(t, err)
	assert.True(t, g.HasCycle())
}
