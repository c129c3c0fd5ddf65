package mapreduce

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"

	"github.com/Readm/tring_sim/network"
	"github.com/Readm/tring_sim/routing"
	"github.com/Readm/tring_sim/topology"
)

func sorted(in []int) []int {
	out := slices.Clone(in)
	slices.Sort(out)
	return out
}

func runJobs(t *testing.T, topo topology.Topology, fn routing.Function, master topology.NodeID, jobs []*Job) *network.Network {
	t.Helper()
	tree, err := NewTree(topo, master)
	require.NoError(t, err)
	w, err := NewWorkload(tree, jobs, nil)
	require.NoError(t, err)
	net, err := network.Build(topo, fn, network.Config{BufferDepth: 2, StallCycles: 500}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, net.Attach(w))
	require.NoError(t, net.Run(context.Background()))
	require.True(t, w.Done())
	return net
}

func generated(t *testing.T, files, count int) []*Job {
	t.Helper()
	dir := t.TempDir()
	_, err := GenerateJobs(dir, files, count, 500, 7)
	require.NoError(t, err)
	jobs, err := LoadJobs(dir)
	require.NoError(t, err)
	return jobs
}

func TestTringSortsJobs(t *testing.T) {
	for _, kn := range [][2]int{{4, 3}, {3, 3}, {4, 1}, {2, 4}} {
		tr, err := topology.NewTring(kn[0], kn[1])
		require.NoError(t, err)
		jobs := generated(t, 3, 100)
		runJobs(t, tr, routing.NewDateline(tr), 0, jobs)
		for _, j := range jobs {
			assert.Equal(t, sorted(j.Input), j.Result, "%s job %s", tr.Name(), j.Name)
			assert.GreaterOrEqual(t, j.FinishedAt, j.StartedAt)
		}
	}
}

func TestTringSmallInputs(t *testing.T) {
	tr, err := topology.NewTring(4, 3)
	require.NoError(t, err)
	jobs := []*Job{
		{ID: 0, Name: "empty"},
		{ID: 1, Name: "one", Input: []int{7}},
		{ID: 2, Name: "three", Input: []int{3, 1, 2}},
		{ID: 3, Name: "five", Input: []int{5, -1, 4, 4, 0}},
	}
	runJobs(t, tr, routing.NewDeterministic(tr), 2, jobs)
	assert.Empty(t, jobs[0].Result)
	assert.Equal(t, []int{7}, jobs[1].Result)
	assert.Equal(t, []int{1, 2, 3}, jobs[2].Result)
	assert.Equal(t, []int{-1, 0, 4, 4, 5}, jobs[3].Result)
}

func TestMeshSortsJobs(t *testing.T) {
	for _, k := range []int{3, 5} {
		m, err := topology.NewMesh(k, 2, topology.DefaultMaster(k))
		require.NoError(t, err)
		jobs := generated(t, 2, 60)
		runJobs(t, m, routing.NewDimensionOrder(m), m.Master(), jobs)
		for _, j := range jobs {
			assert.Equal(t, sorted(j.Input), j.Result, "%s job %s", m.Name(), j.Name)
		}
	}
}

func TestNewTreeRejectsBadMasters(t *testing.T) {
	m, err := topology.NewMesh(5, 2, 0)
	require.NoError(t, err)
	_, err = NewTree(m, 0)
	assert.ErrorIs(t, err, ErrLeafMaster)

	tr, err := topology.NewTring(4, 3)
	require.NoError(t, err)
	_, err = NewTree(tr, 10)
	assert.Error(t, err, "master below the root ring")
	_, err = NewTree(tr, 68)
	assert.Error(t, err)
}

func TestUnexpectedReduceIsAnError(t *testing.T) {
	tr, err := topology.NewTring(4, 2)
	require.NoError(t, err)
	tree, err := NewTree(tr, 0)
	require.NoError(t, err)
	_, err = NewWorkload(tree, []*Job{{ID: 1}, {ID: 1}}, nil)
	assert.Error(t, err)

	w, err := NewWorkload(tree, []*Job{{ID: 1, Input: []int{4, 3, 2, 1, 0, 9, 8, 7}}}, nil)
	require.NoError(t, err)
	net, err := network.Build(tr, routing.NewDeterministic(tr), network.Config{}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, net.Attach(w))
	assert.Error(t, w.collect(w.state[1], 0, 19, []int{1}, net))
}

func TestFilesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	paths, err := GenerateJobs(dir, 2, 10, 50, 42)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "input0.mr"), paths[0])

	again := t.TempDir()
	_, err = GenerateJobs(again, 2, 10, 50, 42)
	require.NoError(t, err)
	a, _ := os.ReadFile(paths[1])
	b, _ := os.ReadFile(filepath.Join(again, "input1.mr"))
	assert.Equal(t, a, b, "same seed, same jobs")

	jobs, err := LoadJobs(dir)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	for _, j := range jobs {
		assert.Len(t, j.Input, 10)
		for _, v := range j.Input {
			assert.True(t, v >= -50 && v <= 50)
		}
		j.Result, j.Done = sorted(j.Input), true
	}

	out := filepath.Join(t.TempDir(), "results")
	require.NoError(t, WriteResults(out, jobs))
	raw, err := os.ReadFile(filepath.Join(out, "input0.mr"))
	require.NoError(t, err)
	assert.Equal(t, Format(jobs[0].Result), string(raw))
	assert.Equal(t, Digest(jobs[0].Result), Digest(sorted(jobs[0].Input)))

	_, err = LoadJobs(t.TempDir())
	assert.Error(t, err)
	_, err = GenerateJobs(dir, 0, 1, 1, 1)
	assert.Error(t, err)
}
