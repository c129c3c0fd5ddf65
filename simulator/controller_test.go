package simulator

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"

	"github.com/Readm/tring_sim/config"
	"github.com/Readm/tring_sim/logging"
	"github.com/Readm/tring_sim/mapreduce"
	"github.com/Readm/tring_sim/plugins/visualization"
	"github.com/Readm/tring_sim/store"
	"github.com/Readm/tring_sim/visual"
)

type scripted struct {
	cmds   chan visual.ControlCommand
	mu     sync.Mutex
	frames []visual.Frame
}

func newScripted() *scripted {
	return &scripted{cmds: make(chan visual.ControlCommand, 8)}
}

func (s *scripted) IsHeadless() bool { return false }

func (s *scripted) PublishFrame(f visual.Frame) {
	s.mu.Lock()
	s.frames = append(s.frames, f)
	s.mu.Unlock()
}

func (s *scripted) NextCommand() (visual.ControlCommand, bool) {
	select {
	case cmd := <-s.cmds:
		return cmd, true
	default:
		return visual.ControlCommand{}, false
	}
}

func (s *scripted) WaitCommand(ctx context.Context) (visual.ControlCommand, bool) {
	select {
	case cmd := <-s.cmds:
		return cmd, true
	case <-ctx.Done():
		return visual.ControlCommand{}, false
	}
}

func (s *scripted) frameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func traceConfig(t *testing.T, body string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "traffic.trace")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	cfg := &config.Config{
		Name:     "trace-test",
		Topology: config.TopologyConfig{Type: config.TopologyTring, K: 4, N: 2},
		Workload: config.WorkloadConfig{Type: config.WorkloadTrace, TraceFile: path},
	}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestControllerRunsTraceAndSaves(t *testing.T) {
	cfg := traceConfig(t, "# cycle src dest length\n0 0 5 3\n2 9 1 2\n4 3 3 1\n")
	runs, err := store.New(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)

	c, err := NewController(cfg, logging.Discard(), WithStore(runs))
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background()))

	last := c.LastRun()
	require.NotNil(t, last)
	assert.True(t, last.Finished)
	assert.Equal(t, "tring(4,2)", last.Topology)
	assert.Equal(t, "dateline", last.Routing)
	assert.Equal(t, 3, last.Stats.Delivered)
	assert.Equal(t, 3, c.Stats().Delivered)
	assert.True(t, c.Frame().Finished)

	saved, err := runs.List(store.Filter{Config: "trace-test"})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, last.ID, saved[0].ID)
}

func TestControllerMapReduceWritesResults(t *testing.T) {
	jobDir := t.TempDir()
	_, err := mapreduce.GenerateJobs(jobDir, 2, 40, 100, 3)
	require.NoError(t, err)
	resultDir := filepath.Join(t.TempDir(), "out")

	cfg, err := config.ByName("tring-4x3-mapreduce")
	require.NoError(t, err)
	cfg.Workload.JobDir = jobDir
	cfg.Workload.ResultDir = resultDir
	cfg.Network.Plugins = append(cfg.Network.Plugins, "delivery-log")
	require.NoError(t, cfg.Validate())

	c, err := NewController(cfg, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background()))

	jobs := c.Session().Jobs
	require.Len(t, jobs, 2)
	last := c.LastRun()
	require.Len(t, last.Jobs, 2)
	for i, j := range jobs {
		want := slices.Clone(j.Input)
		slices.Sort(want)
		assert.Equal(t, want, j.Result)
		assert.Equal(t, mapreduce.Digest(want), last.Jobs[i].Digest)

		raw, err := os.ReadFile(filepath.Join(resultDir, j.Name))
		require.NoError(t, err)
		assert.Equal(t, mapreduce.Format(want), string(raw))
	}
}

func TestControllerStopsAtCycleLimit(t *testing.T) {
	cfg := traceConfig(t, "0 0 5 3\n500 1 2 1\n")
	cfg.Network.TotalCycles = 20

	c, err := NewController(cfg, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, 20, c.Frame().Cycle)
	assert.False(t, c.LastRun().Finished)
}

func TestControllerPauseStepReset(t *testing.T) {
	cfg := traceConfig(t, "0 0 5 3\n60 6 2 2\n")
	v := newScripted()
	v.cmds <- visual.ControlCommand{Type: visual.CommandPause}

	c, err := NewController(cfg, logging.Discard(),
		WithVisualizers("script", map[string]visualization.Factory{
			"script": func() (visual.Visualizer, error) { return v, nil },
		}),
		WithKeepAlive(true),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	assert.Eventually(t, c.Paused, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, c.Frame().Cycle)

	v.cmds <- visual.ControlCommand{Type: visual.CommandStep, Steps: 3}
	assert.Eventually(t, func() bool { return c.Frame().Cycle == 3 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 3, c.Frame().Cycle, "a paused run only advances by steps")
	assert.GreaterOrEqual(t, v.frameCount(), 3)

	v.cmds <- visual.ControlCommand{Type: visual.CommandReset}
	assert.Eventually(t, func() bool { return c.Frame().Finished }, 5*time.Second, 5*time.Millisecond)
	assert.False(t, c.Paused())
	assert.Equal(t, 2, c.Stats().Delivered)
	assert.Eventually(t, func() bool { return c.LastRun() != nil }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("controller did not stop")
	}
}
