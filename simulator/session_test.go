package simulator

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Readm/tring_sim/config"
	"github.com/Readm/tring_sim/hooks"
	"github.com/Readm/tring_sim/logging"
	"github.com/Readm/tring_sim/mapreduce"
)

func TestAssembleLoadsStatsAlways(t *testing.T) {
	cfg := config.Default()
	s, err := Assemble(cfg, logging.Discard())
	require.NoError(t, err)
	assert.Nil(t, s.Jobs)
	names := s.Registry.Broker().ListPlugins(hooks.PluginCategoryInstrumentation)
	require.Len(t, names, 1)
	assert.Equal(t, "stats", names[0].Name)
	assert.Equal(t, "tring(4,3)", s.Topology.Name())
	assert.Equal(t, 0, s.Record(nil).Stats.Delivered)
}

func TestAssembleErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Network.Plugins = []string{"missing"}
	_, err := Assemble(cfg, logging.Discard())
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Workload = config.WorkloadConfig{Type: config.WorkloadTrace, TraceFile: filepath.Join(t.TempDir(), "none.trace")}
	_, err = Assemble(cfg, logging.Discard())
	assert.Error(t, err)

	jobDir := t.TempDir()
	_, err = mapreduce.GenerateJobs(jobDir, 1, 5, 5, 1)
	require.NoError(t, err)
	cfg, err = config.ByName("mesh-5x5-dor")
	require.NoError(t, err)
	leaf := 0
	cfg.Topology.Master = &leaf
	cfg.Workload = config.WorkloadConfig{Type: config.WorkloadMapReduce, JobDir: jobDir}
	_, err = Assemble(cfg, logging.Discard())
	assert.ErrorIs(t, err, mapreduce.ErrLeafMaster)
}
