package simulator

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/Readm/tring_sim/config"
	"github.com/Readm/tring_sim/hooks"
	"github.com/Readm/tring_sim/mapreduce"
	"github.com/Readm/tring_sim/network"
	"github.com/Readm/tring_sim/plugins/instrumentation"
	"github.com/Readm/tring_sim/router"
	"github.com/Readm/tring_sim/routing"
	"github.com/Readm/tring_sim/stats"
	"github.com/Readm/tring_sim/store"
	"github.com/Readm/tring_sim/topology"
	"github.com/Readm/tring_sim/traffic"
)

// Session is one assembled run: the network, its workload and the
// instrumentation feeding off its hooks.
type Session struct {
	Config    *config.Config
	Topology  topology.Topology
	Routing   routing.Function
	Table     *router.Table
	Network   *network.Network
	Collector *stats.Collector
	Registry  *hooks.Registry
	// Jobs is set for map/reduce workloads.
	Jobs []*mapreduce.Job
}

// Assemble builds the topology, routing function, plugins, network and
// workload that cfg describes. The stats plugin is always loaded. extra
// runs against the registry before the configured plugins load, so callers
// can register their own.
func Assemble(cfg *config.Config, logger logrus.FieldLogger, extra ...func(*hooks.Registry) error) (*Session, error) {
	topo, err := cfg.BuildTopology()
	if err != nil {
		return nil, err
	}
	fn, err := cfg.BuildRouting(topo)
	if err != nil {
		return nil, err
	}
	s := &Session{
		Config:   cfg,
		Topology: topo,
		Routing:  fn,
		Table:    router.NewTable(topo),
		Registry: hooks.NewRegistry(nil),
	}
	s.Collector = stats.NewCollector(s.Table)
	if err := instrumentation.Register(s.Registry, instrumentation.Options{Collector: s.Collector, Logger: logger}); err != nil {
		return nil, err
	}
	for _, register := range extra {
		if err := register(s.Registry); err != nil {
			return nil, err
		}
	}
	plugins := cfg.Network.Plugins
	if !slices.Contains(plugins, instrumentation.StatsPlugin) {
		plugins = append([]string{instrumentation.StatsPlugin}, plugins...)
	}
	if err := s.Registry.Load(plugins); err != nil {
		return nil, errors.Wrap(err, "load plugins")
	}

	s.Network, err = network.Build(topo, fn, cfg.NetworkConfig(), s.Registry.Broker(), logger)
	if err != nil {
		return nil, err
	}
	w, err := s.workload(logger)
	if err != nil {
		return nil, err
	}
	if err := s.Network.Attach(w); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) workload(logger logrus.FieldLogger) (network.Workload, error) {
	wc := s.Config.Workload
	switch wc.Type {
	case config.WorkloadTrace:
		events, err := traffic.Load(wc.TraceFile)
		if err != nil {
			return nil, err
		}
		return traffic.NewTrace(events), nil
	case config.WorkloadMapReduce:
		jobs, err := mapreduce.LoadJobs(wc.JobDir)
		if err != nil {
			return nil, err
		}
		tree, err := mapreduce.NewTree(s.Topology, topology.NodeID(s.Config.MasterNode()))
		if err != nil {
			return nil, err
		}
		w, err := mapreduce.NewWorkload(tree, jobs, logger)
		if err != nil {
			return nil, err
		}
		s.Jobs = jobs
		return w, nil
	}
	return nil, nil
}

// WriteResults stores finished job results in the configured result
// directory. It does nothing without map/reduce jobs or a directory.
func (s *Session) WriteResults() error {
	dir := s.Config.Workload.ResultDir
	if dir == "" || len(s.Jobs) == 0 {
		return nil
	}
	return mapreduce.WriteResults(dir, s.Jobs)
}

// Record summarises the session for the run store. runErr is the error the
// run ended with, if any.
func (s *Session) Record(runErr error) *store.Run {
	run := &store.Run{
		Config:   s.Config.Name,
		Topology: s.Topology.Name(),
		Routing:  s.Routing.Name(),
		Workload: s.Config.Workload.Type,
		Cycles:   s.Network.Cycle(),
		Finished: s.Network.Finished(),
		Stats:    s.Collector.Summary(),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	for _, j := range s.Jobs {
		if !j.Done {
			continue
		}
		run.Jobs = append(run.Jobs, store.JobDigest{
			Name:   j.Name,
			Values: len(j.Result),
			Cycles: j.FinishedAt - j.StartedAt,
			Digest: mapreduce.Digest(j.Result),
		})
	}
	return run
}
