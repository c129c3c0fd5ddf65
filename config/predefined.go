package config

import (
	"github.com/pkg/errors"
)

// Named is a predefined configuration.
type Named struct {
	Name        string
	Description string
	Config      *Config
}

func intPtr(v int) *int { return &v }

// Predefined returns the built-in configurations.
func Predefined() []Named {
	list := []Named{
		{
			Name:        "tring-4x3-dateline",
			Description: "Tring k=4 n=3 with dateline virtual channels",
			Config: &Config{
				Topology: TopologyConfig{Type: TopologyTring, K: 4, N: 3},
				Routing:  RoutingConfig{Algorithm: RoutingDateline, Dateline: []int{0, 1}},
				Network:  NetworkConfig{Plugins: []string{"stats"}},
			},
		},
		{
			Name:        "tring-4x3-deterministic",
			Description: "Tring k=4 n=3, single VC, ring edge (0,1) disabled",
			Config: &Config{
				Topology: TopologyConfig{Type: TopologyTring, K: 4, N: 3},
				Routing:  RoutingConfig{Algorithm: RoutingDeterministic, Dateline: []int{0, 1}},
				Network:  NetworkConfig{Plugins: []string{"stats"}},
			},
		},
		{
			Name:        "tring-3x4-dateline",
			Description: "Tring k=3 n=4 with dateline virtual channels",
			Config: &Config{
				Topology: TopologyConfig{Type: TopologyTring, K: 3, N: 4},
				Routing:  RoutingConfig{Algorithm: RoutingDateline, Dateline: []int{0, 1}},
				Network:  NetworkConfig{Plugins: []string{"stats"}},
			},
		},
		{
			Name:        "mesh-5x5-dor",
			Description: "5x5 mesh, dimension-order routing, master at the centre",
			Config: &Config{
				Topology: TopologyConfig{Type: TopologyMesh, K: 5, N: 2, Master: intPtr(12)},
				Routing:  RoutingConfig{Algorithm: RoutingDimensionOrder},
				Network:  NetworkConfig{Plugins: []string{"stats"}},
			},
		},
		{
			Name:        "tring-4x3-mapreduce",
			Description: "Sort the job files in jobs/ over a Tring k=4 n=3, master node 0",
			Config: &Config{
				Topology: TopologyConfig{Type: TopologyTring, K: 4, N: 3, Master: intPtr(0)},
				Routing:  RoutingConfig{Algorithm: RoutingDateline, Dateline: []int{0, 1}},
				Network:  NetworkConfig{Plugins: []string{"stats"}},
				Workload: WorkloadConfig{Type: WorkloadMapReduce, JobDir: "jobs", ResultDir: "results"},
			},
		},
	}
	for _, n := range list {
		n.Config.Name = n.Name
		n.Config.Description = n.Description
		n.Config.ApplyDefaults()
	}
	return list
}

// ByName returns a copy of the predefined config called name.
func ByName(name string) (*Config, error) {
	for _, n := range Predefined() {
		if n.Name == name {
			return n.Config.Clone(), nil
		}
	}
	return nil, errors.Errorf("no predefined config named %q", name)
}

// Names lists the predefined config names.
func Names() []string {
	list := Predefined()
	names := make([]string, len(list))
	for i, n := range list {
		names[i] = n.Name
	}
	return names
}
