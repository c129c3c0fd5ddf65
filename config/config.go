// Package config loads and validates simulation configurations.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Readm/tring_sim/routing"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Topology kinds.
const (
	TopologyTring = "tring"
	TopologyMesh  = "mesh"
)

// Routing algorithms.
const (
	RoutingDeterministic  = "deterministic"
	RoutingDateline       = "dateline"
	RoutingDimensionOrder = "dimension-order"
)

// Workload kinds.
const (
	WorkloadNone      = "none"
	WorkloadTrace     = "trace"
	WorkloadMapReduce = "mapreduce"
)

// Defaults applied to zero-valued fields.
const (
	DefaultK           = 4
	DefaultN           = 3
	DefaultBufferDepth = 4
	DefaultLinkLatency = 1
	DefaultTotalCycles = 100000
	DefaultStallCycles = 1000
	DefaultStorePath   = ".tring_sim/runs.db"
	DefaultLogLevel    = "info"
	DefaultWebAddr     = ":8080"
)

// Environment overrides applied by Load.
const (
	EnvK        = "TRING_K"
	EnvN        = "TRING_N"
	EnvTopology = "TRING_TOPOLOGY"
	EnvRouting  = "TRING_ROUTING"
	EnvCycles   = "TRING_CYCLES"
)

// Config is one simulation setup.
type Config struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Topology    TopologyConfig `yaml:"topology"`
	Routing     RoutingConfig  `yaml:"routing"`
	Network     NetworkConfig  `yaml:"network"`
	Workload    WorkloadConfig `yaml:"workload"`
	Store       StoreConfig    `yaml:"store"`
	Log         LogConfig      `yaml:"log"`
	Web         WebConfig      `yaml:"web"`
}

type TopologyConfig struct {
	Type string `yaml:"type"`
	K    int    `yaml:"k"`
	N    int    `yaml:"n"`
	// Master is the map/reduce root. Unset means node 0 on a Tring and the
	// grid centre on a Mesh.
	Master *int `yaml:"master,omitempty"`
}

type RoutingConfig struct {
	Algorithm string `yaml:"algorithm"`
	// Dateline holds the ring positions of the disabled edge, [0, 1] when
	// empty.
	Dateline     []int `yaml:"dateline,omitempty"`
	ShortestPath bool  `yaml:"shortest_path,omitempty"`
}

type NetworkConfig struct {
	BufferDepth int      `yaml:"buffer_depth"`
	LinkLatency int      `yaml:"link_latency"`
	TotalCycles int      `yaml:"total_cycles"`
	StallCycles int      `yaml:"stall_cycles"`
	Plugins     []string `yaml:"plugins,omitempty"`
}

type WorkloadConfig struct {
	Type      string `yaml:"type"`
	TraceFile string `yaml:"trace_file,omitempty"`
	JobDir    string `yaml:"job_dir,omitempty"`
	ResultDir string `yaml:"result_dir,omitempty"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json,omitempty"`
}

type WebConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a Tring 4x3 with dateline routing and no workload.
func Default() *Config {
	cfg := &Config{Name: "default"}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads a YAML file, fills defaults, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse is Load without the file.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return Finish(&cfg)
}

// Finish fills defaults, applies the environment and validates cfg in place.
func Finish(cfg *Config) (*Config, error) {
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Topology.Type == "" {
		c.Topology.Type = TopologyTring
	}
	if c.Topology.K == 0 {
		c.Topology.K = DefaultK
	}
	if c.Topology.N == 0 {
		if c.Topology.Type == TopologyMesh {
			c.Topology.N = 2
		} else {
			c.Topology.N = DefaultN
		}
	}
	if c.Routing.Algorithm == "" {
		if c.Topology.Type == TopologyMesh {
			c.Routing.Algorithm = RoutingDimensionOrder
		} else {
			c.Routing.Algorithm = RoutingDateline
		}
	}
	if len(c.Routing.Dateline) == 0 && c.Topology.Type == TopologyTring {
		c.Routing.Dateline = []int{0, 1}
	}
	if c.Network.BufferDepth == 0 {
		c.Network.BufferDepth = DefaultBufferDepth
	}
	if c.Network.LinkLatency == 0 {
		c.Network.LinkLatency = DefaultLinkLatency
	}
	if c.Network.TotalCycles == 0 {
		c.Network.TotalCycles = DefaultTotalCycles
	}
	if c.Network.StallCycles == 0 {
		c.Network.StallCycles = DefaultStallCycles
	}
	if c.Workload.Type == "" {
		c.Workload.Type = WorkloadNone
	}
	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Web.Addr == "" {
		c.Web.Addr = DefaultWebAddr
	}
}

// ApplyEnv overrides fields from TRING_* variables.
func (c *Config) ApplyEnv() error {
	ints := []struct {
		name string
		dst  *int
	}{
		{EnvK, &c.Topology.K},
		{EnvN, &c.Topology.N},
		{EnvCycles, &c.Network.TotalCycles},
	}
	for _, v := range ints {
		raw, ok := os.LookupEnv(v.name)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return errors.Wrapf(ErrInvalid, "%s=%q is not an integer", v.name, raw)
		}
		*v.dst = n
	}
	if raw, ok := os.LookupEnv(EnvTopology); ok && raw != "" {
		c.Topology.Type = strings.ToLower(strings.TrimSpace(raw))
	}
	if raw, ok := os.LookupEnv(EnvRouting); ok && raw != "" {
		c.Routing.Algorithm = strings.ToLower(strings.TrimSpace(raw))
	}
	return nil
}

// Validate reports the first structural problem, wrapped in ErrInvalid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.Wrap(ErrInvalid, "config is nil")
	}
	t := c.Topology
	if t.K <= 0 || t.N <= 0 {
		return errors.Wrapf(ErrInvalid, "topology k and n must be positive, got k=%d n=%d", t.K, t.N)
	}
	switch t.Type {
	case TopologyTring:
		if t.K < 2 {
			return errors.Wrapf(ErrInvalid, "tring needs k >= 2, got %d", t.K)
		}
		if c.Routing.Algorithm != RoutingDeterministic && c.Routing.Algorithm != RoutingDateline {
			return errors.Wrapf(ErrInvalid, "routing %q does not apply to a tring", c.Routing.Algorithm)
		}
		if len(c.Routing.Dateline) != 2 {
			return errors.Wrapf(ErrInvalid, "dateline needs two ring positions, got %v", c.Routing.Dateline)
		}
		for _, p := range c.Routing.Dateline {
			if p < 0 || p >= t.K {
				return errors.Wrapf(ErrInvalid, "dateline position %d outside [0,%d)", p, t.K)
			}
		}
		if !routing.IsRingEdge(t.K, c.Routing.Dateline[0], c.Routing.Dateline[1]) {
			return errors.Wrapf(ErrInvalid, "dateline %v is not an edge of a %d-node ring", c.Routing.Dateline, t.K)
		}
		if t.Master != nil && (*t.Master < 0 || *t.Master >= t.K) {
			return errors.Wrapf(ErrInvalid, "tring master %d must be in the root ring [0,%d)", *t.Master, t.K)
		}
	case TopologyMesh:
		if c.Routing.Algorithm != RoutingDimensionOrder {
			return errors.Wrapf(ErrInvalid, "routing %q does not apply to a mesh", c.Routing.Algorithm)
		}
		if c.Workload.Type == WorkloadMapReduce && t.N != 2 {
			return errors.Wrapf(ErrInvalid, "map/reduce on a mesh needs n = 2, got %d", t.N)
		}
		if t.Master != nil && (*t.Master < 0 || *t.Master >= t.K*t.K) {
			return errors.Wrapf(ErrInvalid, "mesh master %d outside the %dx%d grid", *t.Master, t.K, t.K)
		}
	default:
		return errors.Wrapf(ErrInvalid, "unknown topology type %q", t.Type)
	}

	n := c.Network
	if n.BufferDepth <= 0 || n.LinkLatency <= 0 || n.TotalCycles <= 0 || n.StallCycles <= 0 {
		return errors.Wrapf(ErrInvalid, "network depth, latency and cycle limits must be positive, got %d/%d/%d/%d",
			n.BufferDepth, n.LinkLatency, n.TotalCycles, n.StallCycles)
	}

	switch c.Workload.Type {
	case WorkloadNone:
	case WorkloadTrace:
		if c.Workload.TraceFile == "" {
			return errors.Wrap(ErrInvalid, "trace workload needs trace_file")
		}
	case WorkloadMapReduce:
		if c.Workload.JobDir == "" {
			return errors.Wrap(ErrInvalid, "mapreduce workload needs job_dir")
		}
	default:
		return errors.Wrapf(ErrInvalid, "unknown workload type %q", c.Workload.Type)
	}
	return nil
}

// MasterNode resolves the map/reduce master.
func (c *Config) MasterNode() int {
	if c.Topology.Master != nil {
		return *c.Topology.Master
	}
	if c.Topology.Type == TopologyMesh {
		k := c.Topology.K
		return (k/2)*k + k/2
	}
	return 0
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	if c.Topology.Master != nil {
		m := *c.Topology.Master
		out.Topology.Master = &m
	}
	out.Routing.Dateline = append([]int(nil), c.Routing.Dateline...)
	out.Network.Plugins = append([]string(nil), c.Network.Plugins...)
	return &out
}

// YAML renders the config.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	return out, errors.Wrap(err, "encode config")
}
