// Package store persists simulation run records in a bolt database.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"

	"github.com/Readm/tring_sim/stats"
)

// ErrNotFound is returned when no run has the requested id.
var ErrNotFound = errors.New("run not found")

// JobDigest summarises one finished map/reduce job.
type JobDigest struct {
	Name   string `json:"name"`
	Values int    `json:"values"`
	Cycles int    `json:"cycles"`
	Digest string `json:"digest"`
}

// Run is one persisted simulation.
type Run struct {
	ID        uint64        `json:"id" boltholdKey:"ID"`
	Config    string        `json:"config" boltholdIndex:"Config"`
	Topology  string        `json:"topology" boltholdIndex:"Topology"`
	Routing   string        `json:"routing"`
	Workload  string        `json:"workload"`
	Cycles    int           `json:"cycles"`
	Finished  bool          `json:"finished"`
	Error     string        `json:"error,omitempty"`
	Stats     stats.Summary `json:"stats"`
	Jobs      []JobDigest   `json:"jobs,omitempty"`
	CreatedAt int64         `json:"createdAt" boltholdIndex:"CreatedAt"`
}

// Store opens the database per operation so a CLI and a server can share
// the file.
type Store struct {
	path string
}

// New returns a store backed by the bolt file at path, creating its
// directory.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "create store dir for %s", path)
	}
	return &Store{path: path}, nil
}

// Path returns the database file.
func (s *Store) Path() string { return s.path }

func (s *Store) open() (*bolthold.Store, error) {
	db, err := bolthold.Open(s.path, 0o644, &bolthold.Options{
		Encoder: json.Marshal,
		Decoder: json.Unmarshal,
		Options: &bbolt.Options{
			Timeout:      5 * time.Second,
			NoGrowSync:   bbolt.DefaultOptions.NoGrowSync,
			FreelistType: bbolt.DefaultOptions.FreelistType,
		},
	})
	return db, errors.Wrapf(err, "open store %s", s.path)
}

// Save inserts run under a fresh id and writes the id back to run.
func (s *Store) Save(run *Run) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().Unix()
	}
	if err := db.Insert(bolthold.NextSequence(), run); err != nil {
		return errors.Wrap(err, "insert run")
	}
	// write back id to db
	return errors.Wrap(db.Update(run.ID, run), "update run id")
}

// Get loads one run.
func (s *Store) Get(id uint64) (*Run, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()
	run := &Run{}
	if err := db.Get(id, run); err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "id %d", id)
		}
		return nil, errors.Wrapf(err, "get run %d", id)
	}
	return run, nil
}

// Filter narrows List. Empty fields match everything; Limit 0 is no limit.
type Filter struct {
	Config   string
	Topology string
	Limit    int
}

// List returns matching runs, newest first.
func (s *Store) List(f Filter) ([]*Run, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := &bolthold.Query{}
	switch {
	case f.Config != "" && f.Topology != "":
		q = bolthold.Where("Config").Eq(f.Config).And("Topology").Eq(f.Topology)
	case f.Config != "":
		q = bolthold.Where("Config").Eq(f.Config)
	case f.Topology != "":
		q = bolthold.Where("Topology").Eq(f.Topology)
	}
	q = q.SortBy("CreatedAt", "ID").Reverse()
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var runs []*Run
	if err := db.Find(&runs, q); err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	return runs, nil
}

// Delete removes one run.
func (s *Store) Delete(id uint64) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Delete(id, &Run{}); err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return errors.Wrapf(ErrNotFound, "id %d", id)
		}
		return errors.Wrapf(err, "delete run %d", id)
	}
	return nil
}
