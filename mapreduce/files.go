package mapreduce

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// JobFilePattern names generated job files.
const JobFilePattern = "input%d.mr"

// ReadJob reads one job file: a single line of comma-separated integers.
func ReadJob(path string) ([]int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read job %s", path)
	}
	line, _, _ := strings.Cut(string(raw), "\n")
	data, err := ParseChunk(line)
	return data, errors.Wrapf(err, "job %s", path)
}

// LoadJobs reads every regular, non-hidden file in dir as a job, in name
// order. Job IDs follow that order.
func LoadJobs(dir string) ([]*Job, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list jobs in %s", dir)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	jobs := make([]*Job, 0, len(names))
	for i, name := range names {
		data, err := ReadJob(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, &Job{ID: i, Name: name, Input: data})
	}
	if len(jobs) == 0 {
		return nil, errors.Errorf("no job files in %s", dir)
	}
	return jobs, nil
}

// WriteResults stores each finished job's result as dir/<job name>.
func WriteResults(dir string, jobs []*Job) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create result dir %s", dir)
	}
	for _, j := range jobs {
		if !j.Done {
			continue
		}
		path := filepath.Join(dir, j.Name)
		if err := os.WriteFile(path, []byte(Format(j.Result)), 0o644); err != nil {
			return errors.Wrapf(err, "write result %s", path)
		}
	}
	return nil
}

// Digest fingerprints a job result in its stored format.
func Digest(result []int) string {
	sum := sha256.Sum256([]byte(Format(result)))
	return hex.EncodeToString(sum[:])
}

// GenerateJobs writes files job files of count values each, drawn
// uniformly from [-bound, bound]. The same seed yields the same files.
func GenerateJobs(dir string, files, count, bound int, seed int64) ([]string, error) {
	if files < 1 || count < 1 || bound < 0 {
		return nil, errors.Errorf("generate jobs: need files >= 1, count >= 1, bound >= 0 (got %d, %d, %d)", files, count, bound)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create job dir %s", dir)
	}
	rng := rand.New(rand.NewSource(seed))
	paths := make([]string, 0, files)
	for f := 0; f < files; f++ {
		values := make([]string, count)
		for i := range values {
			values[i] = strconv.Itoa(rng.Intn(2*bound+1) - bound)
		}
		path := filepath.Join(dir, fmt.Sprintf(JobFilePattern, f))
		if err := os.WriteFile(path, []byte(strings.Join(values, ",")), 0o644); err != nil {
			return nil, errors.Wrapf(err, "write job %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
