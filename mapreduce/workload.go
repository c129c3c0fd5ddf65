package mapreduce

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/Readm/tring_sim/core"
	"github.com/Readm/tring_sim/network"
	"github.com/Readm/tring_sim/topology"
)

// Job is one sort request read from a job file.
type Job struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Input  []int  `json:"-"`
	Result []int  `json:"-"`

	Done       bool `json:"done"`
	StartedAt  int  `json:"startedAt"`
	FinishedAt int  `json:"finishedAt"`
}

// jobState is the per-node bookkeeping of one job.
type jobState struct {
	job *Job
	// buffers holds the chunks a node keeps or has received back.
	buffers map[topology.NodeID][][]int
	// awaiting holds, per node, the children it still expects a reduce from.
	awaiting map[topology.NodeID][]topology.NodeID
}

// Workload drives every job through the network at once. It implements
// network.Workload.
type Workload struct {
	tree  Tree
	jobs  []*Job
	state map[int]*jobState
	log   logrus.FieldLogger
}

// NewWorkload prepares jobs over tree. Job IDs must be unique.
func NewWorkload(tree Tree, jobs []*Job, logger logrus.FieldLogger) (*Workload, error) {
	if tree == nil {
		return nil, errors.New("mapreduce: nil tree")
	}
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	w := &Workload{
		tree:  tree,
		jobs:  jobs,
		state: make(map[int]*jobState, len(jobs)),
		log:   logger.WithField("module", "mapreduce"),
	}
	for _, j := range jobs {
		if _, dup := w.state[j.ID]; dup {
			return nil, errors.Errorf("mapreduce: duplicate job id %d", j.ID)
		}
		w.state[j.ID] = &jobState{
			job:      j,
			buffers:  make(map[topology.NodeID][][]int),
			awaiting: make(map[topology.NodeID][]topology.NodeID),
		}
	}
	return w, nil
}

// Jobs returns the jobs in submission order.
func (w *Workload) Jobs() []*Job { return w.jobs }

// Start runs the master map of every job.
func (w *Workload) Start(net network.Sender) error {
	for _, j := range w.jobs {
		j.StartedAt = net.Cycle()
		if err := w.masterMap(w.state[j.ID], net); err != nil {
			return errors.Wrapf(err, "job %d (%s)", j.ID, j.Name)
		}
	}
	return nil
}

func (w *Workload) Tick(int, network.Sender) error { return nil }

// Done reports whether every job has its result.
func (w *Workload) Done() bool {
	for _, j := range w.jobs {
		if !j.Done {
			return false
		}
	}
	return true
}

// OnDeliver advances the job a map or reduce packet belongs to.
func (w *Workload) OnDeliver(pkt *core.Packet, net network.Sender) error {
	st, ok := w.state[pkt.Job]
	if !ok || pkt.Tag == core.TagNone {
		return nil
	}
	if st.job.Done {
		return errors.Errorf("job %d: %s after completion", pkt.Job, pkt)
	}
	switch pkt.Tag {
	case core.TagMap:
		return w.slaveMap(st, pkt.Dest, pkt.Data, net)
	case core.TagReduce:
		return w.collect(st, pkt.Dest, pkt.Src, pkt.Data, net)
	}
	return nil
}

func (w *Workload) masterMap(st *jobState, net network.Sender) error {
	master := w.tree.Master()
	recipients, local := w.tree.RootFanout()
	if len(recipients) == 0 {
		return errors.Wrapf(ErrLeafMaster, "master %d has no recipients", master)
	}
	parts := len(recipients)
	if local {
		parts++
	}
	chunks := Split(st.job.Input, parts)
	for i, chunk := range chunks {
		if i == len(recipients) {
			return w.slaveMap(st, master, chunk, net)
		}
		if err := w.send(st, master, recipients[i], chunk, core.TagMap, net); err != nil {
			return err
		}
		st.awaiting[master] = append(st.awaiting[master], recipients[i])
	}
	return w.complete(st, master, net)
}

// slaveMap splits a received chunk over node's children, keeping what
// cannot or need not travel, and reduces straight away when nothing was sent.
func (w *Workload) slaveMap(st *jobState, node topology.NodeID, data []int, net network.Sender) error {
	children, keepFirst := w.tree.Fanout(node)
	if len(children) == 0 || len(data) <= 1 {
		st.buffers[node] = append(st.buffers[node], Reduce([][]int{data}))
		return w.complete(st, node, net)
	}
	parts := len(children)
	if keepFirst {
		parts++
	}
	chunks := Split(data, parts)
	if keepFirst {
		st.buffers[node] = append(st.buffers[node], Reduce(chunks[:1]))
		chunks = chunks[1:]
	}
	for i, chunk := range chunks {
		if len(chunk) == 1 {
			st.buffers[node] = append(st.buffers[node], chunk)
			continue
		}
		if err := w.send(st, node, children[i], chunk, core.TagMap, net); err != nil {
			return err
		}
		st.awaiting[node] = append(st.awaiting[node], children[i])
	}
	return w.complete(st, node, net)
}

// collect buffers a child's reduced chunk.
func (w *Workload) collect(st *jobState, node, child topology.NodeID, data []int, net network.Sender) error {
	waiting := st.awaiting[node]
	i := slices.Index(waiting, child)
	if i < 0 {
		return errors.Errorf("job %d: node %d got an unexpected reduce from %d", st.job.ID, node, child)
	}
	st.awaiting[node] = slices.Delete(waiting, i, i+1)
	if len(data) > 0 {
		st.buffers[node] = append(st.buffers[node], data)
	}
	return w.complete(st, node, net)
}

// complete reduces node's buffer once no child is outstanding, sending the
// result up the tree or, at the master, finishing the job.
func (w *Workload) complete(st *jobState, node topology.NodeID, net network.Sender) error {
	if len(st.awaiting[node]) > 0 {
		return nil
	}
	merged := Merge(st.buffers[node])
	delete(st.buffers, node)
	delete(st.awaiting, node)

	if node == w.tree.Master() {
		st.job.Result = merged
		st.job.Done = true
		st.job.FinishedAt = net.Cycle()
		w.log.WithFields(logrus.Fields{
			"job":    st.job.ID,
			"name":   st.job.Name,
			"values": len(merged),
			"cycles": st.job.FinishedAt - st.job.StartedAt,
		}).Info("job finished")
		return nil
	}
	parent, ok := w.tree.Parent(node)
	if !ok {
		return errors.Errorf("job %d: node %d has no parent to reduce to", st.job.ID, node)
	}
	return w.send(st, node, parent, merged, core.TagReduce, net)
}

func (w *Workload) send(st *jobState, src, dest topology.NodeID, data []int, tag core.Tag, net network.Sender) error {
	_, err := net.Send(network.Message{Src: src, Dest: dest, Data: data, Job: st.job.ID, Tag: tag})
	return errors.Wrapf(err, "job %d: %s %d->%d", st.job.ID, tag, src, dest)
}
