package router

import "container/list"

// Graph is a directed graph with weighted edges. Keys are anything
// comparable: node ids for topology hop counts, channel descriptors for
// channel dependency analysis.
type Graph[K comparable] struct {
	adj   map[K][]edge[K]
	order []K
}

type edge[K comparable] struct {
	to      K
	latency int
}

func NewGraph[K comparable]() *Graph[K] {
	return &Graph[K]{adj: make(map[K][]edge[K])}
}

func (g *Graph[K]) touch(v K) {
	if _, ok := g.adj[v]; !ok {
		g.adj[v] = nil
		g.order = append(g.order, v)
	}
}

// AddEdge adds from -> to. Duplicate edges are ignored.
func (g *Graph[K]) AddEdge(from, to K, latency int) {
	if latency <= 0 {
		latency = 1
	}
	g.touch(from)
	g.touch(to)
	for _, e := range g.adj[from] {
		if e.to == to {
			return
		}
	}
	g.adj[from] = append(g.adj[from], edge[K]{to: to, latency: latency})
}

// Len returns the number of vertices.
func (g *Graph[K]) Len() int {
	return len(g.order)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph[K]) EdgeCount() int {
	total := 0
	for _, edges := range g.adj {
		total += len(edges)
	}
	return total
}

// NextHop returns the first hop on a fewest-edges path and the summed
// latency of that path.
func (g *Graph[K]) NextHop(source, target K) (K, int, bool) {
	if source == target {
		return target, 0, true
	}
	type state struct {
		node    K
		latency int
	}
	queue := list.New()
	queue.PushBack(state{node: source, latency: 0})
	visited := map[K]bool{source: true}
	parent := map[K]K{}
	latencies := map[K]int{source: 0}

	for queue.Len() > 0 {
		elem := queue.Front()
		queue.Remove(elem)
		cur := elem.Value.(state)
		if cur.node == target {
			break
		}
		for _, e := range g.adj[cur.node] {
			if visited[e.to] {
				continue
			}
			visited[e.to] = true
			parent[e.to] = cur.node
			latencies[e.to] = cur.latency + e.latency
			queue.PushBack(state{node: e.to, latency: cur.latency + e.latency})
		}
	}

	var zero K
	if !visited[target] {
		return zero, 0, false
	}
	next := target
	for {
		p, ok := parent[next]
		if !ok {
			return zero, 0, false
		}
		if p == source {
			return next, latencies[target], true
		}
		next = p
	}
}

func (g *Graph[K]) ShortestPath(source, target K) ([]K, bool) {
	hop, _, ok := g.NextHop(source, target)
	if !ok {
		return nil, false
	}
	path := []K{source, hop}
	for hop != target {
		nextHop, _, ok := g.NextHop(hop, target)
		if !ok {
			return nil, false
		}
		path = append(path, nextHop)
		hop = nextHop
	}
	return path, true
}

// Distances returns the fewest-edges distance from source to every
// reachable vertex.
func (g *Graph[K]) Distances(source K) map[K]int {
	dist := map[K]int{source: 0}
	queue := list.New()
	queue.PushBack(source)
	for queue.Len() > 0 {
		elem := queue.Front()
		queue.Remove(elem)
		cur := elem.Value.(K)
		for _, e := range g.adj[cur] {
			if _, seen := dist[e.to]; seen {
				continue
			}
			dist[e.to] = dist[cur] + 1
			queue.PushBack(e.to)
		}
	}
	return dist
}

// FindCycle returns the vertices of one directed cycle, first vertex
// repeated at the end, or nil when the graph is acyclic. Vertices are
// explored in insertion order so the answer is stable.
func (g *Graph[K]) FindCycle() []K {
	const (
		white = iota
		grey
		black
	)
	colour := make(map[K]int, len(g.order))
	parent := make(map[K]K, len(g.order))

	type frame struct {
		node K
		next int
	}
	for _, root := range g.order {
		if colour[root] != white {
			continue
		}
		stack := []frame{{node: root}}
		colour[root] = grey
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			edges := g.adj[top.node]
			if top.next == len(edges) {
				colour[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}
			to := edges[top.next].to
			top.next++
			switch colour[to] {
			case white:
				colour[to] = grey
				parent[to] = top.node
				stack = append(stack, frame{node: to})
			case grey:
				cycle := []K{to}
				for v := top.node; v != to; v = parent[v] {
					cycle = append(cycle, v)
				}
				cycle = append(cycle, to)
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
		}
	}
	return nil
}

// HasCycle reports whether the graph contains a directed cycle.
func (g *Graph[K]) HasCycle() bool {
	return g.FindCycle() != nil
}
