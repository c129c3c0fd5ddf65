package web

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"

	"github.com/Readm/tring_sim/routing"
	"github.com/Readm/tring_sim/topology"
)

var errDetached = errors.New("no simulation attached")

type topologyResponse struct {
	Name  string              `json:"name"`
	Nodes []topology.NodeInfo `json:"nodes"`
}

func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	src := s.currentSource()
	if src == nil {
		s.responseJSON(w, r, http.StatusServiceUnavailable, errDetached)
		return
	}
	topo := src.Topology()
	s.responseJSON(w, r, http.StatusOK, topologyResponse{Name: topo.Name(), Nodes: topology.Describe(topo)})
}

type routeResponse struct {
	Routing string          `json:"routing"`
	Current topology.NodeID `json:"current"`
	Dest    topology.NodeID `json:"dest"`
	Port    topology.Port   `json:"port"`
	// VC is routing.NoVC when the function leaves the channel unchanged.
	VC   routing.VC    `json:"vc"`
	Path []routing.Hop `json:"path,omitempty"`
}

// handleRoute answers one routing decision, and traces the whole path from
// source when it is given.
func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	src := s.currentSource()
	if src == nil {
		s.responseJSON(w, r, http.StatusServiceUnavailable, errDetached)
		return
	}
	topo, fn := src.Topology(), src.Routing()
	query := r.URL.Query()

	node := func(name string, required bool) (topology.NodeID, error) {
		raw := query.Get(name)
		if raw == "" {
			if required {
				return topology.NoNode, errors.Errorf("missing %s", name)
			}
			return topology.NoNode, nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return topology.NoNode, errors.Wrapf(err, "parse %s", name)
		}
		if v < 0 || v >= topo.NodeCount() {
			return topology.NoNode, errors.Errorf("%s %d is outside %s", name, v, topo.Name())
		}
		return topology.NodeID(v), nil
	}
	current, err := node("current", true)
	if err != nil {
		s.responseJSON(w, r, http.StatusBadRequest, err)
		return
	}
	dest, err := node("dest", true)
	if err != nil {
		s.responseJSON(w, r, http.StatusBadRequest, err)
		return
	}
	source, err := node("source", false)
	if err != nil {
		s.responseJSON(w, r, http.StatusBadRequest, err)
		return
	}
	inputVC := routing.VC(0)
	if raw := query.Get("input_vc"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 || v >= fn.NumVCs() {
			s.responseJSON(w, r, http.StatusBadRequest, errors.Errorf("input_vc %q is not a channel of %s", raw, fn.Name()))
			return
		}
		inputVC = routing.VC(v)
	}
	routeFrom := source
	if !routeFrom.Valid() {
		routeFrom = current
	}

	port, ok := fn.OutputPort(current, inputVC, routeFrom, dest)
	if !ok {
		s.responseJSON(w, r, http.StatusUnprocessableEntity, errors.Errorf("%s has no port at node %d for %d", fn.Name(), current, dest))
		return
	}
	vc, ok := fn.OutputVC(current, inputVC, routeFrom, dest)
	if !ok {
		vc = routing.NoVC
	}
	resp := routeResponse{Routing: fn.Name(), Current: current, Dest: dest, Port: port, VC: vc}
	if source.Valid() {
		path, err := routing.Trace(fn, topo, source, dest)
		if err != nil {
			s.responseJSON(w, r, http.StatusUnprocessableEntity, err)
			return
		}
		resp.Path = path
	}
	s.responseJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	src := s.currentSource()
	if src == nil {
		s.responseJSON(w, r, http.StatusServiceUnavailable, errDetached)
		return
	}
	s.responseJSON(w, r, http.StatusOK, src.Stats())
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.mu.RLock()
	frame := s.latestFrame
	s.mu.RUnlock()
	if frame == nil {
		s.responseJSON(w, r, http.StatusNotFound, errors.New("no frame published yet"))
		return
	}
	s.responseJSON(w, r, http.StatusOK, frame)
}
