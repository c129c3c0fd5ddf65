package web

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"

	"github.com/Readm/tring_sim/store"
)

var errNoStore = errors.New("run store disabled")

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.runs == nil {
		s.responseJSON(w, r, http.StatusNotFound, errNoStore)
		return
	}
	query := r.URL.Query()
	filter := store.Filter{Config: query.Get("config"), Topology: query.Get("topology")}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			s.responseJSON(w, r, http.StatusBadRequest, errors.Errorf("invalid limit %q", raw))
			return
		}
		filter.Limit = limit
	}
	runs, err := s.runs.List(filter)
	if err != nil {
		s.responseJSON(w, r, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	s.responseJSON(w, r, http.StatusOK, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	if s.runs == nil {
		s.responseJSON(w, r, http.StatusNotFound, errNoStore)
		return
	}
	id, err := strconv.ParseUint(params.ByName("id"), 10, 64)
	if err != nil {
		s.responseJSON(w, r, http.StatusBadRequest, errors.Wrap(err, "parse run id"))
		return
	}
	run, err := s.runs.Get(id)
	if errors.Is(err, store.ErrNotFound) {
		s.responseJSON(w, r, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.responseJSON(w, r, http.StatusInternalServerError, err)
		return
	}
	s.responseJSON(w, r, http.StatusOK, run)
}
