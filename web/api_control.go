package web

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"

	"github.com/Readm/tring_sim/visual"
)

type controlRequest struct {
	Type  string `json:"type"`
	Steps int    `json:"steps,omitempty"`
}

func (req controlRequest) command() (visual.ControlCommand, error) {
	typ, ok := visual.ParseCommand(req.Type)
	if !ok {
		return visual.ControlCommand{}, errors.Errorf("unknown command %q", req.Type)
	}
	if req.Steps < 0 {
		return visual.ControlCommand{}, errors.Errorf("negative step count %d", req.Steps)
	}
	return visual.ControlCommand{Type: typ, Steps: req.Steps}, nil
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.responseJSON(w, r, http.StatusBadRequest, errors.Wrap(err, "invalid request body"))
		return
	}
	cmd, err := req.command()
	if err != nil {
		s.responseJSON(w, r, http.StatusBadRequest, err)
		return
	}
	if !s.QueueCommand(cmd) {
		s.responseJSON(w, r, http.StatusServiceUnavailable, errors.New("command queue full"))
		return
	}
	s.log.WithField("command", cmd.Type).Debug("command queued")
	s.responseJSON(w, r, http.StatusAccepted, cmd)
}
