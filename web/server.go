// Package web serves the simulation over HTTP: inspection endpoints, run
// control, stored runs and a websocket frame stream.
package web

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Readm/tring_sim/routing"
	"github.com/Readm/tring_sim/stats"
	"github.com/Readm/tring_sim/store"
	"github.com/Readm/tring_sim/topology"
	"github.com/Readm/tring_sim/visual"
)

// Source is the running simulation the server inspects.
type Source interface {
	Topology() topology.Topology
	Routing() routing.Function
	Stats() stats.Summary
}

// Server is the HTTP front end. It implements visual.Visualizer, so the
// simulator publishes frames to it and reads commands from it.
type Server struct {
	log    logrus.FieldLogger
	router *httprouter.Router
	hub    *hub

	mu          sync.RWMutex
	source      Source
	runs        *store.Store
	latestFrame *visual.Frame

	commands chan visual.ControlCommand
}

var _ visual.Visualizer = (*Server)(nil)

// NewServer builds the routes. runs may be nil, in which case the run
// endpoints answer 404.
func NewServer(runs *store.Store, logger logrus.FieldLogger) *Server {
	if logger == nil {
		discard := logrus.New()
		discard.Out = io.Discard
		logger = discard
	}
	s := &Server{
		log:      logger.WithField("module", "web"),
		runs:     runs,
		commands: make(chan visual.ControlCommand, 16),
	}
	s.hub = newHub(s.log)
	s.router = s.routes()
	return s
}

// Attach sets the simulation the inspection endpoints read from.
func (s *Server) Attach(src Source) {
	s.mu.Lock()
	s.source = src
	s.mu.Unlock()
}

func (s *Server) currentSource() Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", addr)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is done.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		ReadHeaderTimeout: 2 * time.Second,
		Handler:           s,
	}
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.run(hubCtx)

	errc := make(chan error, 1)
	go func() { errc <- server.Serve(listener) }()
	s.log.WithField("addr", listener.Addr().String()).Info("web server listening")

	select {
	case err := <-errc:
		return errors.Wrap(err, "http serve")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "http shutdown")
	}
	return nil
}

// IsHeadless implements visual.Visualizer.
func (s *Server) IsHeadless() bool { return false }

// PublishFrame stores the frame for /api/frame and pushes it to websocket
// clients.
func (s *Server) PublishFrame(frame visual.Frame) {
	s.mu.Lock()
	s.latestFrame = &frame
	s.mu.Unlock()
	s.hub.broadcastFrame(frame)
}

// NextCommand returns the next control command if available, non-blocking.
func (s *Server) NextCommand() (visual.ControlCommand, bool) {
	select {
	case cmd := <-s.commands:
		return cmd, true
	default:
		return visual.ControlCommand{Type: visual.CommandNone}, false
	}
}

// WaitCommand blocks until a command arrives or ctx is done.
func (s *Server) WaitCommand(ctx context.Context) (visual.ControlCommand, bool) {
	select {
	case cmd := <-s.commands:
		return cmd, true
	case <-ctx.Done():
		return visual.ControlCommand{Type: visual.CommandNone}, false
	}
}

// QueueCommand hands cmd to the simulator. It reports false when the queue
// is full.
func (s *Server) QueueCommand(cmd visual.ControlCommand) bool {
	select {
	case s.commands <- cmd:
		return true
	default:
		return false
	}
}

func (s *Server) middleware(handler httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		s.log.Debugf("%s %s", r.Method, r.RequestURI)
		handler(w, r, params)
	}
}

func (s *Server) responseJSON(w http.ResponseWriter, r *http.Request, code int, v ...any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	var data []byte
	if len(v) == 0 || v[0] == nil {
		data, _ = json.Marshal(struct{}{})
	} else if err, ok := v[0].(error); ok {
		if code >= http.StatusInternalServerError {
			s.log.Errorf("%v %v: %v", r.Method, r.RequestURI, err)
		}
		data, _ = json.Marshal(map[string]any{
			"error": err.Error(),
		})
	} else {
		data, _ = json.Marshal(v[0])
	}
	w.WriteHeader(code)
	_, _ = w.Write(data)
}
