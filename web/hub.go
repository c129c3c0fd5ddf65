package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/Readm/tring_sim/visual"
)

// hub fans frames out to websocket clients and feeds their control
// messages into the server's command queue.
type hub struct {
	log       logrus.FieldLogger
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	register  chan *websocket.Conn
	remove    chan *websocket.Conn
	broadcast chan []byte
	stopped   chan struct{}
}

func newHub(logger logrus.FieldLogger) *hub {
	return &hub{
		log: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   make(map[*websocket.Conn]bool),
		register:  make(chan *websocket.Conn),
		remove:    make(chan *websocket.Conn),
		broadcast: make(chan []byte, 16),
		stopped:   make(chan struct{}),
	}
}

func (h *hub) run(ctx context.Context) {
	defer func() {
		close(h.stopped)
		for conn := range h.clients {
			conn.Close()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case conn := <-h.register:
			h.clients[conn] = true
		case conn := <-h.remove:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
		case msg := <-h.broadcast:
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					h.log.WithError(err).Warn("sending frame to websocket client failed")
					delete(h.clients, conn)
					conn.Close()
				}
			}
		}
	}
}

// broadcastFrame never blocks the simulation: frames are dropped while
// the queue is full.
func (h *hub) broadcastFrame(frame visual.Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.log.WithError(err).Error("marshal frame")
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.log.WithField("cycle", frame.Cycle).Debug("websocket queue full, frame dropped")
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := s.hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Error("websocket upgrade failed")
		return
	}
	select {
	case s.hub.register <- conn:
	case <-s.hub.stopped:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	s.mu.RLock()
	if s.latestFrame != nil {
		if data, err := json.Marshal(s.latestFrame); err == nil {
			_ = conn.WriteMessage(websocket.TextMessage, data)
		}
	}
	s.mu.RUnlock()

	go func() {
		defer func() {
			select {
			case s.hub.remove <- conn:
			case <-s.hub.stopped:
				conn.Close()
			}
		}()
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					s.log.WithError(err).Warn("websocket error")
				}
				return
			}
			var req controlRequest
			if err := json.Unmarshal(message, &req); err != nil {
				s.log.WithError(err).Debug("ignoring malformed websocket message")
				continue
			}
			cmd, err := req.command()
			if err != nil {
				s.log.WithError(err).Debug("ignoring websocket command")
				continue
			}
			if !s.QueueCommand(cmd) {
				s.log.WithField("command", cmd.Type).Warn("command queue full")
			}
		}
	}()
}
