package web

import (
	"github.com/julienschmidt/httprouter"
)

func (s *Server) routes() *httprouter.Router {
	router := httprouter.New()
	router.GET("/api/topology", s.middleware(s.handleTopology))
	router.GET("/api/route", s.middleware(s.handleRoute))
	router.GET("/api/stats", s.middleware(s.handleStats))
	router.GET("/api/frame", s.middleware(s.handleFrame))
	router.POST("/api/control", s.middleware(s.handleControl))
	router.GET("/api/runs", s.middleware(s.handleRuns))
	router.GET("/api/runs/:id", s.middleware(s.handleRun))
	router.GET("/ws", s.handleWebsocket)
	return router
}
