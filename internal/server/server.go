package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nabilh59/smart-meter/internal/hub"
)

// Server exposes the HTTP surface: the websocket endpoint, the grid
// operator API, the debug snapshot and service metrics.
type Server struct {
	router *gin.Engine
	hub    *hub.Hub
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// New builds the router around a hub.
func New(h *hub.Hub, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		router: gin.New(),
		hub:    h,
	}
	s.router.Use(gin.Recovery())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(metricsMiddleware())

	s.router.GET("/healthz", s.healthCheck)
	s.router.GET("/ws", s.handleWebSocket)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api/grid")
	{
		api.GET("/status", s.gridStatus)
		api.POST("/down", s.gridDown)
		api.POST("/up", s.gridUp)
	}

	s.router.GET("/debug/readings", s.debugReadings)
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	s.hub.HandleConnection(conn)
}

func (s *Server) gridStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": s.hub.Grid().Status()})
}

// gridDown flips the grid DOWN and re-broadcasts. Repeated calls with
// the grid already down still broadcast; there is no deduplication.
func (s *Server) gridDown(c *gin.Context) {
	s.hub.SetDown()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) gridUp(c *gin.Context) {
	s.hub.SetUp()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
