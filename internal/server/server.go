// Package server exposes the HTTP control API and the WebSocket state
// feed consumed by the dashboard and overlay pages.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sworrl/SLAP/internal/config"
	"github.com/sworrl/SLAP/internal/db"
	"github.com/sworrl/SLAP/internal/hockey"
	"github.com/sworrl/SLAP/internal/output"
	"github.com/sworrl/SLAP/internal/simulator"
	"github.com/sworrl/SLAP/internal/state"
)

// Server is the web front of the service. The simulator port, Caspar
// client and game log are optional; endpoints depending on an absent
// collaborator answer with an explanatory error instead of failing.
type Server struct {
	cfg      *config.Config
	store    *state.Store
	detector *hockey.Detector
	sim      *simulator.Port
	caspar   output.Caspar
	obs      output.OBS
	gamelog  *db.GameLog
	gameID   uint
	mode     string // "preview" or "live"

	hub     *WSHub
	engine  *gin.Engine
	httpSrv *http.Server
	stopHub context.CancelFunc
}

// New builds the server and registers all routes.
func New(cfg *config.Config, store *state.Store, detector *hockey.Detector) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:      cfg,
		store:    store,
		detector: detector,
		mode:     "live",
		hub:      NewWSHub(store),
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.setupRoutes()
	return s
}

// SetSimulator attaches the simulated transport for the control endpoints.
func (s *Server) SetSimulator(sim *simulator.Port) { s.sim = sim }

// SetCaspar attaches the CasparCG client.
func (s *Server) SetCaspar(c output.Caspar) { s.caspar = c }

// SetOBS attaches the OBS client for the scorebug overlay endpoints.
func (s *Server) SetOBS(o output.OBS) { s.obs = o }

// SetMode sets the initial operating mode ("preview" or "live").
func (s *Server) SetMode(mode string) { s.mode = mode }

// SetGameLog attaches persistence for the games endpoints.
func (s *Server) SetGameLog(l *db.GameLog, gameID uint) {
	s.gamelog = l
	s.gameID = gameID
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/ws", s.hub.handleWS)

	api := s.engine.Group("/api")
	{
		api.GET("/state", s.handleGetState)
		api.POST("/state", s.handleUpdateState)
		api.POST("/goal", s.handleGoal)
		api.POST("/penalty", s.handlePenalty)

		api.POST("/simulator/start", s.handleSimStart)
		api.POST("/simulator/stop", s.handleSimStop)
		api.POST("/simulator/reset", s.handleSimReset)

		api.POST("/bug/show", s.handleBugShow)
		api.POST("/bug/hide", s.handleBugHide)

		api.GET("/mode", s.handleGetMode)
		api.POST("/mode", s.handleSetMode)

		api.POST("/replay", s.handleReplayStart)
		api.POST("/replay/done", s.handleReplayDone)

		api.POST("/caspar/connect", s.handleCasparConnect)
		api.POST("/caspar/disconnect", s.handleCasparDisconnect)

		api.POST("/obs/scorebug/show", s.handleOBSScorebugShow)
		api.POST("/obs/scorebug/hide", s.handleOBSScorebugHide)
		api.POST("/obs/scorebug/refresh", s.handleOBSScorebugRefresh)

		api.GET("/games", s.handleRecentGames)
		api.GET("/games/:id/events", s.handleGameEvents)
	}
}

// Run starts the hub and serves HTTP until Shutdown.
func (s *Server) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopHub = cancel
	go s.hub.Run(ctx)

	addr := fmt.Sprintf(":%d", s.cfg.WebPort)
	s.httpSrv = &http.Server{Addr: addr, Handler: s.engine}

	log.Printf("[Web] Listening on %s", addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the hub and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) {
	if s.stopHub != nil {
		s.stopHub()
	}
	if s.httpSrv != nil {
		s.httpSrv.Shutdown(ctx)
	}
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
