package server

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sworrl/SLAP/internal/hockey"
	"github.com/sworrl/SLAP/internal/state"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleGetState returns the full system snapshot plus the derived power
// play status.
func (s *Server) handleGetState(c *gin.Context) {
	snap := s.store.Snapshot()
	pp := hockey.PowerPlayStatus(snap.Game.HomePenalties, snap.Game.AwayPenalties)

	c.JSON(http.StatusOK, gin.H{
		"game":              snap.Game,
		"period_display":    snap.Game.PeriodDisplay(),
		"power_play":        pp,
		"bug_visible":       snap.BugVisible,
		"replay_active":     snap.ReplayActive,
		"serial_connected":  snap.SerialConnected,
		"caspar_connected":  snap.CasparConnected,
		"simulator_running": snap.SimulatorRunning,
	})
}

// stateUpdateRequest is a partial manual override of game state.
type stateUpdateRequest struct {
	HomeScore     *int    `json:"home"`
	AwayScore     *int    `json:"away"`
	Period        *string `json:"period"`
	Clock         *string `json:"clock"`
	HomePenalties []int   `json:"home_penalties"`
	AwayPenalties []int   `json:"away_penalties"`
}

func (s *Server) handleUpdateState(c *gin.Context) {
	var req stateUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.store.ApplyUpdate(state.Update{
		HomeScore:     req.HomeScore,
		AwayScore:     req.AwayScore,
		Period:        req.Period,
		Clock:         req.Clock,
		HomePenalties: req.HomePenalties,
		AwayPenalties: req.AwayPenalties,
	})

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

type goalRequest struct {
	Team string `json:"team" binding:"required"`
}

// handleGoal applies a manual goal: bumps the score, marks last_goal,
// fires the Caspar animation and logs the event.
func (s *Server) handleGoal(c *gin.Context) {
	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Team != "HOME" && req.Team != "AWAY" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "team must be HOME or AWAY"})
		return
	}

	game := s.store.Game()
	update := state.Update{LastGoal: &req.Team}
	if req.Team == "HOME" {
		score := game.HomeScore + 1
		update.HomeScore = &score
	} else {
		score := game.AwayScore + 1
		update.AwayScore = &score
	}
	s.store.ApplyUpdate(update)

	if s.caspar != nil && s.caspar.Connected() {
		if err := s.caspar.TriggerGoal(req.Team); err != nil {
			log.Printf("[Web] Caspar goal trigger failed: %v", err)
		}
	}
	if s.gamelog != nil {
		if err := s.gamelog.LogGoal(s.gameID, req.Team, game.Period, game.Clock); err != nil {
			log.Printf("[Web] Failed to log manual goal: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "goal", "team": req.Team})
}

type penaltyRequest struct {
	Team    string `json:"team" binding:"required"`
	Seconds int    `json:"seconds"`
}

func (s *Server) handlePenalty(c *gin.Context) {
	var req penaltyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Team != "HOME" && req.Team != "AWAY" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "team must be HOME or AWAY"})
		return
	}
	if req.Seconds <= 0 {
		req.Seconds = 120
	}

	game := s.store.Game()
	update := state.Update{}
	if req.Team == "HOME" {
		if len(game.HomePenalties) >= 2 {
			c.JSON(http.StatusConflict, gin.H{"error": "home penalty slots full"})
			return
		}
		update.HomePenalties = append(game.HomePenalties, req.Seconds)
	} else {
		if len(game.AwayPenalties) >= 2 {
			c.JSON(http.StatusConflict, gin.H{"error": "away penalty slots full"})
			return
		}
		update.AwayPenalties = append(game.AwayPenalties, req.Seconds)
	}
	s.store.ApplyUpdate(update)

	if s.gamelog != nil {
		if err := s.gamelog.LogPenalty(s.gameID, req.Team, game.Period, game.Clock, req.Seconds); err != nil {
			log.Printf("[Web] Failed to log penalty: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "penalty", "team": req.Team, "seconds": req.Seconds})
}

func (s *Server) handleSimStart(c *gin.Context) {
	if s.sim == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "simulator not enabled"})
		return
	}
	if err := s.sim.Open(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.store.SetSimulatorRunning(true)
	c.JSON(http.StatusOK, gin.H{"status": "started"})
}

func (s *Server) handleSimStop(c *gin.Context) {
	if s.sim == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "simulator not enabled"})
		return
	}
	s.sim.Close()
	s.store.SetSimulatorRunning(false)
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

// handleSimReset restarts the synthetic game and clears event tracking,
// so the next simulated goal diffs against a fresh baseline.
func (s *Server) handleSimReset(c *gin.Context) {
	if s.sim == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "simulator not enabled"})
		return
	}
	s.sim.Game().Reset()
	s.detector.Reset()
	s.store.ResetGame()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

func (s *Server) handleBugShow(c *gin.Context) {
	s.store.SetBugVisible(true)
	if s.caspar != nil && s.caspar.Connected() {
		if err := s.caspar.ShowScorebug(); err != nil {
			log.Printf("[Web] Caspar show failed: %v", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "visible"})
}

func (s *Server) handleBugHide(c *gin.Context) {
	s.store.SetBugVisible(false)
	if s.caspar != nil && s.caspar.Connected() {
		if err := s.caspar.HideScorebug(); err != nil {
			log.Printf("[Web] Caspar hide failed: %v", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "hidden"})
}

func (s *Server) handleGetMode(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"mode":            s.mode,
		"available_modes": []string{"preview", "live"},
	})
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// handleSetMode switches between preview (simulator driving the
// pipeline) and live (simulator stopped, CasparCG connected).
func (s *Server) handleSetMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mode := strings.ToLower(req.Mode)
	if mode != "preview" && mode != "live" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mode, use 'preview' or 'live'"})
		return
	}

	previous := s.mode
	switch mode {
	case "preview":
		if s.sim != nil {
			s.sim.Game().Reset()
			s.detector.Reset()
			s.store.ResetGame()
			if err := s.sim.Open(); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			s.store.SetSimulatorRunning(true)
		}
		log.Println("[Web] Switched to PREVIEW mode")

	case "live":
		if s.sim != nil {
			s.sim.Close()
			s.store.SetSimulatorRunning(false)
		}
		if s.caspar != nil {
			if err := s.caspar.Connect(); err != nil {
				s.store.SetCasparConnected(false)
				log.Printf("[Web] Could not connect to CasparCG: %v", err)
			} else {
				s.store.SetCasparConnected(true)
			}
		}
		log.Println("[Web] Switched to LIVE mode")
	}
	s.mode = mode

	s.hub.Broadcast("mode_change", gin.H{"mode": mode, "previous": previous})
	c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": mode})
}

type replayRequest struct {
	File string `json:"file" binding:"required"`
}

// handleReplayStart plays a clip on the video layer above the scorebug
// and flags replay mode for the overlay.
func (s *Server) handleReplayStart(c *gin.Context) {
	var req replayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if s.caspar == nil || !s.caspar.Connected() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "not connected to CasparCG"})
		return
	}

	if err := s.caspar.PlayVideo(req.File); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.store.SetReplayActive(true)
	c.JSON(http.StatusOK, gin.H{"status": "playing", "file": req.File})
}

func (s *Server) handleReplayDone(c *gin.Context) {
	s.store.SetReplayActive(false)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCasparConnect(c *gin.Context) {
	if s.caspar == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "CasparCG client not configured"})
		return
	}
	if err := s.caspar.Connect(); err != nil {
		s.store.SetCasparConnected(false)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "connected": false, "error": err.Error()})
		return
	}
	s.store.SetCasparConnected(true)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "connected": true})
}

func (s *Server) handleCasparDisconnect(c *gin.Context) {
	if s.caspar != nil {
		s.caspar.Disconnect()
	}
	s.store.SetCasparConnected(false)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "connected": false})
}

func (s *Server) handleOBSScorebugShow(c *gin.Context) {
	s.setOBSScorebugVisible(c, true)
}

func (s *Server) handleOBSScorebugHide(c *gin.Context) {
	s.setOBSScorebugVisible(c, false)
}

func (s *Server) setOBSScorebugVisible(c *gin.Context, visible bool) {
	if s.obs == nil || !s.obs.Connected() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "not connected to OBS"})
		return
	}
	if err := s.obs.SetSourceVisible(s.cfg.OBSSource, visible); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "visible": visible})
}

func (s *Server) handleOBSScorebugRefresh(c *gin.Context) {
	if s.obs == nil || !s.obs.Connected() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "not connected to OBS"})
		return
	}
	if err := s.obs.RefreshBrowserSource(s.cfg.OBSSource); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleRecentGames(c *gin.Context) {
	if s.gamelog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence not enabled"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	games, err := s.gamelog.RecentGames(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, games)
}

func (s *Server) handleGameEvents(c *gin.Context) {
	if s.gamelog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence not enabled"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}

	events, err := s.gamelog.Events(uint(id), c.Query("type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}
