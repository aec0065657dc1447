// SLAP - Scoreboard Live Automation Platform
//
// Ingests live data from an MP-70 scoreboard controller over serial (or
// from the built-in simulator), decodes it, detects game events and
// republishes state to the dashboard, broadcast graphics and optional
// NATS/Redis/Postgres consumers.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sworrl/SLAP/internal/config"
	"github.com/sworrl/SLAP/internal/db"
	"github.com/sworrl/SLAP/internal/hockey"
	"github.com/sworrl/SLAP/internal/output"
	"github.com/sworrl/SLAP/internal/protocol"
	"github.com/sworrl/SLAP/internal/publish"
	"github.com/sworrl/SLAP/internal/reader"
	"github.com/sworrl/SLAP/internal/server"
	"github.com/sworrl/SLAP/internal/simulator"
	"github.com/sworrl/SLAP/internal/state"
	"github.com/sworrl/SLAP/internal/transport"
)

func main() {
	log.Println("[SLAP] Starting Scoreboard Live Automation Platform...")

	cfg := config.Load()

	store := state.NewStore()
	parser := protocol.NewParser()
	detector := hockey.NewDetector()

	var sinks []reader.Sink

	// Optional NATS event bus.
	if cfg.NATSURL != "" {
		natsConn, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Printf("[SLAP] NATS unavailable, continuing without it: %v", err)
		} else {
			log.Println("[SLAP] Connected to NATS")
			defer natsConn.Close()
			sinks = append(sinks, publish.NewNATSPublisher(natsConn))
		}
	}

	// Optional Redis shadow state.
	if cfg.RedisURL != "" {
		redisClient, err := publish.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Printf("[SLAP] Invalid Redis URL, continuing without it: %v", err)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := redisClient.Ping(ctx).Err()
			cancel()
			if err != nil {
				log.Printf("[SLAP] Redis unavailable, continuing without it: %v", err)
				redisClient.Close()
			} else {
				log.Println("[SLAP] Connected to Redis")
				defer redisClient.Close()
				sinks = append(sinks, publish.NewRedisPublisher(redisClient))
			}
		}
	}

	// Optional game log persistence.
	var gamelog *db.GameLog
	var gameID uint
	if cfg.DatabaseURL != "" {
		gdb, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
		if err != nil {
			log.Printf("[SLAP] Database unavailable, continuing without it: %v", err)
		} else {
			gamelog = db.NewGameLog(gdb)
			if err := gamelog.AutoMigrate(); err != nil {
				log.Fatalf("[SLAP] Failed to migrate database: %v", err)
			}
			game, err := gamelog.CreateGame(cfg.HomeTeam, cfg.AwayTeam, cfg.Venue)
			if err != nil {
				log.Fatalf("[SLAP] Failed to create game record: %v", err)
			}
			gameID = game.ID
			log.Printf("[SLAP] Connected to database, game #%d", gameID)
			sinks = append(sinks, db.NewLogSink(gamelog, gameID))
		}
	}

	// CasparCG broadcast graphics.
	var caspar output.Caspar
	if cfg.CasparEnabled {
		client := output.NewAMCPClient(cfg.CasparHost, cfg.CasparPort, cfg.CasparChannel, cfg.CasparLayer)
		if err := client.Connect(); err != nil {
			log.Printf("[SLAP] CasparCG unavailable: %v", err)
		} else {
			store.SetCasparConnected(true)
		}
		caspar = client
	} else {
		caspar = output.NewMockCaspar()
		caspar.Connect()
		log.Println("[SLAP] CasparCG disabled, using mock client")
	}
	defer caspar.Disconnect()
	sinks = append(sinks, output.NewCasparSink(caspar))

	// Optional OBS control.
	var obs *output.OBSClient
	if cfg.OBSEnabled {
		obs = output.NewOBSClient(cfg.OBSHost, cfg.OBSPort, cfg.OBSPassword)
		if err := obs.Connect(); err != nil {
			log.Printf("[SLAP] OBS unavailable: %v", err)
		}
		defer obs.Disconnect()
	}

	// Transport: real serial, or the simulator; serial open failure
	// falls back to simulation so the pipeline keeps running.
	simCfg := simulator.Config{
		PeriodSeconds:   cfg.SimPeriodSeconds,
		GoalIntervalMin: cfg.SimGoalMin,
		GoalIntervalMax: cfg.SimGoalMax,
		PenaltyChance:   cfg.SimPenaltyChance,
		SpeedMultiplier: cfg.SimSpeed,
	}

	var port transport.Port
	var simPort *simulator.Port

	if cfg.SimulatorEnabled {
		log.Println("[SLAP] Starting in SIMULATION mode")
		simPort = simulator.NewPort(simCfg)
		port = simPort
	} else {
		serialPort := transport.NewSerialPort(cfg.SerialPort, cfg.SerialBaud)
		if err := serialPort.Open(); err != nil {
			log.Printf("[SLAP] Failed to open serial port: %v", err)
			log.Println("[SLAP] Falling back to simulation mode")
			simPort = simulator.NewPort(simCfg)
			port = simPort
		} else {
			port = serialPort
		}
	}

	if simPort != nil {
		if err := simPort.Open(); err != nil {
			log.Fatalf("[SLAP] Failed to start simulator: %v", err)
		}
		store.SetSimulatorRunning(true)
	}
	defer port.Close()

	// Reader loop: sole owner of the transport and parser.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := reader.New(port, parser, detector, store, sinks...)
	go r.Run(ctx)

	// Web server: control API + WebSocket state feed.
	srv := server.New(cfg, store, detector)
	srv.SetSimulator(simPort)
	srv.SetCaspar(caspar)
	if obs != nil {
		srv.SetOBS(obs)
	}
	if cfg.SimulatorEnabled {
		srv.SetMode("preview")
	}
	if gamelog != nil {
		srv.SetGameLog(gamelog, gameID)
	}

	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalf("[SLAP] Web server error: %v", err)
		}
	}()

	log.Printf("[SLAP] Ready, dashboard on http://0.0.0.0:%d", cfg.WebPort)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("[SLAP] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	if gamelog != nil && gameID != 0 {
		if err := gamelog.EndGame(gameID); err != nil {
			log.Printf("[SLAP] Failed to finalize game record: %v", err)
		}
	}

	log.Println("[SLAP] Stopped")
}
