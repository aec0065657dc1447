// Package simulator fabricates MP-70 traffic from a synthetic hockey
// game, so the full extract/decode/detect pipeline can run without
// controller hardware.
package simulator

import (
	"fmt"
	"log"
	"math/rand"
	"sync"

	"github.com/sworrl/SLAP/internal/protocol"
)

// Config controls the synthetic game progression.
type Config struct {
	PeriodSeconds   int     // regulation period length, default 1200 (20 min)
	GoalIntervalMin int     // min seconds between goals
	GoalIntervalMax int     // max seconds between goals
	PenaltyChance   float64 // penalties per minute of game time
	SpeedMultiplier float64 // wall-clock speedup of the tick loop
}

// DefaultConfig matches a regulation game run at 10x speed.
func DefaultConfig() Config {
	return Config{
		PeriodSeconds:   1200,
		GoalIntervalMin: 30,
		GoalIntervalMax: 90,
		PenaltyChance:   0.1,
		SpeedMultiplier: 10.0,
	}
}

// Game is a pseudo-random hockey game: countdown clock, randomized goal
// timing and penalties, period advancement capped at period 3.
type Game struct {
	cfg Config

	mu            sync.Mutex
	homeScore     int
	awayScore     int
	period        int
	clockSeconds  int
	homePenalties []int
	awayPenalties []int
	nextGoalIn    int
	rng           *rand.Rand
}

// NewGame seeds a game at the top of the first period.
func NewGame(cfg Config, seed int64) *Game {
	g := &Game{
		cfg:          cfg,
		period:       1,
		clockSeconds: cfg.PeriodSeconds,
		rng:          rand.New(rand.NewSource(seed)),
	}
	g.nextGoalIn = g.randomGoalTime()
	return g
}

// Tick advances the game by one second of game time and returns the
// resulting state.
func (g *Game) Tick() protocol.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.clockSeconds > 0 {
		g.clockSeconds--
	}

	g.homePenalties = countdownPenalties(g.homePenalties)
	g.awayPenalties = countdownPenalties(g.awayPenalties)

	g.nextGoalIn--
	if g.nextGoalIn <= 0 {
		if g.rng.Float64() < 0.5 {
			g.homeScore++
			log.Printf("[Sim] Home goal! %d-%d", g.homeScore, g.awayScore)
		} else {
			g.awayScore++
			log.Printf("[Sim] Away goal! %d-%d", g.homeScore, g.awayScore)
		}
		g.nextGoalIn = g.randomGoalTime()
	}

	if g.rng.Float64() < g.cfg.PenaltyChance/60 {
		penalty := []int{120, 120, 120, 300}[g.rng.Intn(4)]
		if g.rng.Float64() < 0.5 {
			if len(g.homePenalties) < 2 {
				g.homePenalties = append(g.homePenalties, penalty)
				log.Printf("[Sim] Home penalty (%ds)", penalty)
			}
		} else {
			if len(g.awayPenalties) < 2 {
				g.awayPenalties = append(g.awayPenalties, penalty)
				log.Printf("[Sim] Away penalty (%ds)", penalty)
			}
		}
	}

	if g.clockSeconds <= 0 && g.period < 3 {
		g.period++
		g.clockSeconds = g.cfg.PeriodSeconds
		log.Printf("[Sim] Period %d", g.period)
	}

	return g.stateLocked()
}

// State returns the current game state without advancing it.
func (g *Game) State() protocol.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

// Reset returns the game to the top of the first period.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.homeScore = 0
	g.awayScore = 0
	g.period = 1
	g.clockSeconds = g.cfg.PeriodSeconds
	g.homePenalties = nil
	g.awayPenalties = nil
	g.nextGoalIn = g.randomGoalTime()
	log.Println("[Sim] Game reset")
}

func (g *Game) stateLocked() protocol.Snapshot {
	period := fmt.Sprintf("%d", g.period)
	if g.period > 3 {
		period = "OT"
	}
	return protocol.Snapshot{
		HomeScore:     g.homeScore,
		AwayScore:     g.awayScore,
		Period:        period,
		Clock:         fmt.Sprintf("%02d:%02d", g.clockSeconds/60, g.clockSeconds%60),
		HomePenalties: append([]int{}, g.homePenalties...),
		AwayPenalties: append([]int{}, g.awayPenalties...),
	}
}

func (g *Game) randomGoalTime() int {
	span := g.cfg.GoalIntervalMax - g.cfg.GoalIntervalMin
	if span <= 0 {
		return g.cfg.GoalIntervalMin
	}
	return g.cfg.GoalIntervalMin + g.rng.Intn(span+1)
}

// countdownPenalties ticks each penalty down one second, dropping any
// that expire.
func countdownPenalties(penalties []int) []int {
	out := penalties[:0]
	for _, p := range penalties {
		if p > 1 {
			out = append(out, p-1)
		}
	}
	return out
}
