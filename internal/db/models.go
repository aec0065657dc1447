// Package db persists game records and a per-game event log.
package db

import "time"

// Game is one tracked game session.
type Game struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	HomeTeam  string     `json:"home_team" gorm:"size:50"`
	AwayTeam  string     `json:"away_team" gorm:"size:50"`
	Venue     string     `json:"venue" gorm:"size:100"`
	HomeScore int        `json:"home_score"`
	AwayScore int        `json:"away_score"`
	Period    string     `json:"period" gorm:"size:4;default:1"`
	Status    string     `json:"status" gorm:"size:16;default:live"` // live, final
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// GameEvent is one logged event within a game.
type GameEvent struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	GameID    uint      `json:"game_id" gorm:"index"`
	EventType string    `json:"event_type" gorm:"size:20;index"` // goal, penalty, period_change, game_start, game_end
	Team      string    `json:"team,omitempty" gorm:"size:10"`   // HOME or AWAY
	Period    string    `json:"period,omitempty" gorm:"size:4"`
	GameTime  string    `json:"game_time,omitempty" gorm:"size:8"` // scoreboard clock, "MM:SS"
	Seconds   int       `json:"seconds,omitempty"`                 // penalty length
	Details   string    `json:"details,omitempty" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
}

// Event types.
const (
	EventTypeGoal         = "goal"
	EventTypePenalty      = "penalty"
	EventTypePeriodChange = "period_change"
	EventTypeGameStart    = "game_start"
	EventTypeGameEnd      = "game_end"
)
