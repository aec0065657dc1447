package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// GameLog is the persistence service for games and their event logs.
type GameLog struct {
	db *gorm.DB
}

// NewGameLog wraps an open GORM handle.
func NewGameLog(db *gorm.DB) *GameLog {
	return &GameLog{db: db}
}

// AutoMigrate creates or updates the schema.
func (l *GameLog) AutoMigrate() error {
	return l.db.AutoMigrate(&Game{}, &GameEvent{})
}

// CreateGame starts a new live game and logs a game_start event.
func (l *GameLog) CreateGame(homeTeam, awayTeam, venue string) (*Game, error) {
	game := &Game{
		HomeTeam:  homeTeam,
		AwayTeam:  awayTeam,
		Venue:     venue,
		Period:    "1",
		Status:    "live",
		StartedAt: time.Now(),
	}
	if err := l.db.Create(game).Error; err != nil {
		return nil, err
	}

	event := &GameEvent{
		GameID:    game.ID,
		EventType: EventTypeGameStart,
		Details:   fmt.Sprintf("%s vs %s", homeTeam, awayTeam),
	}
	if err := l.db.Create(event).Error; err != nil {
		return nil, err
	}
	return game, nil
}

// CurrentGame returns the most recent live game, or nil when none exists.
func (l *GameLog) CurrentGame() (*Game, error) {
	var game Game
	err := l.db.Where("status = ?", "live").Order("started_at DESC").First(&game).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &game, nil
}

// LogGoal records a goal and bumps the game's score columns.
func (l *GameLog) LogGoal(gameID uint, team, period, gameTime string) error {
	event := &GameEvent{
		GameID:    gameID,
		EventType: EventTypeGoal,
		Team:      team,
		Period:    period,
		GameTime:  gameTime,
	}
	if err := l.db.Create(event).Error; err != nil {
		return err
	}

	column := "home_score"
	if team == "AWAY" {
		column = "away_score"
	}
	return l.db.Model(&Game{}).Where("id = ?", gameID).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}

// LogPenalty records a penalty.
func (l *GameLog) LogPenalty(gameID uint, team, period, gameTime string, seconds int) error {
	return l.db.Create(&GameEvent{
		GameID:    gameID,
		EventType: EventTypePenalty,
		Team:      team,
		Period:    period,
		GameTime:  gameTime,
		Seconds:   seconds,
	}).Error
}

// LogPeriodChange records a period transition and updates the game row.
func (l *GameLog) LogPeriodChange(gameID uint, period string) error {
	if err := l.db.Create(&GameEvent{
		GameID:    gameID,
		EventType: EventTypePeriodChange,
		Period:    period,
	}).Error; err != nil {
		return err
	}
	return l.db.Model(&Game{}).Where("id = ?", gameID).
		Update("period", period).Error
}

// EndGame marks a game final and logs a game_end event.
func (l *GameLog) EndGame(gameID uint) error {
	now := time.Now()
	if err := l.db.Model(&Game{}).Where("id = ?", gameID).
		Updates(map[string]interface{}{"status": "final", "ended_at": &now}).Error; err != nil {
		return err
	}
	return l.db.Create(&GameEvent{
		GameID:    gameID,
		EventType: EventTypeGameEnd,
	}).Error
}

// RecentGames returns the latest games, newest first.
func (l *GameLog) RecentGames(limit int) ([]Game, error) {
	if limit <= 0 {
		limit = 10
	}
	var games []Game
	err := l.db.Order("started_at DESC").Limit(limit).Find(&games).Error
	return games, err
}

// Events returns a game's event log, optionally filtered by type.
func (l *GameLog) Events(gameID uint, eventType string) ([]GameEvent, error) {
	query := l.db.Where("game_id = ?", gameID).Order("created_at ASC")
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}
	var events []GameEvent
	err := query.Find(&events).Error
	return events, err
}
