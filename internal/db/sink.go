package db

import (
	"log"

	"github.com/sworrl/SLAP/internal/hockey"
	"github.com/sworrl/SLAP/internal/protocol"
)

// LogSink persists detector events against one game row. Snapshot
// updates are intentionally not written per frame; only events touch the
// database.
type LogSink struct {
	gamelog *GameLog
	gameID  uint
}

// NewLogSink binds the sink to a game row.
func NewLogSink(gamelog *GameLog, gameID uint) *LogSink {
	return &LogSink{gamelog: gamelog, gameID: gameID}
}

func (s *LogSink) GameUpdate(snap protocol.Snapshot) {}

func (s *LogSink) GameEvent(event hockey.Event, snap protocol.Snapshot) {
	var err error
	switch {
	case event.IsGoal():
		err = s.gamelog.LogGoal(s.gameID, event.Side(), snap.Period, snap.Clock)
	case event == hockey.EventPeriodChange:
		err = s.gamelog.LogPeriodChange(s.gameID, snap.Period)
	}
	if err != nil {
		log.Printf("[DB] Failed to log %s: %v", event, err)
	}
}
