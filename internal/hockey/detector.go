// Hockey game rules: goal and period-change detection, power play status.

package hockey

import (
	"log"
	"sync"

	"github.com/sworrl/SLAP/internal/protocol"
)

// Event is a semantic game event derived from successive snapshots.
type Event string

const (
	EventGoalHome     Event = "GOAL_HOME"
	EventGoalAway     Event = "GOAL_AWAY"
	EventPeriodChange Event = "PERIOD_CHANGE"
)

// IsGoal reports whether the event is a goal on either side.
func (e Event) IsGoal() bool {
	return e == EventGoalHome || e == EventGoalAway
}

// Side returns "HOME" or "AWAY" for goal events, "" otherwise.
func (e Event) Side() string {
	switch e {
	case EventGoalHome:
		return "HOME"
	case EventGoalAway:
		return "AWAY"
	}
	return ""
}

// Detector compares incoming snapshots against the previous one to detect
// goals and period changes. One Detector tracks one game session; call
// Reset when a new game starts.
type Detector struct {
	mu         sync.Mutex
	prevHome   int
	prevAway   int
	prevPeriod string
}

// NewDetector returns a detector primed for the start of a game.
func NewDetector() *Detector {
	return &Detector{prevPeriod: "1"}
}

// ProcessUpdate diffs a snapshot against the previous values and returns
// at most one event. A goal takes precedence over a period change that
// lands in the same update; the period tracking still advances either
// way. Scores are expected to be monotonically non-decreasing within a
// game, so a decreased score produces no event.
func (d *Detector) ProcessUpdate(s *protocol.Snapshot) (Event, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var event Event
	fired := false

	if s.HomeScore > d.prevHome {
		event, fired = EventGoalHome, true
		log.Printf("[Hockey] GOAL! Home team scores (%d -> %d)", d.prevHome, s.HomeScore)
	} else if s.AwayScore > d.prevAway {
		event, fired = EventGoalAway, true
		log.Printf("[Hockey] GOAL! Away team scores (%d -> %d)", d.prevAway, s.AwayScore)
	}

	if s.Period != d.prevPeriod {
		if !fired {
			event, fired = EventPeriodChange, true
		}
		log.Printf("[Hockey] Period change: %s -> %s", d.prevPeriod, s.Period)
	}

	d.prevHome = s.HomeScore
	d.prevAway = s.AwayScore
	d.prevPeriod = s.Period

	return event, fired
}

// Reset clears tracking state for a new game.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.prevHome = 0
	d.prevAway = 0
	d.prevPeriod = "1"
}

// PowerPlay describes the man-advantage situation derived from active
// penalty counts. It is not transmitted by the controller; it is
// recomputed fresh from the two penalty lists.
type PowerPlay struct {
	HomePP  bool `json:"home_pp"`
	AwayPP  bool `json:"away_pp"`
	HomeAdv int  `json:"home_adv"`
	AwayAdv int  `json:"away_adv"`
}

// PowerPlayStatus counts active (strictly positive) penalties per side;
// the side with fewer active penalties has the advantage.
func PowerPlayStatus(homePenalties, awayPenalties []int) PowerPlay {
	homeCount := activePenalties(homePenalties)
	awayCount := activePenalties(awayPenalties)

	return PowerPlay{
		HomePP:  awayCount > homeCount,
		AwayPP:  homeCount > awayCount,
		HomeAdv: awayCount - homeCount,
		AwayAdv: homeCount - awayCount,
	}
}

func activePenalties(penalties []int) int {
	count := 0
	for _, p := range penalties {
		if p > 0 {
			count++
		}
	}
	return count
}
