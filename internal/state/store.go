// Shared application state with snapshot-consistent reads and
// channel-based change notification.

package state

import (
	"sync"
	"time"

	"github.com/sworrl/SLAP/internal/protocol"
)

// Game is the current scoreboard state plus goal attribution.
type Game struct {
	HomeScore     int       `json:"home"`
	AwayScore     int       `json:"away"`
	Period        string    `json:"period"`
	Clock         string    `json:"clock"`
	HomePenalties []int     `json:"home_penalties"`
	AwayPenalties []int     `json:"away_penalties"`
	LastGoal      string    `json:"last_goal,omitempty"` // "HOME", "AWAY" or ""
	LastUpdate    time.Time `json:"last_update"`
}

// PeriodDisplay returns the broadcast-friendly period string.
func (g Game) PeriodDisplay() string {
	return protocol.PeriodDisplay(g.Period)
}

// Update carries the fields of a partial game update. Nil pointers leave
// the corresponding field untouched; penalty slices are replaced when
// non-nil.
type Update struct {
	HomeScore     *int
	AwayScore     *int
	Period        *string
	Clock         *string
	HomePenalties []int
	AwayPenalties []int
	LastGoal      *string
}

// Snapshot is a consistent copy of the full system state, as delivered to
// subscribers and to the web layer.
type Snapshot struct {
	Game             Game `json:"game"`
	BugVisible       bool `json:"bug_visible"`
	ReplayActive     bool `json:"replay_active"`
	SerialConnected  bool `json:"serial_connected"`
	CasparConnected  bool `json:"caspar_connected"`
	SimulatorRunning bool `json:"simulator_running"`
}

// Store holds the shared system state behind one coarse lock. The reader
// loop is the sole writer of game state; any number of goroutines may
// read. Change notifications go out over per-subscriber buffered
// channels rather than callbacks, so a slow or misbehaving observer can
// drop a tick but can never block a mutation or re-enter the lock.
type Store struct {
	mu               sync.RWMutex
	game             Game
	bugVisible       bool
	replayActive     bool
	serialConnected  bool
	casparConnected  bool
	simulatorRunning bool
	subs             map[chan Snapshot]struct{}
}

// NewStore returns a store with pre-game defaults.
func NewStore() *Store {
	return &Store{
		game: Game{
			Period: "1",
			Clock:  protocol.DefaultClock,
		},
		bugVisible: true,
		subs:       make(map[chan Snapshot]struct{}),
	}
}

// Game returns a copy of the current game state.
func (s *Store) Game() Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyGame(s.game)
}

// ApplyUpdate merges the supplied fields into the game state, stamps the
// update time and notifies subscribers.
func (s *Store) ApplyUpdate(u Update) {
	s.mu.Lock()
	if u.HomeScore != nil {
		s.game.HomeScore = *u.HomeScore
	}
	if u.AwayScore != nil {
		s.game.AwayScore = *u.AwayScore
	}
	if u.Period != nil {
		s.game.Period = *u.Period
	}
	if u.Clock != nil {
		s.game.Clock = *u.Clock
	}
	if u.HomePenalties != nil {
		s.game.HomePenalties = append([]int(nil), u.HomePenalties...)
	}
	if u.AwayPenalties != nil {
		s.game.AwayPenalties = append([]int(nil), u.AwayPenalties...)
	}
	if u.LastGoal != nil {
		s.game.LastGoal = *u.LastGoal
	}
	s.game.LastUpdate = time.Now()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// ApplySnapshot merges a decoded protocol snapshot into the game state.
func (s *Store) ApplySnapshot(snap protocol.Snapshot) {
	s.ApplyUpdate(Update{
		HomeScore:     &snap.HomeScore,
		AwayScore:     &snap.AwayScore,
		Period:        &snap.Period,
		Clock:         &snap.Clock,
		HomePenalties: orEmpty(snap.HomePenalties),
		AwayPenalties: orEmpty(snap.AwayPenalties),
	})
}

// SetGame replaces the entire game state.
func (s *Store) SetGame(g Game) {
	s.mu.Lock()
	s.game = copyGame(g)
	s.game.LastUpdate = time.Now()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// ResetGame restores pre-game defaults, keeping the auxiliary flags.
func (s *Store) ResetGame() {
	s.SetGame(Game{Period: "1", Clock: protocol.DefaultClock})
}

func (s *Store) BugVisible() bool       { return s.getFlag(&s.bugVisible) }
func (s *Store) ReplayActive() bool     { return s.getFlag(&s.replayActive) }
func (s *Store) SerialConnected() bool  { return s.getFlag(&s.serialConnected) }
func (s *Store) CasparConnected() bool  { return s.getFlag(&s.casparConnected) }
func (s *Store) SimulatorRunning() bool { return s.getFlag(&s.simulatorRunning) }

func (s *Store) SetBugVisible(v bool)       { s.setFlag(&s.bugVisible, v) }
func (s *Store) SetReplayActive(v bool)     { s.setFlag(&s.replayActive, v) }
func (s *Store) SetSerialConnected(v bool)  { s.setFlag(&s.serialConnected, v) }
func (s *Store) SetCasparConnected(v bool)  { s.setFlag(&s.casparConnected, v) }
func (s *Store) SetSimulatorRunning(v bool) { s.setFlag(&s.simulatorRunning, v) }

func (s *Store) getFlag(f *bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *f
}

func (s *Store) setFlag(f *bool, v bool) {
	s.mu.Lock()
	*f = v
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Snapshot returns a consistent copy of the full system state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers a change listener. Every mutation delivers the
// resulting snapshot on the returned channel; if the subscriber falls
// behind, intermediate snapshots are dropped. The returned func removes
// the subscription.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 16)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Store) notify(snap Snapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Game:             copyGame(s.game),
		BugVisible:       s.bugVisible,
		ReplayActive:     s.replayActive,
		SerialConnected:  s.serialConnected,
		CasparConnected:  s.casparConnected,
		SimulatorRunning: s.simulatorRunning,
	}
}

func copyGame(g Game) Game {
	out := g
	out.HomePenalties = append([]int{}, g.HomePenalties...)
	out.AwayPenalties = append([]int{}, g.AwayPenalties...)
	return out
}

func orEmpty(penalties []int) []int {
	if penalties == nil {
		return []int{}
	}
	return penalties
}
