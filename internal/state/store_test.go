package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sworrl/SLAP/internal/protocol"
)

func TestNewStoreDefaults(t *testing.T) {
	s := NewStore()

	game := s.Game()
	assert.Equal(t, 0, game.HomeScore)
	assert.Equal(t, 0, game.AwayScore)
	assert.Equal(t, "1", game.Period)
	assert.Equal(t, protocol.DefaultClock, game.Clock)
	assert.Empty(t, game.HomePenalties)

	assert.True(t, s.BugVisible())
	assert.False(t, s.ReplayActive())
	assert.False(t, s.SerialConnected())
	assert.False(t, s.SimulatorRunning())
}

func TestApplyUpdateMergesOnlyNamedFields(t *testing.T) {
	s := NewStore()
	home := 2
	clock := "12:34"

	s.ApplyUpdate(Update{HomeScore: &home, Clock: &clock})

	game := s.Game()
	assert.Equal(t, 2, game.HomeScore)
	assert.Equal(t, "12:34", game.Clock)
	assert.Equal(t, 0, game.AwayScore, "unnamed fields stay put")
	assert.Equal(t, "1", game.Period)
	assert.False(t, game.LastUpdate.IsZero(), "update must stamp last_update")
}

func TestApplySnapshotCarriesPenalties(t *testing.T) {
	s := NewStore()

	s.ApplySnapshot(protocol.Snapshot{
		HomeScore:     1,
		AwayScore:     0,
		Period:        "2",
		Clock:         "08:15",
		HomePenalties: []int{120},
	})

	game := s.Game()
	assert.Equal(t, []int{120}, game.HomePenalties)
	assert.Equal(t, []int{}, game.AwayPenalties)
	assert.Equal(t, "2", game.Period)
}

func TestGameReturnsACopy(t *testing.T) {
	s := NewStore()
	s.ApplyUpdate(Update{HomePenalties: []int{120, 300}})

	game := s.Game()
	game.HomePenalties[0] = 9999

	assert.Equal(t, []int{120, 300}, s.Game().HomePenalties)
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe()
	defer cancel()

	home := 1
	s.ApplyUpdate(Update{HomeScore: &home})

	select {
	case snap := <-ch:
		assert.Equal(t, 1, snap.Game.HomeScore)
	case <-time.After(time.Second):
		t.Fatal("no notification received")
	}
}

func TestFlagSettersNotify(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe()
	defer cancel()

	s.SetReplayActive(true)

	select {
	case snap := <-ch:
		assert.True(t, snap.ReplayActive)
	case <-time.After(time.Second):
		t.Fatal("no notification received")
	}
	assert.True(t, s.ReplayActive())
}

func TestSlowSubscriberDoesNotBlockWriters(t *testing.T) {
	s := NewStore()
	_, cancel := s.Subscribe() // never drained
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			score := i
			s.ApplyUpdate(Update{HomeScore: &score})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("writer blocked by an undrained subscriber")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe()
	cancel()

	s.SetBugVisible(false)

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("notification delivered after unsubscribe")
		}
	default:
	}
}

func TestResetGameKeepsFlags(t *testing.T) {
	s := NewStore()
	home := 3
	s.ApplyUpdate(Update{HomeScore: &home})
	s.SetSimulatorRunning(true)

	s.ResetGame()

	game := s.Game()
	assert.Equal(t, 0, game.HomeScore)
	assert.Equal(t, "1", game.Period)
	assert.Equal(t, protocol.DefaultClock, game.Clock)
	assert.True(t, s.SimulatorRunning())
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			score := i
			s.ApplyUpdate(Update{HomeScore: &score, HomePenalties: []int{120}})
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				snap := s.Snapshot()
				require.LessOrEqual(t, snap.Game.HomeScore, 500)
				_ = s.BugVisible()
			}
		}()
	}

	wg.Wait()
}
