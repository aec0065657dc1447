package simulator

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/sworrl/SLAP/internal/protocol"
)

// clockFrameRatio is the fraction of ticks emitted as clock packets; the
// real controller sends clock updates far more often than score updates,
// but score packets matter more to consumers, so the simulator biases
// toward them.
const clockFrameRatio = 0.3

// Port is a fake serial port backed by the game simulator. A background
// loop encodes one wire-exact MP-70 frame per tick into an in-memory
// buffer that the reader loop drains exactly like real transport bytes.
type Port struct {
	game *Game
	cfg  Config

	mu      sync.Mutex
	buf     []byte
	rng     *rand.Rand
	done    chan struct{}
	running bool
}

// NewPort creates an unopened simulated transport.
func NewPort(cfg Config) *Port {
	seed := time.Now().UnixNano()
	return &Port{
		game: NewGame(cfg, seed),
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(seed + 1)),
	}
}

// Game exposes the underlying simulation for API control.
func (p *Port) Game() *Game {
	return p.game
}

// Open starts the tick loop.
func (p *Port) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}
	p.running = true
	p.done = make(chan struct{})
	go p.run(p.done)

	log.Println("[Sim] Fake serial port opened")
	return nil
}

// Close stops the tick loop.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}
	p.running = false
	close(p.done)

	log.Println("[Sim] Fake serial port closed")
	return nil
}

// Running reports whether the tick loop is active.
func (p *Port) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Available returns the number of generated bytes not yet read.
func (p *Port) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buf)
}

// Read drains up to len(b) buffered bytes without blocking.
func (p *Port) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := copy(b, p.buf)
	p.buf = p.buf[n:]
	return n, nil
}

// Feed appends raw bytes to the buffer. Used by tests to drive the
// reader with hand-built frames.
func (p *Port) Feed(b []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf = append(p.buf, b...)
}

func (p *Port) run(done chan struct{}) {
	speed := p.cfg.SpeedMultiplier
	if speed <= 0 {
		speed = 1
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / speed))
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			state := p.game.Tick()
			p.mu.Lock()
			p.buf = append(p.buf, p.encodeFrame(state)...)
			p.mu.Unlock()
		}
	}
}

func (p *Port) encodeFrame(state protocol.Snapshot) []byte {
	if p.rng.Float64() < clockFrameRatio {
		return protocol.EncodeClockFrame(state.Clock)
	}
	return protocol.EncodeStateFrame(state)
}
