// The reader loop: sole owner of the transport and the protocol parser.
// Polls for bytes, extracts frames, decodes snapshots, updates the shared
// store and fans decoded state and events out to the configured sinks.

package reader

import (
	"context"
	"log"
	"time"

	"github.com/sworrl/SLAP/internal/hockey"
	"github.com/sworrl/SLAP/internal/protocol"
	"github.com/sworrl/SLAP/internal/state"
	"github.com/sworrl/SLAP/internal/transport"
)

// Sink receives decoded game state and derived events. Implementations
// handle their own errors; a failing sink never stops the reader.
type Sink interface {
	// GameUpdate is called for every decoded snapshot.
	GameUpdate(snap protocol.Snapshot)

	// GameEvent is called when the detector fires on a snapshot.
	GameEvent(event hockey.Event, snap protocol.Snapshot)
}

const (
	defaultPollInterval = 10 * time.Millisecond
	readChunkSize       = 512
)

// Reader drives the decode pipeline from a transport Port.
type Reader struct {
	port     transport.Port
	parser   *protocol.Parser
	detector *hockey.Detector
	store    *state.Store
	sinks    []Sink

	// PollInterval bounds both idle CPU use and cancellation latency.
	PollInterval time.Duration
}

// New wires a reader over the given transport.
func New(port transport.Port, parser *protocol.Parser, detector *hockey.Detector, store *state.Store, sinks ...Sink) *Reader {
	return &Reader{
		port:         port,
		parser:       parser,
		detector:     detector,
		store:        store,
		sinks:        sinks,
		PollInterval: defaultPollInterval,
	}
}

// Run polls the transport until ctx is cancelled. Cancellation is
// cooperative: checked once per poll iteration, so stopping is bounded by
// one poll interval plus any in-flight frame processing.
func (r *Reader) Run(ctx context.Context) {
	log.Println("[Reader] Serial reader started")
	r.store.SetSerialConnected(true)
	defer func() {
		r.store.SetSerialConnected(false)
		log.Println("[Reader] Serial reader stopped")
	}()

	var pending []byte
	chunk := make([]byte, readChunkSize)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if r.port.Available() > 0 {
			n, err := r.port.Read(chunk)
			if err != nil {
				log.Printf("[Reader] Transport read error: %v", err)
				return
			}
			pending = append(pending, chunk[:n]...)
		}

		var frames [][]byte
		frames, pending = protocol.ExtractFrames(pending)
		for _, frame := range frames {
			r.handleFrame(frame)
		}

		time.Sleep(r.PollInterval)
	}
}

func (r *Reader) handleFrame(frame []byte) {
	snap := r.parser.Decode(frame)
	if snap == nil {
		return
	}

	r.store.ApplySnapshot(*snap)

	event, fired := r.detector.ProcessUpdate(snap)
	if fired && event.IsGoal() {
		side := event.Side()
		r.store.ApplyUpdate(state.Update{LastGoal: &side})
	}

	for _, sink := range r.sinks {
		sink.GameUpdate(*snap)
		if fired {
			sink.GameEvent(event, *snap)
		}
	}
}
