// Package publish pushes decoded game state and events to external
// consumers over NATS and Redis.
package publish

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/sworrl/SLAP/internal/hockey"
	"github.com/sworrl/SLAP/internal/protocol"
)

// NATS subjects.
const (
	SubjectState       = "slap.game.state"
	SubjectEventPrefix = "slap.game.event."
)

// EventMessage is the wire form of a game event.
type EventMessage struct {
	Event string            `json:"event"`
	Side  string            `json:"side,omitempty"`
	Game  protocol.Snapshot `json:"game"`
	At    int64             `json:"ts"`
}

// NATSPublisher publishes every snapshot on slap.game.state and events on
// slap.game.event.<TYPE>.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher wraps an established NATS connection.
func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

// GameUpdate publishes the decoded snapshot.
func (p *NATSPublisher) GameUpdate(snap protocol.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[NATS] Failed to marshal snapshot: %v", err)
		return
	}
	if err := p.conn.Publish(SubjectState, data); err != nil {
		log.Printf("[NATS] Failed to publish state: %v", err)
	}
}

// GameEvent publishes the event on its typed subject.
func (p *NATSPublisher) GameEvent(event hockey.Event, snap protocol.Snapshot) {
	msg := EventMessage{
		Event: string(event),
		Side:  event.Side(),
		Game:  snap,
		At:    time.Now().Unix(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[NATS] Failed to marshal event: %v", err)
		return
	}
	subject := fmt.Sprintf("%s%s", SubjectEventPrefix, event)
	if err := p.conn.Publish(subject, data); err != nil {
		log.Printf("[NATS] Failed to publish event: %v", err)
	}
}
