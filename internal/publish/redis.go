package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sworrl/SLAP/internal/hockey"
	"github.com/sworrl/SLAP/internal/protocol"
)

// Redis keys.
const (
	keyGameShadow   = "slap:game"
	keyEventHistory = "slap:events"

	shadowTTL       = 24 * time.Hour
	eventHistoryMax = 100
)

// NewRedisClient builds a client from a redis:// or rediss:// URL,
// carrying any database number and credentials the URL names.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// RedisPublisher keeps a latest-state shadow key and a capped event
// history list, so external consumers can read current state without
// touching the process.
type RedisPublisher struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisPublisher wraps an established Redis client.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client, ctx: context.Background()}
}

// GameUpdate overwrites the shadow key with the latest snapshot.
func (p *RedisPublisher) GameUpdate(snap protocol.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[Redis] Failed to marshal snapshot: %v", err)
		return
	}
	if err := p.client.Set(p.ctx, keyGameShadow, data, shadowTTL).Err(); err != nil {
		log.Printf("[Redis] Failed to update game shadow: %v", err)
	}
}

// GameEvent prepends the event to the history list and trims it.
func (p *RedisPublisher) GameEvent(event hockey.Event, snap protocol.Snapshot) {
	msg := EventMessage{
		Event: string(event),
		Side:  event.Side(),
		Game:  snap,
		At:    time.Now().Unix(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[Redis] Failed to marshal event: %v", err)
		return
	}

	pipe := p.client.Pipeline()
	pipe.LPush(p.ctx, keyEventHistory, data)
	pipe.LTrim(p.ctx, keyEventHistory, 0, eventHistoryMax-1)
	pipe.Expire(p.ctx, keyEventHistory, shadowTTL)
	if _, err := pipe.Exec(p.ctx); err != nil {
		log.Printf("[Redis] Failed to record event: %v", err)
	}
}
