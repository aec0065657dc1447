package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/sworrl/SLAP/internal/state"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Dashboard and overlay pages are served from arbitrary hosts on
		// the venue LAN.
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const (
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// wsEnvelope is the framing for every message pushed to clients.
type wsEnvelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client is one connected dashboard or overlay page.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
	Hub  *WSHub
}

// WSHub fans state-change notifications out to WebSocket clients. It
// subscribes to the state store's change channel, so it never holds the
// store lock while writing to the network.
type WSHub struct {
	store      *state.Store
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	nextID     int
	mu         sync.RWMutex
}

// NewWSHub creates a hub over the given store.
func NewWSHub(store *state.Store) *WSHub {
	return &WSHub{
		store:      store,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run is the hub's event loop; it exits when ctx is cancelled.
func (h *WSHub) Run(ctx context.Context) {
	updates, cancel := h.store.Subscribe()
	defer cancel()

	log.Println("[WS] Hub started, subscribed to state updates")

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case snap := <-updates:
			data, err := json.Marshal(wsEnvelope{Type: "state_update", Data: snap})
			if err != nil {
				log.Printf("[WS] Failed to marshal state update: %v", err)
				continue
			}
			h.send(data)

		case data := <-h.broadcast:
			h.send(data)

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS] Client connected: %s, total clients: %d", client.ID, total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS] Client disconnected: %s, total clients: %d", client.ID, total)
		}
	}
}

// Broadcast queues an arbitrary envelope for all clients.
func (h *WSHub) Broadcast(msgType string, data interface{}) {
	payload, err := json.Marshal(wsEnvelope{Type: msgType, Data: data})
	if err != nil {
		log.Printf("[WS] Failed to marshal %s broadcast: %v", msgType, err)
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		log.Println("[WS] Broadcast queue full, dropping message")
	}
}

func (h *WSHub) send(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			// Slow client; it will catch up on the next update.
		}
	}
}

func (h *WSHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.Send)
		delete(h.clients, client)
	}
}

// handleWS upgrades the connection and registers the client.
func (h *WSHub) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.mu.Unlock()

	client := &Client{
		ID:   fmt.Sprintf("ws-%d", id),
		Conn: conn,
		Send: make(chan []byte, 64),
		Hub:  h,
	}
	h.register <- client

	// Push current state immediately so new clients render without
	// waiting for the next change.
	if data, err := json.Marshal(wsEnvelope{Type: "state_update", Data: h.store.Snapshot()}); err == nil {
		client.Send <- data
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(1024)
	c.Conn.SetReadDeadline(time.Now().Add(2 * pingInterval))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(2 * pingInterval))
		return nil
	})

	for {
		// Clients are push-only; inbound messages are drained and ignored.
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
