// Package output holds broadcast-system collaborators: the CasparCG AMCP
// client driving the scorebug overlay and the OBS WebSocket client.
package output

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/sworrl/SLAP/internal/hockey"
	"github.com/sworrl/SLAP/internal/protocol"
)

// Caspar is the command surface the core issues against a CasparCG
// server. Graphics template behavior beyond these calls is out of scope.
type Caspar interface {
	Connect() error
	Disconnect()
	Connected() bool
	Send(command string) error
	UpdateScorebug(snap protocol.Snapshot) error
	TriggerGoal(side string) error
	ShowScorebug() error
	HideScorebug() error
	PlayVideo(filename string) error
}

const casparDialTimeout = 5 * time.Second

// AMCPClient talks to a CasparCG server over the AMCP TCP protocol.
type AMCPClient struct {
	host    string
	port    int
	channel int
	layer   int

	mu        sync.Mutex
	conn      net.Conn
	connected bool
}

// NewAMCPClient creates an unconnected client for the given channel and
// graphics layer.
func NewAMCPClient(host string, port, channel, layer int) *AMCPClient {
	return &AMCPClient{host: host, port: port, channel: channel, layer: layer}
}

// Connect dials the server and consumes the AMCP welcome line.
func (c *AMCPClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *AMCPClient) connectLocked() error {
	if c.connected {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	conn, err := net.DialTimeout("tcp", addr, casparDialTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to CasparCG at %s: %w", addr, err)
	}

	// Drain the welcome banner; some server builds send none.
	conn.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 4096)
	conn.Read(buf)
	conn.SetReadDeadline(time.Time{})

	c.conn = conn
	c.connected = true
	log.Printf("[Caspar] Connected to CasparCG at %s", addr)
	return nil
}

// Disconnect closes the connection.
func (c *AMCPClient) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false
	log.Println("[Caspar] Disconnected from CasparCG")
}

// Connected reports connection state.
func (c *AMCPClient) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Send writes one raw AMCP command, reconnecting first if needed.
func (c *AMCPClient) Send(command string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		if err := c.connectLocked(); err != nil {
			return err
		}
	}

	if _, err := c.conn.Write([]byte(command + "\r\n")); err != nil {
		c.connected = false
		return fmt.Errorf("failed to send AMCP command: %w", err)
	}
	return nil
}

// UpdateScorebug pushes the snapshot into the scorebug template.
func (c *AMCPClient) UpdateScorebug(snap protocol.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	escaped := strings.ReplaceAll(string(payload), `"`, `\"`)
	return c.Send(fmt.Sprintf(`CG %d-%d UPDATE 1 "%s"`, c.channel, c.layer, escaped))
}

// TriggerGoal fires the goal animation for "HOME" or "AWAY".
func (c *AMCPClient) TriggerGoal(side string) error {
	return c.Send(fmt.Sprintf(`CG %d-%d INVOKE 1 "goal:%s"`, c.channel, c.layer, side))
}

// ShowScorebug makes the overlay visible.
func (c *AMCPClient) ShowScorebug() error {
	return c.Send(fmt.Sprintf(`CG %d-%d INVOKE 1 "show"`, c.channel, c.layer))
}

// HideScorebug hides the overlay.
func (c *AMCPClient) HideScorebug() error {
	return c.Send(fmt.Sprintf(`CG %d-%d INVOKE 1 "hide"`, c.channel, c.layer))
}

// PlayVideo plays a clip on a layer above the scorebug.
func (c *AMCPClient) PlayVideo(filename string) error {
	return c.Send(fmt.Sprintf("PLAY %d-%d %s", c.channel, c.layer+20, filename))
}

// MockCaspar records commands instead of sending them. Used in tests and
// when CasparCG is disabled.
type MockCaspar struct {
	mu        sync.Mutex
	connected bool
	commands  []string
	channel   int
	layer     int
}

// NewMockCaspar returns a recording client on channel 1, layer 10.
func NewMockCaspar() *MockCaspar {
	return &MockCaspar{channel: 1, layer: 10}
}

func (m *MockCaspar) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = true
	return nil
}

func (m *MockCaspar) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
}

func (m *MockCaspar) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockCaspar) Send(command string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, command)
	return nil
}

func (m *MockCaspar) UpdateScorebug(snap protocol.Snapshot) error {
	payload, _ := json.Marshal(snap)
	return m.Send(fmt.Sprintf(`CG %d-%d UPDATE 1 "%s"`, m.channel, m.layer,
		strings.ReplaceAll(string(payload), `"`, `\"`)))
}

func (m *MockCaspar) TriggerGoal(side string) error {
	return m.Send(fmt.Sprintf(`CG %d-%d INVOKE 1 "goal:%s"`, m.channel, m.layer, side))
}

func (m *MockCaspar) ShowScorebug() error {
	return m.Send(fmt.Sprintf(`CG %d-%d INVOKE 1 "show"`, m.channel, m.layer))
}

func (m *MockCaspar) HideScorebug() error {
	return m.Send(fmt.Sprintf(`CG %d-%d INVOKE 1 "hide"`, m.channel, m.layer))
}

func (m *MockCaspar) PlayVideo(filename string) error {
	return m.Send(fmt.Sprintf("PLAY %d-%d %s", m.channel, m.layer+20, filename))
}

// Commands returns a copy of everything sent so far.
func (m *MockCaspar) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.commands...)
}

// CasparSink adapts a Caspar client to the reader's sink interface:
// every snapshot updates the scorebug, goals fire the goal animation.
type CasparSink struct {
	client Caspar
}

// NewCasparSink wraps a client.
func NewCasparSink(client Caspar) *CasparSink {
	return &CasparSink{client: client}
}

func (s *CasparSink) GameUpdate(snap protocol.Snapshot) {
	if !s.client.Connected() {
		return
	}
	if err := s.client.UpdateScorebug(snap); err != nil {
		log.Printf("[Caspar] Scorebug update failed: %v", err)
	}
}

func (s *CasparSink) GameEvent(event hockey.Event, snap protocol.Snapshot) {
	if !event.IsGoal() || !s.client.Connected() {
		return
	}
	if err := s.client.TriggerGoal(event.Side()); err != nil {
		log.Printf("[Caspar] Goal trigger failed: %v", err)
	}
}
