package output

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// OBS is the control surface the web layer drives on an OBS instance.
type OBS interface {
	Connected() bool
	SetSourceVisible(source string, visible bool) error
	RefreshBrowserSource(inputName string) error
}

// OBSClient is a minimal obs-websocket v5 client: identify handshake with
// optional challenge auth, plus the few requests the core issues (source
// visibility for the scorebug overlay, browser source refresh).
type OBSClient struct {
	url      string
	password string

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	requestID int
}

type obsMessage struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
}

// obs-websocket opcodes.
const (
	obsOpHello           = 0
	obsOpIdentify        = 1
	obsOpIdentified      = 2
	obsOpRequest         = 6
	obsOpRequestResponse = 7
)

// NewOBSClient creates an unconnected client for ws://host:port.
func NewOBSClient(host string, port int, password string) *OBSClient {
	return &OBSClient{
		url:      fmt.Sprintf("ws://%s:%d", host, port),
		password: password,
	}
}

// Connect dials OBS and completes the Identify handshake.
func (c *OBSClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to OBS at %s: %w", c.url, err)
	}

	var hello obsMessage
	if err := conn.ReadJSON(&hello); err != nil {
		conn.Close()
		return fmt.Errorf("failed to read OBS hello: %w", err)
	}
	if hello.Op != obsOpHello {
		conn.Close()
		return fmt.Errorf("unexpected OBS opcode %d, want hello", hello.Op)
	}

	var helloData struct {
		Authentication *struct {
			Challenge string `json:"challenge"`
			Salt      string `json:"salt"`
		} `json:"authentication"`
	}
	if err := json.Unmarshal(hello.D, &helloData); err != nil {
		conn.Close()
		return fmt.Errorf("failed to parse OBS hello: %w", err)
	}

	identify := map[string]interface{}{"rpcVersion": 1}
	if helloData.Authentication != nil {
		identify["authentication"] = obsAuthString(
			c.password,
			helloData.Authentication.Salt,
			helloData.Authentication.Challenge,
		)
	}
	if err := conn.WriteJSON(obsMessage{Op: obsOpIdentify, D: mustJSON(identify)}); err != nil {
		conn.Close()
		return fmt.Errorf("failed to send OBS identify: %w", err)
	}

	var identified obsMessage
	if err := conn.ReadJSON(&identified); err != nil {
		conn.Close()
		return fmt.Errorf("failed to read OBS identified: %w", err)
	}
	if identified.Op != obsOpIdentified {
		conn.Close()
		return fmt.Errorf("OBS rejected identify (opcode %d)", identified.Op)
	}

	c.conn = conn
	c.connected = true
	log.Printf("[OBS] Connected to %s", c.url)
	return nil
}

// Disconnect closes the connection.
func (c *OBSClient) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false
	log.Println("[OBS] Disconnected")
}

// Connected reports connection state.
func (c *OBSClient) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// SetSourceVisible toggles a source in the current program scene,
// looking up the scene and item id first.
func (c *OBSClient) SetSourceVisible(source string, visible bool) error {
	sceneResp, err := c.request("GetCurrentProgramScene", nil)
	if err != nil {
		return err
	}
	var sceneData struct {
		SceneName string `json:"currentProgramSceneName"`
	}
	if err := json.Unmarshal(sceneResp, &sceneData); err != nil {
		return fmt.Errorf("failed to parse current scene: %w", err)
	}

	idResp, err := c.request("GetSceneItemId", map[string]interface{}{
		"sceneName":  sceneData.SceneName,
		"sourceName": source,
	})
	if err != nil {
		return err
	}

	var idData struct {
		SceneItemID int `json:"sceneItemId"`
	}
	if err := json.Unmarshal(idResp, &idData); err != nil {
		return fmt.Errorf("failed to parse scene item id: %w", err)
	}

	_, err = c.request("SetSceneItemEnabled", map[string]interface{}{
		"sceneName":        sceneData.SceneName,
		"sceneItemId":      idData.SceneItemID,
		"sceneItemEnabled": visible,
	})
	return err
}

// RefreshBrowserSource reloads the scorebug browser source.
func (c *OBSClient) RefreshBrowserSource(inputName string) error {
	_, err := c.request("PressInputPropertiesButton", map[string]interface{}{
		"inputName":    inputName,
		"propertyName": "refreshnocache",
	})
	return err
}

// request performs one synchronous obs-websocket request, reading frames
// until the matching response arrives.
func (c *OBSClient) request(requestType string, data map[string]interface{}) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil, fmt.Errorf("not connected to OBS")
	}

	c.requestID++
	reqID := fmt.Sprintf("slap-%d", c.requestID)
	req := map[string]interface{}{
		"requestType": requestType,
		"requestId":   reqID,
	}
	if data != nil {
		req["requestData"] = data
	}
	if err := c.conn.WriteJSON(obsMessage{Op: obsOpRequest, D: mustJSON(req)}); err != nil {
		c.connected = false
		return nil, fmt.Errorf("failed to send OBS request: %w", err)
	}

	for {
		var msg obsMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			c.connected = false
			return nil, fmt.Errorf("failed to read OBS response: %w", err)
		}
		if msg.Op != obsOpRequestResponse {
			continue // events and other traffic
		}

		var resp struct {
			RequestID     string `json:"requestId"`
			RequestStatus struct {
				Result  bool   `json:"result"`
				Comment string `json:"comment"`
			} `json:"requestStatus"`
			ResponseData json.RawMessage `json:"responseData"`
		}
		if err := json.Unmarshal(msg.D, &resp); err != nil {
			return nil, fmt.Errorf("failed to parse OBS response: %w", err)
		}
		if resp.RequestID != reqID {
			continue
		}
		if !resp.RequestStatus.Result {
			return nil, fmt.Errorf("OBS request %s failed: %s", requestType, resp.RequestStatus.Comment)
		}
		return resp.ResponseData, nil
	}
}

// obsAuthString derives the identify auth token:
// base64(sha256(base64(sha256(password+salt)) + challenge)).
func obsAuthString(password, salt, challenge string) string {
	secretHash := sha256.Sum256([]byte(password + salt))
	secret := base64.StdEncoding.EncodeToString(secretHash[:])
	authHash := sha256.Sum256([]byte(secret + challenge))
	return base64.StdEncoding.EncodeToString(authHash[:])
}

func mustJSON(v interface{}) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
