package output

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOBS is an in-process obs-websocket v5 endpoint: it runs the Hello /
// Identify handshake with challenge auth and answers the requests the
// client issues.
type fakeOBS struct {
	password  string
	salt      string
	challenge string
	srv       *httptest.Server

	mu       sync.Mutex
	requests []string
}

func newFakeOBS(t *testing.T, password string) *fakeOBS {
	t.Helper()

	f := &fakeOBS{password: password, salt: "pepper", challenge: "gauntlet"}
	upgrader := websocket.Upgrader{}

	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		hello := map[string]interface{}{
			"rpcVersion": 1,
			"authentication": map[string]string{
				"challenge": f.challenge,
				"salt":      f.salt,
			},
		}
		if conn.WriteJSON(obsMessage{Op: obsOpHello, D: mustJSON(hello)}) != nil {
			return
		}

		var identify obsMessage
		if conn.ReadJSON(&identify) != nil || identify.Op != obsOpIdentify {
			return
		}
		var identifyData struct {
			Authentication string `json:"authentication"`
		}
		json.Unmarshal(identify.D, &identifyData)
		if identifyData.Authentication != obsAuthString(f.password, f.salt, f.challenge) {
			// Real OBS drops the connection on a failed auth.
			return
		}
		if conn.WriteJSON(obsMessage{Op: obsOpIdentified, D: mustJSON(map[string]int{"negotiatedRpcVersion": 1})}) != nil {
			return
		}

		for {
			var msg obsMessage
			if conn.ReadJSON(&msg) != nil {
				return
			}
			if msg.Op != obsOpRequest {
				continue
			}
			var req struct {
				RequestType string `json:"requestType"`
				RequestID   string `json:"requestId"`
			}
			json.Unmarshal(msg.D, &req)

			f.mu.Lock()
			f.requests = append(f.requests, req.RequestType)
			f.mu.Unlock()

			respData := map[string]interface{}{}
			switch req.RequestType {
			case "GetCurrentProgramScene":
				respData["currentProgramSceneName"] = "Game"
			case "GetSceneItemId":
				respData["sceneItemId"] = 7
			}
			resp := map[string]interface{}{
				"requestType":   req.RequestType,
				"requestId":     req.RequestID,
				"requestStatus": map[string]interface{}{"result": true, "code": 100},
				"responseData":  respData,
			}
			if conn.WriteJSON(obsMessage{Op: obsOpRequestResponse, D: mustJSON(resp)}) != nil {
				return
			}
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeOBS) client(t *testing.T, password string) *OBSClient {
	t.Helper()
	host, portStr, err := net.SplitHostPort(strings.TrimPrefix(f.srv.URL, "http://"))
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return NewOBSClient(host, port, password)
}

func (f *fakeOBS) requestTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func TestOBSClientHandshake(t *testing.T) {
	f := newFakeOBS(t, "hunter2")
	c := f.client(t, "hunter2")

	require.NoError(t, c.Connect())
	assert.True(t, c.Connected())

	c.Disconnect()
	assert.False(t, c.Connected())
}

func TestOBSClientRejectsBadPassword(t *testing.T) {
	f := newFakeOBS(t, "hunter2")
	c := f.client(t, "wrong")

	require.Error(t, c.Connect())
	assert.False(t, c.Connected())
}

func TestOBSClientSetSourceVisible(t *testing.T) {
	f := newFakeOBS(t, "hunter2")
	c := f.client(t, "hunter2")
	require.NoError(t, c.Connect())
	defer c.Disconnect()

	require.NoError(t, c.SetSourceVisible("SLAP Scorebug", true))

	assert.Equal(t, []string{
		"GetCurrentProgramScene",
		"GetSceneItemId",
		"SetSceneItemEnabled",
	}, f.requestTypes())
}

func TestOBSClientRefreshBrowserSource(t *testing.T) {
	f := newFakeOBS(t, "hunter2")
	c := f.client(t, "hunter2")
	require.NoError(t, c.Connect())
	defer c.Disconnect()

	require.NoError(t, c.RefreshBrowserSource("SLAP Scorebug"))

	assert.Equal(t, []string{"PressInputPropertiesButton"}, f.requestTypes())
}

func TestOBSClientRequestsRequireConnection(t *testing.T) {
	f := newFakeOBS(t, "hunter2")
	c := f.client(t, "hunter2")

	assert.Error(t, c.SetSourceVisible("SLAP Scorebug", true))
	assert.Error(t, c.RefreshBrowserSource("SLAP Scorebug"))
}
