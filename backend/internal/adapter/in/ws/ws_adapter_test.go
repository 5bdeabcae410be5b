package ws

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehprop/backend/internal/core/domain/service"
	"vehprop/backend/internal/core/port/out/host"
)

type recordingSender struct {
	mu      sync.Mutex
	actions []host.Action
}

func (r *recordingSender) Send(action host.Action, _ any) <-chan struct{} {
	r.mu.Lock()
	r.actions = append(r.actions, action)
	r.mu.Unlock()
	done := make(chan struct{})
	close(done)
	return done
}

func (r *recordingSender) has(action host.Action) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.actions {
		if a == action {
			return true
		}
	}
	return false
}

type stubTelemetry struct{}

func (stubTelemetry) GetTelemetryJSON() (string, error) { return `{"totals":{}}`, nil }

type testEnv struct {
	server  *httptest.Server
	adapter *WSAdapter
	sender  *recordingSender
	wsURL   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	sender := &recordingSender{}
	loop := service.NewLoop(service.NewOverlay(sender, service.Options{}), 16, nil)
	go func() { _ = loop.Run(ctx) }()

	adapter := NewWSAdapter(ctx, loop, stubTelemetry{}, nil)
	mux := http.NewServeMux()
	adapter.Routes(mux)
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		adapter.Close()
		server.Close()
		cancel()
	})

	return &testEnv{
		server:  server,
		adapter: adapter,
		sender:  sender,
		wsURL:   "ws" + strings.TrimPrefix(server.URL, "http"),
	}
}

func (e *testEnv) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(e.wsURL+path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

type stateFrame struct {
	Type         string            `json:"type"`
	IsOpen       bool              `json:"isOpen"`
	Props        []json.RawMessage `json:"props"`
	SelectedProp *int64            `json:"selectedProp"`
	Drag         *struct {
		Axis string `json:"axis"`
		Kind string `json:"kind"`
	} `json:"drag"`
}

// waitState читает кадры до первого, удовлетворяющего условию
func waitState(t *testing.T, conn *websocket.Conn, cond func(stateFrame) bool) stateFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var f stateFrame
		require.NoError(t, json.Unmarshal(data, &f))
		if f.Type == MessageTypeState && cond(f) {
			return f
		}
	}
}

func TestWSAdapter_HostPushReachesView(t *testing.T) {
	env := newTestEnv(t)
	view := env.dial(t, "/input")

	initial := waitState(t, view, func(stateFrame) bool { return true })
	assert.False(t, initial.IsOpen)
	assert.NotNil(t, initial.Props, "props are encoded as an empty list")

	hostConn := env.dial(t, "/host")
	require.NoError(t, hostConn.WriteMessage(websocket.TextMessage, []byte(`{"action":"open"}`)))
	require.NoError(t, hostConn.WriteMessage(websocket.TextMessage, []byte(`{"action":"bogus"}`)))
	require.NoError(t, hostConn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, hostConn.WriteMessage(websocket.TextMessage, []byte(
		`{"action":"updateProps","props":[{"handle":4,"model":"prop_a","label":"A"}],"selectedProp":4}`)))

	f := waitState(t, view, func(f stateFrame) bool { return f.IsOpen && len(f.Props) == 1 })
	require.NotNil(t, f.SelectedProp)
	assert.Equal(t, int64(4), *f.SelectedProp)
}

func TestWSAdapter_ViewInputReachesHost(t *testing.T) {
	env := newTestEnv(t)
	hostConn := env.dial(t, "/host")
	view := env.dial(t, "/input")
	waitState(t, view, func(stateFrame) bool { return true })

	require.NoError(t, hostConn.WriteMessage(websocket.TextMessage, []byte(`{"action":"open"}`)))
	require.NoError(t, hostConn.WriteMessage(websocket.TextMessage, []byte(
		`{"action":"updateProps","props":[{"handle":1,"model":"m","label":"m"}],"selectedProp":1}`)))
	waitState(t, view, func(f stateFrame) bool { return f.IsOpen && f.SelectedProp != nil })

	require.NoError(t, view.WriteMessage(websocket.TextMessage, []byte(
		`{"type":"pointerDown","x":10,"y":10,"target":"axisZone","axis":"y"}`)))

	f := waitState(t, view, func(f stateFrame) bool { return f.Drag != nil })
	assert.Equal(t, "y", f.Drag.Axis)
	assert.Equal(t, "2d", f.Drag.Kind)
	assert.Eventually(t, func() bool { return env.sender.has(host.ActionGizmoDragStart) }, time.Second, 5*time.Millisecond)
}

func TestWSAdapter_SecondHostRefused(t *testing.T) {
	env := newTestEnv(t)
	env.dial(t, "/host")
	require.Eventually(t, env.adapter.HostConnected, time.Second, 5*time.Millisecond)

	_, resp, err := websocket.DefaultDialer.Dial(env.wsURL+"/host", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestWSAdapter_HostSlotReleased(t *testing.T) {
	env := newTestEnv(t)
	first := env.dial(t, "/host")
	require.Eventually(t, env.adapter.HostConnected, time.Second, 5*time.Millisecond)

	require.NoError(t, first.Close())
	require.Eventually(t, func() bool { return !env.adapter.HostConnected() }, time.Second, 5*time.Millisecond)

	env.dial(t, "/host")
}

func TestWSAdapter_Ping(t *testing.T) {
	env := newTestEnv(t)
	view := env.dial(t, "/input")
	waitState(t, view, func(stateFrame) bool { return true })

	require.NoError(t, view.WriteJSON(map[string]any{"type": "ping", "clientTime": 12.5}))
	require.NoError(t, view.SetReadDeadline(time.Now().Add(2*time.Second)))

	var pong PongMessage
	require.NoError(t, view.ReadJSON(&pong))
	assert.Equal(t, MessageTypePong, pong.Type)
	assert.Equal(t, 12.5, pong.ClientTime)
	assert.NotZero(t, pong.ServerTime)
}

func TestWSAdapter_DebugEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/debug/telemetry")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"totals":{}}`, string(body))

	resp, err = http.Get(env.server.URL + "/debug/state")
	require.NoError(t, err)
	var f stateFrame
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&f))
	resp.Body.Close()
	assert.Equal(t, MessageTypeState, f.Type)
}

func TestWSAdapter_TracksClients(t *testing.T) {
	env := newTestEnv(t)
	a := env.dial(t, "/input")
	env.dial(t, "/input")
	require.Eventually(t, func() bool { return env.adapter.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, a.Close())
	require.Eventually(t, func() bool { return env.adapter.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
}
