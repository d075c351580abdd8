package e2e_test

import (
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/typerace/internal/factory"
	"github.com/mcoot/typerace/internal/model"
	"github.com/mcoot/typerace/internal/web/ws"
)

// testServer runs the full API against a TestApp
type testServer struct {
	app *factory.TestApp
	url string
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	server := httptest.NewServer(app.Router("127.0.0.1"))
	t.Cleanup(func() {
		server.Close()
		_ = app.Close()
	})

	return &testServer{app: app, url: server.URL}
}

// player is a raw WebSocket session member
type player struct {
	conn *websocket.Conn
}

func (ts *testServer) dial(t *testing.T, sessionID, name string) *player {
	t.Helper()

	endpoint := "ws" + strings.TrimPrefix(ts.url, "http") + "/api/v1/sessions/" + sessionID + "/ws?" +
		url.Values{"name": {name}}.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &player{conn: conn}
}

func (p *player) send(t *testing.T, event model.EventType, data any) {
	t.Helper()

	msg, err := ws.NewMessage(event, data)
	require.NoError(t, err)
	require.NoError(t, p.conn.WriteMessage(websocket.TextMessage, msg))
}

// next reads the next message
func (p *player) next(t *testing.T) ws.Message {
	t.Helper()

	require.NoError(t, p.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg ws.Message
	require.NoError(t, p.conn.ReadJSON(&msg))
	return msg
}

// expect reads messages until one of the given type arrives
func (p *player) expect(t *testing.T, event model.EventType) ws.Message {
	t.Helper()

	for {
		msg := p.next(t)
		if msg.Event == event {
			return msg
		}
	}
}

func (p *player) close(t *testing.T) {
	t.Helper()

	_ = p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	_ = p.conn.Close()
}

func decode[T any](t *testing.T, msg ws.Message) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(msg.Data, &v))
	return v
}
