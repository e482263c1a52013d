package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Aspandiyar933/poker/internal/codec"
	"github.com/Aspandiyar933/poker/internal/lobby"
	"github.com/Aspandiyar933/poker/internal/table"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *Gateway) {
	t.Helper()

	lby := lobby.New(lobby.Config{Table: table.Config{Seed: 1}})
	t.Cleanup(lby.Stop)

	gw := New(lby)
	srv := httptest.NewServer(http.HandlerFunc(gw.HandleWebSocket))
	t.Cleanup(srv.Close)
	return srv, gw
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(v))
}

// readUntil reads frames until one of the wanted type arrives, failing on
// timeout or an unexpected ERROR.
func readUntil(t *testing.T, conn *websocket.Conn, wantType string) map[string]json.RawMessage {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var frame map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &frame))

		var msgType string
		require.NoError(t, json.Unmarshal(frame["type"], &msgType))
		if msgType == wantType {
			return frame
		}
		if msgType == codec.TypeError && wantType != codec.TypeError {
			t.Fatalf("unexpected error frame while waiting for %s: %s", wantType, data)
		}
	}
}

func TestCreateGameFlow(t *testing.T) {
	srv, gw := newTestServer(t)
	conn := dial(t, srv)

	// Registration happens in the handler goroutine after the handshake.
	require.Eventually(t, func() bool { return gw.ConnectionCount() == 1 },
		time.Second, 10*time.Millisecond)

	send(t, conn, codec.ClientMessage{Type: codec.TypeCreateGame, PlayerName: "alice"})

	frame := readUntil(t, conn, codec.TypeGameCreated)
	var created codec.GameCreated
	require.NoError(t, json.Unmarshal(mustMarshal(t, frame), &created))
	assert.NotEmpty(t, created.GameID)
	assert.NotEmpty(t, created.PlayerID)

	conn.Close()
	require.Eventually(t, func() bool { return gw.ConnectionCount() == 0 },
		time.Second, 10*time.Millisecond)
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestJoinUnknownGame(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	send(t, conn, codec.ClientMessage{Type: codec.TypeJoinGame, GameID: "missing", PlayerName: "bob"})

	frame := readUntil(t, conn, codec.TypeError)
	var errMsg codec.ErrorMessage
	require.NoError(t, json.Unmarshal(mustMarshal(t, frame), &errMsg))
	assert.Equal(t, "Game not found", errMsg.Message)
}

func TestMalformedMessageKeepsConnectionOpen(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	frame := readUntil(t, conn, codec.TypeError)
	var errMsg codec.ErrorMessage
	require.NoError(t, json.Unmarshal(mustMarshal(t, frame), &errMsg))
	assert.Equal(t, "Invalid message format", errMsg.Message)

	// Connection survives the bad frame.
	send(t, conn, codec.ClientMessage{Type: codec.TypeCreateGame, PlayerName: "alice"})
	readUntil(t, conn, codec.TypeGameCreated)
}

func TestSecondPlayerSeesState(t *testing.T) {
	srv, _ := newTestServer(t)
	creator := dial(t, srv)

	send(t, creator, codec.ClientMessage{Type: codec.TypeCreateGame, PlayerName: "alice"})
	frame := readUntil(t, creator, codec.TypeGameCreated)
	var created codec.GameCreated
	require.NoError(t, json.Unmarshal(mustMarshal(t, frame), &created))

	joiner := dial(t, srv)
	send(t, joiner, codec.ClientMessage{Type: codec.TypeJoinGame, GameID: created.GameID, PlayerName: "bob"})

	// The table fans out state to members before the join reply is sent.
	stateFrame := readUntil(t, joiner, codec.TypeGameState)
	readUntil(t, joiner, codec.TypeGameJoined)
	var state codec.GameState
	require.NoError(t, json.Unmarshal(mustMarshal(t, stateFrame), &state))
	assert.Equal(t, created.GameID, state.State.ID)
	assert.Len(t, state.State.Players, 2)
}
