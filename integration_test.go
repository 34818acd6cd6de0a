package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	hub := NewHub(nil)
	go hub.Run()
	srv := httptest.NewServer(SetupRoutes(hub, ""))
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendMsg(t *testing.T, conn *websocket.Conn, msgType string, data interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(Envelope{T: msgType, Data: data}))
}

// readUntil reads text frames until a message of the wanted type arrives,
// returning its payload. Binary frames and other types are skipped.
func readUntil(t *testing.T, conn *websocket.Conn, want string) json.RawMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		frameType, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %q", want)
		if frameType != websocket.TextMessage {
			continue
		}
		var env InEnvelope
		if json.Unmarshal(data, &env) == nil && env.T == want {
			return env.D
		}
	}
}

// readUntilBinary reads frames until a binary one arrives.
func readUntilBinary(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		frameType, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for binary frame")
		if frameType == websocket.BinaryMessage {
			return data
		}
	}
}

func TestCreateStartAndPlay(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv)

	sendMsg(t, conn, MsgCreateRoom, CreateRoomMsg{PlayerName: "Rick"})
	var created RoomCreatedMsg
	require.NoError(t, json.Unmarshal(readUntil(t, conn, MsgRoomCreated), &created))
	assert.Len(t, created.RoomID, roomCodeLen)
	assert.Equal(t, "Rick", created.Player.Name)
	assert.Equal(t, PlayerMaxHealth, created.Player.Health)

	sendMsg(t, conn, MsgStartGame, StartGameMsg{RoomID: created.RoomID})
	var started GameStartedMsg
	require.NoError(t, json.Unmarshal(readUntil(t, conn, MsgGameStarted), &started))
	assert.Len(t, started.Players, 1)

	var state GameStateMsg
	require.NoError(t, json.Unmarshal(readUntil(t, conn, MsgGameState), &state))
	assert.Equal(t, 1, state.Wave)
	assert.Equal(t, DefaultZombiesPerWave, state.ZombiesLeft)
	assert.Len(t, state.Zombies, DefaultZombiesPerWave)

	// move and shoot flow through to subsequent snapshots
	sendMsg(t, conn, MsgMove, MoveMsg{DX: 1, DY: 0})
	sendMsg(t, conn, MsgShoot, ShootMsg{X: created.Player.X, Y: created.Player.Y, Angle: 0, Weapon: "rifle"})
	deadline := time.Now().Add(3 * time.Second)
	for {
		require.NoError(t, json.Unmarshal(readUntil(t, conn, MsgGameState), &state))
		if len(state.Bullets) > 0 {
			assert.Equal(t, 35, state.Bullets[0].Damage)
			break
		}
		require.True(t, time.Now().Before(deadline), "bullet never showed up in a snapshot")
	}
}

func TestJoinRoomFlow(t *testing.T) {
	srv := newTestServer(t)
	c1 := dialWS(t, srv)
	c2 := dialWS(t, srv)

	sendMsg(t, c1, MsgCreateRoom, CreateRoomMsg{PlayerName: "Rick"})
	var created RoomCreatedMsg
	require.NoError(t, json.Unmarshal(readUntil(t, c1, MsgRoomCreated), &created))

	// room codes are case-insensitive on join
	sendMsg(t, c2, MsgJoinRoom, JoinRoomMsg{PlayerName: "Daryl", RoomID: strings.ToLower(created.RoomID)})
	var joined RoomJoinedMsg
	require.NoError(t, json.Unmarshal(readUntil(t, c2, MsgRoomJoined), &joined))
	assert.Equal(t, created.RoomID, joined.RoomID)
	assert.Len(t, joined.Players, 2)

	var pj PlayerJoinedMsg
	require.NoError(t, json.Unmarshal(readUntil(t, c1, MsgPlayerJoined), &pj))
	assert.Equal(t, "Daryl", pj.Player.Name)
}

func TestJoinUnknownRoom(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv)

	sendMsg(t, conn, MsgJoinRoom, JoinRoomMsg{PlayerName: "Daryl", RoomID: "NOSUCH"})
	var errMsg ErrorMsg
	require.NoError(t, json.Unmarshal(readUntil(t, conn, MsgError), &errMsg))
	assert.Equal(t, "Room not found", errMsg.Message)
}

func TestDisconnectLeavesRoom(t *testing.T) {
	srv := newTestServer(t)
	c1 := dialWS(t, srv)
	c2 := dialWS(t, srv)

	sendMsg(t, c1, MsgCreateRoom, CreateRoomMsg{PlayerName: "Rick"})
	var created RoomCreatedMsg
	require.NoError(t, json.Unmarshal(readUntil(t, c1, MsgRoomCreated), &created))

	sendMsg(t, c2, MsgJoinRoom, JoinRoomMsg{PlayerName: "Daryl", RoomID: created.RoomID})
	readUntil(t, c2, MsgRoomJoined)
	readUntil(t, c1, MsgPlayerJoined)

	c2.Close()

	var left PlayerLeftMsg
	require.NoError(t, json.Unmarshal(readUntil(t, c1, MsgPlayerLeft), &left))
	assert.NotEmpty(t, left.PlayerID)
}

func TestLeaveRoom(t *testing.T) {
	srv := newTestServer(t)
	c1 := dialWS(t, srv)
	c2 := dialWS(t, srv)

	sendMsg(t, c1, MsgCreateRoom, CreateRoomMsg{PlayerName: "Rick"})
	var created RoomCreatedMsg
	require.NoError(t, json.Unmarshal(readUntil(t, c1, MsgRoomCreated), &created))

	sendMsg(t, c2, MsgJoinRoom, JoinRoomMsg{PlayerName: "Daryl", RoomID: created.RoomID})
	var joined RoomJoinedMsg
	require.NoError(t, json.Unmarshal(readUntil(t, c2, MsgRoomJoined), &joined))
	readUntil(t, c1, MsgPlayerJoined)

	// a leave naming a different room is stale and changes nothing
	sendMsg(t, c2, MsgLeaveRoom, LeaveRoomMsg{RoomID: "OTHER1"})
	sendMsg(t, c2, MsgCheckRoom, CheckRoomMsg{RoomID: created.RoomID})
	var checked RoomCheckedMsg
	require.NoError(t, json.Unmarshal(readUntil(t, c2, MsgRoomChecked), &checked))
	assert.Equal(t, 2, checked.Players)

	// the leave for the occupied room goes through
	sendMsg(t, c2, MsgLeaveRoom, LeaveRoomMsg{RoomID: created.RoomID})

	var left PlayerLeftMsg
	require.NoError(t, json.Unmarshal(readUntil(t, c1, MsgPlayerLeft), &left))
	assert.Equal(t, joined.Player.ID, left.PlayerID)
}

func TestCheckRoomAndList(t *testing.T) {
	srv := newTestServer(t)
	c1 := dialWS(t, srv)
	c2 := dialWS(t, srv)

	sendMsg(t, c1, MsgCreateRoom, CreateRoomMsg{PlayerName: "Rick"})
	var created RoomCreatedMsg
	require.NoError(t, json.Unmarshal(readUntil(t, c1, MsgRoomCreated), &created))

	sendMsg(t, c2, MsgCheckRoom, CheckRoomMsg{RoomID: created.RoomID})
	var checked RoomCheckedMsg
	require.NoError(t, json.Unmarshal(readUntil(t, c2, MsgRoomChecked), &checked))
	assert.True(t, checked.Exists)
	assert.True(t, checked.Joinable)
	assert.Equal(t, 1, checked.Players)

	sendMsg(t, c2, MsgCheckRoom, CheckRoomMsg{RoomID: "NOSUCH"})
	require.NoError(t, json.Unmarshal(readUntil(t, c2, MsgRoomChecked), &checked))
	assert.False(t, checked.Exists)

	sendMsg(t, c2, MsgListRooms, nil)
	var list []RoomInfo
	require.NoError(t, json.Unmarshal(readUntil(t, c2, MsgRoomList), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.RoomID, list[0].ID)
}

func TestBinaryStateFrames(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv)

	sendMsg(t, conn, MsgCreateRoom, CreateRoomMsg{PlayerName: "Rick", Binary: true})
	var created RoomCreatedMsg
	require.NoError(t, json.Unmarshal(readUntil(t, conn, MsgRoomCreated), &created))

	sendMsg(t, conn, MsgStartGame, StartGameMsg{RoomID: created.RoomID})
	readUntil(t, conn, MsgGameStarted)

	var state GameStateMsg
	require.NoError(t, msgpack.Unmarshal(readUntilBinary(t, conn), &state))
	assert.Equal(t, 1, state.Wave)
	assert.Equal(t, DefaultZombiesPerWave, state.ZombiesLeft)
}

func TestHealthzEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
}

func TestQREndpoint(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv)

	sendMsg(t, conn, MsgCreateRoom, CreateRoomMsg{PlayerName: "Rick"})
	var created RoomCreatedMsg
	require.NoError(t, json.Unmarshal(readUntil(t, conn, MsgRoomCreated), &created))

	resp, err := http.Get(srv.URL + "/qr?room=" + created.RoomID)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	resp2, err := http.Get(srv.URL + "/qr?room=NOSUCH")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}
