package main

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufSize    = 256
	maxNameLen     = 16

	// Inbound message budget per connection: 50/s sustained, burst 100.
	msgRateLimit = 50
	msgRateBurst = 100
)

// Client represents one WebSocket connection. Its connection id doubles as
// the player id inside whatever room it joins.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	connID     string
	remoteAddr string
	limiter    *rate.Limiter

	binary bool // wants msgpack state frames

	// Auth state
	authPlayerID int64  // 0 = guest
	authUsername string // "" = guest
}

// NewClient creates a Client with a fresh connection id.
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		connID:     uuid.NewString(),
		remoteAddr: remoteAddr,
		limiter:    rate.NewLimiter(msgRateLimit, msgRateBurst),
	}
}

// ReadPump reads messages from the WebSocket connection.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				Log.Debugw("websocket read error", "addr", c.remoteAddr, "err", err)
			}
			break
		}

		if !c.limiter.Allow() {
			Log.Warnw("message rate limit exceeded, disconnecting", "addr", c.remoteAddr)
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 0xFF prefix marks binary frames enqueued by SendBinary
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client.
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		Log.Warnw("marshal error", "err", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw enqueues pre-marshaled bytes as a text message. Slow clients have
// messages dropped rather than stalling the sender.
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }() // send on closed channel during teardown
	select {
	case c.send <- data:
	default:
	}
}

// SendBinary enqueues bytes as a binary WebSocket message, prefixed with a
// 0xFF marker so WritePump can tell it apart from text.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

// PrefersBinary reports whether the client opted into msgpack state frames.
func (c *Client) PrefersBinary() bool {
	return c.binary
}

func (c *Client) sendError(message string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Message: message}})
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope).
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		Log.Debugw("unmarshal error", "addr", c.remoteAddr, "err", err)
		return
	}

	switch env.T {
	case MsgCreateRoom:
		c.handleCreateRoom(env.D)
	case MsgJoinRoom:
		c.handleJoinRoom(env.D)
	case MsgStartGame:
		c.handleStartGame(env.D)
	case MsgMove:
		c.handleMove(env.D)
	case MsgShoot:
		c.handleShoot(env.D)
	case MsgLeaveRoom:
		c.handleLeaveRoom(env.D)
	case MsgListRooms:
		c.handleListRooms()
	case MsgCheckRoom:
		c.handleCheckRoom(env.D)
	case MsgRegister:
		c.handleRegister(env.D)
	case MsgLogin:
		c.handleLogin(env.D)
	case MsgAuth:
		c.handleAuth(env.D)
	case MsgProfile:
		c.handleProfile()
	case MsgTop:
		c.handleLeaderboard(env.D)
	}
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Survivor"
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return name
}

func (c *Client) handleCreateRoom(data json.RawMessage) {
	var msg CreateRoomMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if c.hub.registry.RoomByConn(c.connID) != nil {
		c.sendError("Already in a room")
		return
	}

	room, err := c.hub.registry.CreateRoom()
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.binary = msg.Binary
	room.Join(c, c.connID, cleanName(msg.PlayerName), msg.Customization, true)
	c.setAuthLink(room)
}

func (c *Client) handleJoinRoom(data json.RawMessage) {
	var msg JoinRoomMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if c.hub.registry.RoomByConn(c.connID) != nil {
		c.sendError("Already in a room")
		return
	}

	room := c.hub.registry.Room(strings.ToUpper(strings.TrimSpace(msg.RoomID)))
	if room == nil {
		c.sendError("Room not found")
		return
	}
	c.binary = msg.Binary
	room.Join(c, c.connID, cleanName(msg.PlayerName), msg.Customization, false)
	c.setAuthLink(room)
}

// setAuthLink ties the in-room player to the authenticated account, if any,
// so end-of-game stats land on the right row. Runs after the join command
// and is a no-op if the join was rejected.
func (c *Client) setAuthLink(room *Room) {
	if c.authPlayerID == 0 {
		return
	}
	authID := c.authPlayerID
	connID := c.connID
	room.post(func() {
		if p, ok := room.players[connID]; ok {
			p.AuthPlayerID = authID
		}
	})
}

func (c *Client) handleStartGame(data json.RawMessage) {
	var msg StartGameMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	room := c.hub.registry.Room(strings.ToUpper(strings.TrimSpace(msg.RoomID)))
	if room == nil {
		return
	}
	room.Start(c.connID)
}

func (c *Client) handleMove(data json.RawMessage) {
	var msg MoveMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	room := c.hub.registry.RoomByConn(c.connID)
	if room == nil {
		return
	}
	room.Move(c.connID, msg.DX, msg.DY)
}

func (c *Client) handleShoot(data json.RawMessage) {
	var msg ShootMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	room := c.hub.registry.RoomByConn(c.connID)
	if room == nil {
		return
	}
	room.Shoot(c.connID, msg.X, msg.Y, msg.Angle, msg.Weapon)
}

func (c *Client) handleLeaveRoom(data json.RawMessage) {
	var msg LeaveRoomMsg
	if len(data) > 0 {
		json.Unmarshal(data, &msg)
	}
	room := c.hub.registry.RoomByConn(c.connID)
	if room == nil {
		return
	}
	// a leave naming some other room is stale; the connection's own room is
	// the only thing it can leave
	if id := strings.ToUpper(strings.TrimSpace(msg.RoomID)); id != "" && id != room.ID {
		return
	}
	room.Leave(c.connID)
}

func (c *Client) handleListRooms() {
	c.SendJSON(Envelope{T: MsgRoomList, Data: c.hub.registry.List()})
}

func (c *Client) handleCheckRoom(data json.RawMessage) {
	var msg CheckRoomMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	code := strings.ToUpper(strings.TrimSpace(msg.RoomID))
	room := c.hub.registry.Room(code)
	if room == nil {
		c.SendJSON(Envelope{T: MsgRoomChecked, Data: RoomCheckedMsg{RoomID: code, Exists: false}})
		return
	}
	inf := room.Info()
	c.SendJSON(Envelope{T: MsgRoomChecked, Data: RoomCheckedMsg{
		RoomID:   code,
		Exists:   true,
		Joinable: inf.State == StateWaiting.String() && inf.Players < roomMaxPlayers,
		Players:  inf.Players,
	}})
}

func (c *Client) handleRegister(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg RegisterMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.authPlayerID = id
	c.authUsername = msg.Username
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{Token: token, Username: msg.Username, PlayerID: id}})
}

func (c *Client) handleLogin(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg LoginMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.authPlayerID = id
	c.authUsername = msg.Username
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{Token: token, Username: msg.Username, PlayerID: id}})
}

func (c *Client) handleAuth(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.sendError("invalid token")
		return
	}
	c.authPlayerID = id
	c.authUsername = username
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{Token: msg.Token, Username: username, PlayerID: id}})
}

func (c *Client) handleProfile() {
	if c.hub.db == nil || c.authPlayerID == 0 {
		c.sendError("not authenticated")
		return
	}
	stats, err := c.hub.db.GetStats(c.authPlayerID)
	if err != nil || stats == nil {
		c.sendError("profile not found")
		return
	}
	c.SendJSON(Envelope{T: MsgProfileData, Data: ProfileDataMsg{
		Username: c.authUsername,
		Kills:    stats.Kills,
		Downs:    stats.Downs,
		Games:    stats.Games,
		Wins:     stats.Wins,
		Losses:   stats.Losses,
		BestWave: stats.BestWave,
		Playtime: stats.Playtime,
	}})
}

func (c *Client) handleLeaderboard(data json.RawMessage) {
	if c.hub.db == nil {
		return
	}
	var msg TopMsg
	if len(data) > 0 {
		if err := json.Unmarshal(data, &msg); err != nil {
			return
		}
	}
	entries, err := c.hub.db.GetLeaderboard(msg.By, 10)
	if err != nil {
		c.sendError("leaderboard unavailable")
		return
	}
	c.SendJSON(Envelope{T: MsgTopData, Data: entries})
}
