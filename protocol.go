package main

import "encoding/json"

// Client -> Server message types
const (
	MsgCreateRoom = "createRoom"
	MsgJoinRoom   = "joinRoom"
	MsgStartGame  = "startGame"
	MsgMove       = "move"
	MsgShoot      = "shoot"
	MsgLeaveRoom  = "leaveRoom"
	MsgListRooms  = "listRooms"
	MsgCheckRoom  = "checkRoom"
	MsgRegister   = "register"
	MsgLogin      = "login"
	MsgAuth       = "auth"
	MsgProfile    = "profile"
	MsgTop        = "leaderboard"
)

// Server -> Client message types
const (
	MsgRoomCreated  = "roomCreated"
	MsgRoomJoined   = "roomJoined"
	MsgPlayerJoined = "playerJoined"
	MsgPlayerLeft   = "playerLeft"
	MsgGameStarted  = "gameStarted"
	MsgGameState    = "gameState"
	MsgPlayerDied   = "playerDied"
	MsgGameWon      = "gameWon"
	MsgGameLost     = "gameLost"
	MsgError        = "error"
	MsgRoomList     = "roomList"
	MsgRoomChecked  = "roomChecked"
	MsgAuthOK       = "authOk"
	MsgProfileData  = "profileData"
	MsgTopData      = "leaderboardData"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages — json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// CreateRoomMsg opens a fresh room with the sender as first occupant.
type CreateRoomMsg struct {
	PlayerName    string        `json:"playerName"`
	Customization Customization `json:"customization"`
	Binary        bool          `json:"binary,omitempty"` // opt into msgpack state frames
}

// JoinRoomMsg joins an existing waiting room by code.
type JoinRoomMsg struct {
	PlayerName    string        `json:"playerName"`
	RoomID        string        `json:"roomId"`
	Customization Customization `json:"customization"`
	Binary        bool          `json:"binary,omitempty"`
}

// StartGameMsg starts the wave director for the sender's room.
type StartGameMsg struct {
	RoomID string `json:"roomId"`
}

// MoveMsg carries a unit-normalized movement intent.
type MoveMsg struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// ShootMsg carries a shot origin and direction. Only the weapon id is
// trusted; damage and speed are resolved server-side.
type ShootMsg struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Angle  float64 `json:"angle"`
	Weapon string  `json:"weapon"`
}

// LeaveRoomMsg leaves the sender's room.
type LeaveRoomMsg struct {
	RoomID string `json:"roomId"`
}

// CheckRoomMsg asks whether a room code is live and joinable.
type CheckRoomMsg struct {
	RoomID string `json:"roomId"`
}

// RoomCreatedMsg is the reply to createRoom, sent to the creator only.
type RoomCreatedMsg struct {
	RoomID string  `json:"roomId"`
	Player *Player `json:"player"`
}

// RoomJoinedMsg is the reply to joinRoom, sent to the joiner only.
type RoomJoinedMsg struct {
	RoomID  string             `json:"roomId"`
	Player  *Player            `json:"player"`
	Players map[string]*Player `json:"players"`
}

// PlayerJoinedMsg is broadcast to the room, excluding the joiner.
type PlayerJoinedMsg struct {
	Player *Player `json:"player"`
}

// PlayerLeftMsg is broadcast to the room when an occupant leaves.
type PlayerLeftMsg struct {
	PlayerID string `json:"playerId"`
}

// GameStartedMsg is broadcast when the room leaves the lobby.
type GameStartedMsg struct {
	Players map[string]*Player `json:"players"`
}

// GameStateMsg is the full room snapshot, broadcast once per tick while
// the game is playing.
type GameStateMsg struct {
	Players     map[string]*Player `json:"players"`
	Zombies     []*Zombie          `json:"zombies"`
	Bullets     []*Bullet          `json:"bullets"`
	Wave        int                `json:"wave"`
	ZombiesLeft int                `json:"zombiesLeft"`
}

// PlayerDiedMsg is the only per-connection simulation event: it goes to the
// downed player, never to the room.
type PlayerDiedMsg struct {
	PlayerID string `json:"playerId"`
}

// ErrorMsg is sent to the originating connection on invalid room operations.
type ErrorMsg struct {
	Message string `json:"message"`
}

// RoomInfo is one entry in the room list.
type RoomInfo struct {
	ID      string `json:"id"`
	Players int    `json:"players"`
	State   string `json:"state"`
	Wave    int    `json:"wave"`
}

// RoomCheckedMsg is the reply to checkRoom.
type RoomCheckedMsg struct {
	RoomID   string `json:"roomId"`
	Exists   bool   `json:"exists"`
	Joinable bool   `json:"joinable,omitempty"`
	Players  int    `json:"players,omitempty"`
}

// RegisterMsg creates an account.
type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginMsg authenticates an existing account.
type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TopMsg requests the leaderboard ordered by the given column.
type TopMsg struct {
	By string `json:"by"`
}

// AuthMsg resumes a session from a stored token.
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms register/login/auth.
type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID int64  `json:"playerId"`
}

// ProfileDataMsg is the reply to profile.
type ProfileDataMsg struct {
	Username string  `json:"username"`
	Kills    int     `json:"kills"`
	Downs    int     `json:"downs"`
	Games    int     `json:"games"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	BestWave int     `json:"bestWave"`
	Playtime float64 `json:"playtime"`
}
