package main

import (
	"encoding/json"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	TickRate     = 60 // simulation ticks per second
	TickDuration = time.Second / TickRate

	roomMaxPlayers = 10
	roomInboxSize  = 256
)

// RoomState is the lifecycle of a room.
type RoomState int

const (
	StateWaiting RoomState = iota // lobby, accepting joins
	StatePlaying                  // waves running
	StateEnded                    // terminal: won or lost, no more ticking
)

func (s RoomState) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StateEnded:
		return "ended"
	default:
		return "waiting"
	}
}

// Broadcaster is the transport seam the room talks through. The websocket
// Client implements it; tests substitute a mock.
type Broadcaster interface {
	SendJSON(msg interface{})
	SendRaw(data []byte)
	SendBinary(data []byte)
	PrefersBinary() bool
}

// roomHost is what a room needs from its registry: connection routing and
// teardown notification. Kept as an interface so room tests need no registry.
type roomHost interface {
	bindConn(connID, roomID string)
	unbindConn(connID string)
	roomGone(roomID string)
}

// Room owns one game session: its players, zombies, bullets and wave state.
// All of that state is touched by exactly one goroutine — the actor started
// by Run — which multiplexes the tick cadence, inbound commands and the
// deferred wave-respawn timer. Command methods post closures into the inbox;
// there are no locks.
type Room struct {
	ID string

	host      roomHost
	db        *DB
	analytics *Analytics
	metrics   *RoomMetrics

	inbox chan func()
	done  chan struct{}

	// Actor-owned state below. Never touch outside the Run goroutine.
	state     RoomState
	waves     *WaveDirector
	players   map[string]*Player
	clients   map[string]Broadcaster
	zombies   []*Zombie
	bullets   []*Bullet
	lastTick  time.Time
	startedAt time.Time
	respawn   *time.Timer // pending next-wave spawn, nil when none
	closed    bool
}

// NewRoom creates a room in the waiting state. Call Run to start its actor.
func NewRoom(id string, host roomHost, db *DB, analytics *Analytics) *Room {
	return &Room{
		ID:        id,
		host:      host,
		db:        db,
		analytics: analytics,
		metrics:   &RoomMetrics{},
		inbox:     make(chan func(), roomInboxSize),
		done:      make(chan struct{}),
		state:     StateWaiting,
		waves:     NewWaveDirector(),
		players:   make(map[string]*Player),
		clients:   make(map[string]Broadcaster),
	}
}

// Run is the room actor. It exits when the room empties or a tick panics;
// either way the room is removed from the registry first so no occupants
// are left pointing at a dead loop.
func (r *Room) Run() {
	defer func() {
		if rec := recover(); rec != nil {
			Log.Errorw("room loop panicked, tearing room down", "room", r.ID, "panic", rec)
			r.shutdown()
		}
	}()

	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		// nil channel when no spawn is pending, so the case never fires
		var respawnC <-chan time.Time
		if r.respawn != nil {
			respawnC = r.respawn.C
		}

		select {
		case <-ticker.C:
			start := time.Now()
			r.tick(start)
			r.metrics.AddTick(time.Since(start).Nanoseconds())
		case fn := <-r.inbox:
			fn()
			r.metrics.IncCommand()
		case <-respawnC:
			r.respawn = nil
			r.spawnNextWave()
		}

		if r.closed {
			return
		}
	}
}

// post hands a closure to the actor. Posts against a torn-down room are
// dropped silently: races between leave and in-flight commands are expected.
func (r *Room) post(fn func()) {
	select {
	case r.inbox <- fn:
	case <-r.done:
	}
}

// Join adds a connection to the room. The created flag selects the reply
// shape (roomCreated vs roomJoined + playerJoined broadcast).
func (r *Room) Join(c Broadcaster, connID, name string, custom Customization, created bool) {
	r.post(func() { r.applyJoin(c, connID, name, custom, created) })
}

// Leave removes a connection from the room, tearing the room down if it was
// the last occupant. Safe to call for connections that already left.
func (r *Room) Leave(connID string) {
	r.post(func() { r.applyLeave(connID) })
}

// Start moves the room from waiting to playing and spawns wave 1.
func (r *Room) Start(connID string) {
	r.post(func() { r.applyStart(connID) })
}

// Move applies a movement command for the given connection.
func (r *Room) Move(connID string, dx, dy float64) {
	r.post(func() { r.applyMove(connID, dx, dy) })
}

// Shoot appends one bullet with server-resolved weapon stats.
func (r *Room) Shoot(connID string, x, y, angle float64, weaponID string) {
	r.post(func() { r.applyShoot(connID, x, y, angle, weaponID) })
}

// Info returns a point-in-time summary for room lists. It round-trips
// through the actor so it never races a tick.
func (r *Room) Info() RoomInfo {
	reply := make(chan RoomInfo, 1)
	r.post(func() { reply <- r.info() })
	select {
	case inf := <-reply:
		return inf
	case <-r.done:
		return RoomInfo{ID: r.ID, State: StateEnded.String()}
	}
}

// Metrics exposes the room's counters. The struct is internally atomic.
func (r *Room) Metrics() *RoomMetrics {
	return r.metrics
}

func (r *Room) info() RoomInfo {
	return RoomInfo{
		ID:      r.ID,
		Players: len(r.players),
		State:   r.state.String(),
		Wave:    r.waves.Wave,
	}
}

func (r *Room) applyJoin(c Broadcaster, connID, name string, custom Customization, created bool) {
	if r.state != StateWaiting {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Message: "Game already in progress"}})
		return
	}
	if len(r.players) >= roomMaxPlayers {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Message: "Room is full"}})
		return
	}

	p := NewPlayer(connID, name, custom)
	r.players[connID] = p
	r.clients[connID] = c
	r.host.bindConn(connID, r.ID)

	if created {
		c.SendJSON(Envelope{T: MsgRoomCreated, Data: RoomCreatedMsg{RoomID: r.ID, Player: p}})
	} else {
		c.SendJSON(Envelope{T: MsgRoomJoined, Data: RoomJoinedMsg{RoomID: r.ID, Player: p, Players: r.players}})
		r.broadcastExcept(connID, Envelope{T: MsgPlayerJoined, Data: PlayerJoinedMsg{Player: p}})
	}

	r.analytics.Track(EvtPlayerJoined, p.AuthPlayerID, r.ID, "")
	Log.Infow("player joined", "room", r.ID, "player", connID, "name", name, "occupants", len(r.players))
}

func (r *Room) applyLeave(connID string) {
	if _, ok := r.players[connID]; !ok {
		return
	}
	delete(r.players, connID)
	delete(r.clients, connID)
	r.host.unbindConn(connID)

	r.broadcast(Envelope{T: MsgPlayerLeft, Data: PlayerLeftMsg{PlayerID: connID}})
	Log.Infow("player left", "room", r.ID, "player", connID, "occupants", len(r.players))

	if len(r.players) == 0 {
		r.shutdown()
	}
}

func (r *Room) applyStart(connID string) {
	if r.state != StateWaiting {
		return
	}
	if _, member := r.players[connID]; !member {
		return
	}

	r.state = StatePlaying
	now := time.Now()
	r.startedAt = now
	r.lastTick = now

	count := r.waves.Start()
	r.spawnZombies(count)
	r.waves.Activate()

	r.broadcast(Envelope{T: MsgGameStarted, Data: GameStartedMsg{Players: r.players}})
	r.analytics.Track(EvtGameStarted, 0, r.ID, "")
	Log.Infow("game started", "room", r.ID, "players", len(r.players), "zombies", count)
}

func (r *Room) applyMove(connID string, dx, dy float64) {
	if r.state != StatePlaying {
		return
	}
	p, ok := r.players[connID]
	if !ok {
		return
	}
	p.Move(dx, dy)
}

func (r *Room) applyShoot(connID string, x, y, angle float64, weaponID string) {
	if r.state != StatePlaying {
		return
	}
	p, ok := r.players[connID]
	if !ok || p.Down() {
		return
	}
	w := WeaponByID(weaponID)
	r.bullets = append(r.bullets, NewBullet(connID, x, y, angle, w))
}

// tick advances the simulation by one fixed step. Movement amounts are
// per-tick constants; the wall-clock delta is tracked but not used to scale
// physics.
func (r *Room) tick(now time.Time) {
	if r.state != StatePlaying {
		return
	}
	r.lastTick = now

	for _, z := range r.zombies {
		z.Advance(r.players)
	}
	r.bullets = AdvanceBullets(r.bullets)

	var report HitReport
	r.bullets, report = ResolveCollisions(r.bullets, r.zombies, r.players, now)
	r.zombies = ReapZombies(r.zombies)

	for pid, kills := range report.Kills {
		if p := r.players[pid]; p != nil {
			p.Kills += kills
		}
	}
	for _, pid := range report.Downed {
		// the only per-connection simulation event: goes to the downed
		// player, never to the room
		if c := r.clients[pid]; c != nil {
			c.SendJSON(Envelope{T: MsgPlayerDied, Data: PlayerDiedMsg{PlayerID: pid}})
		}
		if p := r.players[pid]; p != nil {
			r.analytics.Track(EvtPlayerDown, p.AuthPlayerID, r.ID, "")
			if r.db != nil && p.AuthPlayerID != 0 {
				go func(id int64) {
					if err := r.db.AddDown(id); err != nil {
						Log.Warnw("failed to record down", "player", id, "err", err)
					}
				}(p.AuthPlayerID)
			}
		}
	}

	switch r.waves.Advance(len(r.zombies)) {
	case WaveVictory:
		r.endGame(true, now)
		return
	case WaveSchedule:
		r.respawn = time.NewTimer(WaveRespawnDelay)
		r.analytics.Track(EvtWaveCleared, 0, r.ID, "")
		Log.Infow("wave cleared", "room", r.ID, "next", r.waves.Wave)
	}

	if AllPlayersDown(r.players) {
		r.endGame(false, now)
		return
	}

	r.broadcastState()
}

// spawnNextWave fires when the respawn delay elapses. A room that ended in
// the interim ignores it.
func (r *Room) spawnNextWave() {
	if r.state != StatePlaying {
		return
	}
	count := r.waves.BeginSpawn()
	r.spawnZombies(count)
	r.waves.Activate()
	Log.Infow("wave spawned", "room", r.ID, "wave", r.waves.Wave, "zombies", count)
}

func (r *Room) spawnZombies(count int) {
	r.zombies = make([]*Zombie, 0, count)
	for i := 0; i < count; i++ {
		r.zombies = append(r.zombies, NewZombie())
	}
}

// endGame transitions the room to its terminal state. Exactly one of
// gameWon/gameLost is emitted; the pending spawn, if any, is cancelled and
// no further gameState broadcasts happen.
func (r *Room) endGame(won bool, now time.Time) {
	r.state = StateEnded
	if r.respawn != nil {
		r.respawn.Stop()
		r.respawn = nil
	}
	r.bullets = nil
	r.zombies = nil

	if won {
		r.broadcast(Envelope{T: MsgGameWon})
		r.analytics.Track(EvtGameWon, 0, r.ID, "")
	} else {
		r.broadcast(Envelope{T: MsgGameLost})
		r.analytics.Track(EvtGameLost, 0, r.ID, "")
	}

	duration := now.Sub(r.startedAt).Seconds()
	r.recordResults(won, duration)
	Log.Infow("game over", "room", r.ID, "won", won, "wave", r.waves.Wave, "duration", duration)
}

type gameResult struct {
	authPlayerID int64
	kills        int
	wave         int
	won          bool
	duration     float64
}

// recordResults persists lifetime stats for authenticated players. The DB
// writes happen off the actor goroutine so a slow disk cannot stall a room.
func (r *Room) recordResults(won bool, duration float64) {
	if r.db == nil {
		return
	}
	var results []gameResult
	for _, p := range r.players {
		if p.AuthPlayerID == 0 {
			continue
		}
		results = append(results, gameResult{
			authPlayerID: p.AuthPlayerID,
			kills:        p.Kills,
			wave:         r.waves.Wave,
			won:          won,
			duration:     duration,
		})
	}
	if len(results) == 0 {
		return
	}
	go func() {
		for _, res := range results {
			if err := r.db.RecordGameResult(res.authPlayerID, res.kills, res.wave, res.won, res.duration); err != nil {
				Log.Warnw("failed to record game result", "player", res.authPlayerID, "err", err)
			}
		}
	}()
}

// shutdown ends the actor. Registry removal happens before done is closed
// so no new command can route here afterwards.
func (r *Room) shutdown() {
	if r.closed {
		return
	}
	r.closed = true
	if r.respawn != nil {
		r.respawn.Stop()
		r.respawn = nil
	}
	for connID := range r.clients {
		r.host.unbindConn(connID)
	}
	r.host.roomGone(r.ID)
	close(r.done)
	Log.Infow("room closed", "room", r.ID)
}

func (r *Room) broadcast(msg Envelope) {
	data, err := json.Marshal(msg)
	if err != nil {
		Log.Warnw("broadcast marshal failed", "room", r.ID, "err", err)
		return
	}
	for _, c := range r.clients {
		c.SendRaw(data)
	}
}

func (r *Room) broadcastExcept(skipID string, msg Envelope) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	for id, c := range r.clients {
		if id == skipID {
			continue
		}
		c.SendRaw(data)
	}
}

// broadcastState sends the full snapshot to every occupant. The JSON form
// is marshaled once; clients that opted into binary frames get the same
// snapshot msgpack-encoded instead.
func (r *Room) broadcastState() {
	state := GameStateMsg{
		Players:     r.players,
		Zombies:     r.zombies,
		Bullets:     r.bullets,
		Wave:        r.waves.Wave,
		ZombiesLeft: len(r.zombies),
	}

	data, err := json.Marshal(Envelope{T: MsgGameState, Data: state})
	if err != nil {
		return
	}

	var bin []byte
	for _, c := range r.clients {
		if c.PrefersBinary() {
			if bin == nil {
				bin, err = msgpack.Marshal(state)
				if err != nil {
					Log.Warnw("state msgpack marshal failed", "room", r.ID, "err", err)
					bin = []byte{}
				}
			}
			if len(bin) > 0 {
				c.SendBinary(bin)
			}
		} else {
			c.SendRaw(data)
		}
	}
	r.metrics.IncBroadcast()
}
