package main

import (
	"errors"
	"sync"
)

const (
	maxRooms    = 100
	roomCodeLen = 6
)

// Registry owns the roomID -> Room mapping and the connID -> roomID lookup
// used to route commands. It owns no entity data; rooms do.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	byConn map[string]string

	db        *DB
	analytics *Analytics
}

func NewRegistry(db *DB, analytics *Analytics) *Registry {
	return &Registry{
		rooms:     make(map[string]*Room),
		byConn:    make(map[string]string),
		db:        db,
		analytics: analytics,
	}
}

// CreateRoom allocates a room under a fresh code and starts its actor.
func (reg *Registry) CreateRoom() (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if len(reg.rooms) >= maxRooms {
		return nil, errors.New("too many active rooms")
	}

	var code string
	for {
		code = GenerateRoomCode(roomCodeLen)
		if _, taken := reg.rooms[code]; !taken {
			break
		}
	}

	room := NewRoom(code, reg, reg.db, reg.analytics)
	reg.rooms[code] = room
	go room.Run()

	reg.analytics.Track(EvtRoomCreated, 0, code, "")
	Log.Infow("room created", "room", code, "active", len(reg.rooms))
	return room, nil
}

// Room returns the live room with the given code, or nil.
func (reg *Registry) Room(id string) *Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.rooms[id]
}

// RoomByConn resolves the room a connection currently occupies, or nil.
func (reg *Registry) RoomByConn(connID string) *Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	if roomID, ok := reg.byConn[connID]; ok {
		return reg.rooms[roomID]
	}
	return nil
}

// Count returns the number of live rooms.
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// List summarizes all live rooms. Room pointers are collected under the
// lock but Info round-trips through each actor afterwards, since an actor
// calling back into the registry must never find us holding the lock.
func (reg *Registry) List() []RoomInfo {
	reg.mu.RLock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	reg.mu.RUnlock()

	list := make([]RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		list = append(list, room.Info())
	}
	return list
}

// MetricsSnapshot returns per-room counters keyed by room code.
func (reg *Registry) MetricsSnapshot() map[string]map[string]any {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make(map[string]map[string]any, len(reg.rooms))
	for code, room := range reg.rooms {
		out[code] = room.Metrics().Snapshot()
	}
	return out
}

// roomHost implementation — called from room actors.

func (reg *Registry) bindConn(connID, roomID string) {
	reg.mu.Lock()
	reg.byConn[connID] = roomID
	reg.mu.Unlock()
}

func (reg *Registry) unbindConn(connID string) {
	reg.mu.Lock()
	delete(reg.byConn, connID)
	reg.mu.Unlock()
}

func (reg *Registry) roomGone(roomID string) {
	reg.mu.Lock()
	delete(reg.rooms, roomID)
	remaining := len(reg.rooms)
	reg.mu.Unlock()
	Log.Infow("room removed", "room", roomID, "active", remaining)
}
