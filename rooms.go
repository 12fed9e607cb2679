package main

import "sync"

const maxRooms = 100

// RoomManager owns every live room, keyed by join code. Rooms enter via
// CreateRoom and leave when their last player disconnects.
type RoomManager struct {
	mu        sync.RWMutex
	rooms     map[string]*Room
	db        *DB
	analytics *Analytics
}

// NewRoomManager creates an empty RoomManager
func NewRoomManager(db *DB, analytics *Analytics) *RoomManager {
	return &RoomManager{
		rooms:     make(map[string]*Room),
		db:        db,
		analytics: analytics,
	}
}

// CreateRoom builds a new room with a unique code and starts its tick
// loop. Returns nil when the room limit is reached.
func (rm *RoomManager) CreateRoom(hostID string, potatoSpeed float64, maxPlayers int, isPrivate bool) *Room {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if len(rm.rooms) >= maxRooms {
		return nil
	}

	code := GenerateRoomCode()
	for rm.rooms[code] != nil {
		code = GenerateRoomCode()
	}

	room := NewRoom(code, hostID, potatoSpeed, maxPlayers, isPrivate, rm.db, rm.analytics)
	rm.rooms[code] = room
	go room.Run()

	if rm.analytics != nil {
		rm.analytics.Track(EvtRoomCreated, 0, code, "")
	}
	return room
}

// GetRoom returns a room by code, nil if unknown
func (rm *RoomManager) GetRoom(code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[code]
}

// RemovePlayer drops a player from a room, deleting the room when it
// empties. Returns the room (nil if it was deleted or never existed) so
// the caller can broadcast the new roster.
func (rm *RoomManager) RemovePlayer(roomID, playerID string) *Room {
	rm.mu.RLock()
	room, ok := rm.rooms[roomID]
	rm.mu.RUnlock()
	if !ok {
		return nil
	}

	empty, _ := room.RemovePlayer(playerID)
	if empty {
		room.Stop()
		rm.mu.Lock()
		delete(rm.rooms, roomID)
		rm.mu.Unlock()
		return nil
	}
	return room
}

// ListLobbies returns the public lobby listing; private rooms are hidden
func (rm *RoomManager) ListLobbies() []LobbyInfo {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	list := make([]LobbyInfo, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		if room.IsPrivate {
			continue
		}
		room.mu.Lock()
		info := LobbyInfo{
			ID:         room.ID,
			Players:    len(room.players),
			MaxPlayers: room.MaxPlayers,
			State:      room.State,
		}
		room.mu.Unlock()
		list = append(list, info)
	}
	return list
}

// RoomCount returns the number of live rooms
func (rm *RoomManager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}
