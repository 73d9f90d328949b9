package memory

import (
	"sync"

	"github.com/google/uuid"
)

// RoomRegistry is the room -> members mapping, the sole place group
// membership is tracked. A room exists exactly while it has members.
//
// Operations on unknown ids are no-ops, never errors: late leaves after a
// disconnect already cleaned up are an expected race.
type RoomRegistry interface {
	// Join adds a session to a room's member set. Idempotent if already a
	// member; moves the session if it belongs to another room.
	Join(sessionID uuid.UUID, roomID string)

	// Leave removes a session from whatever room it belongs to.
	Leave(sessionID uuid.UUID)

	// MembersOf returns the current member session ids of a room.
	MembersOf(roomID string) []uuid.UUID

	// RoomOf returns the room a session belongs to.
	RoomOf(sessionID uuid.UUID) (string, bool)

	// RoomCount returns the number of rooms with at least one member.
	RoomCount() int
}

type roomRegistry struct {
	// members хранит map[room_id]set[session_id]
	members map[string]map[uuid.UUID]struct{}

	// rooms хранит map[session_id]room_id
	rooms map[uuid.UUID]string

	mu sync.RWMutex
}

func NewRoomRegistry() RoomRegistry {
	return &roomRegistry{
		members: make(map[string]map[uuid.UUID]struct{}),
		rooms:   make(map[uuid.UUID]string),
	}
}

func (r *roomRegistry) Join(sessionID uuid.UUID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.rooms[sessionID]; ok {
		if current == roomID {
			return
		}
		r.removeLocked(sessionID, current)
	}

	if _, ok := r.members[roomID]; !ok {
		r.members[roomID] = make(map[uuid.UUID]struct{})
	}

	r.members[roomID][sessionID] = struct{}{}
	r.rooms[sessionID] = roomID
}

func (r *roomRegistry) Leave(sessionID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.rooms[sessionID]
	if !ok {
		return
	}

	r.removeLocked(sessionID, roomID)
}

func (r *roomRegistry) removeLocked(sessionID uuid.UUID, roomID string) {
	delete(r.rooms, sessionID)

	if set, ok := r.members[roomID]; ok {
		delete(set, sessionID)
		if len(set) == 0 {
			delete(r.members, roomID)
		}
	}
}

func (r *roomRegistry) MembersOf(roomID string) []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.members[roomID]
	if !ok {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}

	return ids
}

func (r *roomRegistry) RoomOf(sessionID uuid.UUID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomID, ok := r.rooms[sessionID]
	return roomID, ok
}

func (r *roomRegistry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.members)
}
