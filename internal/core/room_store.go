package core

import (
	"sync"

	"github.com/scrumpoker/server/internal/domain"
)

// TableStore is the shared-process RoomStore: one table of rooms keyed by
// code, created lazily on first join and pruned once empty.
type TableStore struct {
	mu    sync.RWMutex
	rooms map[domain.RoomCode]RoomService
}

func NewTableStore() *TableStore {
	return &TableStore{rooms: make(map[domain.RoomCode]RoomService)}
}

// GetOrCreate is single-flight per code: concurrent callers for the same
// unknown code observe the same room.
func (s *TableStore) GetOrCreate(code domain.RoomCode) RoomService {
	s.mu.RLock()
	room, ok := s.rooms[code]
	s.mu.RUnlock()
	if ok {
		return room
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok = s.rooms[code]; ok {
		return room
	}
	room = NewRoomService(&domain.Room{Code: code})
	s.rooms[code] = room
	return room
}

func (s *TableStore) Get(code domain.RoomCode) (RoomService, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	return room, ok
}

func (s *TableStore) RemoveIfEmpty(code domain.RoomCode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[code]
	if !ok || room.ParticipantCount() > 0 {
		return false
	}
	delete(s.rooms, code)
	return true
}

func (s *TableStore) List() []RoomInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RoomInfo, 0, len(s.rooms))
	for code, r := range s.rooms {
		out = append(out, RoomInfo{Code: code, ParticipantCount: r.ParticipantCount()})
	}
	return out
}

// Sweep prunes every empty room and reports how many were removed.
// Covers rooms emptied outside the leave path.
func (s *TableStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for code, r := range s.rooms {
		if r.ParticipantCount() == 0 {
			delete(s.rooms, code)
			count++
		}
	}
	return count
}

// SingleRoomStore backs the deployment shape where each room is hosted by
// its own addressable unit. The store is the room: emptiness does not tear
// it down, the unit idles and is reused on the next join.
type SingleRoomStore struct {
	room RoomService
}

func NewSingleRoomStore(code domain.RoomCode) *SingleRoomStore {
	return &SingleRoomStore{room: NewRoomService(&domain.Room{Code: code})}
}

func (s *SingleRoomStore) GetOrCreate(domain.RoomCode) RoomService { return s.room }

func (s *SingleRoomStore) Get(domain.RoomCode) (RoomService, bool) { return s.room, true }

// RemoveIfEmpty is a no-op: there are no sibling entries to prune.
func (s *SingleRoomStore) RemoveIfEmpty(domain.RoomCode) bool { return false }

func (s *SingleRoomStore) List() []RoomInfo {
	return []RoomInfo{{Code: s.room.Code(), ParticipantCount: s.room.ParticipantCount()}}
}
