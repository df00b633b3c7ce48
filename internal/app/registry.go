package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/scrumpoker/server/internal/core"
	"github.com/scrumpoker/server/internal/domain"
)

// Session is the live association between a connection and its identity
// inside a room. A connection with no Session has not joined anything.
type Session struct {
	RoomCode   domain.RoomCode
	PlayerID   domain.ParticipantID
	PlayerName string
}

// Registry maps connection identities to Sessions. It is the join/leave
// bookkeeping layer; it holds no transport objects.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.ConnID]Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[core.ConnID]Session)}
}

// Bind installs or replaces the Session for a connection. The replaced
// Session, if any, is returned so the caller can release its room binding
// before the new one takes effect.
func (r *Registry) Bind(id core.ConnID, s Session) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, replaced := r.sessions[id]
	r.sessions[id] = s
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("room", string(s.RoomCode)).Str("participant", string(s.PlayerID)).Msg("bound session")
	return prev, replaced
}

func (r *Registry) Lookup(id core.ConnID) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Unbind removes and returns the Session. Idempotent: the second call for
// the same connection reports absent.
func (r *Registry) Unbind(id core.ConnID) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	delete(r.sessions, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unbound session")
	return s, true
}

// FindByParticipant scans for a connection other than exclude that is bound
// to a given participant in a room. Used to evict a stale session when the
// same playerId joins again over a new connection.
func (r *Registry) FindByParticipant(code domain.RoomCode, pid domain.ParticipantID, exclude core.ConnID) (core.ConnID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, s := range r.sessions {
		if id != exclude && s.RoomCode == code && s.PlayerID == pid {
			return id, true
		}
	}
	return "", false
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
