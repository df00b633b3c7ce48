package core

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/scrumpoker/server/internal/domain"
)

// roomImpl is a threadsafe in-memory room. One mutex per room; cross-room
// operations never occur so there is no wider lock.
// It never closes adapter-owned connections.
type roomImpl struct {
	mu   sync.RWMutex
	room *domain.Room

	// members keeps join order for deterministic broadcasts; byID indexes
	// into it. Re-joining with a known id overwrites in place and keeps
	// the original position.
	members []*member
	byID    map[domain.ParticipantID]int
}

type member struct {
	p    *domain.Participant
	conn Conn
}

func NewRoomService(room *domain.Room) RoomService {
	return &roomImpl{
		room: room,
		byID: make(map[domain.ParticipantID]int),
	}
}

func (r *roomImpl) Code() domain.RoomCode { return r.room.Code }

func (r *roomImpl) ParticipantCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *roomImpl) Join(p *domain.Participant, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.byID[p.ID]; ok {
		r.members[i] = &member{p: p, conn: conn}
		log.Info().Str("module", "core.room").Str("room", string(r.room.Code)).Str("participant", string(p.ID)).Msg("participant replaced")
		return
	}
	r.byID[p.ID] = len(r.members)
	r.members = append(r.members, &member{p: p, conn: conn})
	log.Info().Str("module", "core.room").Str("room", string(r.room.Code)).Str("participant", string(p.ID)).Msg("participant joined")
}

func (r *roomImpl) Remove(id domain.ParticipantID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[id]
	if !ok {
		return false
	}
	r.members = append(r.members[:i], r.members[i+1:]...)
	delete(r.byID, id)
	for j := i; j < len(r.members); j++ {
		r.byID[r.members[j].p.ID] = j
	}
	log.Info().Str("module", "core.room").Str("room", string(r.room.Code)).Str("participant", string(id)).Msg("participant removed")
	return true
}

func (r *roomImpl) SetVote(id domain.ParticipantID, vote json.RawMessage) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[id]
	if !ok {
		return false
	}
	r.members[i].p.SetVote(vote)
	return true
}

func (r *roomImpl) ClearVote(id domain.ParticipantID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[id]
	if !ok {
		return false
	}
	r.members[i].p.ClearVote()
	return true
}

func (r *roomImpl) Reveal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.room.VotesRevealed = true
}

// Reset returns the room to a fresh voting round: votes hidden again,
// story cleared, every participant back to not-voted.
func (r *roomImpl) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.room.VotesRevealed = false
	r.room.CurrentStory = ""
	for _, m := range r.members {
		m.p.ClearVote()
	}
}

func (r *roomImpl) SetStory(story string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.room.CurrentStory = story
}

// Snapshot projects the room into its wire view. Vote values leave the room
// only when VotesRevealed is set; until then every entry carries a nil vote
// regardless of what is stored. This is the confidentiality boundary.
func (r *roomImpl) Snapshot() RoomSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	views := make([]ParticipantView, 0, len(r.members))
	for _, m := range r.members {
		v := ParticipantView{
			ID:       string(m.p.ID),
			Name:     m.p.Name,
			HasVoted: m.p.HasVoted,
		}
		if r.room.VotesRevealed {
			v.Vote = m.p.Vote
		}
		views = append(views, v)
	}
	return RoomSnapshot{
		RoomCode:      string(r.room.Code),
		Participants:  views,
		CurrentStory:  r.room.CurrentStory,
		VotesRevealed: r.room.VotesRevealed,
	}
}

// Broadcast fans a frame out to every member. A recipient whose connection
// refuses the frame is skipped and reported; it never aborts delivery to
// the rest.
func (r *roomImpl) Broadcast(data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for _, m := range r.members {
		if m.conn == nil {
			continue
		}
		if err := m.conn.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m.p.ID)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.room.Code)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
