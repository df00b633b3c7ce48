package app

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scrumpoker/server/internal/core"
	"github.com/scrumpoker/server/internal/domain"
	"github.com/scrumpoker/server/internal/protocol"
)

// Orchestrator routes decoded actions into room state transitions and
// triggers the resulting broadcasts. Stores are injected; it owns no
// ambient state of its own.
type Orchestrator struct {
	Registry *Registry
	Rooms    core.RoomStore
	Limiter  *ReactionLimiter
}

func NewOrchestrator(reg *Registry, rooms core.RoomStore, limiter *ReactionLimiter) *Orchestrator {
	return &Orchestrator{Registry: reg, Rooms: rooms, Limiter: limiter}
}

// HandleFrame is the router: decode once, dispatch by variant. A malformed
// frame is logged and dropped; an unknown kind is dropped silently. Nothing
// here may take down the connection host.
func (o *Orchestrator) HandleFrame(id core.ConnID, conn core.Conn, data core.Frame) {
	act, err := protocol.Decode(data)
	if err != nil {
		if errors.Is(err, protocol.ErrUnknownKind) {
			log.Debug().Str("module", "app.orchestrator").Str("conn", string(id)).Err(err).Msg("dropped frame")
			return
		}
		log.Warn().Str("module", "app.orchestrator").Str("conn", string(id)).Err(err).Msg("bad frame")
		return
	}

	switch a := act.(type) {
	case protocol.JoinRoom:
		o.handleJoin(id, conn, a)
	case protocol.LeaveRoom:
		o.handleLeave(id)
	case protocol.Vote:
		o.handleVote(id, a)
	case protocol.ClearVote:
		o.handleClearVote(id)
	case protocol.RevealVotes:
		o.handleReveal(id)
	case protocol.ResetVotes:
		o.handleReset(id)
	case protocol.UpdateStory:
		o.handleUpdateStory(id, a)
	case protocol.SendPing:
		o.handleSendPing(id, a)
	}
}

// Disconnect converges with the explicit leave path so a silent drop and a
// LEAVE_ROOM message end in the identical room state.
func (o *Orchestrator) Disconnect(id core.ConnID) {
	o.handleLeave(id)
}

func (o *Orchestrator) handleJoin(id core.ConnID, conn core.Conn, a protocol.JoinRoom) {
	code, err := domain.NewRoomCode(a.RoomCode)
	if err != nil {
		log.Warn().Str("module", "app.orchestrator").Str("conn", string(id)).Err(err).Msg("join rejected")
		return
	}
	p, err := domain.NewParticipant(a.PlayerID, a.PlayerName)
	if err != nil {
		log.Warn().Str("module", "app.orchestrator").Str("conn", string(id)).Err(err).Msg("join rejected")
		return
	}

	// A connection that joins again without leaving gives up its previous
	// binding first, so no participant is left orphaned under the old code.
	// Re-joining the same room with the same id is an in-place overwrite
	// and keeps the participant's position. A new id within the same room
	// swaps the entry quietly: the join broadcast below already carries
	// the final roster, and the room itself must survive the swap.
	if prev, ok := o.Registry.Lookup(id); ok {
		switch {
		case prev.RoomCode == code && prev.PlayerID == p.ID:
			// overwrite below
		case prev.RoomCode == code:
			if room, ok := o.Rooms.Get(code); ok {
				room.Remove(prev.PlayerID)
			}
			if o.Limiter != nil {
				o.Limiter.Forget(prev.PlayerID)
			}
		default:
			o.release(prev)
		}
	}

	// Another connection already bound to this participant is stale: evict
	// its session so its later disconnect cannot remove the entry that is
	// about to replace it.
	if staleID, ok := o.Registry.FindByParticipant(code, p.ID, id); ok {
		o.Registry.Unbind(staleID)
		log.Info().Str("module", "app.orchestrator").Str("conn", string(staleID)).Str("participant", string(p.ID)).Msg("evicted stale session")
	}

	room := o.Rooms.GetOrCreate(code)
	room.Join(p, conn)
	o.Registry.Bind(id, Session{RoomCode: code, PlayerID: p.ID, PlayerName: p.Name})
	o.broadcastState(room)
	log.Info().Str("module", "app.orchestrator").Str("room", string(code)).Str("name", p.Name).Msg("joined room")
}

func (o *Orchestrator) handleLeave(id core.ConnID) {
	sess, ok := o.Registry.Unbind(id)
	if !ok {
		return
	}
	o.release(sess)
	log.Info().Str("module", "app.orchestrator").Str("room", string(sess.RoomCode)).Str("name", sess.PlayerName).Msg("left room")
}

// release removes a session's participant from its room and prunes the room
// if that left it empty. The broadcast is skipped when nobody remains.
func (o *Orchestrator) release(sess Session) {
	room, ok := o.Rooms.Get(sess.RoomCode)
	if !ok {
		return
	}
	room.Remove(sess.PlayerID)
	if o.Limiter != nil {
		o.Limiter.Forget(sess.PlayerID)
	}
	if o.Rooms.RemoveIfEmpty(sess.RoomCode) {
		return
	}
	if room.ParticipantCount() > 0 {
		o.broadcastState(room)
	}
}

func (o *Orchestrator) handleVote(id core.ConnID, a protocol.Vote) {
	sess, ok := o.Registry.Lookup(id)
	if !ok {
		return
	}
	room, ok := o.Rooms.Get(sess.RoomCode)
	if !ok {
		return
	}
	if room.SetVote(sess.PlayerID, a.Vote) {
		o.broadcastState(room)
	}
}

func (o *Orchestrator) handleClearVote(id core.ConnID) {
	sess, ok := o.Registry.Lookup(id)
	if !ok {
		return
	}
	room, ok := o.Rooms.Get(sess.RoomCode)
	if !ok {
		return
	}
	if room.ClearVote(sess.PlayerID) {
		o.broadcastState(room)
	}
}

func (o *Orchestrator) handleReveal(id core.ConnID) {
	sess, ok := o.Registry.Lookup(id)
	if !ok {
		return
	}
	room, ok := o.Rooms.Get(sess.RoomCode)
	if !ok {
		return
	}
	room.Reveal()
	o.broadcastState(room)
}

func (o *Orchestrator) handleReset(id core.ConnID) {
	sess, ok := o.Registry.Lookup(id)
	if !ok {
		return
	}
	room, ok := o.Rooms.Get(sess.RoomCode)
	if !ok {
		return
	}
	room.Reset()
	o.broadcastState(room)
}

func (o *Orchestrator) handleUpdateStory(id core.ConnID, a protocol.UpdateStory) {
	sess, ok := o.Registry.Lookup(id)
	if !ok {
		return
	}
	room, ok := o.Rooms.Get(sess.RoomCode)
	if !ok {
		return
	}
	room.SetStory(a.Story)
	o.broadcastState(room)
}

// handleSendPing fans out an ephemeral reaction event. Room state is not
// touched and no ROOM_STATE broadcast follows.
func (o *Orchestrator) handleSendPing(id core.ConnID, a protocol.SendPing) {
	sess, ok := o.Registry.Lookup(id)
	if !ok {
		return
	}
	room, ok := o.Rooms.Get(sess.RoomCode)
	if !ok {
		return
	}
	if o.Limiter != nil && !o.Limiter.Allow(sess.PlayerID) {
		log.Debug().Str("module", "app.orchestrator").Str("participant", string(sess.PlayerID)).Msg("reaction rate limited")
		return
	}
	evt := protocol.PingEvent{
		Emoji:      a.Emoji,
		FromPlayer: sess.PlayerName,
		Timestamp:  time.Now().UnixMilli(),
	}
	frame, err := protocol.Encode(protocol.KindPingReceived, evt)
	if err != nil {
		log.Error().Str("module", "app.orchestrator").Err(err).Msg("encode ping event")
		return
	}
	room.Broadcast(frame)
}

// broadcastState delivers the authoritative snapshot to everyone in the
// room. Called exactly once per mutating action.
func (o *Orchestrator) broadcastState(room core.RoomService) {
	frame, err := protocol.Encode(protocol.KindRoomState, room.Snapshot())
	if err != nil {
		log.Error().Str("module", "app.orchestrator").Err(err).Msg("encode room state")
		return
	}
	room.Broadcast(frame)
}
