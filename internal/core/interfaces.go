package core

import (
	"encoding/json"

	"github.com/scrumpoker/server/internal/domain"
)

// Frame is a serialized outbound payload.
type Frame []byte

// ConnID is the opaque connection identity issued by the transport host.
// The core never sees the transport's own connection object.
type ConnID string

// Conn is a transport endpoint the core can fan out to.
// Owned by the adapter; the adapter must Close() it.
type Conn interface {
	TrySend(Frame) error
	Close()
}

// ParticipantView is the broadcast projection of one participant.
// Vote is nil (wire `null`) whenever the room's votes are not revealed;
// this is enforced in Snapshot, not left to clients.
type ParticipantView struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	HasVoted bool            `json:"hasVoted"`
	Vote     json.RawMessage `json:"vote"`
}

// RoomSnapshot is the full authoritative state sent after every mutation.
type RoomSnapshot struct {
	RoomCode      string            `json:"roomCode"`
	Participants  []ParticipantView `json:"participants"`
	CurrentStory  string            `json:"currentStory"`
	VotesRevealed bool              `json:"votesRevealed"`
}

// PublishResult reports delivery stats/backpressure to the orchestrator.
type PublishResult struct {
	SentTo  int
	Dropped []domain.ParticipantID
}

// RoomService is the core-facing API of a room. It owns the membership set
// and serializes access to the room's fields, but never touches transport
// resources. Mutators report whether they applied so the caller broadcasts
// at most once per action.
type RoomService interface {
	Code() domain.RoomCode
	ParticipantCount() int

	Join(p *domain.Participant, conn Conn)
	Remove(id domain.ParticipantID) bool
	SetVote(id domain.ParticipantID, vote json.RawMessage) bool
	ClearVote(id domain.ParticipantID) bool
	Reveal()
	Reset()
	SetStory(story string)

	Snapshot() RoomSnapshot
	Broadcast(data Frame) PublishResult
}

type RoomInfo struct {
	Code             domain.RoomCode `json:"code"`
	ParticipantCount int             `json:"participantCount"`
}

// RoomStore owns room creation and garbage collection. Two backends exist:
// a shared table for the single-process deployment and a single-room store
// for hosts that address one room per unit.
type RoomStore interface {
	GetOrCreate(code domain.RoomCode) RoomService
	Get(code domain.RoomCode) (RoomService, bool)
	RemoveIfEmpty(code domain.RoomCode) bool
	List() []RoomInfo
}
