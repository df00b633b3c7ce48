package domain

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

const (
	MaxParticipantIDLen = 36
	MaxPlayerNameLen    = 36
)

var (
	ErrPlayerNameEmpty   = errors.New("player name empty")
	ErrPlayerNameTooLong = errors.New("player name too long")
	ErrParticipantIDLong = errors.New("participant id too long")
)

type ParticipantID string

// Participant is one joined client's identity and vote state within a room.
// Vote stays raw JSON so numeric and symbolic card values round-trip
// byte-exact once revealed.
type Participant struct {
	ID       ParticipantID
	Name     string
	HasVoted bool
	Vote     json.RawMessage
}

// NewParticipant keeps construction obvious and validates the
// client-supplied fields. An empty id gets a generated one so a client
// without local storage can still join.
func NewParticipant(id, name string) (*Participant, error) {
	if len(name) == 0 {
		return nil, ErrPlayerNameEmpty
	}
	if len(name) > MaxPlayerNameLen {
		return nil, ErrPlayerNameTooLong
	}
	if len(id) > MaxParticipantIDLen {
		return nil, ErrParticipantIDLong
	}
	if id == "" {
		id = uuid.NewString()
	}
	return &Participant{ID: ParticipantID(id), Name: name}, nil
}

// ClearVote resets the participant to the not-yet-voted state.
func (p *Participant) ClearVote() {
	p.HasVoted = false
	p.Vote = nil
}

// SetVote records a vote. The value itself stays opaque.
func (p *Participant) SetVote(vote json.RawMessage) {
	p.HasVoted = true
	p.Vote = vote
}
