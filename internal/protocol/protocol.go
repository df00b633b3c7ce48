// Package protocol defines the wire envelope and the inbound action set.
// Every frame is `{"type": <kind>, "data": <payload>}` in UTF-8 JSON.
// Inbound frames are decoded exactly once, at the router boundary, into a
// closed Action variant so handler dispatch is a type switch the compiler
// can check for exhaustiveness.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

type Kind string

// Client -> server kinds.
const (
	KindJoinRoom    Kind = "JOIN_ROOM"
	KindLeaveRoom   Kind = "LEAVE_ROOM"
	KindVote        Kind = "VOTE"
	KindClearVote   Kind = "CLEAR_VOTE"
	KindRevealVotes Kind = "REVEAL_VOTES"
	KindResetVotes  Kind = "RESET_VOTES"
	KindUpdateStory Kind = "UPDATE_STORY"
	KindSendPing    Kind = "SEND_PING"
)

// Server -> client kinds.
const (
	KindRoomState    Kind = "ROOM_STATE"
	KindPingReceived Kind = "PING_RECEIVED"
)

var ErrUnknownKind = errors.New("unknown action kind")

type Envelope struct {
	Type Kind            `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Action is the decoded inbound message. The interface is sealed: only the
// payload structs below implement it.
type Action interface{ isAction() }

type JoinRoom struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
	PlayerID   string `json:"playerId"`
}

type LeaveRoom struct{}

type Vote struct {
	Vote json.RawMessage `json:"vote"`
}

type ClearVote struct{}

type RevealVotes struct{}

type ResetVotes struct{}

type UpdateStory struct {
	Story string `json:"story"`
}

type SendPing struct {
	Emoji string `json:"emoji"`
}

func (JoinRoom) isAction()    {}
func (LeaveRoom) isAction()   {}
func (Vote) isAction()        {}
func (ClearVote) isAction()   {}
func (RevealVotes) isAction() {}
func (ResetVotes) isAction()  {}
func (UpdateStory) isAction() {}
func (SendPing) isAction()    {}

// Decode parses a raw frame into an Action. A malformed envelope or payload
// is an error the caller should log and drop; an unrecognized kind is
// ErrUnknownKind and must be dropped silently.
func Decode(data []byte) (Action, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Type {
	case KindJoinRoom:
		return decodePayload[JoinRoom](env)
	case KindLeaveRoom:
		return LeaveRoom{}, nil
	case KindVote:
		return decodePayload[Vote](env)
	case KindClearVote:
		return ClearVote{}, nil
	case KindRevealVotes:
		return RevealVotes{}, nil
	case KindResetVotes:
		return ResetVotes{}, nil
	case KindUpdateStory:
		return decodePayload[UpdateStory](env)
	case KindSendPing:
		return decodePayload[SendPing](env)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Type)
	}
}

func decodePayload[T Action](env Envelope) (Action, error) {
	var p T
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
	}
	return p, nil
}

// Encode wraps a payload into the wire envelope.
func Encode(kind Kind, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	return json.Marshal(Envelope{Type: kind, Data: data})
}

// PingEvent is the ephemeral reaction fan-out. It is not room state and is
// never retained; timestamp is unix milliseconds.
type PingEvent struct {
	Emoji      string `json:"emoji"`
	FromPlayer string `json:"fromPlayer"`
	Timestamp  int64  `json:"timestamp"`
}
