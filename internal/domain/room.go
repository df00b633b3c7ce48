// Package domain contains entities without logic, just meta-data.
package domain

import "errors"

const MaxRoomCodeLen = 36

var (
	ErrRoomCodeEmpty   = errors.New("room code empty")
	ErrRoomCodeTooLong = errors.New("room code too long")
)

type RoomCode string

// Room is the unit of shared state for one planning session.
// Participant vote state lives in core; this is the addressable identity
// plus the fields every participant shares.
type Room struct {
	Code          RoomCode
	CurrentStory  string
	VotesRevealed bool
}

func NewRoomCode(raw string) (RoomCode, error) {
	if len(raw) == 0 {
		return "", ErrRoomCodeEmpty
	}
	if len(raw) > MaxRoomCodeLen {
		return "", ErrRoomCodeTooLong
	}
	return RoomCode(raw), nil
}
