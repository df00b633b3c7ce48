package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewParticipantValidation(t *testing.T) {
	cases := []struct {
		name    string
		id      string
		player  string
		wantErr error
	}{
		{"ok", "p1", "Alice", nil},
		{"empty name", "p1", "", ErrPlayerNameEmpty},
		{"long name", "p1", strings.Repeat("x", MaxPlayerNameLen+1), ErrPlayerNameTooLong},
		{"long id", strings.Repeat("x", MaxParticipantIDLen+1), "Alice", ErrParticipantIDLong},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewParticipant(tc.id, tc.player)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr == nil && (p.ID != ParticipantID(tc.id) || p.Name != tc.player) {
				t.Errorf("participant = %+v", p)
			}
		})
	}
}

func TestNewParticipantGeneratesID(t *testing.T) {
	p1, err := NewParticipant("", "Alice")
	if err != nil {
		t.Fatal(err)
	}
	p2, _ := NewParticipant("", "Bob")
	if p1.ID == "" || p1.ID == p2.ID {
		t.Errorf("generated ids should be unique and non-empty: %s, %s", p1.ID, p2.ID)
	}
}

func TestVoteLifecycle(t *testing.T) {
	p, _ := NewParticipant("p1", "Alice")
	if p.HasVoted || p.Vote != nil {
		t.Fatal("fresh participant should not have voted")
	}

	p.SetVote(json.RawMessage(`"5"`))
	if !p.HasVoted || string(p.Vote) != `"5"` {
		t.Errorf("after SetVote: %+v", p)
	}

	p.ClearVote()
	if p.HasVoted || p.Vote != nil {
		t.Errorf("after ClearVote: %+v", p)
	}
}

func TestNewRoomCode(t *testing.T) {
	if _, err := NewRoomCode(""); !errors.Is(err, ErrRoomCodeEmpty) {
		t.Errorf("empty code err = %v", err)
	}
	if _, err := NewRoomCode(strings.Repeat("x", MaxRoomCodeLen+1)); !errors.Is(err, ErrRoomCodeTooLong) {
		t.Errorf("long code err = %v", err)
	}
	code, err := NewRoomCode("ABC123")
	if err != nil || code != "ABC123" {
		t.Errorf("NewRoomCode = %s, %v", code, err)
	}
}
