package core

import (
	"sync"
	"testing"

	"github.com/scrumpoker/server/internal/domain"
)

func TestTableStoreGetOrCreateSingleFlight(t *testing.T) {
	store := NewTableStore()

	const workers = 32
	results := make([]RoomService, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = store.GetOrCreate("ABC123")
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent GetOrCreate produced distinct rooms for the same code")
		}
	}
}

func TestTableStoreGetDoesNotCreate(t *testing.T) {
	store := NewTableStore()
	if _, ok := store.Get("nope"); ok {
		t.Error("Get on unknown code should report absent")
	}
	store.GetOrCreate("ABC123")
	if _, ok := store.Get("ABC123"); !ok {
		t.Error("Get should find the created room")
	}
}

func TestTableStoreRemoveIfEmpty(t *testing.T) {
	store := NewTableStore()
	room := store.GetOrCreate("ABC123")

	room.Join(mustParticipant(t, "p1", "Alice"), &fakeConn{})
	if store.RemoveIfEmpty("ABC123") {
		t.Error("room with a participant must not be removed")
	}

	room.Remove("p1")
	if !store.RemoveIfEmpty("ABC123") {
		t.Error("empty room should be removed")
	}
	if _, ok := store.Get("ABC123"); ok {
		t.Error("removed room still present")
	}

	if store.RemoveIfEmpty("ABC123") {
		t.Error("second removal should report false")
	}
}

func TestTableStoreSweep(t *testing.T) {
	store := NewTableStore()
	store.GetOrCreate("empty1")
	store.GetOrCreate("empty2")
	busy := store.GetOrCreate("busy")
	busy.Join(mustParticipant(t, "p1", "Alice"), &fakeConn{})

	if n := store.Sweep(); n != 2 {
		t.Errorf("Sweep() = %d, want 2", n)
	}
	if _, ok := store.Get("busy"); !ok {
		t.Error("occupied room swept away")
	}
}

func TestTableStoreList(t *testing.T) {
	store := NewTableStore()
	room := store.GetOrCreate("ABC123")
	room.Join(mustParticipant(t, "p1", "Alice"), &fakeConn{})
	room.Join(mustParticipant(t, "p2", "Bob"), &fakeConn{})

	infos := store.List()
	if len(infos) != 1 {
		t.Fatalf("List() returned %d rooms, want 1", len(infos))
	}
	if infos[0].Code != "ABC123" || infos[0].ParticipantCount != 2 {
		t.Errorf("List()[0] = %+v", infos[0])
	}
}

func TestSingleRoomStoreIgnoresEmptiness(t *testing.T) {
	store := NewSingleRoomStore("ABC123")

	room := store.GetOrCreate("anything")
	if room.Code() != domain.RoomCode("ABC123") {
		t.Errorf("room code = %s, want ABC123", room.Code())
	}

	room.Join(mustParticipant(t, "p1", "Alice"), &fakeConn{})
	room.Remove("p1")

	// The unit idles when empty and is reused on the next join.
	if store.RemoveIfEmpty("ABC123") {
		t.Error("single-room store must never prune its room")
	}
	again, ok := store.Get("ABC123")
	if !ok || again != room {
		t.Error("store should keep handing out the same room")
	}
}
