package server

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestCreateRoomSeatsHost(t *testing.T) {
	store := NewStore(5)
	host := userIdentity("Ada")
	room, err := store.CreateRoom(uuid.New(), host)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if room.Status != statusWaiting {
		t.Fatalf("expected waiting status, got %s", room.Status)
	}
	if len(room.JoinCode) != joinCodeLength {
		t.Fatalf("expected %d char join code, got %q", joinCodeLength, room.JoinCode)
	}
	if len(room.Players) != 1 || !room.Players[0].IsHost {
		t.Fatalf("expected a single host player, got %#v", room.Players)
	}
	if room.HostPlayerID != room.Players[0].ID {
		t.Fatalf("host reference does not point at the host player")
	}
	if room.Game.RoundNumber != 0 || room.Game.Turn.Phase != phaseAsking || room.Game.Turn.AskerID != uuid.Nil {
		t.Fatalf("expected fresh game state, got %#v", room.Game)
	}
}

func TestJoinCodeRetriesOnCollision(t *testing.T) {
	store := NewStore(3)
	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	store.newCode = func() string {
		code := codes[0]
		if len(codes) > 1 {
			codes = codes[1:]
		}
		return code
	}

	first, err := store.CreateRoom(uuid.New(), userIdentity("Ada"))
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if first.JoinCode != "AAAAAA" {
		t.Fatalf("expected first code, got %s", first.JoinCode)
	}
	second, err := store.CreateRoom(uuid.New(), userIdentity("Ben"))
	if err != nil {
		t.Fatalf("create room after collision: %v", err)
	}
	if second.JoinCode != "BBBBBB" {
		t.Fatalf("expected retried code, got %s", second.JoinCode)
	}
}

func TestJoinCodeCollisionExhaustion(t *testing.T) {
	store := NewStore(3)
	store.newCode = func() string { return "AAAAAA" }

	if _, err := store.CreateRoom(uuid.New(), userIdentity("Ada")); err != nil {
		t.Fatalf("create room: %v", err)
	}
	_, err := store.CreateRoom(uuid.New(), userIdentity("Ben"))
	if err == nil {
		t.Fatal("expected collision exhaustion error")
	}
	if kind := errKind(t, err); kind != KindConflict {
		t.Fatalf("expected conflict, got kind %d", kind)
	}
}

func TestJoinRoomChecks(t *testing.T) {
	store := NewStore(5)
	host := userIdentity("Ada")
	room, err := store.CreateRoom(uuid.New(), host)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	if _, err := store.Join("ZZZZZZ", guestIdentity("Ben")); err == nil {
		t.Fatal("expected not found for unknown code")
	}

	if _, err := store.Join(room.JoinCode, host); err == nil {
		t.Fatal("expected conflict for duplicate join")
	} else if kind := errKind(t, err); kind != KindConflict {
		t.Fatalf("expected conflict, got kind %d", kind)
	}

	if _, err := store.Join(room.JoinCode, guestIdentity("Ben")); err != nil {
		t.Fatalf("join: %v", err)
	}

	_, err = store.Join(room.JoinCode, guestIdentity("Cat"))
	if err == nil {
		t.Fatal("expected room full conflict")
	}
	if kind := errKind(t, err); kind != KindConflict {
		t.Fatalf("expected conflict, got kind %d", kind)
	}

	updated, err := store.Get(room.ID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if len(updated.Players) != maxPlayers {
		t.Fatalf("expected %d players, got %d", maxPlayers, len(updated.Players))
	}
}

func TestJoinRoomCodeIsCaseInsensitive(t *testing.T) {
	store := NewStore(5)
	room, err := store.CreateRoom(uuid.New(), userIdentity("Ada"))
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	lower := "  " + room.JoinCode + " "
	if _, err := store.Join(lower, guestIdentity("Ben")); err != nil {
		t.Fatalf("expected join with padded code to succeed, got %v", err)
	}
}

func TestLeavePromotesEarliestJoined(t *testing.T) {
	store := NewStore(5)
	host := userIdentity("Ada")
	guest := guestIdentity("Ben")
	room, err := store.CreateRoom(uuid.New(), host)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, err := store.Join(room.JoinCode, guest); err != nil {
		t.Fatalf("join: %v", err)
	}

	remaining, departed, err := store.Leave(room.ID, host)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if !departed.IsHost {
		t.Fatalf("expected the departing player to have been host")
	}
	if len(remaining.Players) != 1 || !remaining.Players[0].IsHost {
		t.Fatalf("expected remaining player promoted to host, got %#v", remaining.Players)
	}
	if remaining.HostPlayerID != remaining.Players[0].ID {
		t.Fatalf("host reference not updated")
	}
}

func TestLeaveLastPlayerDeletesRoom(t *testing.T) {
	store := NewStore(5)
	host := userIdentity("Ada")
	room, err := store.CreateRoom(uuid.New(), host)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	remaining, _, err := store.Leave(room.ID, host)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if remaining != nil {
		t.Fatalf("expected room deletion, got %#v", remaining)
	}
	if _, err := store.Get(room.ID); err == nil {
		t.Fatal("expected room to be gone")
	}
	if _, err := store.FindByCode(room.JoinCode); err == nil {
		t.Fatal("expected join code to be released")
	}
}

func TestLeaveDuringGameRevertsToWaiting(t *testing.T) {
	store := NewStore(5)
	host := userIdentity("Ada")
	guest := guestIdentity("Ben")
	room, err := store.CreateRoom(uuid.New(), host)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, err := store.Join(room.JoinCode, guest); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := store.Update(room.ID, func(room *Room) error {
		room.Status = statusInProgress
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	remaining, _, err := store.Leave(room.ID, guest)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if remaining.Status != statusWaiting {
		t.Fatalf("expected status to revert to waiting, got %s", remaining.Status)
	}
}

func TestUpdateFailureLeavesStateUntouched(t *testing.T) {
	store := NewStore(5)
	room, err := store.CreateRoom(uuid.New(), userIdentity("Ada"))
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, err := store.Update(room.ID, func(room *Room) error {
		return invalidState("rejected before mutating")
	}); err == nil {
		t.Fatal("expected update to fail")
	}
	after, err := store.Get(room.ID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if after.Status != statusWaiting || len(after.Players) != 1 {
		t.Fatalf("state changed after failed update: %#v", after)
	}
}

func TestConcurrentJoinsNeverExceedCapacity(t *testing.T) {
	store := NewStore(5)
	room, err := store.CreateRoom(uuid.New(), userIdentity("Ada"))
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Join(room.JoinCode, guestIdentity("Racer"))
		}()
	}
	wg.Wait()

	after, err := store.Get(room.ID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if len(after.Players) > maxPlayers {
		t.Fatalf("capacity exceeded: %d players", len(after.Players))
	}
	hosts := 0
	for _, player := range after.Players {
		if player.IsHost {
			hosts++
		}
	}
	if hosts != 1 {
		t.Fatalf("expected exactly one host, got %d", hosts)
	}
}
