package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the authoritative in-memory state, keyed by room id. The
// registry mutex guards only the maps; every room entry carries its own
// mutex so mutations in one room never block another. All mutating
// operations run validate-then-mutate under the entry lock, which keeps
// each call all-or-nothing.
type Store struct {
	mu               sync.RWMutex
	rooms            map[uuid.UUID]*roomEntry
	codes            map[string]uuid.UUID
	joinCodeAttempts int
	newCode          func() string
}

type roomEntry struct {
	mu   sync.Mutex
	gone bool
	room *Room
}

func NewStore(joinCodeAttempts int) *Store {
	if joinCodeAttempts <= 0 {
		joinCodeAttempts = 5
	}
	return &Store{
		rooms:            make(map[uuid.UUID]*roomEntry),
		codes:            make(map[string]uuid.UUID),
		joinCodeAttempts: joinCodeAttempts,
		newCode:          newJoinCode,
	}
}

// CreateRoom allocates a room with a fresh join code, its bound game
// state at round zero, and the creator as host.
func (s *Store) CreateRoom(characterSetID uuid.UUID, host Identity) (*Room, error) {
	if err := host.validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	code, err := s.uniqueJoinCode()
	if err != nil {
		return nil, err
	}
	now := timeNowUTC()
	hostPlayer := newPlayer(host, true, now)
	room := &Room{
		ID:             uuid.New(),
		JoinCode:       code,
		Status:         statusWaiting,
		CharacterSetID: characterSetID,
		HostPlayerID:   hostPlayer.ID,
		CreatedAt:      now,
		Players:        []Player{hostPlayer},
		Game: GameState{
			ID:          uuid.New(),
			Turn:        asking(uuid.Nil),
			RoundNumber: 0,
		},
	}
	s.rooms[room.ID] = &roomEntry{room: room}
	s.codes[code] = room.ID
	return room.clone(), nil
}

func (s *Store) uniqueJoinCode() (string, error) {
	for attempt := 0; attempt < s.joinCodeAttempts; attempt++ {
		code := s.newCode()
		if _, taken := s.codes[code]; !taken {
			return code, nil
		}
	}
	return "", conflict("could not allocate a unique join code")
}

// Join adds a non-host player to the room identified by its code.
func (s *Store) Join(code string, id Identity) (*Room, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}
	entry, err := s.entryByCode(code)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.gone {
		return nil, notFound("room not found for code %s", code)
	}
	room := entry.room
	if room.Status != statusWaiting {
		return nil, invalidState("room is not available for joining")
	}
	if _, already := room.findPlayer(id); already {
		return nil, conflict("player is already in the room")
	}
	if len(room.Players) >= maxPlayers {
		return nil, conflict("room is full")
	}
	room.Players = append(room.Players, newPlayer(id, false, timeNowUTC()))
	return room.clone(), nil
}

// Leave removes the identity's player. The last departure deletes the
// room; a departing host hands the role to the earliest-joined survivor;
// dropping below capacity forces the room back to waiting, even from
// in_progress.
func (s *Store) Leave(roomID uuid.UUID, id Identity) (*Room, *Player, error) {
	if err := id.validate(); err != nil {
		return nil, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.rooms[roomID]
	if !ok {
		return nil, nil, notFound("room not found: %s", roomID)
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	room := entry.room

	index := -1
	for i := range room.Players {
		if room.Players[i].Matches(id) {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, nil, notFound("player not found in room")
	}
	departed := room.Players[index]
	room.Players = append(room.Players[:index], room.Players[index+1:]...)

	if len(room.Players) == 0 {
		entry.gone = true
		delete(s.rooms, room.ID)
		delete(s.codes, room.JoinCode)
		return nil, &departed, nil
	}
	if departed.IsHost {
		next := earliestJoined(room.Players)
		next.IsHost = true
		room.HostPlayerID = next.ID
	}
	if len(room.Players) < maxPlayers && room.Status == statusInProgress {
		room.Status = statusWaiting
	}
	return room.clone(), &departed, nil
}

// Delete hard-deletes the room and everything hanging off it.
func (s *Store) Delete(roomID uuid.UUID) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.rooms[roomID]
	if !ok {
		return nil, notFound("room not found: %s", roomID)
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.gone = true
	delete(s.rooms, roomID)
	delete(s.codes, entry.room.JoinCode)
	return entry.room.clone(), nil
}

// Update runs fn under the room's lock and returns a snapshot taken
// before the lock is released. fn must validate before it mutates.
func (s *Store) Update(roomID uuid.UUID, fn func(room *Room) error) (*Room, error) {
	entry, err := s.entry(roomID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.gone {
		return nil, notFound("room not found: %s", roomID)
	}
	if err := fn(entry.room); err != nil {
		return nil, err
	}
	return entry.room.clone(), nil
}

// View is Update without mutation rights; fn sees a consistent room.
func (s *Store) View(roomID uuid.UUID, fn func(room *Room)) error {
	entry, err := s.entry(roomID)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.gone {
		return notFound("room not found: %s", roomID)
	}
	fn(entry.room)
	return nil
}

func (s *Store) Get(roomID uuid.UUID) (*Room, error) {
	var snapshot *Room
	err := s.View(roomID, func(room *Room) {
		snapshot = room.clone()
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *Store) FindByCode(code string) (*Room, error) {
	entry, err := s.entryByCode(code)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.gone {
		return nil, notFound("room not found for code %s", code)
	}
	return entry.room.clone(), nil
}

func (s *Store) entry(roomID uuid.UUID) (*roomEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.rooms[roomID]
	if !ok {
		return nil, notFound("room not found: %s", roomID)
	}
	return entry, nil
}

func (s *Store) entryByCode(code string) (*roomEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roomID, ok := s.codes[normalizeJoinCode(code)]
	if !ok {
		return nil, notFound("room not found for code %s", code)
	}
	entry, ok := s.rooms[roomID]
	if !ok {
		return nil, notFound("room not found for code %s", code)
	}
	return entry, nil
}

func newPlayer(id Identity, host bool, joinedAt time.Time) Player {
	return Player{
		ID:             uuid.New(),
		UserID:         id.UserID,
		GuestSessionID: id.GuestSessionID,
		DisplayName:    id.DisplayName,
		IsHost:         host,
		JoinedAt:       joinedAt,
	}
}

func earliestJoined(players []Player) *Player {
	next := &players[0]
	for i := range players {
		if players[i].JoinedAt.Before(next.JoinedAt) {
			next = &players[i]
		}
	}
	return next
}

func (r *Room) clone() *Room {
	dup := *r
	dup.Players = append([]Player(nil), r.Players...)
	dup.Game.Actions = append([]GameAction(nil), r.Game.Actions...)
	if r.StartedAt != nil {
		started := *r.StartedAt
		dup.StartedAt = &started
	}
	if r.FinishedAt != nil {
		finished := *r.FinishedAt
		dup.FinishedAt = &finished
	}
	return &dup
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
