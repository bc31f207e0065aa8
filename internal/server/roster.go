package server

import (
	"log"
	"math/rand"

	"github.com/google/uuid"
)

// selectCharacter records the character the player wants the opponent to
// guess. Only valid in the lobby, and only for characters that belong to
// the room's bound set.
func (s *Server) selectCharacter(roomID uuid.UUID, id Identity, characterID uuid.UUID) (*Player, error) {
	var selected Player
	room, err := s.store.Update(roomID, func(room *Room) error {
		if room.Status != statusWaiting {
			return invalidState("cannot select characters once the game has started")
		}
		player, ok := room.findPlayer(id)
		if !ok {
			return notFound("player not found in room")
		}
		set, err := s.characters.Get(room.CharacterSetID)
		if err != nil {
			return err
		}
		if _, ok := set.Find(characterID); !ok {
			return notFound("character not found in room's character set")
		}
		player.CharacterID = characterID
		selected = *player
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.persistPlayerUpdated(room, &selected); err != nil {
		return nil, err
	}
	return &selected, nil
}

// toggleReady flips the player's readiness and returns the new value.
// Readiness is meaningless before a character is selected.
func (s *Server) toggleReady(roomID uuid.UUID, id Identity) (*Player, error) {
	var toggled Player
	room, err := s.store.Update(roomID, func(room *Room) error {
		if room.Status != statusWaiting {
			return invalidState("room is not in waiting state")
		}
		player, ok := room.findPlayer(id)
		if !ok {
			return notFound("player not found in room")
		}
		if !player.HasCharacter() {
			return invalidState("player has not selected a character")
		}
		player.IsReady = !player.IsReady
		toggled = *player
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.persistReadyToggled(room, &toggled); err != nil {
		return nil, err
	}
	s.publish(room.ID, eventReadyToggled, map[string]any{
		"displayName": toggled.DisplayName,
		"ready":       toggled.IsReady,
	})
	s.broadcastSnapshot(room)
	return &toggled, nil
}

// startGame moves the room to in_progress and picks the initial asker
// uniformly at random. Host only.
func (s *Server) startGame(roomID uuid.UUID, id Identity) (*Player, error) {
	var turnPlayer Player
	room, err := s.store.Update(roomID, func(room *Room) error {
		if room.Status != statusWaiting {
			return invalidState("room is not in waiting state")
		}
		caller, ok := room.findPlayer(id)
		if !ok {
			return notFound("player not found in room")
		}
		if !caller.IsHost {
			return unauthorized("only the host can start the game")
		}
		if len(room.Players) <= 1 {
			return invalidState("not enough players in the room")
		}
		for i := range room.Players {
			if !room.Players[i].IsReady {
				return invalidState("not all players are ready")
			}
		}
		chosen := room.Players[rand.Intn(len(room.Players))]
		now := timeNowUTC()
		room.Status = statusInProgress
		room.StartedAt = &now
		room.Game.Turn = asking(chosen.ID)
		room.Game.RoundNumber = 1
		// A round restarts from 1 after a mid-game departure, so actions
		// from the previous run must not shadow the new run's rounds.
		room.Game.Actions = nil
		turnPlayer = chosen
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.persistGameStarted(room); err != nil {
		return nil, err
	}
	log.Printf("game started room_id=%s turn_player=%s", room.ID, turnPlayer.DisplayName)
	s.publish(room.ID, eventGameStarted, map[string]any{
		"turnPlayer": playerPayload(&turnPlayer),
	})
	s.broadcastSnapshot(room)
	return &turnPlayer, nil
}
