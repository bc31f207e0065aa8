package server

import (
	"encoding/json"

	"guesswho/internal/db"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Write-through persistence. The in-memory store is authoritative; these
// mirror committed state into Postgres so rooms survive inspection and
// audit. Every function tolerates a nil connection so tests can run
// without a database.

func (s *Server) persistRoomCreated(room *Room) error {
	if s.db == nil {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(roomModel(room)).Error; err != nil {
			return err
		}
		for i := range room.Players {
			if err := tx.Create(playerModel(room.ID, &room.Players[i])).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(stateModel(room)).Error; err != nil {
			return err
		}
		return persistEvent(tx, room.ID, nil, "RoomCreated", map[string]any{
			"joinCode": room.JoinCode,
		})
	})
}

func (s *Server) persistPlayerJoined(room *Room, player *Player) error {
	if s.db == nil {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(playerModel(room.ID, player)).Error; err != nil {
			return err
		}
		return persistEvent(tx, room.ID, &player.ID, eventPlayerJoined, map[string]any{
			"displayName": player.DisplayName,
		})
	})
}

func (s *Server) persistPlayerLeft(room *Room, departed *Player) error {
	if s.db == nil {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&db.RoomPlayer{}, "id = ?", departed.ID).Error; err != nil {
			return err
		}
		if err := upsert(tx, roomModel(room)); err != nil {
			return err
		}
		for i := range room.Players {
			if err := upsert(tx, playerModel(room.ID, &room.Players[i])); err != nil {
				return err
			}
		}
		if err := persistEvent(tx, room.ID, &departed.ID, eventPlayerLeft, map[string]any{
			"displayName": departed.DisplayName,
		}); err != nil {
			return err
		}
		if departed.IsHost {
			if host, ok := room.findPlayerByID(room.HostPlayerID); ok {
				return persistEvent(tx, room.ID, &host.ID, eventHostChanged, map[string]any{
					"displayName": host.DisplayName,
				})
			}
		}
		return nil
	})
}

func (s *Server) persistRoomDeleted(roomID uuid.UUID) error {
	if s.db == nil {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var state db.GameState
		err := tx.Where("room_id = ?", roomID).First(&state).Error
		if err == nil {
			if err := tx.Delete(&db.GameAction{}, "game_state_id = ?", state.ID).Error; err != nil {
				return err
			}
			if err := tx.Delete(&state).Error; err != nil {
				return err
			}
		} else if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := tx.Delete(&db.RoomPlayer{}, "room_id = ?", roomID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&db.Event{}, "room_id = ?", roomID).Error; err != nil {
			return err
		}
		return tx.Delete(&db.Room{}, "id = ?", roomID).Error
	})
}

func (s *Server) persistPlayerUpdated(room *Room, player *Player) error {
	if s.db == nil {
		return nil
	}
	return upsert(s.db, playerModel(room.ID, player))
}

func (s *Server) persistGameStarted(room *Room) error {
	if s.db == nil {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx, roomModel(room)); err != nil {
			return err
		}
		if err := upsert(tx, stateModel(room)); err != nil {
			return err
		}
		askerID := room.Game.Turn.AskerID
		return persistEvent(tx, room.ID, &askerID, eventGameStarted, map[string]any{
			"turnPlayerId": askerID,
		})
	})
}

// persistTurn mirrors a question or answer: the game state row, the most
// recently touched action row and the audit event move together or not
// at all.
func (s *Server) persistTurn(room *Room, actorID uuid.UUID, kind string, payload map[string]any) error {
	if s.db == nil {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if len(room.Game.Actions) > 0 {
			latest := &room.Game.Actions[len(room.Game.Actions)-1]
			if err := upsert(tx, actionModel(room.Game.ID, latest)); err != nil {
				return err
			}
		}
		if err := upsert(tx, stateModel(room)); err != nil {
			return err
		}
		return persistEvent(tx, room.ID, &actorID, kind, payload)
	})
}

func (s *Server) persistReadyToggled(room *Room, player *Player) error {
	if s.db == nil {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx, playerModel(room.ID, player)); err != nil {
			return err
		}
		return persistEvent(tx, room.ID, &player.ID, eventReadyToggled, map[string]any{
			"displayName": player.DisplayName,
			"ready":       player.IsReady,
		})
	})
}

func (s *Server) persistGuess(room *Room, result *GuessResult) error {
	if s.db == nil {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx, roomModel(room)); err != nil {
			return err
		}
		if err := upsert(tx, stateModel(room)); err != nil {
			return err
		}
		return persistEvent(tx, room.ID, nil, eventGuessResult, guessResultPayload(result))
	})
}

func (s *Server) persistCharacterSet(set CharacterSet) error {
	if s.db == nil {
		return nil
	}
	record := db.CharacterSet{
		ID:        set.ID,
		Name:      set.Name,
		CreatedBy: set.CreatedBy,
		IsPublic:  set.IsPublic,
		CreatedAt: set.CreatedAt,
	}
	for _, character := range set.Characters {
		record.Characters = append(record.Characters, db.Character{
			ID:       character.ID,
			Name:     character.Name,
			ImageURL: character.ImageURL,
		})
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error
}

func persistEvent(tx *gorm.DB, roomID uuid.UUID, playerID *uuid.UUID, kind string, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return tx.Create(&db.Event{
		ID:       uuid.New(),
		RoomID:   roomID,
		PlayerID: playerID,
		Type:     kind,
		Payload:  datatypes.JSON(data),
	}).Error
}

func upsert(tx *gorm.DB, record any) error {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(record).Error
}

func roomModel(room *Room) *db.Room {
	return &db.Room{
		ID:             room.ID,
		JoinCode:       room.JoinCode,
		Status:         room.Status,
		MaxPlayers:     maxPlayers,
		CharacterSetID: room.CharacterSetID,
		HostPlayerID:   nullableUUID(room.HostPlayerID),
		CreatedAt:      room.CreatedAt,
		StartedAt:      room.StartedAt,
		FinishedAt:     room.FinishedAt,
	}
}

func playerModel(roomID uuid.UUID, player *Player) *db.RoomPlayer {
	return &db.RoomPlayer{
		ID:             player.ID,
		RoomID:         roomID,
		UserID:         nullableUUID(player.UserID),
		GuestSessionID: nullableUUID(player.GuestSessionID),
		DisplayName:    player.DisplayName,
		IsHost:         player.IsHost,
		IsReady:        player.IsReady,
		CharacterID:    nullableUUID(player.CharacterID),
		JoinedAt:       player.JoinedAt,
	}
}

func stateModel(room *Room) *db.GameState {
	return &db.GameState{
		ID:          room.Game.ID,
		RoomID:      room.ID,
		TurnPhase:   string(room.Game.Turn.Phase),
		AskerID:     nullableUUID(room.Game.Turn.AskerID),
		RoundNumber: room.Game.RoundNumber,
		WinnerID:    nullableUUID(room.Game.WinnerID),
	}
}

func actionModel(gameStateID uuid.UUID, action *GameAction) *db.GameAction {
	record := &db.GameAction{
		ID:             action.ID,
		GameStateID:    gameStateID,
		RoundNumber:    action.RoundNumber,
		AskingPlayerID: action.AskingPlayerID,
	}
	if action.AnsweringPlayerID != uuid.Nil {
		record.AnsweringPlayerID = nullableUUID(action.AnsweringPlayerID)
	}
	record.Question = action.Question
	if action.Answer != "" {
		answer := action.Answer
		record.Answer = &answer
	}
	return record
}

func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	value := id
	return &value
}
