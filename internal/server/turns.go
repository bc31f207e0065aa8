package server

import (
	"log"

	"github.com/google/uuid"
)

// submitQuestion opens the round's action and hands the floor to the
// opponent for an answer. The asker keeps the turn marker through the
// answering phase.
func (s *Server) submitQuestion(roomID uuid.UUID, id Identity, question string) (*Room, error) {
	var asker Player
	room, err := s.store.Update(roomID, func(room *Room) error {
		if err := requireInProgress(room); err != nil {
			return err
		}
		player, ok := room.findPlayer(id)
		if !ok {
			return notFound("player not found in room")
		}
		if room.Game.Turn.AskerID != player.ID {
			return invalidState("not your turn to ask")
		}
		if room.Game.Turn.Phase != phaseAsking {
			return invalidState("not in asking phase")
		}
		room.Game.Actions = append(room.Game.Actions, GameAction{
			ID:             uuid.New(),
			AskingPlayerID: player.ID,
			Question:       question,
			RoundNumber:    room.Game.RoundNumber,
		})
		room.Game.Turn = answering(player.ID)
		asker = *player
		return nil
	})
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"displayName": asker.DisplayName,
		"text":        question,
	}
	if err := s.persistTurn(room, asker.ID, eventQuestionAsked, payload); err != nil {
		return nil, err
	}
	log.Printf("question asked room_id=%s round=%d player=%s", room.ID, room.Game.RoundNumber, asker.DisplayName)
	s.publish(room.ID, eventQuestionAsked, payload)
	s.broadcastSnapshot(room)
	return room, nil
}

// submitAnswer completes the open action, passes the turn to the
// answering player and advances the round counter.
func (s *Server) submitAnswer(roomID uuid.UUID, id Identity, answer string) (*Room, error) {
	var answerer Player
	room, err := s.store.Update(roomID, func(room *Room) error {
		if err := requireInProgress(room); err != nil {
			return err
		}
		player, ok := room.findPlayer(id)
		if !ok {
			return notFound("player not found in room")
		}
		// The turn marker still names the asker during the answering
		// phase, so the answering player must NOT hold it.
		if room.Game.Turn.AskerID == player.ID {
			return invalidState("not your turn to answer")
		}
		if room.Game.Turn.Phase != phaseAnswering {
			return invalidState("not in answering phase")
		}
		action, ok := room.openAction()
		if !ok {
			return notFound("game action not found")
		}
		action.Answer = answer
		action.AnsweringPlayerID = player.ID
		room.Game.Turn = asking(player.ID)
		room.Game.RoundNumber++
		answerer = *player
		return nil
	})
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"displayName": answerer.DisplayName,
		"text":        answer,
	}
	if err := s.persistTurn(room, answerer.ID, eventAnswerGiven, payload); err != nil {
		return nil, err
	}
	log.Printf("answer given room_id=%s round=%d player=%s", room.ID, room.Game.RoundNumber, answerer.DisplayName)
	s.publish(room.ID, eventAnswerGiven, payload)
	s.broadcastSnapshot(room)
	return room, nil
}

func requireInProgress(room *Room) error {
	if room.Status == statusFinished {
		return invalidState("game is already finished")
	}
	if room.Status != statusInProgress {
		return invalidState("room is not in progress")
	}
	return nil
}
