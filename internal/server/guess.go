package server

import (
	"log"

	"github.com/google/uuid"
)

// guessCharacter resolves a terminal guess. Guessing substitutes for
// asking: only the asker may guess, and only in the asking phase. A
// correct guess finishes the game; a wrong one hands the turn to the
// opponent without advancing the round counter.
func (s *Server) guessCharacter(roomID uuid.UUID, id Identity, guessedCharacterID uuid.UUID) (*GuessResult, error) {
	var result GuessResult
	room, err := s.store.Update(roomID, func(room *Room) error {
		if err := requireInProgress(room); err != nil {
			return err
		}
		player, ok := room.findPlayer(id)
		if !ok {
			return notFound("player not found in room")
		}
		if room.Game.Turn.AskerID == uuid.Nil {
			return invalidState("turn player not set")
		}
		if room.Game.Turn.AskerID != player.ID {
			return invalidState("not your turn to guess")
		}
		if room.Game.Turn.Phase != phaseAsking {
			return invalidState("not in asking phase")
		}
		opponent, ok := room.opponentOf(player.ID)
		if !ok {
			return notFound("opponent not found")
		}
		set, err := s.characters.Get(room.CharacterSetID)
		if err != nil {
			return err
		}
		guessed, ok := set.Find(guessedCharacterID)
		if !ok {
			return notFound("guessed character not found in character set")
		}
		if !opponent.HasCharacter() {
			return invalidState("opponent hasn't selected a character")
		}
		actual, _ := set.Find(opponent.CharacterID)

		result = GuessResult{
			Correct:              actual.ID == guessed.ID,
			GuessedCharacterID:   guessed.ID,
			GuessedCharacterName: guessed.Name,
			ActualCharacterID:    actual.ID,
			ActualCharacterName:  actual.Name,
		}
		if result.Correct {
			now := timeNowUTC()
			room.Status = statusFinished
			room.FinishedAt = &now
			room.Game.WinnerID = player.ID
			result.GameEnded = true
			result.WinnerID = player.ID
			result.Message = "Correct! You've won the game!"
			return nil
		}
		// Wrong guess: the opponent becomes the asker. The round
		// counter stays put, unlike a completed ask/answer exchange.
		room.Game.Turn = asking(opponent.ID)
		result.Message = "Wrong guess! Turn passes to opponent."
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.persistGuess(room, &result); err != nil {
		return nil, err
	}
	log.Printf("guess resolved room_id=%s correct=%t game_ended=%t", room.ID, result.Correct, result.GameEnded)
	s.publish(room.ID, eventGuessResult, guessResultPayload(&result))
	s.broadcastSnapshot(room)
	return &result, nil
}
