package server

import "github.com/google/uuid"

// Broadcast event kinds published to a room's topic. An event for a room
// is only ever published after the state change that produced it has been
// committed to the store and the database.
const (
	eventPlayerJoined  = "PlayerJoined"
	eventPlayerLeft    = "PlayerLeft"
	eventHostChanged   = "HostChanged"
	eventReadyToggled  = "ReadyToggled"
	eventGameStarted   = "GameStarted"
	eventQuestionAsked = "QuestionAsked"
	eventAnswerGiven   = "AnswerGiven"
	eventGuessResult   = "GuessResult"
)

func (s *Server) publish(roomID uuid.UUID, kind string, payload map[string]any) {
	if s.ws == nil {
		return
	}
	message := map[string]any{"type": kind}
	for key, value := range payload {
		message[key] = value
	}
	s.ws.Broadcast(roomID, message)
}

func playerPayload(player *Player) map[string]any {
	return map[string]any{
		"id":           player.ID,
		"displayName":  player.DisplayName,
		"isHost":       player.IsHost,
		"isReady":      player.IsReady,
		"hasCharacter": player.HasCharacter(),
	}
}

func guessResultPayload(result *GuessResult) map[string]any {
	payload := map[string]any{
		"correct":              result.Correct,
		"guessedCharacterId":   result.GuessedCharacterID,
		"guessedCharacterName": result.GuessedCharacterName,
		"actualCharacterId":    result.ActualCharacterID,
		"actualCharacterName":  result.ActualCharacterName,
		"gameEnded":            result.GameEnded,
		"message":              result.Message,
	}
	if result.WinnerID != uuid.Nil {
		payload["winnerId"] = result.WinnerID
	}
	return payload
}
