package server

import "github.com/google/uuid"

// snapshot is the room payload framed for subscribers.
func snapshot(room *Room) map[string]any {
	payload := roomPayload(room)
	payload["type"] = "snapshot"
	return payload
}

// roomPayload renders the observable room state. Selected characters
// stay hidden: only the fact that a selection happened is visible until
// the game is finished.
func roomPayload(room *Room) map[string]any {
	players := make([]map[string]any, 0, len(room.Players))
	for i := range room.Players {
		player := &room.Players[i]
		entry := playerPayload(player)
		if room.Status == statusFinished && player.HasCharacter() {
			entry["characterId"] = player.CharacterID
		}
		players = append(players, entry)
	}

	game := map[string]any{
		"roundNumber": room.Game.RoundNumber,
		"turnPhase":   string(room.Game.Turn.Phase),
	}
	if room.Game.Turn.AskerID != uuid.Nil {
		game["turnPlayerId"] = room.Game.Turn.AskerID
	}
	if room.Game.WinnerID != uuid.Nil {
		game["winnerId"] = room.Game.WinnerID
	}

	payload := map[string]any{
		"roomId":         room.ID,
		"joinCode":       room.JoinCode,
		"status":         room.Status,
		"maxPlayers":     maxPlayers,
		"characterSetId": room.CharacterSetID,
		"hostPlayerId":   room.HostPlayerID,
		"createdAt":      room.CreatedAt,
		"players":        players,
		"game":           game,
	}
	if room.StartedAt != nil {
		payload["startedAt"] = *room.StartedAt
	}
	if room.FinishedAt != nil {
		payload["finishedAt"] = *room.FinishedAt
	}
	return payload
}

func (s *Server) broadcastSnapshot(room *Room) {
	if s.ws == nil || room == nil {
		return
	}
	s.ws.Broadcast(room.ID, snapshot(room))
}
