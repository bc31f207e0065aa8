package server

import (
	"log"

	"github.com/google/uuid"
)

// createRoom allocates a room bound to the character set and seats the
// creator as host. The creator's identity may be a registered user or a
// guest session.
func (s *Server) createRoom(characterSetID uuid.UUID, host Identity) (*Room, error) {
	set, err := s.characters.Get(characterSetID)
	if err != nil {
		return nil, err
	}
	room, err := s.store.CreateRoom(set.ID, host)
	if err != nil {
		return nil, err
	}
	if err := s.persistRoomCreated(room); err != nil {
		return nil, err
	}
	log.Printf("room created room_id=%s join_code=%s host=%s", room.ID, room.JoinCode, host.DisplayName)
	return room, nil
}

func (s *Server) joinRoom(code string, id Identity) (*Room, error) {
	room, err := s.store.Join(code, id)
	if err != nil {
		return nil, err
	}
	joined, _ := room.findPlayer(id)
	if err := s.persistPlayerJoined(room, joined); err != nil {
		return nil, err
	}
	log.Printf("player joined room_id=%s player=%s", room.ID, joined.DisplayName)
	s.publish(room.ID, eventPlayerJoined, map[string]any{
		"displayName": joined.DisplayName,
	})
	s.broadcastSnapshot(room)
	return room, nil
}

// leaveRoom removes the player. It returns nil when the departure emptied
// the room and the room itself was deleted.
func (s *Server) leaveRoom(roomID uuid.UUID, id Identity) (*Room, error) {
	room, departed, err := s.store.Leave(roomID, id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		if err := s.persistRoomDeleted(roomID); err != nil {
			return nil, err
		}
		log.Printf("room deleted room_id=%s reason=last_player_left", roomID)
		s.ws.CloseRoom(roomID)
		return nil, nil
	}
	if err := s.persistPlayerLeft(room, departed); err != nil {
		return nil, err
	}
	log.Printf("player left room_id=%s player=%s", room.ID, departed.DisplayName)
	s.publish(room.ID, eventPlayerLeft, map[string]any{
		"displayName": departed.DisplayName,
	})
	if departed.IsHost {
		if host, ok := room.findPlayerByID(room.HostPlayerID); ok {
			s.publish(room.ID, eventHostChanged, map[string]any{
				"displayName": host.DisplayName,
			})
		}
	}
	s.broadcastSnapshot(room)
	return room, nil
}

func (s *Server) deleteRoom(roomID uuid.UUID) error {
	room, err := s.store.Delete(roomID)
	if err != nil {
		return err
	}
	if err := s.persistRoomDeleted(room.ID); err != nil {
		return err
	}
	log.Printf("room deleted room_id=%s reason=explicit", room.ID)
	s.ws.CloseRoom(room.ID)
	return nil
}
