package server

import (
	"net/http"

	"github.com/google/uuid"
)

// isMember reports whether the identity currently resolves to a player in
// the room. It gates both websocket subscription and every inbound
// action, and is re-checked per message rather than cached from connect
// time: membership can end mid-session when a player leaves.
func (s *Server) isMember(roomID uuid.UUID, id Identity) bool {
	if id.IsZero() {
		return false
	}
	member := false
	err := s.store.View(roomID, func(room *Room) {
		_, member = room.findPlayer(id)
	})
	return err == nil && member
}

// requireMember resolves and authorizes an inbound action in one step.
func (s *Server) requireMember(roomID uuid.UUID, id Identity) error {
	if !s.isMember(roomID, id) {
		return unauthorized("player is not a member of the room")
	}
	return nil
}

func (s *Server) identityFromRequest(w http.ResponseWriter, r *http.Request) (Identity, bool) {
	id, err := s.identities.IdentityFromRequest(r)
	if err != nil {
		writeError(w, httpStatus(err), err.Error())
		return Identity{}, false
	}
	return id, true
}
