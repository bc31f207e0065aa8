package server

import (
	"net/http"

	"github.com/google/uuid"
)

type createRoomRequest struct {
	CharacterSetID string `json:"character_set_id" validate:"required,uuid"`
}

type selectCharacterRequest struct {
	CharacterID string `json:"character_id" validate:"required,uuid"`
}

type createCharacterRequest struct {
	Name     string `json:"name" validate:"required,max=64"`
	ImageURL string `json:"image_url" validate:"omitempty,max=512"`
}

type createCharacterSetRequest struct {
	Name       string                   `json:"name" validate:"required,max=64"`
	CreatedBy  string                   `json:"created_by" validate:"omitempty,max=64"`
	IsPublic   *bool                    `json:"is_public"`
	Characters []createCharacterRequest `json:"characters" validate:"required,min=2,dive"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identityFromRequest(w, r)
	if !ok {
		return
	}
	var req createRoomRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	characterSetID, _ := uuid.Parse(req.CharacterSetID)
	room, err := s.createRoom(characterSetID, id)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, roomPayload(room))
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identityFromRequest(w, r)
	if !ok {
		return
	}
	room, err := s.joinRoom(r.PathValue("code"), id)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roomPayload(room))
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseRoomID(w, r)
	if !ok {
		return
	}
	room, err := s.store.Get(roomID)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roomPayload(room))
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseRoomID(w, r)
	if !ok {
		return
	}
	id, ok := s.identityFromRequest(w, r)
	if !ok {
		return
	}
	if err := s.requireMember(roomID, id); err != nil {
		writeOpError(w, err)
		return
	}
	if err := s.deleteRoom(roomID); err != nil {
		writeOpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseRoomID(w, r)
	if !ok {
		return
	}
	id, ok := s.identityFromRequest(w, r)
	if !ok {
		return
	}
	room, err := s.leaveRoom(roomID, id)
	if err != nil {
		writeOpError(w, err)
		return
	}
	if room == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, roomPayload(room))
}

func (s *Server) handleSelectCharacter(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseRoomID(w, r)
	if !ok {
		return
	}
	id, ok := s.identityFromRequest(w, r)
	if !ok {
		return
	}
	if err := s.requireMember(roomID, id); err != nil {
		writeOpError(w, err)
		return
	}
	var req selectCharacterRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	characterID, _ := uuid.Parse(req.CharacterID)
	player, err := s.selectCharacter(roomID, id, characterID)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playerPayload(player))
}

func (s *Server) handleToggleReady(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseRoomID(w, r)
	if !ok {
		return
	}
	id, ok := s.identityFromRequest(w, r)
	if !ok {
		return
	}
	if err := s.requireMember(roomID, id); err != nil {
		writeOpError(w, err)
		return
	}
	player, err := s.toggleReady(roomID, id)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playerPayload(player))
}

func (s *Server) handleStartRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseRoomID(w, r)
	if !ok {
		return
	}
	id, ok := s.identityFromRequest(w, r)
	if !ok {
		return
	}
	if err := s.requireMember(roomID, id); err != nil {
		writeOpError(w, err)
		return
	}
	turnPlayer, err := s.startGame(roomID, id)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "The game has been started",
		"turnPlayer": playerPayload(turnPlayer),
	})
}

func (s *Server) handleListCharacterSets(w http.ResponseWriter, r *http.Request) {
	sets := s.characters.ListPublic()
	payload := make([]map[string]any, 0, len(sets))
	for i := range sets {
		payload = append(payload, characterSetPayload(&sets[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"character_sets": payload,
	})
}

func (s *Server) handleGetCharacterSet(w http.ResponseWriter, r *http.Request) {
	setID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "character set not found")
		return
	}
	set, err := s.characters.Get(setID)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, characterSetPayload(&set))
}

func (s *Server) handleCreateCharacterSet(w http.ResponseWriter, r *http.Request) {
	var req createCharacterSetRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	characters := make([]newCharacter, 0, len(req.Characters))
	for _, character := range req.Characters {
		characters = append(characters, newCharacter{
			Name:     character.Name,
			ImageURL: character.ImageURL,
		})
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	set, err := s.createCharacterSet(req.Name, req.CreatedBy, isPublic, characters)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, characterSetPayload(&set))
}

func characterSetPayload(set *CharacterSet) map[string]any {
	characters := make([]map[string]any, 0, len(set.Characters))
	for _, character := range set.Characters {
		characters = append(characters, map[string]any{
			"id":        character.ID,
			"name":      character.Name,
			"image_url": character.ImageURL,
		})
	}
	return map[string]any{
		"id":         set.ID,
		"name":       set.Name,
		"created_by": set.CreatedBy,
		"is_public":  set.IsPublic,
		"characters": characters,
	}
}

func parseRoomID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	roomID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "room not found")
		return uuid.Nil, false
	}
	return roomID, true
}
