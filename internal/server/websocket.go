package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type wsHub struct {
	mu     sync.Mutex
	groups map[uuid.UUID]map[*websocket.Conn]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{
		groups: make(map[uuid.UUID]map[*websocket.Conn]struct{}),
	}
}

func (h *wsHub) Add(roomID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[roomID]
	if group == nil {
		group = make(map[*websocket.Conn]struct{})
		h.groups[roomID] = group
	}
	group[conn] = struct{}{}
}

func (h *wsHub) Remove(roomID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[roomID]
	if group == nil {
		return
	}
	delete(group, conn)
	_ = conn.Close()
	if len(group) == 0 {
		delete(h.groups, roomID)
	}
}

// CloseRoom drops every subscriber of a deleted room.
func (h *wsHub) CloseRoom(roomID uuid.UUID) {
	h.mu.Lock()
	group := h.groups[roomID]
	delete(h.groups, roomID)
	h.mu.Unlock()
	for conn := range group {
		_ = conn.Close()
	}
}

func (h *wsHub) Send(conn *websocket.Conn, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, data)
}

func (h *wsHub) Broadcast(roomID uuid.UUID, payload any) {
	h.mu.Lock()
	group := h.groups[roomID]
	conns := make([]*websocket.Conn, 0, len(group))
	for conn := range group {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.Remove(roomID, conn)
		}
	}
}

// actionMessage is an inbound realtime frame. It carries only the
// payload; room and identity always come from the connection binding.
type actionMessage struct {
	Action  string `json:"action"`
	Payload string `json:"payload"`
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	id, ok := s.identityFromRequest(w, r)
	if !ok {
		return
	}
	if !s.isMember(roomID, id) {
		writeError(w, http.StatusForbidden, "player is not a member of the room")
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected room_id=%s player=%s remote=%s", roomID, id.DisplayName, r.RemoteAddr)
	s.ws.Add(roomID, conn)
	if room, err := s.store.Get(roomID); err == nil {
		s.ws.Send(conn, snapshot(room))
	}
	go s.readWS(roomID, id, conn)
}

func (s *Server) readWS(roomID uuid.UUID, id Identity, conn *websocket.Conn) {
	defer s.ws.Remove(roomID, conn)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("ws disconnected room_id=%s error=%v", roomID, err)
			return
		}
		var message actionMessage
		if err := json.Unmarshal(data, &message); err != nil {
			s.sendWSError(conn, "malformed action message")
			continue
		}
		if err := s.dispatchAction(roomID, id, message); err != nil {
			s.sendWSError(conn, err.Error())
		}
	}
}

// dispatchAction executes one inbound realtime action. Membership is
// re-checked on every message; a player who left mid-session loses the
// right to act even on an open connection.
func (s *Server) dispatchAction(roomID uuid.UUID, id Identity, message actionMessage) error {
	if err := s.requireMember(roomID, id); err != nil {
		return err
	}
	switch message.Action {
	case "ready":
		_, err := s.toggleReady(roomID, id)
		return err
	case "start":
		_, err := s.startGame(roomID, id)
		return err
	case "question":
		text, err := validateQuestion(message.Payload)
		if err != nil {
			return err
		}
		_, err = s.submitQuestion(roomID, id, text)
		return err
	case "answer":
		text, err := validateAnswer(message.Payload)
		if err != nil {
			return err
		}
		_, err = s.submitAnswer(roomID, id, text)
		return err
	case "guess":
		characterID, err := uuid.Parse(message.Payload)
		if err != nil {
			return notFound("guessed character id is not valid")
		}
		_, err = s.guessCharacter(roomID, id, characterID)
		return err
	default:
		return invalidState("unknown action %q", message.Action)
	}
}

func (s *Server) sendWSError(conn *websocket.Conn, message string) {
	s.ws.Send(conn, map[string]any{
		"type":    "error",
		"message": message,
	})
}
