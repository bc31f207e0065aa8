package server

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"guesswho/internal/config"

	"github.com/google/uuid"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func newGameServer() *Server {
	return New(nil, config.Default())
}

func seedCharacterSet(srv *Server) CharacterSet {
	return srv.characters.Create("Classic", "system", true, []newCharacter{
		{Name: "Bob"},
		{Name: "Charlie"},
	})
}

func userIdentity(name string) Identity {
	return Identity{UserID: uuid.New(), DisplayName: name}
}

func guestIdentity(name string) Identity {
	return Identity{GuestSessionID: uuid.New(), DisplayName: name}
}

func characterID(t *testing.T, set CharacterSet, name string) uuid.UUID {
	t.Helper()
	for _, character := range set.Characters {
		if character.Name == name {
			return character.ID
		}
	}
	t.Fatalf("character %q not in set", name)
	return uuid.Nil
}

// newLobby creates a room with host and guest joined, both with a
// character selected and readied up.
func newLobby(t *testing.T, srv *Server) (*Room, CharacterSet, Identity, Identity) {
	t.Helper()
	set := seedCharacterSet(srv)
	host := userIdentity("Ada")
	guest := guestIdentity("Ben")
	room, err := srv.createRoom(set.ID, host)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, err := srv.joinRoom(room.JoinCode, guest); err != nil {
		t.Fatalf("join room: %v", err)
	}
	bob := characterID(t, set, "Bob")
	for _, id := range []Identity{host, guest} {
		if _, err := srv.selectCharacter(room.ID, id, bob); err != nil {
			t.Fatalf("select character: %v", err)
		}
		if _, err := srv.toggleReady(room.ID, id); err != nil {
			t.Fatalf("toggle ready: %v", err)
		}
	}
	return room, set, host, guest
}

// startedGame starts the lobby and returns identities ordered asker
// first.
func startedGame(t *testing.T, srv *Server) (*Room, CharacterSet, Identity, Identity) {
	t.Helper()
	room, set, host, guest := newLobby(t, srv)
	turnPlayer, err := srv.startGame(room.ID, host)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}
	asker, answerer := host, guest
	if turnPlayer.Matches(guest) {
		asker, answerer = guest, host
	}
	return room, set, asker, answerer
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, id Identity, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	setIdentityHeaders(req.Header, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func setIdentityHeaders(header http.Header, id Identity) {
	if id.UserID != uuid.Nil {
		header.Set("X-User-Id", id.UserID.String())
	}
	if id.GuestSessionID != uuid.Nil {
		header.Set("X-Guest-Session-Id", id.GuestSessionID.String())
	}
	if id.DisplayName != "" {
		header.Set("X-Display-Name", id.DisplayName)
	}
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func roomState(t *testing.T, srv *Server, roomID uuid.UUID) *Room {
	t.Helper()
	room, err := srv.store.Get(roomID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	return room
}

func errKind(t *testing.T, err error) ErrorKind {
	t.Helper()
	kind, ok := errorKind(err)
	if !ok {
		t.Fatalf("expected typed error, got %v", err)
	}
	return kind
}
