package server

import (
	"testing"

	"guesswho/internal/config"
	"guesswho/internal/db"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPersistentServer backs the server with an in-memory database so the
// write-through layer runs for real.
func newPersistentServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("skipping test; in-memory database unavailable: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(conn, config.Default()), conn
}

func eventCounts(t *testing.T, conn *gorm.DB, roomID uuid.UUID) map[string]int {
	t.Helper()
	var rows []db.Event
	if err := conn.Where("room_id = ?", roomID).Find(&rows).Error; err != nil {
		t.Fatalf("load events: %v", err)
	}
	counts := make(map[string]int)
	for _, row := range rows {
		counts[row.Type]++
	}
	return counts
}

func TestEventRowsWrittenForEveryBroadcastKind(t *testing.T) {
	srv, conn := newPersistentServer(t)
	room, set, asker, answerer := startedGame(t, srv)

	if _, err := srv.submitQuestion(room.ID, asker, "Are they young?"); err != nil {
		t.Fatalf("submit question: %v", err)
	}
	if _, err := srv.submitAnswer(room.ID, answerer, "No"); err != nil {
		t.Fatalf("submit answer: %v", err)
	}
	// The answerer holds the turn now; a wrong guess records a result
	// without ending the game.
	if _, err := srv.guessCharacter(room.ID, answerer, characterID(t, set, "Charlie")); err != nil {
		t.Fatalf("guess: %v", err)
	}

	departing := asker
	if p, _ := roomState(t, srv, room.ID).findPlayer(answerer); p.IsHost {
		departing = answerer
	}
	if _, err := srv.leaveRoom(room.ID, departing); err != nil {
		t.Fatalf("leave room: %v", err)
	}

	counts := eventCounts(t, conn, room.ID)
	for _, kind := range []string{
		"RoomCreated",
		eventPlayerJoined,
		eventReadyToggled,
		eventGameStarted,
		eventQuestionAsked,
		eventAnswerGiven,
		eventGuessResult,
		eventPlayerLeft,
		eventHostChanged,
	} {
		if counts[kind] == 0 {
			t.Errorf("no event row for %s (have %v)", kind, counts)
		}
	}
	if counts[eventReadyToggled] != 2 {
		t.Errorf("expected one ready event per player, got %d", counts[eventReadyToggled])
	}
}

func TestTurnPersistenceMirrorsActions(t *testing.T) {
	srv, conn := newPersistentServer(t)
	room, _, asker, answerer := startedGame(t, srv)

	if _, err := srv.submitQuestion(room.ID, asker, "Do they wear glasses?"); err != nil {
		t.Fatalf("submit question: %v", err)
	}
	if _, err := srv.submitAnswer(room.ID, answerer, "Yes"); err != nil {
		t.Fatalf("submit answer: %v", err)
	}

	var actions []db.GameAction
	if err := conn.Where("game_state_id = ?", room.Game.ID).Find(&actions).Error; err != nil {
		t.Fatalf("load actions: %v", err)
	}
	if len(actions) != 1 {
		t.Fatalf("expected one action row, got %d", len(actions))
	}
	if actions[0].Answer == nil || *actions[0].Answer != "Yes" {
		t.Fatalf("action row not completed: %#v", actions[0])
	}

	var state db.GameState
	if err := conn.Where("room_id = ?", room.ID).First(&state).Error; err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.RoundNumber != 2 {
		t.Fatalf("state row round = %d, want 2", state.RoundNumber)
	}
}
