package server

import (
	"time"

	"github.com/google/uuid"
)

const (
	statusWaiting    = "waiting"
	statusInProgress = "in_progress"
	statusFinished   = "finished"
)

// maxPlayers is fixed: Guess Who is strictly a two player game.
const maxPlayers = 2

type TurnPhase string

const (
	phaseAsking    TurnPhase = "asking"
	phaseAnswering TurnPhase = "answering"
)

// TurnState is the tagged turn sub-state of a round. AskerID names the
// asking player in BOTH phases: during answering it is still the player
// who posed the open question, not the player expected to act.
type TurnState struct {
	Phase   TurnPhase
	AskerID uuid.UUID
}

func asking(askerID uuid.UUID) TurnState {
	return TurnState{Phase: phaseAsking, AskerID: askerID}
}

func answering(askerID uuid.UUID) TurnState {
	return TurnState{Phase: phaseAnswering, AskerID: askerID}
}

type Room struct {
	ID             uuid.UUID
	JoinCode       string
	Status         string
	CharacterSetID uuid.UUID
	HostPlayerID   uuid.UUID
	CreatedAt      time.Time
	StartedAt      *time.Time
	FinishedAt     *time.Time
	Players        []Player
	Game           GameState
}

type Player struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	GuestSessionID uuid.UUID
	DisplayName    string
	IsHost         bool
	IsReady        bool
	CharacterID    uuid.UUID
	JoinedAt       time.Time
}

// Matches reports whether the player row belongs to the identity. A row
// carries exactly one of UserID / GuestSessionID, so a match is never
// ambiguous.
func (p *Player) Matches(id Identity) bool {
	if id.UserID != uuid.Nil {
		return p.UserID == id.UserID
	}
	if id.GuestSessionID != uuid.Nil {
		return p.GuestSessionID == id.GuestSessionID
	}
	return false
}

func (p *Player) HasCharacter() bool {
	return p.CharacterID != uuid.Nil
}

type GameState struct {
	ID          uuid.UUID
	Turn        TurnState
	RoundNumber int
	WinnerID    uuid.UUID
	Actions     []GameAction
}

type GameAction struct {
	ID                uuid.UUID
	AskingPlayerID    uuid.UUID
	AnsweringPlayerID uuid.UUID
	Question          string
	Answer            string
	RoundNumber       int
}

type Character struct {
	ID       uuid.UUID
	Name     string
	ImageURL string
}

type CharacterSet struct {
	ID         uuid.UUID
	Name       string
	CreatedBy  string
	IsPublic   bool
	CreatedAt  time.Time
	Characters []Character
}

func (cs *CharacterSet) Find(characterID uuid.UUID) (Character, bool) {
	for _, character := range cs.Characters {
		if character.ID == characterID {
			return character, true
		}
	}
	return Character{}, false
}

// GuessResult is returned by guessCharacter and broadcast verbatim.
type GuessResult struct {
	Correct              bool
	GuessedCharacterID   uuid.UUID
	GuessedCharacterName string
	ActualCharacterID    uuid.UUID
	ActualCharacterName  string
	GameEnded            bool
	WinnerID             uuid.UUID
	Message              string
}

func (r *Room) findPlayer(id Identity) (*Player, bool) {
	for i := range r.Players {
		if r.Players[i].Matches(id) {
			return &r.Players[i], true
		}
	}
	return nil, false
}

func (r *Room) findPlayerByID(playerID uuid.UUID) (*Player, bool) {
	for i := range r.Players {
		if r.Players[i].ID == playerID {
			return &r.Players[i], true
		}
	}
	return nil, false
}

// opponentOf returns the unique other roster member.
func (r *Room) opponentOf(playerID uuid.UUID) (*Player, bool) {
	for i := range r.Players {
		if r.Players[i].ID != playerID {
			return &r.Players[i], true
		}
	}
	return nil, false
}

func (r *Room) openAction() (*GameAction, bool) {
	for i := range r.Game.Actions {
		if r.Game.Actions[i].RoundNumber == r.Game.RoundNumber {
			return &r.Game.Actions[i], true
		}
	}
	return nil, false
}
