package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Room struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	JoinCode       string     `gorm:"size:12;uniqueIndex;not null"`
	Status         string     `gorm:"size:32;not null"`
	MaxPlayers     int        `gorm:"not null"`
	CharacterSetID uuid.UUID  `gorm:"type:uuid;index;not null"`
	HostPlayerID   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time  `gorm:"not null"`
	StartedAt      *time.Time
	FinishedAt     *time.Time
	UpdatedAt      time.Time `gorm:"not null"`
	Players        []RoomPlayer
	Events         []Event
}

type RoomPlayer struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RoomID         uuid.UUID  `gorm:"type:uuid;index;not null"`
	UserID         *uuid.UUID `gorm:"type:uuid;index"`
	GuestSessionID *uuid.UUID `gorm:"type:uuid;index"`
	DisplayName    string     `gorm:"size:64;not null"`
	IsHost         bool       `gorm:"not null;default:false"`
	IsReady        bool       `gorm:"not null;default:false"`
	CharacterID    *uuid.UUID `gorm:"type:uuid"`
	JoinedAt       time.Time  `gorm:"not null"`
	CreatedAt      time.Time  `gorm:"not null"`
	UpdatedAt      time.Time  `gorm:"not null"`
}

type GameState struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RoomID      uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null"`
	TurnPhase   string     `gorm:"size:16;not null"`
	AskerID     *uuid.UUID `gorm:"type:uuid"`
	RoundNumber int        `gorm:"not null"`
	WinnerID    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
	Actions     []GameAction
}

type GameAction struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	GameStateID       uuid.UUID  `gorm:"type:uuid;index;not null;uniqueIndex:idx_actions_state_round"`
	RoundNumber       int        `gorm:"not null;uniqueIndex:idx_actions_state_round"`
	AskingPlayerID    uuid.UUID  `gorm:"type:uuid;not null"`
	AnsweringPlayerID *uuid.UUID `gorm:"type:uuid"`
	Question          string     `gorm:"size:280;not null"`
	Answer            *string    `gorm:"size:280"`
	CreatedAt         time.Time  `gorm:"not null"`
	UpdatedAt         time.Time  `gorm:"not null"`
}

type Character struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:64;not null"`
	ImageURL  string    `gorm:"size:512;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type CharacterSet struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Name       string      `gorm:"size:64;not null"`
	CreatedBy  string      `gorm:"size:64;not null"`
	IsPublic   bool        `gorm:"not null;default:true"`
	CreatedAt  time.Time   `gorm:"not null"`
	UpdatedAt  time.Time   `gorm:"not null"`
	Characters []Character `gorm:"many2many:character_set_characters"`
}

type Event struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	RoomID    uuid.UUID      `gorm:"type:uuid;index;not null"`
	PlayerID  *uuid.UUID     `gorm:"type:uuid;index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
