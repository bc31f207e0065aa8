package server

import (
	"net/http"

	"guesswho/internal/config"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type Server struct {
	store      *Store
	characters *characterCatalog
	db         *gorm.DB
	ws         *wsHub
	cfg        config.Config
	identities IdentityProvider
	validate   *validator.Validate
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	return &Server{
		store:      NewStore(cfg.JoinCodeAttempts),
		characters: newCharacterCatalog(),
		db:         conn,
		ws:         newWSHub(),
		cfg:        cfg,
		identities: headerIdentityProvider{},
		validate:   validator.New(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("POST /api/rooms/join/{code}", s.handleJoinRoom)
	mux.HandleFunc("GET /api/rooms/{id}", s.handleGetRoom)
	mux.HandleFunc("DELETE /api/rooms/{id}", s.handleDeleteRoom)
	mux.HandleFunc("POST /api/rooms/{id}/leave", s.handleLeaveRoom)
	mux.HandleFunc("POST /api/rooms/{id}/select-character", s.handleSelectCharacter)
	mux.HandleFunc("POST /api/rooms/{id}/toggle-ready", s.handleToggleReady)
	mux.HandleFunc("POST /api/rooms/{id}/start", s.handleStartRoom)
	mux.HandleFunc("GET /api/character-sets", s.handleListCharacterSets)
	mux.HandleFunc("POST /api/character-sets", s.handleCreateCharacterSet)
	mux.HandleFunc("GET /api/character-sets/{id}", s.handleGetCharacterSet)
	mux.HandleFunc("GET /join/{code}", s.handleJoinLink)
	mux.HandleFunc("GET /join/{code}/qr", s.handleJoinQR)
	mux.HandleFunc("GET /ws/rooms/{id}", s.handleWebsocket)
	return mux
}
