package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Identity is an already-validated caller identity handed to the core by
// the transport layer. Exactly one of UserID / GuestSessionID is set.
type Identity struct {
	UserID         uuid.UUID
	GuestSessionID uuid.UUID
	DisplayName    string
}

func (id Identity) IsZero() bool {
	return id.UserID == uuid.Nil && id.GuestSessionID == uuid.Nil
}

func (id Identity) validate() error {
	if id.UserID != uuid.Nil && id.GuestSessionID != uuid.Nil {
		return unauthorized("identity must not carry both a user id and a guest session id")
	}
	if id.IsZero() {
		return unauthorized("identity is required")
	}
	return nil
}

// IdentityProvider resolves the authenticated identity bound to a request.
// Token issuance and validation live outside this service; the provider
// only surfaces the result.
type IdentityProvider interface {
	IdentityFromRequest(r *http.Request) (Identity, error)
}

// headerIdentityProvider trusts identity headers set by the gateway that
// terminated authentication. It mirrors the websocket handshake contract:
// X-User-Id for registered users, X-Guest-Session-Id for guests.
type headerIdentityProvider struct{}

func (headerIdentityProvider) IdentityFromRequest(r *http.Request) (Identity, error) {
	id := Identity{
		DisplayName: strings.TrimSpace(r.Header.Get("X-Display-Name")),
	}
	if raw := strings.TrimSpace(r.Header.Get("X-User-Id")); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return Identity{}, unauthorized("invalid user id")
		}
		id.UserID = parsed
	}
	if raw := strings.TrimSpace(r.Header.Get("X-Guest-Session-Id")); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return Identity{}, unauthorized("invalid guest session id")
		}
		id.GuestSessionID = parsed
	}
	if err := id.validate(); err != nil {
		return Identity{}, err
	}
	return id, nil
}
