// Package session keeps per-client server-side state: the authenticated
// identity, the CSRF token, the cart and pending flash messages.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/example/mangabrew/internal/cart"
	"github.com/example/mangabrew/internal/utils"
)

var ErrNotFound = errors.New("session not found")

const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Data is the persisted part of a session.
type Data struct {
	UserID     uuid.UUID `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	FullName   string    `json:"full_name,omitempty"`
	CSRFToken  string    `json:"csrf_token"`
	Cart       cart.Cart `json:"cart"`
	Flashes    []Flash   `json:"flashes,omitempty"`
	OAuthState string    `json:"oauth_state,omitempty"`
}

// Store persists session data keyed by an opaque session id.
type Store interface {
	Get(ctx context.Context, id string) (*Data, error)
	Set(ctx context.Context, id string, data *Data, ttl time.Duration) error
	Destroy(ctx context.Context, id string) error
}

// Session is the request-scoped handle handlers work with.
type Session struct {
	ID   string
	Data *Data

	previousID string
	destroyed  bool
}

func New() (*Session, error) {
	id, err := utils.RandomToken()
	if err != nil {
		return nil, err
	}
	return &Session{ID: id, Data: &Data{}}, nil
}

// EnsureCSRF generates the CSRF token once; it then stays fixed until the
// session is destroyed.
func (s *Session) EnsureCSRF() error {
	if s.Data.CSRFToken != "" {
		return nil
	}
	token, err := utils.RandomToken()
	if err != nil {
		return err
	}
	s.Data.CSRFToken = token
	return nil
}

func (s *Session) Authenticated() bool {
	return s.Data.UserID != uuid.Nil
}

// Login binds the identity and moves the session to a fresh id. The cart
// and CSRF token survive the move.
func (s *Session) Login(userID uuid.UUID, username, fullName string) error {
	id, err := utils.RandomToken()
	if err != nil {
		return err
	}
	if s.previousID == "" {
		s.previousID = s.ID
	}
	s.ID = id
	s.Data.UserID = userID
	s.Data.Username = username
	s.Data.FullName = fullName
	return nil
}

// Destroy drops every value; the store entry is removed on save.
func (s *Session) Destroy() {
	s.destroyed = true
	s.Data = &Data{}
}

func (s *Session) Destroyed() bool { return s.destroyed }

// PreviousID is the id the session had before Login rotated it.
func (s *Session) PreviousID() string { return s.previousID }

func (s *Session) AddFlash(kind, message string) {
	s.Data.Flashes = append(s.Data.Flashes, Flash{Kind: kind, Message: message})
}

// PopFlashes returns pending flash messages and clears them.
func (s *Session) PopFlashes() []Flash {
	flashes := s.Data.Flashes
	s.Data.Flashes = nil
	return flashes
}
