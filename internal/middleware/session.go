package middleware

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/session"
)

const (
	SessionCookie  = "mangabrew_session"
	RememberCookie = "remember_token"

	sessionContextKey = "session"
)

// Restorer re-establishes a login from a remember-me token.
type Restorer interface {
	Restore(ctx context.Context, token string) (*models.User, error)
}

// SessionManager loads the session before a handler runs and persists it
// afterwards.
type SessionManager struct {
	store    session.Store
	restorer Restorer
	ttl      time.Duration
	secure   bool
}

func NewSessionManager(store session.Store, restorer Restorer, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{store: store, restorer: restorer, ttl: ttl, secure: secure}
}

// Handler returns the fiber middleware.
func (m *SessionManager) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := m.load(c)
		if err != nil {
			log.Printf("[Session] load failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "session unavailable")
		}
		if !sess.Authenticated() {
			m.restore(c, sess)
		}
		if err := sess.EnsureCSRF(); err != nil {
			return err
		}

		c.Locals(sessionContextKey, sess)
		handlerErr := c.Next()

		if err := m.save(c, sess); err != nil {
			log.Printf("[Session] save failed: %v", err)
			if handlerErr == nil {
				return fiber.NewError(fiber.StatusInternalServerError, "session unavailable")
			}
		}
		return handlerErr
	}
}

func (m *SessionManager) load(c *fiber.Ctx) (*session.Session, error) {
	id := c.Cookies(SessionCookie)
	if id != "" {
		data, err := m.store.Get(c.UserContext(), id)
		if err == nil {
			return &session.Session{ID: id, Data: data}, nil
		}
		if !errors.Is(err, session.ErrNotFound) {
			return nil, err
		}
	}
	return session.New()
}

func (m *SessionManager) restore(c *fiber.Ctx, sess *session.Session) {
	token := c.Cookies(RememberCookie)
	if token == "" || m.restorer == nil {
		return
	}
	user, err := m.restorer.Restore(c.UserContext(), token)
	if err != nil {
		m.ClearRemember(c)
		return
	}
	if err := sess.Login(user.ID, user.Username, user.FullName); err != nil {
		log.Printf("[Session] remember-me login failed: %v", err)
	}
}

func (m *SessionManager) save(c *fiber.Ctx, sess *session.Session) error {
	ctx := c.UserContext()
	if prev := sess.PreviousID(); prev != "" {
		if err := m.store.Destroy(ctx, prev); err != nil {
			return err
		}
	}
	if sess.Destroyed() {
		c.Cookie(m.cookie(SessionCookie, "", -time.Hour))
		return m.store.Destroy(ctx, sess.ID)
	}
	if err := m.store.Set(ctx, sess.ID, sess.Data, m.ttl); err != nil {
		return err
	}
	c.Cookie(m.cookie(SessionCookie, sess.ID, m.ttl))
	return nil
}

// SetRemember issues the remember-me cookie for its full token lifetime.
func (m *SessionManager) SetRemember(c *fiber.Ctx, token string) {
	c.Cookie(m.cookie(RememberCookie, token, models.TokenRemember.TTL()))
}

func (m *SessionManager) ClearRemember(c *fiber.Ctx) {
	c.Cookie(m.cookie(RememberCookie, "", -time.Hour))
}

func (m *SessionManager) cookie(name, value string, ttl time.Duration) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

// Current returns the request's session. It panics if the session
// middleware is not installed.
func Current(c *fiber.Ctx) *session.Session {
	return c.Locals(sessionContextKey).(*session.Session)
}
