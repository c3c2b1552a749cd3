package middleware

import (
	"crypto/subtle"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/session"
	"github.com/example/mangabrew/internal/utils"
)

const (
	CSRFField  = "csrf_token"
	CSRFHeader = "X-CSRF-Token"
)

// GuardConfig declares what a route requires before its handler runs.
type GuardConfig struct {
	Auth bool
	CSRF bool
	// Action, when set, must equal the submitted "action" field.
	Action string
	// Fallback is the redirect target when the Referer is unusable.
	Fallback string
	// JSON answers failures with a JSON body instead of a redirect.
	JSON bool
}

// Guard checks authentication, then the CSRF token, then the action
// discriminator.
func Guard(cfg GuardConfig) fiber.Handler {
	if cfg.Fallback == "" {
		cfg.Fallback = "/"
	}
	return func(c *fiber.Ctx) error {
		sess := Current(c)

		if cfg.Auth && !sess.Authenticated() {
			return deny(c, sess, cfg, fiber.StatusUnauthorized, apperrors.ErrAuthRequired, "/")
		}
		if cfg.CSRF && !validCSRF(c, sess) {
			return deny(c, sess, cfg, fiber.StatusForbidden, apperrors.ErrInvalidToken, back(c, cfg.Fallback))
		}
		if cfg.Action != "" && c.FormValue("action") != cfg.Action {
			return deny(c, sess, cfg, fiber.StatusBadRequest, apperrors.ErrInvalidAction, back(c, cfg.Fallback))
		}
		return c.Next()
	}
}

func validCSRF(c *fiber.Ctx, sess *session.Session) bool {
	submitted := c.FormValue(CSRFField)
	if submitted == "" {
		submitted = c.Get(CSRFHeader)
	}
	expected := sess.Data.CSRFToken
	if submitted == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(expected)) == 1
}

func deny(c *fiber.Ctx, sess *session.Session, cfg GuardConfig, status int, err error, target string) error {
	if cfg.JSON {
		return c.Status(status).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	sess.AddFlash(session.FlashError, utils.Capitalize(err.Error()))
	return c.Redirect(target, fiber.StatusSeeOther)
}

// back returns the path of a same-site Referer, or fallback.
func back(c *fiber.Ctx, fallback string) string {
	ref, err := url.Parse(c.Get(fiber.HeaderReferer))
	if err != nil || ref.Path == "" || ref.Path[0] != '/' {
		return fallback
	}
	if ref.Host != "" && ref.Host != c.Hostname() {
		return fallback
	}
	if len(ref.Path) > 1 && ref.Path[1] == '/' {
		return fallback
	}
	return ref.Path
}

// GetCurrentUserID returns the authenticated user bound to the session.
func GetCurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	sess, ok := c.Locals(sessionContextKey).(*session.Session)
	if !ok || !sess.Authenticated() {
		return uuid.Nil, false
	}
	return sess.Data.UserID, true
}
