package handlers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/middleware"
	"github.com/example/mangabrew/internal/services"
	"github.com/example/mangabrew/internal/session"
	"github.com/example/mangabrew/internal/validation"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	auth     *services.AuthService
	sessions *middleware.SessionManager
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *services.AuthService, sessions *middleware.SessionManager) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions}
}

// Home is the public landing page holding the login and signup forms.
// Signed-in visitors go straight to the dashboard.
func (h *AuthHandler) Home(c *fiber.Ctx) error {
	if middleware.Current(c).Authenticated() {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	return view(c, nil)
}

// Login authenticates with a username or email and binds the session.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var cmd validation.LoginCommand
	if err := c.BodyParser(&cmd); err != nil {
		return redirectError(c, "/", apperrors.ErrValidation)
	}
	cmd.Remember = c.FormValue("remember_me") != ""

	result, err := h.auth.Login(c.UserContext(), c.IP(), cmd)
	if err != nil {
		return redirectError(c, "/", err)
	}

	sess := middleware.Current(c)
	if err := sess.Login(result.User.ID, result.User.Username, result.User.FullName); err != nil {
		return redirectError(c, "/", err)
	}
	if result.RememberToken != "" {
		h.sessions.SetRemember(c, result.RememberToken)
	}
	return redirectWith(c, "/dashboard", session.FlashSuccess,
		fmt.Sprintf("Welcome back, %s!", result.User.FullName))
}

// Signup registers a new account and sends the verification email.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var cmd validation.SignupCommand
	if err := c.BodyParser(&cmd); err != nil {
		return redirectError(c, "/", apperrors.ErrValidation)
	}

	if _, err := h.auth.Signup(c.UserContext(), cmd); err != nil {
		return redirectError(c, "/", err)
	}
	return redirectWith(c, "/", session.FlashSuccess,
		"Registration successful! Please check your email to verify your account.")
}

// Logout revokes the remember-me token and tears down the session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := c.Cookies(middleware.RememberCookie); token != "" {
		if err := h.auth.Logout(c.UserContext(), token); err != nil {
			log.Printf("[Auth] failed to revoke remember token: %v", err)
		}
	}
	h.sessions.ClearRemember(c)
	middleware.Current(c).Destroy()
	return c.Redirect("/", fiber.StatusSeeOther)
}
