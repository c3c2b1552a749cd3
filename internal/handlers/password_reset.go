package handlers

import (
	"errors"
	"log"
	"net/url"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/services"
	"github.com/example/mangabrew/internal/session"
	"github.com/example/mangabrew/internal/validation"
)

const forgotPasswordNotice = "If an account exists with that email, you will receive password reset instructions shortly."

// PasswordResetHandler manages the forgot-password and email verification
// links.
type PasswordResetHandler struct {
	auth *services.AuthService
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(auth *services.AuthService) *PasswordResetHandler {
	return &PasswordResetHandler{auth: auth}
}

// ShowForgotPassword renders the request form and the notice left by the
// last submission.
func (h *PasswordResetHandler) ShowForgotPassword(c *fiber.Ctx) error {
	return view(c, nil)
}

// ForgotPassword answers with the same notice whether or not the address
// belongs to an account.
func (h *PasswordResetHandler) ForgotPassword(c *fiber.Ctx) error {
	var cmd validation.ForgotPasswordCommand
	if err := c.BodyParser(&cmd); err != nil {
		return redirectError(c, "/forgot-password", apperrors.ErrValidation)
	}

	err := h.auth.ForgotPassword(c.UserContext(), cmd)
	if errors.Is(err, apperrors.ErrValidation) {
		return redirectError(c, "/forgot-password", err)
	}
	if err != nil {
		log.Printf("[Auth] forgot-password request failed: %v", err)
	}
	return redirectWith(c, "/forgot-password", session.FlashInfo, forgotPasswordNotice)
}

// ShowResetPassword reports whether the link in the query is still usable.
func (h *PasswordResetHandler) ShowResetPassword(c *fiber.Ctx) error {
	if err := h.auth.CheckResetToken(c.UserContext(), c.Query("token")); err != nil {
		return redirectError(c, "/forgot-password", err)
	}
	return view(c, fiber.Map{"token_valid": true})
}

// ResetPassword sets a new password and spends the token.
func (h *PasswordResetHandler) ResetPassword(c *fiber.Ctx) error {
	token := c.Query("token")
	var cmd validation.ResetPasswordCommand
	if err := c.BodyParser(&cmd); err != nil {
		return redirectError(c, "/reset-password?token="+url.QueryEscape(token), apperrors.ErrValidation)
	}

	err := h.auth.ResetPassword(c.UserContext(), token, cmd)
	switch {
	case err == nil:
		return redirectWith(c, "/", session.FlashSuccess, "Your password has been reset. You can now log in.")
	case errors.Is(err, apperrors.ErrInvalidOrExpired):
		return redirectError(c, "/forgot-password", err)
	default:
		return redirectError(c, "/reset-password?token="+url.QueryEscape(token), err)
	}
}

// VerifyEmail confirms an address from the signup mail.
func (h *PasswordResetHandler) VerifyEmail(c *fiber.Ctx) error {
	if err := h.auth.VerifyEmail(c.UserContext(), c.Query("token")); err != nil {
		return redirectError(c, "/", err)
	}
	return redirectWith(c, "/", session.FlashSuccess, "Your email has been verified. You can now log in.")
}
