package handlers

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/middleware"
	"github.com/example/mangabrew/internal/services"
	"github.com/example/mangabrew/internal/session"
	"github.com/example/mangabrew/internal/utils"
)

// SocialHandler runs the OAuth2 redirect and callback.
type SocialHandler struct {
	social *services.SocialService
}

func NewSocialHandler(social *services.SocialService) *SocialHandler {
	return &SocialHandler{social: social}
}

// Redirect sends the browser to the provider's consent page.
func (h *SocialHandler) Redirect(c *fiber.Ctx) error {
	nonce, err := utils.RandomToken()
	if err != nil {
		return redirectError(c, "/", err)
	}
	target, err := h.social.AuthURL(c.Params("provider"), nonce)
	if err != nil {
		return redirectError(c, "/", err)
	}
	middleware.Current(c).Data.OAuthState = nonce
	return c.Redirect(target, fiber.StatusFound)
}

// Callback finishes the provider round trip and logs the user in.
func (h *SocialHandler) Callback(c *fiber.Ctx) error {
	sess := middleware.Current(c)
	nonce := sess.Data.OAuthState
	sess.Data.OAuthState = ""

	if c.Query("error") != "" {
		return redirectError(c, "/", apperrors.ErrSocialAuthFailed)
	}

	user, err := h.social.Callback(c.UserContext(), c.Params("provider"), c.Query("state"), nonce, c.Query("code"))
	if err != nil {
		return redirectError(c, "/", err)
	}
	if err := sess.Login(user.ID, user.Username, user.FullName); err != nil {
		return redirectError(c, "/", err)
	}
	return redirectWith(c, "/dashboard", session.FlashSuccess, "Welcome, "+user.FullName+"!")
}
