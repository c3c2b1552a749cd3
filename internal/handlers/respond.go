package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/middleware"
	"github.com/example/mangabrew/internal/session"
	"github.com/example/mangabrew/internal/utils"
)

// userFacing are the errors whose text can be shown as is.
var userFacing = []error{
	apperrors.ErrAuthRequired,
	apperrors.ErrInvalidToken,
	apperrors.ErrInvalidAction,
	apperrors.ErrRateLimited,
	apperrors.ErrInvalidCredentials,
	apperrors.ErrInvalidOrExpired,
	apperrors.ErrItemUnavailable,
	apperrors.ErrInsufficientStock,
	apperrors.ErrInvalidIndex,
	apperrors.ErrInvalidQuantity,
	apperrors.ErrEmptyCart,
	apperrors.ErrInvalidPickupWindow,
	apperrors.ErrInvalidPaymentMethod,
	apperrors.ErrInvalidCardDetails,
	apperrors.ErrOrderProcessingFailed,
	apperrors.ErrInvalidRewardType,
	apperrors.ErrInsufficientPoints,
	apperrors.ErrInternal,
	apperrors.ErrValidation,
	apperrors.ErrUsernameOrEmailTaken,
	apperrors.ErrEmailTaken,
	apperrors.ErrCurrentPasswordIncorrect,
	apperrors.ErrNoChanges,
	apperrors.ErrInvalidUpload,
	apperrors.ErrNotFound,
	apperrors.ErrUnknownProvider,
	apperrors.ErrSocialAuthFailed,
}

// errorMessage turns a service error into flash text. Unknown errors are
// logged and replaced by a generic message.
func errorMessage(c *fiber.Ctx, err error) string {
	for _, known := range userFacing {
		if errors.Is(err, known) {
			return utils.Capitalize(err.Error())
		}
	}
	log.Printf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
	return utils.Capitalize(apperrors.ErrInternal.Error())
}

func flash(c *fiber.Ctx, kind, message string) {
	middleware.Current(c).AddFlash(kind, message)
}

func redirectWith(c *fiber.Ctx, target, kind, message string) error {
	flash(c, kind, message)
	return c.Redirect(target, fiber.StatusSeeOther)
}

func redirectError(c *fiber.Ctx, target string, err error) error {
	return redirectWith(c, target, session.FlashError, errorMessage(c, err))
}

// view answers a page request with its data, the pending flashes and the
// form token.
func view(c *fiber.Ctx, data interface{}) error {
	sess := middleware.Current(c)
	return c.JSON(fiber.Map{
		"success":    true,
		"data":       data,
		"flashes":    sess.PopFlashes(),
		"csrf_token": sess.Data.CSRFToken,
	})
}

// jsonError answers an AJAX request with a failure body.
func jsonError(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": errorMessage(c, err),
	})
}
