package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/middleware"
	"github.com/example/mangabrew/internal/services"
	"github.com/example/mangabrew/internal/session"
	"github.com/example/mangabrew/internal/validation"
)

type ReviewHandler struct {
	reviews *services.ReviewService
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// List returns one page of approved reviews.
func (h *ReviewHandler) List(c *fiber.Ctx) error {
	rating, _ := strconv.Atoi(c.Query("rating"))
	page, _ := strconv.Atoi(c.Query("page", "1"))
	userID, _ := middleware.GetCurrentUserID(c)

	result, err := h.reviews.List(c.UserContext(), userID, services.ReviewQuery{
		Rating:     rating,
		Category:   c.Query("category"),
		TimePeriod: c.Query("time_period"),
		Sort:       c.Query("sort"),
		Page:       page,
	})
	if err != nil {
		return err
	}
	return view(c, result)
}

// Post dispatches on the "action" field. Reactions and likes answer with
// JSON for in-page updates; reviews and replies redirect.
func (h *ReviewHandler) Post(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, _ := middleware.GetCurrentUserID(c)

	switch c.FormValue("action") {
	case "submit_review":
		var cmd validation.ReviewCommand
		if err := c.BodyParser(&cmd); err != nil {
			return redirectError(c, "/reviews", apperrors.ErrValidation)
		}
		if _, err := h.reviews.Submit(ctx, userID, cmd); err != nil {
			return redirectError(c, "/reviews", err)
		}
		return redirectWith(c, "/reviews", session.FlashSuccess, "Thank you! Your review has been submitted for approval.")

	case "submit_reply":
		var cmd validation.ReplyCommand
		if err := c.BodyParser(&cmd); err != nil {
			return redirectError(c, "/reviews", apperrors.ErrValidation)
		}
		if _, err := h.reviews.Reply(ctx, userID, cmd); err != nil {
			return redirectError(c, "/reviews", err)
		}
		return redirectWith(c, "/reviews", session.FlashSuccess, "Reply posted.")

	case "add_reaction":
		var cmd validation.ReactionCommand
		if err := c.BodyParser(&cmd); err != nil {
			return jsonError(c, fiber.StatusBadRequest, apperrors.ErrValidation)
		}
		state, err := h.reviews.ToggleReaction(ctx, userID, cmd)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, err)
		}
		return c.JSON(fiber.Map{"success": true, "action": state})

	case "like_review":
		id, err := uuid.Parse(c.FormValue("review_id"))
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, apperrors.ErrNotFound)
		}
		if err := h.reviews.Like(ctx, id); err != nil {
			return jsonError(c, fiber.StatusBadRequest, err)
		}
		return c.JSON(fiber.Map{"success": true})
	}

	return redirectError(c, "/reviews", apperrors.ErrInvalidAction)
}
