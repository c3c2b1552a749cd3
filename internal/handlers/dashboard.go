package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/mangabrew/internal/middleware"
	"github.com/example/mangabrew/internal/services"
)

type DashboardHandler struct {
	profiles *services.ProfileService
}

func NewDashboardHandler(profiles *services.ProfileService) *DashboardHandler {
	return &DashboardHandler{profiles: profiles}
}

// Dashboard greets the signed-in user with their points and cart size.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	sess := middleware.Current(c)
	user, err := h.profiles.Account(c.UserContext(), sess.Data.UserID)
	if err != nil {
		return err
	}
	return view(c, fiber.Map{
		"user_id":        user.ID,
		"username":       user.Username,
		"full_name":      user.FullName,
		"points":         user.Points,
		"email_verified": user.EmailVerified,
		"cart_count":     sess.Data.Cart.Count(),
	})
}
