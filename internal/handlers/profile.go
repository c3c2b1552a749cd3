package handlers

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/middleware"
	"github.com/example/mangabrew/internal/services"
	"github.com/example/mangabrew/internal/session"
	"github.com/example/mangabrew/internal/validation"
)

// ProfileHandler manages user profile endpoints.
type ProfileHandler struct {
	profiles *services.ProfileService
	rewards  *services.RewardService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(profiles *services.ProfileService, rewards *services.RewardService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, rewards: rewards}
}

// GetProfile returns the profile page data.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, _ := middleware.GetCurrentUserID(c)
	profile, err := h.profiles.Get(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return view(c, profile)
}

// UpdateProfile changes name, email and phone.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	var cmd validation.UpdateProfileCommand
	if err := c.BodyParser(&cmd); err != nil {
		return redirectError(c, "/profile", apperrors.ErrValidation)
	}

	sess := middleware.Current(c)
	user, err := h.profiles.Update(c.UserContext(), sess.Data.UserID, cmd)
	if errors.Is(err, apperrors.ErrNoChanges) {
		return redirectWith(c, "/profile", session.FlashInfo, "No changes were made to your profile.")
	}
	if err != nil {
		return redirectError(c, "/profile", err)
	}
	sess.Data.FullName = user.FullName
	return redirectWith(c, "/profile", session.FlashSuccess, "Profile updated successfully!")
}

func (h *ProfileHandler) ChangePassword(c *fiber.Ctx) error {
	var cmd validation.ChangePasswordCommand
	if err := c.BodyParser(&cmd); err != nil {
		return redirectError(c, "/profile", apperrors.ErrValidation)
	}

	userID, _ := middleware.GetCurrentUserID(c)
	if err := h.profiles.ChangePassword(c.UserContext(), userID, cmd); err != nil {
		return redirectError(c, "/profile", err)
	}
	return redirectWith(c, "/profile", session.FlashSuccess, "Password changed successfully!")
}

// UploadAvatar stores the multipart "avatar" file as the profile picture.
func (h *ProfileHandler) UploadAvatar(c *fiber.Ctx) error {
	header, err := c.FormFile("avatar")
	if err != nil {
		return redirectError(c, "/profile", apperrors.NewValidationError("Please choose an image to upload"))
	}
	if header.Size > services.MaxAvatarSize {
		return redirectError(c, "/profile", apperrors.NewValidationError("File size must be less than 5MB"))
	}

	file, err := header.Open()
	if err != nil {
		return redirectError(c, "/profile", apperrors.ErrInvalidUpload)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, services.MaxAvatarSize+1))
	if err != nil {
		return redirectError(c, "/profile", apperrors.ErrInvalidUpload)
	}

	userID, _ := middleware.GetCurrentUserID(c)
	if _, err := h.profiles.UploadAvatar(c.UserContext(), userID, data); err != nil {
		return redirectError(c, "/profile", err)
	}
	return redirectWith(c, "/profile", session.FlashSuccess, "Profile picture updated successfully!")
}

// RedeemReward spends points on a reward.
func (h *ProfileHandler) RedeemReward(c *fiber.Ctx) error {
	userID, _ := middleware.GetCurrentUserID(c)
	reward, err := h.rewards.Redeem(c.UserContext(), userID, c.FormValue("reward_type"))
	if err != nil {
		return redirectError(c, "/profile", err)
	}
	return redirectWith(c, "/profile", session.FlashSuccess, services.RewardMessage(reward.RewardType))
}
