package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/repository"
	"github.com/example/mangabrew/internal/utils"
	"github.com/example/mangabrew/internal/validation"
)

const MaxAvatarSize = 5 << 20

var avatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

type ProfileService struct {
	users   repository.UserRepository
	orders  repository.OrderRepository
	rewards repository.RewardRepository
	storage FileStorage
}

func NewProfileService(users repository.UserRepository, orders repository.OrderRepository, rewards repository.RewardRepository, storage FileStorage) *ProfileService {
	return &ProfileService{users: users, orders: orders, rewards: rewards, storage: storage}
}

// Profile is everything the profile page shows.
type Profile struct {
	User         *models.User        `json:"user"`
	TotalOrders  int64               `json:"total_orders"`
	TotalSpent   decimal.Decimal     `json:"total_spent"`
	RecentOrders []models.Order      `json:"recent_orders"`
	Rewards      []models.UserReward `json:"rewards"`
	RewardCosts  map[string]int      `json:"reward_costs"`
}

func (s *ProfileService) Account(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, spent, err := s.orders.Totals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("order totals: %w", err)
	}
	recent, _, err := s.orders.ListForUser(ctx, userID, 5, 0)
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	rewards, err := s.rewards.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reward history: %w", err)
	}
	return &Profile{
		User:         user,
		TotalOrders:  count,
		TotalSpent:   spent,
		RecentOrders: recent,
		Rewards:      rewards,
		RewardCosts:  RewardCosts,
	}, nil
}

// Update changes name, email and phone. It returns ErrNoChanges when the
// submitted values match the stored ones.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, cmd validation.UpdateProfileCommand) (*models.User, error) {
	cmd.FullName = strings.TrimSpace(cmd.FullName)
	cmd.Email = strings.TrimSpace(cmd.Email)
	cmd.Phone = strings.TrimSpace(cmd.Phone)
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.FullName == cmd.FullName && user.Email == cmd.Email && user.Phone == cmd.Phone {
		return user, apperrors.ErrNoChanges
	}

	if cmd.Email != user.Email {
		taken, err := s.users.EmailTakenByOther(ctx, cmd.Email, userID)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return nil, apperrors.ErrEmailTaken
		}
	}

	if err := s.users.UpdateProfile(ctx, userID, cmd.FullName, cmd.Email, cmd.Phone); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	user.FullName, user.Email, user.Phone = cmd.FullName, cmd.Email, cmd.Phone
	return user, nil
}

func (s *ProfileService) ChangePassword(ctx context.Context, userID uuid.UUID, cmd validation.ChangePasswordCommand) error {
	if err := validation.Struct(cmd); err != nil {
		return err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(user.PasswordHash, cmd.CurrentPassword) {
		return apperrors.ErrCurrentPasswordIncorrect
	}

	hash, err := utils.HashPassword(cmd.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// UploadAvatar stores a JPEG, PNG or GIF of at most 5 MiB. The type is
// sniffed from content, not taken from the client.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID uuid.UUID, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperrors.NewValidationError("Please choose an image to upload")
	}
	if len(data) > MaxAvatarSize {
		return "", apperrors.NewValidationError("File size must be less than 5MB")
	}

	mime := mimetype.Detect(data)
	ext, ok := avatarTypes[mime.String()]
	if !ok {
		return "", apperrors.NewValidationError("Only JPG, PNG and GIF files are allowed")
	}

	suffix, err := utils.RandomHex(8)
	if err != nil {
		return "", err
	}
	path, err := s.storage.Save(ctx, "avatars", "avatar_"+suffix+ext, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidUpload, err)
	}
	if err := s.users.UpdateAvatar(ctx, userID, path); err != nil {
		return "", fmt.Errorf("save avatar path: %w", err)
	}
	return path, nil
}
