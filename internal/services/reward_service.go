package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/repository"
)

// RewardCosts maps each redeemable reward to its price in points.
var RewardCosts = map[string]int{
	models.RewardCoffee:      100,
	models.RewardMangaRental: 200,
}

var rewardMessages = map[string]string{
	models.RewardCoffee:      "Free coffee reward redeemed! Show this to the barista.",
	models.RewardMangaRental: "Manga rental reward redeemed! Visit the library to claim your rental.",
}

// RewardMessage is the confirmation shown after a redemption.
func RewardMessage(rewardType string) string {
	return rewardMessages[rewardType]
}

type RewardService struct {
	txm     repository.TransactionManager
	users   repository.UserRepository
	rewards repository.RewardRepository
}

func NewRewardService(txm repository.TransactionManager, users repository.UserRepository, rewards repository.RewardRepository) *RewardService {
	return &RewardService{txm: txm, users: users, rewards: rewards}
}

// Redeem debits the reward cost and records a pending redemption in one
// transaction, holding the user's row lock so concurrent redemptions
// cannot both spend the same points.
func (s *RewardService) Redeem(ctx context.Context, userID uuid.UUID, rewardType string) (*models.UserReward, error) {
	cost, ok := RewardCosts[rewardType]
	if !ok {
		return nil, apperrors.ErrInvalidRewardType
	}

	reward := &models.UserReward{
		UserID:     userID,
		RewardType: rewardType,
		PointsUsed: cost,
		Status:     models.RewardStatusPending,
	}
	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.users.FindByIDForUpdate(txCtx, userID)
		if err != nil {
			return fmt.Errorf("lock user: %w", err)
		}
		if user.Points < cost {
			return apperrors.ErrInsufficientPoints
		}
		if err := s.users.AddPoints(txCtx, userID, -cost); err != nil {
			return fmt.Errorf("debit points: %w", err)
		}
		return s.rewards.Create(txCtx, reward)
	})
	if errors.Is(err, apperrors.ErrInsufficientPoints) {
		return nil, err
	}
	if err != nil {
		log.Printf("[Rewards] redemption of %s for %s rolled back: %v", rewardType, userID, err)
		return nil, apperrors.ErrInternal
	}
	return reward, nil
}
