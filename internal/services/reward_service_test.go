package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/repository/repotest"
	"github.com/example/mangabrew/internal/services"
)

func newRewardService(store *repotest.Store) *services.RewardService {
	return services.NewRewardService(store.TxManager(), store.Users(), store.Rewards())
}

func withPoints(n int) func(*models.User) {
	return func(u *models.User) { u.Points = n }
}

func TestRedeemBoundary(t *testing.T) {
	tests := []struct {
		name       string
		points     int
		reward     string
		wantErr    error
		wantPoints int
	}{
		{"one point short", 99, models.RewardCoffee, apperrors.ErrInsufficientPoints, 99},
		{"exact balance", 100, models.RewardCoffee, nil, 0},
		{"manga rental", 250, models.RewardMangaRental, nil, 50},
		{"manga rental short", 199, models.RewardMangaRental, apperrors.ErrInsufficientPoints, 199},
		{"unknown reward", 500, "free_cake", apperrors.ErrInvalidRewardType, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := repotest.NewStore()
			user := seedUser(t, store, "aiko", "matcha2024", withPoints(tt.points))

			reward, err := newRewardService(store).Redeem(context.Background(), user.ID, tt.reward)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, store.AllRewards())
			} else {
				require.NoError(t, err)
				assert.Equal(t, models.RewardStatusPending, reward.Status)
				assert.Equal(t, services.RewardCosts[tt.reward], reward.PointsUsed)
			}
			assert.Equal(t, tt.wantPoints, store.User(user.ID).Points)
		})
	}
}

func TestRedeemConcurrentSpendsOnce(t *testing.T) {
	store := repotest.NewStore()
	user := seedUser(t, store, "aiko", "matcha2024", withPoints(150))
	svc := newRewardService(store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Redeem(context.Background(), user.ID, models.RewardCoffee)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrInsufficientPoints)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 50, store.User(user.ID).Points)
	assert.Len(t, store.AllRewards(), 1)
}

func TestRedeemRollsBackDebit(t *testing.T) {
	store := repotest.NewStore()
	user := seedUser(t, store, "aiko", "matcha2024", withPoints(120))
	store.Fail("rewards.create", assert.AnError)

	_, err := newRewardService(store).Redeem(context.Background(), user.ID, models.RewardCoffee)
	assert.ErrorIs(t, err, apperrors.ErrInternal)
	assert.Equal(t, 120, store.User(user.ID).Points)
}

func TestRewardMessages(t *testing.T) {
	assert.Contains(t, services.RewardMessage(models.RewardCoffee), "barista")
	assert.Contains(t, services.RewardMessage(models.RewardMangaRental), "library")
}
