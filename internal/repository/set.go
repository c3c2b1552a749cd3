package repository

import "gorm.io/gorm"

// Set groups every repository the application uses.
type Set struct {
	Tx            TransactionManager
	Users         UserRepository
	LoginAttempts LoginAttemptRepository
	Tokens        TokenRepository
	Menu          MenuRepository
	Orders        OrderRepository
	Rewards       RewardRepository
	Reviews       ReviewRepository
	SocialLogins  SocialLoginRepository
	Manga         MangaRepository
}

// NewSet builds gorm-backed repositories sharing one connection pool.
func NewSet(db *gorm.DB) Set {
	return Set{
		Tx:            NewTransactionManager(db),
		Users:         NewUserRepository(db),
		LoginAttempts: NewLoginAttemptRepository(db),
		Tokens:        NewTokenRepository(db),
		Menu:          NewMenuRepository(db),
		Orders:        NewOrderRepository(db),
		Rewards:       NewRewardRepository(db),
		Reviews:       NewReviewRepository(db),
		SocialLogins:  NewSocialLoginRepository(db),
		Manga:         NewMangaRepository(db),
	}
}
