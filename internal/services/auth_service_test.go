package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/repository/repotest"
	"github.com/example/mangabrew/internal/services"
	"github.com/example/mangabrew/internal/utils"
	"github.com/example/mangabrew/internal/validation"
)

type authFixture struct {
	store   *repotest.Store
	mailer  *recordingMailer
	tokens  *services.TokenService
	limiter *services.RateLimiter
	auth    *services.AuthService
	now     time.Time
}

func newAuthFixture() *authFixture {
	f := &authFixture{store: repotest.NewStore(), mailer: &recordingMailer{}, now: testNow}
	f.tokens = services.NewTokenService(f.store.TxManager(), f.store.Tokens())
	f.tokens.Now = fixedClock(&f.now)
	f.limiter = services.NewRateLimiter(f.store.LoginAttempts())
	f.limiter.Now = fixedClock(&f.now)
	f.auth = services.NewAuthService(f.store.Users(), f.tokens, f.limiter, f.mailer, "http://cafe.test")
	f.auth.Now = fixedClock(&f.now)
	return f
}

func TestLoginByUsernameOrEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user := seedUser(t, f.store, "aiko", "matcha2024")

	for _, identifier := range []string{"aiko", "aiko@example.com"} {
		t.Run(identifier, func(t *testing.T) {
			res, err := f.auth.Login(ctx, "10.0.0.1", validation.LoginCommand{Identifier: identifier, Password: "matcha2024"})
			require.NoError(t, err)
			assert.Equal(t, user.ID, res.User.ID)
			assert.Empty(t, res.RememberToken)
		})
	}

	stored := f.store.User(user.ID)
	require.NotNil(t, stored.LastLogin)
	assert.True(t, stored.LastLogin.Equal(f.now))
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	seedUser(t, f.store, "aiko", "matcha2024")

	_, errUnknown := f.auth.Login(ctx, "10.0.0.1", validation.LoginCommand{Identifier: "nobody", Password: "matcha2024"})
	_, errWrong := f.auth.Login(ctx, "10.0.0.1", validation.LoginCommand{Identifier: "aiko", Password: "wrong-pass1"})

	assert.ErrorIs(t, errUnknown, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, apperrors.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
	assert.Equal(t, 2, f.store.AttemptCount("10.0.0.1"))
}

func TestLoginRateLimit(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	seedUser(t, f.store, "aiko", "matcha2024")
	bad := validation.LoginCommand{Identifier: "aiko", Password: "wrong-pass1"}
	good := validation.LoginCommand{Identifier: "aiko", Password: "matcha2024"}

	for i := 0; i < 5; i++ {
		_, err := f.auth.Login(ctx, "10.0.0.1", bad)
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}

	_, err := f.auth.Login(ctx, "10.0.0.1", good)
	require.ErrorIs(t, err, apperrors.ErrRateLimited, "a correct password is still refused while limited")
	var rl *apperrors.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 15, rl.Minutes())

	_, err = f.auth.Login(ctx, "10.0.0.2", good)
	assert.NoError(t, err, "limit is per address")

	f.now = f.now.Add(15*time.Minute + time.Second)
	_, err = f.auth.Login(ctx, "10.0.0.1", good)
	require.NoError(t, err)
	assert.Equal(t, 0, f.store.AttemptCount("10.0.0.1"), "success clears the address history")
}

func TestRememberMeLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user := seedUser(t, f.store, "aiko", "matcha2024")

	res, err := f.auth.Login(ctx, "10.0.0.1", validation.LoginCommand{Identifier: "aiko", Password: "matcha2024", Remember: true})
	require.NoError(t, err)
	require.NotEmpty(t, res.RememberToken)

	restored, err := f.auth.Restore(ctx, res.RememberToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, restored.ID)

	require.NoError(t, f.auth.Logout(ctx, res.RememberToken))
	_, err = f.auth.Restore(ctx, res.RememberToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpired)
}

func TestRememberTokenExpires(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	seedUser(t, f.store, "aiko", "matcha2024")

	res, err := f.auth.Login(ctx, "10.0.0.1", validation.LoginCommand{Identifier: "aiko", Password: "matcha2024", Remember: true})
	require.NoError(t, err)

	f.now = f.now.Add(30 * 24 * time.Hour)
	_, err = f.auth.Restore(ctx, res.RememberToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpired)
}

func signupCommand() validation.SignupCommand {
	return validation.SignupCommand{
		FullName:        "Aiko Tanaka",
		Username:        "aiko",
		Email:           "aiko@example.com",
		Password:        "matcha2024",
		ConfirmPassword: "matcha2024",
	}
}

func TestSignupAndVerifyEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	user, err := f.auth.Signup(ctx, signupCommand())
	require.NoError(t, err)
	assert.Equal(t, 0, user.Points)
	assert.False(t, user.EmailVerified)
	assert.NotEqual(t, "matcha2024", user.PasswordHash)
	assert.True(t, utils.CheckPassword(user.PasswordHash, "matcha2024"))

	mails := f.mailer.all()
	require.Len(t, mails, 1)
	assert.Equal(t, "aiko@example.com", mails[0].To)
	assert.Contains(t, mails[0].Body, "http://cafe.test/verify-email?token=")
	token := tokenFrom(t, mails[0].Body)

	require.NoError(t, f.auth.VerifyEmail(ctx, token))
	assert.True(t, f.store.User(user.ID).EmailVerified)
	assert.Len(t, f.mailer.all(), 2, "welcome mail follows verification")

	assert.ErrorIs(t, f.auth.VerifyEmail(ctx, token), apperrors.ErrInvalidOrExpired)
}

func TestSignupRejectsDuplicatesAndBadInput(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	_, err := f.auth.Signup(ctx, signupCommand())
	require.NoError(t, err)

	dup := signupCommand()
	dup.Username = "aiko2"
	_, err = f.auth.Signup(ctx, dup)
	assert.ErrorIs(t, err, apperrors.ErrUsernameOrEmailTaken)

	weak := signupCommand()
	weak.Username, weak.Email = "kenji", "kenji@example.com"
	weak.Password, weak.ConfirmPassword = "password", "password"
	_, err = f.auth.Signup(ctx, weak)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestForgotPasswordIsNeutral(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	seedUser(t, f.store, "pending", "matcha2024", func(u *models.User) { u.EmailVerified = false })

	require.NoError(t, f.auth.ForgotPassword(ctx, validation.ForgotPasswordCommand{Email: "ghost@example.com"}))
	require.NoError(t, f.auth.ForgotPassword(ctx, validation.ForgotPasswordCommand{Email: "pending@example.com"}))
	assert.Empty(t, f.mailer.all())
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user := seedUser(t, f.store, "aiko", "matcha2024")

	require.NoError(t, f.auth.ForgotPassword(ctx, validation.ForgotPasswordCommand{Email: "aiko@example.com"}))
	mails := f.mailer.all()
	require.Len(t, mails, 1)
	token := tokenFrom(t, mails[0].Body)
	require.NoError(t, f.auth.CheckResetToken(ctx, token))

	mismatch := validation.ResetPasswordCommand{Password: "hojicha2025", ConfirmPassword: "hojicha2026"}
	assert.ErrorIs(t, f.auth.ResetPassword(ctx, token, mismatch), apperrors.ErrValidation)

	cmd := validation.ResetPasswordCommand{Password: "hojicha2025", ConfirmPassword: "hojicha2025"}
	require.NoError(t, f.auth.ResetPassword(ctx, token, cmd))
	assert.True(t, utils.CheckPassword(f.store.User(user.ID).PasswordHash, "hojicha2025"))

	assert.ErrorIs(t, f.auth.ResetPassword(ctx, token, cmd), apperrors.ErrInvalidOrExpired)
}

func TestPasswordResetTokenExpiresAfterAnHour(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	seedUser(t, f.store, "aiko", "matcha2024")

	require.NoError(t, f.auth.ForgotPassword(ctx, validation.ForgotPasswordCommand{Email: "aiko@example.com"}))
	token := tokenFrom(t, f.mailer.all()[0].Body)

	f.now = f.now.Add(time.Hour)
	assert.ErrorIs(t, f.auth.CheckResetToken(ctx, token), apperrors.ErrInvalidOrExpired)
}

func TestPasswordResetRollsBackOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user := seedUser(t, f.store, "aiko", "matcha2024")

	require.NoError(t, f.auth.ForgotPassword(ctx, validation.ForgotPasswordCommand{Email: "aiko@example.com"}))
	token := tokenFrom(t, f.mailer.all()[0].Body)

	f.store.Fail("users.update_password", assert.AnError)
	cmd := validation.ResetPasswordCommand{Password: "hojicha2025", ConfirmPassword: "hojicha2025"}
	require.Error(t, f.auth.ResetPassword(ctx, token, cmd))

	assert.NoError(t, f.auth.CheckResetToken(ctx, token), "token is not spent by a failed reset")
	assert.True(t, utils.CheckPassword(f.store.User(user.ID).PasswordHash, "matcha2024"))
}
