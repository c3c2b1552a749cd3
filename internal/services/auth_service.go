package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/repository"
	"github.com/example/mangabrew/internal/utils"
	"github.com/example/mangabrew/internal/validation"
)

// AuthService covers signup, password login, remember-me and the
// password reset and email verification flows.
type AuthService struct {
	users   repository.UserRepository
	tokens  *TokenService
	limiter *RateLimiter
	mailer  Mailer
	baseURL string
	Now     func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens *TokenService, limiter *RateLimiter, mailer Mailer, baseURL string) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		limiter: limiter,
		mailer:  mailer,
		baseURL: baseURL,
		Now:     time.Now,
	}
}

type LoginResult struct {
	User          *models.User
	RememberToken string
}

// Login verifies credentials for a username or email. The rate limit is
// checked before any credential work; every failure is recorded against ip.
func (s *AuthService) Login(ctx context.Context, ip string, cmd validation.LoginCommand) (*LoginResult, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}
	if err := s.limiter.Check(ctx, ip); err != nil {
		return nil, err
	}

	user, err := s.users.FindByIdentifier(ctx, cmd.Identifier)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash := ""
	if user != nil {
		hash = user.PasswordHash
	}
	if !utils.CheckPassword(hash, cmd.Password) {
		if err := s.limiter.Fail(ctx, ip); err != nil {
			log.Printf("[Auth] failed to record login attempt for %s: %v", ip, err)
		}
		log.Printf("[Auth] failed login for %q from %s", cmd.Identifier, ip)
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.limiter.Reset(ctx, ip); err != nil {
		log.Printf("[Auth] failed to clear login attempts for %s: %v", ip, err)
	}
	s.touch(ctx, user.ID)

	result := &LoginResult{User: user}
	if cmd.Remember {
		token, err := s.tokens.Issue(ctx, models.TokenRemember, user.ID)
		if err != nil {
			return nil, err
		}
		result.RememberToken = token
	}
	return result, nil
}

// Restore re-establishes a login from a remember-me cookie value.
func (s *AuthService) Restore(ctx context.Context, rememberToken string) (*models.User, error) {
	record, err := s.tokens.Validate(ctx, models.TokenRemember, rememberToken)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, record.UserID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrInvalidOrExpired
	}
	if err != nil {
		return nil, err
	}
	s.touch(ctx, user.ID)
	return user, nil
}

// Logout revokes the remember-me token, if any.
func (s *AuthService) Logout(ctx context.Context, rememberToken string) error {
	return s.tokens.Revoke(ctx, models.TokenRemember, rememberToken)
}

func (s *AuthService) touch(ctx context.Context, id uuid.UUID) {
	if err := s.users.TouchLastLogin(ctx, id, s.Now()); err != nil {
		log.Printf("[Auth] failed to update last login for %s: %v", id, err)
	}
}

// Signup creates an unverified account with a zero points balance and
// mails a verification link.
func (s *AuthService) Signup(ctx context.Context, cmd validation.SignupCommand) (*models.User, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	taken, err := s.users.ExistsByUsernameOrEmail(ctx, cmd.Username, cmd.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if taken {
		return nil, apperrors.ErrUsernameOrEmailTaken
	}

	hash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		FullName:     cmd.FullName,
		Username:     cmd.Username,
		Email:        cmd.Email,
		Phone:        cmd.Phone,
		PasswordHash: hash,
		Points:       0,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(ctx, models.TokenEmailVerification, user.ID)
	if err != nil {
		log.Printf("[Auth] verification token for %s not issued: %v", user.ID, err)
		return user, nil
	}
	s.send(ctx, user.Email, "Verify your MangaBrew Café account", fmt.Sprintf(
		"Hi %s,\n\nWelcome to MangaBrew Café! Confirm your email address within 24 hours:\n\n%s\n",
		user.FullName, s.link("/verify-email", token)))
	return user, nil
}

// ForgotPassword mails a reset link to verified accounts. Callers get the
// same outcome whether or not the address is registered.
func (s *AuthService) ForgotPassword(ctx context.Context, cmd validation.ForgotPasswordCommand) error {
	if err := validation.Struct(cmd); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, cmd.Email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if !user.EmailVerified {
		return nil
	}

	token, err := s.tokens.Reissue(ctx, models.TokenPasswordReset, user.ID)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	s.send(ctx, user.Email, "Reset your MangaBrew Café password", fmt.Sprintf(
		"Hi %s,\n\nUse the link below within one hour to choose a new password:\n\n%s\n\nIf you did not ask for this, ignore this email.\n",
		user.FullName, s.link("/reset-password", token)))
	return nil
}

// CheckResetToken reports whether a reset link can still be used.
func (s *AuthService) CheckResetToken(ctx context.Context, token string) error {
	_, err := s.tokens.Validate(ctx, models.TokenPasswordReset, token)
	return err
}

// ResetPassword sets the new password and consumes the token atomically.
func (s *AuthService) ResetPassword(ctx context.Context, token string, cmd validation.ResetPasswordCommand) error {
	if err := s.CheckResetToken(ctx, token); err != nil {
		return err
	}
	if err := validation.Struct(cmd); err != nil {
		return err
	}

	hash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var userID uuid.UUID
	err = s.tokens.Consume(ctx, models.TokenPasswordReset, token, func(txCtx context.Context, record *models.Token) error {
		userID = record.UserID
		return s.users.UpdatePassword(txCtx, record.UserID, hash)
	})
	if err != nil {
		return err
	}

	if user, err := s.users.FindByID(ctx, userID); err == nil {
		s.send(ctx, user.Email, "Your MangaBrew Café password was changed",
			fmt.Sprintf("Hi %s,\n\nYour password was reset. If this wasn't you, contact the café right away.\n", user.FullName))
	}
	return nil
}

// VerifyEmail marks the account verified and consumes the token atomically.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	var userID uuid.UUID
	err := s.tokens.Consume(ctx, models.TokenEmailVerification, token, func(txCtx context.Context, record *models.Token) error {
		userID = record.UserID
		return s.users.MarkEmailVerified(txCtx, record.UserID)
	})
	if err != nil {
		return err
	}

	if user, err := s.users.FindByID(ctx, userID); err == nil {
		s.send(ctx, user.Email, "Welcome to MangaBrew Café",
			fmt.Sprintf("Hi %s,\n\nYour email is verified. Your first coffee and manga are waiting!\n", user.FullName))
	}
	return nil
}

func (s *AuthService) link(path, token string) string {
	return s.baseURL + path + "?token=" + url.QueryEscape(token)
}

func (s *AuthService) send(ctx context.Context, to, subject, body string) {
	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		log.Printf("[Mail] %q to %s failed: %v", subject, to, err)
	}
}
