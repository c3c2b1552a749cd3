package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/repository"
	"github.com/example/mangabrew/internal/utils"
)

// TokenService issues and redeems single-use tokens. A token moves from
// issued to consumed exactly once; expiry is checked lazily on use.
type TokenService struct {
	txm    repository.TransactionManager
	tokens repository.TokenRepository
	Now    func() time.Time
}

func NewTokenService(txm repository.TransactionManager, tokens repository.TokenRepository) *TokenService {
	return &TokenService{txm: txm, tokens: tokens, Now: time.Now}
}

// Issue stores a fresh random token for the user and returns its value.
func (s *TokenService) Issue(ctx context.Context, kind models.TokenKind, userID uuid.UUID) (string, error) {
	value, err := utils.RandomToken()
	if err != nil {
		return "", err
	}
	record := &models.Token{
		UserID:    userID,
		Token:     value,
		ExpiresAt: s.Now().Add(kind.TTL()),
	}
	if err := s.tokens.Create(ctx, kind, record); err != nil {
		return "", fmt.Errorf("store %s token: %w", kind, err)
	}
	return value, nil
}

// Reissue invalidates the user's outstanding tokens of kind, then issues one.
func (s *TokenService) Reissue(ctx context.Context, kind models.TokenKind, userID uuid.UUID) (string, error) {
	var value string
	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.tokens.InvalidateForUser(txCtx, kind, userID, s.Now()); err != nil {
			return err
		}
		var err error
		value, err = s.Issue(txCtx, kind, userID)
		return err
	})
	return value, err
}

// Validate returns the token record when it is unused and unexpired.
func (s *TokenService) Validate(ctx context.Context, kind models.TokenKind, value string) (*models.Token, error) {
	if value == "" {
		return nil, apperrors.ErrInvalidOrExpired
	}
	record, err := s.tokens.FindValid(ctx, kind, value, s.Now())
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrInvalidOrExpired
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Consume marks the token used and runs effect in the same transaction.
// If effect fails the token stays unused.
func (s *TokenService) Consume(ctx context.Context, kind models.TokenKind, value string, effect func(txCtx context.Context, token *models.Token) error) error {
	return s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		record, err := s.Validate(txCtx, kind, value)
		if err != nil {
			return err
		}
		won, err := s.tokens.Consume(txCtx, kind, record.ID, s.Now())
		if err != nil {
			return err
		}
		if !won {
			return apperrors.ErrInvalidOrExpired
		}
		return effect(txCtx, record)
	})
}

func (s *TokenService) Revoke(ctx context.Context, kind models.TokenKind, value string) error {
	if value == "" {
		return nil
	}
	return s.tokens.Delete(ctx, kind, value)
}
