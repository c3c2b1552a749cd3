package errors

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrAuthRequired          = errors.New("please log in to continue")
	ErrInvalidToken          = errors.New("invalid security token")
	ErrInvalidAction         = errors.New("invalid action")
	ErrRateLimited           = errors.New("too many failed login attempts")
	ErrInvalidCredentials    = errors.New("invalid username/email or password")
	ErrInvalidOrExpired      = errors.New("invalid or expired token")
	ErrItemUnavailable       = errors.New("item is not available")
	ErrInsufficientStock     = errors.New("not enough stock available")
	ErrInvalidIndex          = errors.New("invalid cart item")
	ErrInvalidQuantity       = errors.New("quantity must be between 1 and 99")
	ErrEmptyCart             = errors.New("your cart is empty")
	ErrInvalidPickupWindow   = errors.New("pickup time must be between 30 minutes and 24 hours from now")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrInvalidCardDetails    = errors.New("invalid card details")
	ErrOrderProcessingFailed = errors.New("error processing order, please try again")
	ErrInvalidRewardType     = errors.New("invalid reward type")
	ErrInsufficientPoints    = errors.New("insufficient points for this reward")
	ErrInternal              = errors.New("something went wrong, please try again")

	ErrValidation               = errors.New("validation failed")
	ErrUsernameOrEmailTaken     = errors.New("username or email already exists")
	ErrEmailTaken               = errors.New("email address is already in use")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
	ErrNoChanges                = errors.New("no changes were made")
	ErrInvalidUpload            = errors.New("invalid file upload")
	ErrNotFound                 = errors.New("record not found")
	ErrUnknownProvider          = errors.New("unsupported login provider")
	ErrSocialAuthFailed         = errors.New("social login failed")
)

// RateLimitError carries the remaining lockout for a blocked address.
type RateLimitError struct {
	RetryAfter time.Duration
}

// Minutes rounds the remaining lockout up to whole minutes, never below one.
func (e *RateLimitError) Minutes() int {
	m := int(math.Ceil(e.RetryAfter.Minutes()))
	if m < 1 {
		m = 1
	}
	return m
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many failed login attempts, please try again in %d minutes", e.Minutes())
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// StockError reports how many units of an item are left.
type StockError struct {
	Item      string
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("not enough stock for %s, only %d left", e.Item, e.Available)
}

func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ValidationError collects user-facing messages for a rejected form.
type ValidationError struct {
	Messages []string
}

func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
