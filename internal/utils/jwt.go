package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrStateMismatch = errors.New("oauth state does not match")

type stateClaims struct {
	Provider string `json:"provider"`
	Nonce    string `json:"nonce"`
	jwt.RegisteredClaims
}

// GenerateState signs the OAuth state parameter for a provider round trip.
func GenerateState(secret, provider, nonce string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &stateClaims{
		Provider: provider,
		Nonce:    nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseState validates the signed state and checks it was issued for the
// given provider and nonce.
func ParseState(secret, state, provider, nonce string) error {
	token, err := jwt.ParseWithClaims(state, &stateClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return err
	}

	claims, ok := token.Claims.(*stateClaims)
	if !ok || !token.Valid {
		return jwt.ErrTokenInvalidClaims
	}
	if claims.Provider != provider || nonce == "" || claims.Nonce != nonce {
		return ErrStateMismatch
	}
	return nil
}
