package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomToken returns 32 cryptographically random bytes, hex encoded.
func RandomToken() (string, error) {
	return RandomHex(32)
}

func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Wipe zeroes a byte slice holding sensitive input.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
