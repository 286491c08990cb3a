package rng

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// SecretSize is the number of random bytes in a server secret
const SecretSize = 32

// Crypto wraps the crypto/rand library
type Crypto struct{}

// Secret returns size random bytes, hex encoded
func (c Crypto) Secret(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("invalid secret size: %d", size)
	}

	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random secret: %w", err)
	}

	return hex.EncodeToString(b), nil
}
