// Package fairness implements the server seed commitment scheme.
//
// Before a round starts the server generates a secret seed and publishes
// Hash(secret). Once the round has ended the secret is disclosed and anybody can
// check it against the published hash and recompute the FinalHash that drove the
// round's randomness.
package fairness

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"fairtable-server/internal/rng"
)

// Commitment is a server secret together with its public hash
type Commitment struct {
	GameName   string `json:"gameName"`
	SecretSeed string `json:"-"`
	PublicHash string `json:"publicHash"`
}

// secretSource is swapped in tests
var secretSource interface {
	Secret(size int) (string, error)
} = rng.Crypto{}

// Hash returns the lowercase hex SHA-256 of s
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// GenerateCommitment creates a new secret seed and its public hash
// The public hash is safe to disclose immediately. The secret must stay on the server until reveal.
func GenerateCommitment(gameName string) (Commitment, error) {
	secret, err := secretSource.Secret(rng.SecretSize)
	if err != nil {
		return Commitment{}, err
	}

	return Commitment{
		GameName:   gameName,
		SecretSeed: secret,
		PublicHash: Hash(secret),
	}, nil
}

// Verify returns true if the public hash matches the secret
func (c Commitment) Verify() bool {
	return Hash(c.SecretSeed) == c.PublicHash
}

// CombinationString returns the "{clientSeed} - {nonce}" string appended to the secret
func CombinationString(clientSeed string, nonce int64) string {
	return clientSeed + " - " + strconv.FormatInt(nonce, 10)
}

// Combine returns the FinalHash for a bet: Hash(secretSeed + "{clientSeed} - {nonce}")
func Combine(secretSeed, clientSeed string, nonce int64) string {
	return Hash(secretSeed + CombinationString(clientSeed, nonce))
}
