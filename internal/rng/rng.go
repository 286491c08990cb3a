// Package rng holds the sources of randomness used by the server.
//
// Generator is the deterministic side: permutations draw through it so a
// verifier can replay them. Crypto is the secret side and is never replayed.
package rng

// Generator draws uniform integers
type Generator interface {
	// Intn will return a random number up to but not including n
	Intn(n int) int
}
