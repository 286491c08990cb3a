// Package shuffle turns a FinalHash into reproducible permutations.
//
// Every function here is pure: identical inputs always yield identical output,
// and no state is kept between calls, so the package is safe for any amount of
// concurrent use. The algorithm is fixed so independent verifiers can reproduce
// it byte for byte:
//
//  1. entropy comes from Stream (SHA-256 over "<finalHash>:<counter>")
//  2. each index is drawn with Stream.Intn (rejection sampling on uint32)
//  3. the identity [0..n) is shuffled with Fisher–Yates from the top down
package shuffle

import (
	"errors"

	"fairtable-server/internal/rng"
)

// ErrPartitionTooSmall is returned when a partition cannot hold both groups
var ErrPartitionTooSmall = errors.New("partition requires at least two positions")

// Derive returns a permutation of [0, n) derived from finalHash
func Derive(finalHash string, n int) []int {
	return Permute(NewStream(finalHash), n)
}

// Permute shuffles the identity [0, n) with draws from gen
func Permute(gen rng.Generator, n int) []int {
	if n <= 0 {
		return []int{}
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	for i := n - 1; i > 0; i-- {
		j := gen.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}

	return perm
}

// ClampGroupSize clamps k into [1, n-1]
func ClampGroupSize(n, k int) int {
	if k < 1 {
		return 1
	}

	if k > n-1 {
		return n - 1
	}

	return k
}

// Partition splits [0, n) into two labelled groups.
// The first k positions of Derive(finalHash, n) form group A, the remainder group B.
// k is clamped into [1, n-1] rather than rejected.
type Partition struct {
	A []int `json:"a"`
	B []int `json:"b"`
}

// NewPartition derives a Partition of n positions with a group A of (clamped) size k
func NewPartition(finalHash string, n, k int) (*Partition, error) {
	if n < 2 {
		return nil, ErrPartitionTooSmall
	}

	k = ClampGroupSize(n, k)
	perm := Derive(finalHash, n)

	return &Partition{
		A: perm[:k:k],
		B: perm[k:],
	}, nil
}

// InA returns true if position is in group A
func (p *Partition) InA(position int) bool {
	for _, a := range p.A {
		if a == position {
			return true
		}
	}

	return false
}
