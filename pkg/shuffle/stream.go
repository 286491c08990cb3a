package shuffle

import (
	"crypto/sha256"
	"encoding/binary"
	"strconv"

	"fairtable-server/internal/rng"
)

var _ rng.Generator = (*Stream)(nil)

// Stream is a counter-based byte stream seeded by a FinalHash.
//
// Block i is SHA-256(seed || ":" || decimal(i)), where seed is the FinalHash as
// ASCII text. Blocks are consumed four bytes at a time as big-endian uint32.
type Stream struct {
	seed    []byte
	counter uint64
	block   [sha256.Size]byte
	offset  int
}

// NewStream returns a stream positioned at block 0
func NewStream(finalHash string) *Stream {
	return &Stream{
		seed:   []byte(finalHash),
		offset: sha256.Size,
	}
}

func (s *Stream) nextBlock() {
	buf := make([]byte, 0, len(s.seed)+21)
	buf = append(buf, s.seed...)
	buf = append(buf, ':')
	buf = strconv.AppendUint(buf, s.counter, 10)

	s.block = sha256.Sum256(buf)
	s.counter++
	s.offset = 0
}

// Uint32 returns the next four bytes of the stream
func (s *Stream) Uint32() uint32 {
	if s.offset+4 > len(s.block) {
		s.nextBlock()
	}

	v := binary.BigEndian.Uint32(s.block[s.offset : s.offset+4])
	s.offset += 4
	return v
}

// Intn returns an unbiased number in [0, n) using rejection sampling.
// Values at or above the largest multiple of n that fits in 2^32 are discarded.
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		panic("invalid argument to Intn")
	}

	if n == 1 {
		return 0
	}

	const space = uint64(1) << 32
	bound := uint64(n)
	limit := space - space%bound
	for {
		u := uint64(s.Uint32())
		if u < limit {
			return int(u % bound)
		}
	}
}
