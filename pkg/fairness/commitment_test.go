package fairness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash(t *testing.T) {
	a := assert.New(t)

	a.Equal("e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Hash(""))
	a.Equal("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", Hash("abc"))
	a.Equal("52b04d335bc4cfb232655288f480cfb44bdb48f46d1f1e28d08ee7137b7629b7", Hash("f00dfacecafebeef"))
}

func TestCombine(t *testing.T) {
	a := assert.New(t)

	a.Equal("lucky - 1", CombinationString("lucky", 1))

	fh := Combine("f00dfacecafebeef", "lucky", 1)
	a.Equal("5834dc0cf41b5ff95e9b74a1adda9885447c242c54c333013ec8616ba92b7b5e", fh)
	a.Equal(Hash("f00dfacecafebeeflucky - 1"), fh)

	// deterministic
	for i := 0; i < 10; i++ {
		a.Equal(fh, Combine("f00dfacecafebeef", "lucky", 1))
	}

	a.NotEqual(fh, Combine("f00dfacecafebeef", "lucky", 2))
	a.NotEqual(fh, Combine("f00dfacecafebeef", "unlucky", 1))
	a.NotEqual(fh, Combine("f00dfacecafebeee", "lucky", 1))
}

func TestGenerateCommitment(t *testing.T) {
	a := assert.New(t)

	c, err := GenerateCommitment("blackjack")
	a.NoError(err)
	a.Equal("blackjack", c.GameName)
	a.Len(c.SecretSeed, 64)
	a.Equal(Hash(c.SecretSeed), c.PublicHash)
	a.True(c.Verify())

	c2, err := GenerateCommitment("blackjack")
	a.NoError(err)
	a.NotEqual(c.SecretSeed, c2.SecretSeed)
	a.NotEqual(c.PublicHash, c2.PublicHash)

	c.PublicHash = c2.PublicHash
	a.False(c.Verify())
}

type failingSource struct{}

func (failingSource) Secret(int) (string, error) {
	return "", errors.New("no entropy")
}

func TestGenerateCommitment_error(t *testing.T) {
	orig := secretSource
	secretSource = failingSource{}
	defer func() { secretSource = orig }()

	c, err := GenerateCommitment("mines")
	assert.EqualError(t, err, "no entropy")
	assert.Equal(t, Commitment{}, c)
}
