package deck

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"fairtable-server/pkg/shuffle"
)

// ErrEndOfDeck is an error when Draw() is attempted and there are no more cards
var ErrEndOfDeck = errors.New("end of deck reached")

// Shoe is the ordered card sequence derived from a FinalHash.
// Cards are consumed index by index; the index of each card drawn is reported so
// it can be recorded and replayed.
type Shoe struct {
	cards []*Card
	next  int
}

// NewOrdered returns the unshuffled cards for the given number of decks:
// clubs, diamonds, hearts, spades, each from 2 up to the ace
func NewOrdered(decks int) []*Card {
	cards := make([]*Card, 0, 52*decks)
	for d := 0; d < decks; d++ {
		for _, suit := range Suits {
			for rank := Two; rank <= Ace; rank++ {
				cards = append(cards, &Card{
					Rank: rank,
					Suit: suit,
				})
			}
		}
	}

	return cards
}

// NewShoe returns a shoe of the given number of decks in the order derived from finalHash.
// Position i of the shoe holds ordered[perm[i]] where perm = shuffle.Derive(finalHash, 52*decks).
func NewShoe(finalHash string, decks int) *Shoe {
	if decks < 1 {
		decks = 1
	}

	ordered := NewOrdered(decks)
	perm := shuffle.Derive(finalHash, len(ordered))

	cards := make([]*Card, len(ordered))
	for i, idx := range perm {
		cards[i] = ordered[idx]
	}

	return &Shoe{cards: cards}
}

// Draw will draw the next card along with its position in the shoe
// If there are no more cards, an ErrEndOfDeck is returned along with a nil card.
func (s *Shoe) Draw() (*Card, int, error) {
	if s.next >= len(s.cards) {
		return nil, -1, ErrEndOfDeck
	}

	idx := s.next
	s.next++

	return s.cards[idx].Clone(), idx, nil
}

// At returns a copy of the card at position idx, or nil if out of range
func (s *Shoe) At(idx int) *Card {
	if idx < 0 || idx >= len(s.cards) {
		return nil
	}

	return s.cards[idx].Clone()
}

// CanDraw returns true if there are {want} cards left in the shoe
func (s *Shoe) CanDraw(want int) bool {
	return s.CardsLeft() >= want
}

// CardsLeft returns the number of cards left in the shoe
func (s *Shoe) CardsLeft() int {
	return len(s.cards) - s.next
}

// NextIndex returns the position the next Draw will consume
func (s *Shoe) NextIndex() int {
	return s.next
}

// Len returns the total number of cards in the shoe
func (s *Shoe) Len() int {
	return len(s.cards)
}

// Clone returns a shoe at the same position
// The card order is shared; Draw and At only hand out copies.
func (s *Shoe) Clone() *Shoe {
	cp := *s
	return &cp
}

// HashCode returns a SHA-256 fingerprint of the full shoe order
func (s *Shoe) HashCode() string {
	hash := sha256.New()
	for _, card := range s.cards {
		_, _ = hash.Write([]byte(CardToString(card)))
	}

	return hex.EncodeToString(hash.Sum(nil))
}
