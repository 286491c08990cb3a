package blackjack

import (
	"fairtable-server/pkg/deck"
)

// SideWagerPerfectPairs pays when the first two cards of a hand are a pair
const SideWagerPerfectPairs = "perfect-pairs"

// PayTable resolves side wagers
type PayTable interface {
	// Supports returns true if the side wager type can be placed
	Supports(sideType string) bool
	// Resolve returns the net result of the side wager given the first two cards
	// of the hand and the house's final cards
	Resolve(side SideWager, hand []*deck.Card, house []*deck.Card) int
}

// PerfectPairs pays 25:1 for a suited pair, 12:1 for a pair of the same colour
// and 6:1 for any other pair
type PerfectPairs struct{}

// Supports implements PayTable
func (PerfectPairs) Supports(sideType string) bool {
	return sideType == SideWagerPerfectPairs
}

// Resolve implements PayTable
func (PerfectPairs) Resolve(side SideWager, hand []*deck.Card, _ []*deck.Card) int {
	if side.Type != SideWagerPerfectPairs || len(hand) < 2 || hand[0].Rank != hand[1].Rank {
		return -side.Amount
	}

	switch {
	case hand[0].Suit == hand[1].Suit:
		return side.Amount * 25
	case isRed(hand[0]) == isRed(hand[1]):
		return side.Amount * 12
	}

	return side.Amount * 6
}

func isRed(card *deck.Card) bool {
	return card.Suit == deck.Diamonds || card.Suit == deck.Hearts
}

// stake returns the main wager, doubled if the hand doubled down
func stake(hand *Hand) int {
	if hand.Status.WasDoubled {
		return hand.Wager.Amount * 2
	}

	return hand.Wager.Amount
}

// initialCards returns the two cards the hand was dealt
func (r *Round) initialCards(hand *Hand) []*deck.Card {
	cards := make([]*deck.Card, 0, 2)
	for _, a := range hand.Actions {
		if a.Type != ActionDeal || a.DrawIndex == nil {
			continue
		}

		if card := r.shoe.At(*a.DrawIndex); card != nil {
			cards = append(cards, card)
		}
	}

	return cards
}

func (r *Round) payout(hand *Hand, house HandStatus, houseCards []*deck.Card) int {
	amount := stake(hand)
	net := 0
	switch hand.Status.Outcome {
	case OutcomeWin:
		net += amount
	case OutcomeLose:
		net -= amount
	case OutcomeBlackjack:
		net += amount * r.options.BlackjackPaysNum / r.options.BlackjackPaysDenom
	}

	for _, side := range hand.Wager.Sides {
		if side.Type == SideWagerInsurance {
			if house.IsBlackjack {
				net += side.Amount * 2
			} else {
				net -= side.Amount
			}

			continue
		}

		net += r.options.PayTable.Resolve(side, r.initialCards(hand), houseCards)
	}

	return net
}
