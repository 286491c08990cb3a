package blackjack

import (
	"fairtable-server/pkg/deck"
)

// HousePlayerID identifies the house seat
const HousePlayerID int64 = -1

// HouseHandIndex is reserved for the house hand
const HouseHandIndex = 0

// WagerType is the kind of wager
type WagerType string

// WagerType constants
const (
	WagerMain WagerType = "main"
	WagerSide WagerType = "side"
)

// SideWagerInsurance is the side wager type placed by the Insurance action
const SideWagerInsurance = "insurance"

// SideWager is an optional wager resolved against a PayTable
type SideWager struct {
	Type   string `json:"type"`
	Amount int    `json:"amount"`
}

// Wager is the stake on a hand
type Wager struct {
	Type   WagerType   `json:"type"`
	Amount int         `json:"amount"`
	Sides  []SideWager `json:"sides"`
}

func (w Wager) clone() Wager {
	cp := w
	cp.Sides = append([]SideWager(nil), w.Sides...)
	return cp
}

// Hand is a set of cards and a wager belonging to a seat
type Hand struct {
	HandIndex int        `json:"handIndex"`
	Wager     Wager      `json:"wager"`
	Cards     deck.Hand  `json:"cards"`
	Status    HandStatus `json:"status"`
	Actions   []Action   `json:"actions"`
	Payout    int        `json:"payout"`
	splitFrom int
}

func newHand(handIndex int, wager Wager) *Hand {
	return &Hand{
		HandIndex: handIndex,
		Wager:     wager,
		Cards:     deck.Hand{},
		Actions:   []Action{},
		splitFrom: -1,
	}
}

// IsHouse returns true for the house hand
func (h *Hand) IsHouse() bool {
	return h.HandIndex == HouseHandIndex
}

// SplitFrom returns the index of the hand this one was split from
func (h *Hand) SplitFrom() (int, bool) {
	return h.splitFrom, h.splitFrom >= 0
}

func (h *Hand) hasAction(actionType ActionType) bool {
	for _, a := range h.Actions {
		if a.Type == actionType {
			return true
		}
	}

	return false
}

// onlyDealt returns true if nothing but the deal has happened to the hand
func (h *Hand) onlyDealt() bool {
	for _, a := range h.Actions {
		if a.Type != ActionDeal {
			return false
		}
	}

	return true
}

// upCard returns the first visible card
func (h *Hand) upCard() *deck.Card {
	for _, c := range h.Cards {
		if !c.Hidden {
			return c
		}
	}

	return nil
}

func (h *Hand) clone() *Hand {
	cp := *h
	cp.Wager = h.Wager.clone()
	cp.Cards = h.Cards.Clone()
	cp.Actions = make([]Action, len(h.Actions))
	for i, a := range h.Actions {
		cp.Actions[i] = a
		if a.DrawIndex != nil {
			idx := *a.DrawIndex
			cp.Actions[i].DrawIndex = &idx
		}
	}

	if h.Status.SplitFrom != nil {
		sf := *h.Status.SplitFrom
		cp.Status.SplitFrom = &sf
	}

	return &cp
}

// Seat is a participant slot: a player or the house
type Seat struct {
	PlayerID  int64   `json:"playerId"`
	BetID     string  `json:"betId,omitempty"`
	SeatIndex int     `json:"seatIndex"`
	Hands     []*Hand `json:"hands"`
}

// IsHouse returns true for the house seat
func (s *Seat) IsHouse() bool {
	return s.PlayerID == HousePlayerID
}

func (s *Seat) hand(handIndex int) *Hand {
	for _, h := range s.Hands {
		if h.HandIndex == handIndex {
			return h
		}
	}

	return nil
}

func (s *Seat) splits() int {
	count := 0
	for _, h := range s.Hands {
		if _, ok := h.SplitFrom(); ok {
			count++
		}
	}

	return count
}

func (s *Seat) clone() *Seat {
	cp := *s
	cp.Hands = make([]*Hand, len(s.Hands))
	for i, h := range s.Hands {
		cp.Hands[i] = h.clone()
	}

	return &cp
}
