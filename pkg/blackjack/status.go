package blackjack

import (
	"encoding/json"
	"fmt"

	"fairtable-server/pkg/deck"
)

// Outcome is how a hand finished against the house
type Outcome int

// Outcome constants
const (
	OutcomeUnknown Outcome = iota
	OutcomeWin
	OutcomeLose
	OutcomePush
	OutcomeBlackjack
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnknown:
		return "unknown"
	case OutcomeWin:
		return "win"
	case OutcomeLose:
		return "lose"
	case OutcomePush:
		return "push"
	case OutcomeBlackjack:
		return "blackjack"
	}

	panic(fmt.Sprintf("invalid outcome: %d", o))
}

// MarshalJSON encodes the outcome as its name
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON decodes the outcome from its name
func (o *Outcome) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	for candidate := OutcomeUnknown; candidate <= OutcomeBlackjack; candidate++ {
		if candidate.String() == s {
			*o = candidate
			return nil
		}
	}

	return fmt.Errorf("invalid outcome: %s", s)
}

// HandStatus is derived from a hand's cards and actions.
// It is recomputed after every action and never set directly.
type HandStatus struct {
	Value       int  `json:"value"`
	IsHard      bool `json:"isHard"`
	IsSoft      bool `json:"isSoft"`
	IsBust      bool `json:"isBust"`
	IsBlackjack bool `json:"isBlackjack"`

	CanHit        bool `json:"canHit"`
	CanStand      bool `json:"canStand"`
	CanInsure     bool `json:"canInsure"`
	CanSplit      bool `json:"canSplit"`
	CanDoubleDown bool `json:"canDoubleDown"`

	SplitFrom  *int    `json:"splitFrom"`
	WasDoubled bool    `json:"wasDoubled"`
	Outcome    Outcome `json:"outcome"`
}

// CardValue returns the blackjack value of a card, counting an ace as 11
func CardValue(card *deck.Card) int {
	switch {
	case card.Rank == deck.Ace:
		return 11
	case card.Rank >= deck.Ten:
		return 10
	}

	return card.Rank
}

// ComputeStatus returns the card-derived part of a hand's status:
// value, hard/soft, bust and blackjack.
//
// Aces count 11 and drop to 1, one at a time, while the total is over 21.
// A hand is soft while an ace is still counted as 11.
// Two cards totalling 21 are a blackjack; split hands are refined later by the round.
func ComputeStatus(cards []*deck.Card) HandStatus {
	value := 0
	softAces := 0
	for _, card := range cards {
		value += CardValue(card)
		if card.Rank == deck.Ace {
			softAces++
		}
	}

	for value > 21 && softAces > 0 {
		value -= 10
		softAces--
	}

	return HandStatus{
		Value:       value,
		IsSoft:      softAces > 0,
		IsHard:      softAces == 0,
		IsBust:      value > 21,
		IsBlackjack: len(cards) == 2 && value == 21,
	}
}

// outcomeFor compares a finished hand against the house
func outcomeFor(hand, house HandStatus) Outcome {
	switch {
	case hand.IsBust:
		return OutcomeLose
	case hand.IsBlackjack && !house.IsBlackjack:
		return OutcomeBlackjack
	case hand.Value == house.Value:
		return OutcomePush
	case house.IsBust, hand.Value > house.Value:
		return OutcomeWin
	}

	return OutcomeLose
}
