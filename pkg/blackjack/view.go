package blackjack

import (
	"fairtable-server/pkg/deck"
)

// View is a round as a player is allowed to see it
type View struct {
	ID          string      `json:"id"`
	Status      RoundStatus `json:"status"`
	PublicHash  string      `json:"publicHash"`
	Seats       []*Seat     `json:"seats"`
	CurrentHand *int        `json:"currentHand"`
	CardsLeft   int         `json:"cardsLeft"`
}

// View returns the round with face-down cards masked.
// The house status only counts the cards that are face up.
func (r *Round) View() *View {
	c := r.clone()
	house := c.House()
	visible := make([]*deck.Card, 0, len(house.Cards))
	for i, card := range house.Cards {
		if card.Hidden {
			house.Cards[i] = &deck.Card{Hidden: true}
			continue
		}

		visible = append(visible, card)
	}

	if len(visible) != len(house.Cards) {
		house.Status = ComputeStatus(visible)
	}

	v := &View{
		ID:         c.ID,
		Status:     c.Status,
		PublicHash: c.PublicHash,
		Seats:      c.Seats,
		CardsLeft:  c.shoe.CardsLeft(),
	}

	if h := r.CurrentHand(); h != nil {
		idx := h.HandIndex
		v.CurrentHand = &idx
	}

	return v
}
