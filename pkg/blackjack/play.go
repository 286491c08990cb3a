package blackjack

import (
	"sort"

	"fairtable-server/pkg/deck"
)

// Apply validates and performs a player action.
// On any error the round is left exactly as it was.
// Once no player hand can act the house plays and the round completes.
func (r *Round) Apply(playerID int64, handIndex int, actionType ActionType) (*Hand, error) {
	if r.Status != RoundActive {
		return nil, ErrRoundComplete
	}

	if _, err := ValidatePlayerHandAction(r, playerID, handIndex, actionType); err != nil {
		return nil, err
	}

	if !r.shoe.CanDraw(actionType.draws()) {
		return nil, deck.ErrEndOfDeck
	}

	c := r.clone()
	seat := c.Seat(playerID)
	hand := seat.hand(handIndex)
	if err := c.apply(seat, hand, actionType); err != nil {
		return nil, err
	}

	c.moves = append(c.moves, Move{
		PlayerID:  playerID,
		HandIndex: handIndex,
		Type:      actionType,
	})

	c.refresh()
	if err := c.advance(); err != nil {
		return nil, err
	}

	*r = *c
	return hand, nil
}

func (r *Round) apply(seat *Seat, hand *Hand, actionType ActionType) error {
	switch actionType {
	case ActionHit, ActionDoubleDown:
		return r.drawTo(hand, actionType)
	case ActionStand:
		hand.Actions = append(hand.Actions, newAction(ActionStand, r.now()))
		return nil
	case ActionSplit:
		return r.split(seat, hand)
	case ActionInsurance:
		hand.Actions = append(hand.Actions, newAction(ActionInsurance, r.now()))
		hand.Wager.Sides = append(hand.Wager.Sides, SideWager{
			Type:   SideWagerInsurance,
			Amount: hand.Wager.Amount / 2,
		})

		return nil
	}

	return ErrIllegalAction
}

func (r *Round) drawTo(hand *Hand, actionType ActionType) error {
	card, idx, err := r.shoe.Draw()
	if err != nil {
		return err
	}

	hand.Cards.AddCard(card)
	hand.Actions = append(hand.Actions, newDrawAction(actionType, r.now(), idx))
	return nil
}

// split moves the second card into a new hand with the same main wager.
// Each of the two hands is then dealt one card. Side wagers stay on the original hand.
func (r *Round) split(seat *Seat, hand *Hand) error {
	splitHand := newHand(r.nextHandIndex(), Wager{
		Type:   WagerMain,
		Amount: hand.Wager.Amount,
	})
	splitHand.splitFrom = hand.HandIndex
	splitHand.Cards = deck.Hand{hand.Cards[1]}
	hand.Cards = deck.Hand{hand.Cards[0]}

	seat.Hands = append(seat.Hands, splitHand)
	sort.SliceStable(seat.Hands, func(i, j int) bool {
		return seat.Hands[i].HandIndex < seat.Hands[j].HandIndex
	})

	if err := r.drawTo(hand, ActionSplit); err != nil {
		return err
	}

	return r.drawTo(splitHand, ActionSplit)
}

// PlayHouse reveals the hole card, draws for the house and resolves every hand.
// It fails with ErrNotThisHandsTurn while a player hand can still act.
func (r *Round) PlayHouse() error {
	if r.Status != RoundActive {
		return ErrRoundComplete
	}

	if !r.Dealt {
		return ErrIllegalAction
	}

	if r.CurrentHand() != nil {
		return ErrNotThisHandsTurn
	}

	c := r.clone()
	if err := c.playHouse(); err != nil {
		return err
	}

	*r = *c
	return nil
}

// housePlays returns true if any player hand can still lose or push against the house's draw
func (r *Round) housePlays() bool {
	for _, h := range r.playerHands() {
		if !h.Status.IsBust && !h.Status.IsBlackjack {
			return true
		}
	}

	return false
}

func (r *Round) houseDraws(st HandStatus) bool {
	if st.Value < 17 {
		return true
	}

	return st.Value == 17 && st.IsSoft && r.options.HitSoft17
}

func (r *Round) playHouse() error {
	house := r.House()
	for _, card := range house.Cards {
		card.Hidden = false
	}

	if r.housePlays() {
		// find out how many cards are needed before touching the shoe
		cards := house.Cards.Clone()
		needed := 0
		for r.houseDraws(ComputeStatus(cards)) {
			card := r.shoe.At(r.shoe.NextIndex() + needed)
			if card == nil {
				return deck.ErrEndOfDeck
			}

			cards.AddCard(card)
			needed++
		}

		for i := 0; i < needed; i++ {
			if err := r.drawTo(house, ActionHit); err != nil {
				return err
			}
		}
	}

	if !ComputeStatus(house.Cards).IsBust {
		house.Actions = append(house.Actions, newAction(ActionStand, r.now()))
	}

	r.ResolveOutcomes()
	return nil
}

// ResolveOutcomes completes the round, then sets the outcome and payout of every player hand.
// Outcomes are recomputed from the cards, so calling it again changes nothing.
func (r *Round) ResolveOutcomes() {
	r.Status = RoundCompleted
	r.refresh()

	house := r.House()
	houseStatus := r.houseStatus()
	for _, h := range r.playerHands() {
		h.Payout = r.payout(h, houseStatus, house.Cards)
	}
}

// Payouts returns the net result of every player across all of their hands
func (r *Round) Payouts() map[int64]int {
	payouts := make(map[int64]int)
	for _, s := range r.Seats {
		if s.IsHouse() {
			continue
		}

		payouts[s.PlayerID] = 0
		for _, h := range s.Hands {
			payouts[s.PlayerID] += h.Payout
		}
	}

	return payouts
}
