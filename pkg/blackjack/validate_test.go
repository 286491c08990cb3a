package blackjack

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairtable-server/pkg/deck"
)

// setHand replaces the cards and history of a hand
func setHand(hand *Hand, cards string, actions ...ActionType) {
	hand.Cards = deck.CardsFromString(cards)
	hand.Actions = make([]Action, 0, len(actions))
	for _, a := range actions {
		hand.Actions = append(hand.Actions, newAction(a, time.Time{}))
	}
}

// fixtureRound has player 1 on hand 1 (3c,6d,8s; stood), player 2 on hand 2 (4c,5s)
// and the house showing 10h with the 12d face down
func fixtureRound(t *testing.T) *Round {
	t.Helper()

	r, err := NewRound("fixture", "", knownFinalHash, DefaultOptions(), []SeatRequest{
		{PlayerID: 1, Wagers: []Wager{{Amount: 10}}},
		{PlayerID: 2, Wagers: []Wager{{Amount: 10}}},
	})
	require.NoError(t, err)

	setHand(r.Hand(1, 1), "3c,6d,8s", ActionDeal, ActionDeal, ActionHit, ActionStand)
	setHand(r.Hand(2, 2), "4c,5s", ActionDeal, ActionDeal)
	setHand(r.House(), "10h,?12d", ActionDeal, ActionDeal)

	r.Dealt = true
	r.refresh()
	return r
}

// fixtureSeatRound is fixtureRound with both hands on one seat:
// player 1 holds hand 1 (3c,6d,8s; stood) and hand 2 (4c,5s)
func fixtureSeatRound(t *testing.T) *Round {
	t.Helper()

	r, err := NewRound("fixture", "", knownFinalHash, DefaultOptions(), []SeatRequest{
		{PlayerID: 1, Wagers: []Wager{{Amount: 10}, {Amount: 10}}},
	})
	require.NoError(t, err)

	setHand(r.Hand(1, 1), "3c,6d,8s", ActionDeal, ActionDeal, ActionHit, ActionStand)
	setHand(r.Hand(1, 2), "4c,5s", ActionDeal, ActionDeal)
	setHand(r.House(), "10h,?12d", ActionDeal, ActionDeal)

	r.Dealt = true
	r.refresh()
	return r
}

func TestValidatePlayerHandAction_oneSeatTwoHands(t *testing.T) {
	a := assert.New(t)
	r := fixtureSeatRound(t)

	handA := r.Hand(1, 1)
	a.Equal(17, handA.Status.Value)
	a.False(handA.Status.IsBust)
	a.False(handA.Status.IsBlackjack)
	a.False(IsPlayableHand(handA, LenientPlayable))

	handB := r.Hand(1, 2)
	a.Equal(9, handB.Status.Value)
	a.True(handB.Status.CanHit)
	a.True(handB.Status.CanDoubleDown)

	a.Len(r.House().Actions, 2)
	a.Len(r.House().Cards, 2)

	seat, err := ValidatePlayerHandAction(r, 1, handB.HandIndex, ActionHit)
	a.NoError(err)
	if a.NotNil(seat) {
		a.Equal(int64(1), seat.PlayerID)
		a.Len(seat.Hands, 2)
	}

	seat, err = ValidatePlayerHandAction(r, 1, handA.HandIndex, ActionHit)
	a.Equal(ErrIllegalAction, err)
	a.Nil(seat)
}

func TestFixture_statuses(t *testing.T) {
	a := assert.New(t)
	r := fixtureRound(t)

	handA := r.Hand(1, 1).Status
	a.Equal(17, handA.Value)
	a.False(handA.IsBust)
	a.False(handA.CanHit)
	a.False(handA.CanStand)
	a.False(handA.CanDoubleDown)
	a.False(handA.CanSplit)
	a.False(handA.CanInsure)

	handB := r.Hand(2, 2).Status
	a.Equal(9, handB.Value)
	a.True(handB.CanHit)
	a.True(handB.CanStand)
	a.True(handB.CanDoubleDown)
	a.False(handB.CanSplit)
	a.False(handB.CanInsure)

	house := r.House()
	a.Len(house.Actions, 2)
	a.Len(house.Cards, 2)
	a.True(house.Cards[1].Hidden)

	a.Equal(r.Hand(2, 2), r.CurrentHand())
}

func TestValidatePlayerHandAction(t *testing.T) {
	a := assert.New(t)
	r := fixtureRound(t)

	seat, err := ValidatePlayerHandAction(r, 2, 2, ActionHit)
	a.NoError(err)
	a.Equal(int64(2), seat.PlayerID)

	a.False(IsPlayableHand(r.Hand(1, 1), LenientPlayable))
	seat, err = ValidatePlayerHandAction(r, 1, 1, ActionHit)
	a.Equal(ErrIllegalAction, err)
	a.Nil(seat)

	for _, actionType := range []ActionType{ActionDeal, ActionSplit, ActionInsurance} {
		_, err = ValidatePlayerHandAction(r, 2, 2, actionType)
		a.Equal(ErrIllegalAction, err, actionType.String())
	}

	_, err = ValidatePlayerHandAction(r, 1, 9, ActionHit)
	a.Equal(ErrUnknownPlayerOrHand, err)

	_, err = ValidatePlayerHandAction(r, 99, 1, ActionHit)
	a.Equal(ErrUnknownPlayerOrHand, err)

	_, err = ValidatePlayerHandAction(r, 1, 2, ActionHit)
	a.Equal(ErrUnknownPlayerOrHand, err, "hand belongs to another player")

	_, err = ValidatePlayerHandAction(r, HousePlayerID, HouseHandIndex, ActionHit)
	a.Equal(ErrUnknownPlayerOrHand, err)
}

func TestValidatePlayerHandAction_bust(t *testing.T) {
	r := fixtureRound(t)
	setHand(r.Hand(2, 2), "10c,9s,5d", ActionDeal, ActionDeal, ActionHit)
	r.refresh()

	assert.True(t, r.Hand(2, 2).Status.IsBust)
	_, err := ValidatePlayerHandAction(r, 2, 2, ActionHit)
	assert.Equal(t, ErrIllegalAction, err)
}

func TestValidatePlayerHandAction_notThisHandsTurn(t *testing.T) {
	r := fixtureRound(t)
	setHand(r.Hand(1, 1), "3c,6d", ActionDeal, ActionDeal)
	r.refresh()

	_, err := ValidatePlayerHandAction(r, 2, 2, ActionHit)
	assert.Equal(t, ErrNotThisHandsTurn, err)

	_, err = ValidatePlayerHandAction(r, 1, 1, ActionHit)
	assert.NoError(t, err)
}

func TestValidatePlayerHandAction_doesNotMutate(t *testing.T) {
	r := fixtureRound(t)
	before := r.clone()

	_, _ = ValidatePlayerHandAction(r, 1, 1, ActionHit)
	_, _ = ValidatePlayerHandAction(r, 2, 2, ActionHit)
	_, _ = ValidatePlayerHandAction(r, 7, 7, ActionHit)

	assert.Equal(t, before.Seats, r.Seats)
	assert.Equal(t, before.shoe.NextIndex(), r.shoe.NextIndex())
}

func TestIsPlayableHand_doubled(t *testing.T) {
	a := assert.New(t)
	r := fixtureRound(t)
	setHand(r.Hand(2, 2), "4c,5s,10d", ActionDeal, ActionDeal, ActionDoubleDown)
	r.refresh()

	hand := r.Hand(2, 2)
	a.True(hand.Status.WasDoubled)
	a.Equal(OutcomeUnknown, hand.Status.Outcome)
	a.True(IsPlayableHand(hand, LenientPlayable))
	a.False(IsPlayableHand(hand, StrictPlayable))
	a.Nil(r.CurrentHand())

	_, err := ValidatePlayerHandAction(r, 2, 2, ActionHit)
	a.Equal(ErrIllegalAction, err)

	r.ResolveOutcomes()
	a.NotEqual(OutcomeUnknown, hand.Status.Outcome)
	a.False(IsPlayableHand(hand, LenientPlayable))
}

func TestIsPlayableHand(t *testing.T) {
	a := assert.New(t)
	r := fixtureRound(t)

	a.False(IsPlayableHand(nil, LenientPlayable))
	a.False(IsPlayableHand(r.House(), LenientPlayable))
	a.True(IsPlayableHand(r.Hand(2, 2), StrictPlayable))

	setHand(r.Hand(2, 2), "10c,14s", ActionDeal, ActionDeal)
	r.refresh()
	a.False(IsPlayableHand(r.Hand(2, 2), LenientPlayable), "blackjack")
}
