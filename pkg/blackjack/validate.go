package blackjack

// PlayablePolicy decides whether a doubled hand that has not been resolved can still act
type PlayablePolicy int

// PlayablePolicy constants
const (
	// LenientPlayable treats a doubled hand as playable until its outcome is known
	LenientPlayable PlayablePolicy = iota
	// StrictPlayable treats a doubled hand as finished
	StrictPlayable
)

// IsPlayableHand returns true if the hand may still receive a player action.
// Bust, blackjack, stood and resolved hands are never playable.
func IsPlayableHand(hand *Hand, policy PlayablePolicy) bool {
	if hand == nil || hand.IsHouse() || len(hand.Cards) == 0 {
		return false
	}

	st := hand.Status
	if st.Outcome != OutcomeUnknown || st.IsBust || st.IsBlackjack || hand.hasAction(ActionStand) {
		return false
	}

	if st.WasDoubled {
		return policy == LenientPlayable
	}

	return true
}

func isLegal(st HandStatus, actionType ActionType) bool {
	switch actionType {
	case ActionHit:
		return st.CanHit
	case ActionStand:
		return st.CanStand
	case ActionDoubleDown:
		return st.CanDoubleDown
	case ActionSplit:
		return st.CanSplit
	case ActionInsurance:
		return st.CanInsure
	}

	return false
}

// ValidatePlayerHandAction checks that the player's hand may take the action now.
// It returns the seat owning the hand and never modifies the round.
//
// The checks run in order: the hand must exist, be playable, allow the action,
// and be the first hand in seat order that still has to act.
func ValidatePlayerHandAction(r *Round, playerID int64, handIndex int, actionType ActionType) (*Seat, error) {
	if playerID == HousePlayerID || handIndex == HouseHandIndex {
		return nil, ErrUnknownPlayerOrHand
	}

	seat := r.Seat(playerID)
	if seat == nil {
		return nil, ErrUnknownPlayerOrHand
	}

	hand := seat.hand(handIndex)
	if hand == nil {
		return nil, ErrUnknownPlayerOrHand
	}

	if !IsPlayableHand(hand, LenientPlayable) {
		return nil, ErrIllegalAction
	}

	if !isLegal(hand.Status, actionType) {
		return nil, ErrIllegalAction
	}

	if r.CurrentHand() != hand {
		return nil, ErrNotThisHandsTurn
	}

	return seat, nil
}
