package blackjack

import (
	"fairtable-server/pkg/playable"
)

// Name is the game name rounds and bets are recorded under
const Name = "blackjack"

// Name implements playable.Playable
func (r *Round) Name() string {
	return Name
}

// Action implements playable.Playable
func (r *Round) Action(playerID int64, message *playable.PayloadIn) error {
	actionType, err := ActionTypeFromString(message.Action)
	if err != nil {
		return UserError(err.Error())
	}

	_, err = r.Apply(playerID, message.HandIndex, actionType)
	return err
}

// GetPlayerState implements playable.Playable
func (r *Round) GetPlayerState(playerID int64) (interface{}, error) {
	if playerID != HousePlayerID && r.Seat(playerID) == nil {
		return nil, ErrUnknownPlayerOrHand
	}

	return r.View(), nil
}

// GetEndOfGameDetails implements playable.Playable
func (r *Round) GetEndOfGameDetails() (*playable.GameOverDetails, bool) {
	settlement, err := r.Settlement()
	if err != nil {
		return nil, false
	}

	return &playable.GameOverDetails{
		BalanceAdjustments: settlement.Payouts,
		Log:                settlement,
	}, true
}
