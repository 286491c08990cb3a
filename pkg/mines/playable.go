package mines

import (
	"fmt"

	"fairtable-server/pkg/playable"
)

// Name is the game name rounds and bets are recorded under
const Name = "mines"

// Name implements playable.Playable
func (g *Game) Name() string {
	return Name
}

// Action implements playable.Playable
// Supported actions are "pick" (with a "tile" in the additional data) and "cashout".
func (g *Game) Action(playerID int64, message *playable.PayloadIn) error {
	if playerID != g.PlayerID {
		return UserError("you are not in this game")
	}

	switch message.Action {
	case "pick":
		tile, ok := message.AdditionalData.GetInt("tile")
		if !ok {
			return UserError("tile is required")
		}

		_, err := g.Pick(tile)
		return err
	case "cashout":
		return g.CashOut()
	}

	return UserError(fmt.Sprintf("invalid action: %s", message.Action))
}

// GetPlayerState implements playable.Playable
func (g *Game) GetPlayerState(playerID int64) (interface{}, error) {
	if playerID != g.PlayerID {
		return nil, UserError("you are not in this game")
	}

	return g.View(), nil
}

// GetEndOfGameDetails implements playable.Playable
func (g *Game) GetEndOfGameDetails() (*playable.GameOverDetails, bool) {
	settlement, err := g.Settlement()
	if err != nil {
		return nil, false
	}

	return &playable.GameOverDetails{
		BalanceAdjustments: map[int64]int{g.PlayerID: settlement.Payout},
		Log:                settlement,
	}, true
}
