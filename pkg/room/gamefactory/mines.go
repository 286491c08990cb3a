package gamefactory

import (
	"fairtable-server/pkg/mines"
	"fairtable-server/pkg/playable"
)

type minesFactory struct{}

func (m minesFactory) Details(additionalData playable.AdditionalData) (int, error) {
	amount, ok := additionalData.GetInt("amount")
	if !ok || amount <= 0 {
		return 0, mines.UserError("amount must be positive")
	}

	return amount, nil
}

func (m minesFactory) CreateGame(seed playable.Seed, additionalData playable.AdditionalData) (playable.Playable, error) {
	amount, err := m.Details(additionalData)
	if err != nil {
		return nil, err
	}

	// out of range counts are clamped by the board
	minesCount, _ := additionalData.GetInt("minesCount")
	game, err := mines.NewGame(seed.FinalHash, minesCount, amount)
	if err != nil {
		return nil, err
	}

	game.PlayerID = seed.PlayerID
	return game, nil
}
