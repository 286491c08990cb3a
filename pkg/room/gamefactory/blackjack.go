package gamefactory

import (
	"fairtable-server/pkg/blackjack"
	"fairtable-server/pkg/playable"
)

type blackjackFactory struct {
	options blackjack.Options
}

func (b blackjackFactory) Details(additionalData playable.AdditionalData) (int, error) {
	wagers, err := getWagers(additionalData)
	if err != nil {
		return 0, err
	}

	// validates the wagers against the table rules without dealing
	if _, err := blackjack.NewRound("", "", "", b.options, []blackjack.SeatRequest{{Wagers: wagers}}); err != nil {
		return 0, err
	}

	amount := 0
	for _, w := range wagers {
		amount += w.Amount
		for _, side := range w.Sides {
			amount += side.Amount
		}
	}

	return amount, nil
}

func (b blackjackFactory) CreateGame(seed playable.Seed, additionalData playable.AdditionalData) (playable.Playable, error) {
	wagers, err := getWagers(additionalData)
	if err != nil {
		return nil, err
	}

	round, err := blackjack.NewRound(seed.RoundID, seed.PublicHash, seed.FinalHash, b.options, []blackjack.SeatRequest{{
		PlayerID: seed.PlayerID,
		BetID:    seed.BetID,
		Wagers:   wagers,
	}})
	if err != nil {
		return nil, err
	}

	if err := round.Deal(); err != nil {
		return nil, err
	}

	return round, nil
}

func getWagers(additionalData playable.AdditionalData) ([]blackjack.Wager, error) {
	if _, ok := additionalData["wagers"]; !ok {
		return nil, blackjack.UserError("wagers are required")
	}

	var wagers []blackjack.Wager
	if err := additionalData.Decode("wagers", &wagers); err != nil {
		return nil, blackjack.UserError("could not parse wagers")
	}

	return wagers, nil
}
