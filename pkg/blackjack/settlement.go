package blackjack

import (
	"errors"
	"fmt"

	"fairtable-server/pkg/deck"
)

// HandSummary is the final state of a hand
type HandSummary struct {
	PlayerID  int64   `json:"playerId"`
	HandIndex int     `json:"handIndex"`
	Cards     string  `json:"cards"`
	Value     int     `json:"value"`
	Outcome   Outcome `json:"outcome"`
	Payout    int     `json:"payout"`
}

// Settlement records everything needed to replay a completed round
type Settlement struct {
	RoundID    string        `json:"roundId"`
	PublicHash string        `json:"publicHash"`
	Seats      []SeatRequest `json:"seats"`
	Moves      []Move        `json:"moves"`
	Hands      []HandSummary `json:"hands"`
	Payouts    map[int64]int `json:"payouts"`
}

// Settlement returns the settlement of a completed round
func (r *Round) Settlement() (*Settlement, error) {
	if !r.IsComplete() {
		return nil, errors.New("round is not complete")
	}

	return &Settlement{
		RoundID:    r.ID,
		PublicHash: r.PublicHash,
		Seats:      cloneRequests(r.requests),
		Moves:      r.Moves(),
		Hands:      r.summaries(),
		Payouts:    r.Payouts(),
	}, nil
}

func (r *Round) summaries() []HandSummary {
	hands := append([]*Hand{r.House()}, r.playerHands()...)
	summaries := make([]HandSummary, 0, len(hands))
	for _, h := range hands {
		playerID := HousePlayerID
		if seat := r.seatOf(h); seat != nil {
			playerID = seat.PlayerID
		}

		summaries = append(summaries, HandSummary{
			PlayerID:  playerID,
			HandIndex: h.HandIndex,
			Cards:     deck.CardsToString(h.Cards),
			Value:     h.Status.Value,
			Outcome:   h.Status.Outcome,
			Payout:    h.Payout,
		})
	}

	return summaries
}

// Replay deals a new round from finalHash, applies the recorded moves and
// compares every hand with the settlement.
// The replayed round is returned even when it does not match.
func Replay(finalHash string, options Options, settlement *Settlement) (*Round, error) {
	r, err := NewRound(settlement.RoundID, settlement.PublicHash, finalHash, options, settlement.Seats)
	if err != nil {
		return nil, err
	}

	if err := r.Deal(); err != nil {
		return nil, err
	}

	for i, m := range settlement.Moves {
		if _, err := r.Apply(m.PlayerID, m.HandIndex, m.Type); err != nil {
			return r, fmt.Errorf("%w: move %d (%s): %v", ErrReplayMismatch, i, m.Type, err)
		}
	}

	if !r.IsComplete() {
		return r, fmt.Errorf("%w: round did not complete", ErrReplayMismatch)
	}

	replayed := r.summaries()
	if len(replayed) != len(settlement.Hands) {
		return r, fmt.Errorf("%w: expected %d hands, got %d", ErrReplayMismatch, len(settlement.Hands), len(replayed))
	}

	for i, want := range settlement.Hands {
		if replayed[i] != want {
			return r, fmt.Errorf("%w: hand %d", ErrReplayMismatch, want.HandIndex)
		}
	}

	return r, nil
}
