package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"fairtable-server/pkg/playable"
	"fairtable-server/pkg/round"
)

// finishTimeout bounds settling and revealing a finished game.
// The request that finished the game may already be gone.
const finishTimeout = 10 * time.Second

// errNotSettled is returned when a finished game could not be settled.
// The round stays active and the next request for the game tries again.
var errNotSettled = fmt.Errorf("%w: the game is over but could not be settled", round.ErrRoundStillActive)

// Reveal is sent to the player once the game is over
type Reveal struct {
	ServerSeed string        `json:"serverSeed,omitempty"`
	Payouts    map[int64]int `json:"payouts"`
	Settlement interface{}   `json:"settlement"`
}

// State is what a player sees after every request
type State struct {
	RoundID    string      `json:"roundId"`
	BetID      string      `json:"betId"`
	GameName   string      `json:"gameName"`
	PublicHash string      `json:"publicHash"`
	ClientSeed string      `json:"clientSeed"`
	Nonce      int64       `json:"nonce"`
	Game       interface{} `json:"game"`
	Reveal     *Reveal     `json:"reveal,omitempty"`
}

// Dealer runs a single game for a single player.
// Every read and write of the game happens on the dealer's run loop.
type Dealer struct {
	pitBoss *PitBoss
	key     Key
	record  *round.Record
	bet     *round.Bet
	game    playable.Playable
	settled bool
	reveal  *Reveal
	loop    *loop
	log     logrus.FieldLogger
}

// NewDealer creates a new dealer object
func NewDealer(pitBoss *PitBoss, key Key, record *round.Record, bet *round.Bet, game playable.Playable) *Dealer {
	return &Dealer{
		pitBoss: pitBoss,
		key:     key,
		record:  record,
		bet:     bet,
		game:    game,
		loop:    newLoop(),
		log: logrus.WithFields(logrus.Fields{
			"round":  record.ID,
			"bet":    bet.ID,
			"userID": key.UserID,
			"game":   key.GameName,
		}),
	}
}

// StartShift starts the run loop
func (d *Dealer) StartShift() {
	d.log.Debug("creating dealer run loop")
	go d.loop.run(func() bool {
		return d.reveal != nil
	})
}

// EndShift is called when the dealer is no longer needed
func (d *Dealer) EndShift() {
	d.loop.halt()
}

// Action performs the player's action and returns the resulting state
func (d *Dealer) Action(ctx context.Context, playerID int64, message *playable.PayloadIn) (*State, error) {
	var state *State
	var actionErr error
	err := d.exec(ctx, func() {
		if err := d.game.Action(playerID, message); err != nil {
			actionErr = err
			return
		}

		if err := d.finishIfOver(); err != nil {
			actionErr = err
			return
		}

		state, actionErr = d.state(playerID)
	})
	if err != nil {
		return nil, err
	}

	return state, actionErr
}

// State returns the player's view of the game
func (d *Dealer) State(ctx context.Context, playerID int64) (*State, error) {
	var state *State
	var stateErr error
	err := d.exec(ctx, func() {
		if err := d.finishIfOver(); err != nil {
			stateErr = err
			return
		}

		state, stateErr = d.state(playerID)
	})
	if err != nil {
		return nil, err
	}

	return state, stateErr
}

func (d *Dealer) exec(ctx context.Context, fn func()) error {
	if err := d.loop.exec(ctx, fn); err != nil {
		if errors.Is(err, errLoopStopped) {
			return ErrGameNotFound
		}

		return err
	}

	return nil
}

// NOTE: must only be called from the run loop
func (d *Dealer) state(playerID int64) (*State, error) {
	game, err := d.game.GetPlayerState(playerID)
	if err != nil {
		return nil, err
	}

	return &State{
		RoundID:    d.record.ID,
		BetID:      d.bet.ID,
		GameName:   d.key.GameName,
		PublicHash: d.record.PublicHash,
		ClientSeed: d.bet.ClientSeed,
		Nonce:      d.bet.Nonce,
		Game:       game,
		Reveal:     d.reveal,
	}, nil
}

// finishIfOver settles the bet, reveals the round and hands the key back to the pit boss.
// The round is only revealed once the bet is settled.
// The run loop exits after the closure that reveals the round returns.
// NOTE: must only be called from the run loop
func (d *Dealer) finishIfOver() error {
	if d.reveal != nil {
		return nil
	}

	details, over := d.game.GetEndOfGameDetails()
	if !over {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
	defer cancel()

	if !d.settled {
		result, err := json.Marshal(details.Log)
		if err != nil {
			d.log.WithError(err).Error("could not encode settlement")
			return errNotSettled
		}

		if err := d.pitBoss.bets.SettleBet(ctx, d.bet.ID, result); err != nil {
			d.log.WithError(err).Error("could not settle bet")
			return errNotSettled
		}

		d.settled = true
	}

	reveal := &Reveal{
		Payouts:    details.BalanceAdjustments,
		Settlement: details.Log,
	}

	record, err := d.pitBoss.manager.RevealAndCloseWithRetry(ctx, d.key.GameName, d.key.UserID)
	if err != nil {
		// the round stays active and is closed as an orphan on the next start
		d.log.WithError(err).Error("could not reveal round")
	} else {
		reveal.ServerSeed = record.SecretSeed
	}

	d.reveal = reveal
	d.pitBoss.unregister(d.key, d)

	d.log.WithField("payouts", details.BalanceAdjustments).Info("game over")
	return nil
}
