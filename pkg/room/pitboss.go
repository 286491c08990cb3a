package room

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"fairtable-server/pkg/playable"
	"fairtable-server/pkg/room/gamefactory"
	"fairtable-server/pkg/round"
)

// ErrGameNotFound is returned when the user has no game in progress
var ErrGameNotFound = errors.New("no game in progress")

// ErrClosed is returned after the pit boss has ended its shift
var ErrClosed = errors.New("the table is closed")

// UserError is an error that can be shown to the player
type UserError string

func (u UserError) Error() string {
	return string(u)
}

// Key identifies a player's game
type Key struct {
	UserID   int64
	GameName string
}

// StartRequest is a request to start a new game
type StartRequest struct {
	UserID         int64
	GameName       string
	ClientSeed     string
	AdditionalData playable.AdditionalData
}

// PitBoss is responsible for dispatching players to dealers.
// A player has at most one dealer per game.
type PitBoss struct {
	manager   *round.Manager
	bets      round.BetStore
	factories gamefactory.Factories

	// a nil dealer reserves the key while its game is being started
	dealers map[Key]*Dealer
	loop    *loop
}

// NewPitBoss returns a new dispatch object
func NewPitBoss(manager *round.Manager, bets round.BetStore, factories gamefactory.Factories) *PitBoss {
	return &PitBoss{
		manager:   manager,
		bets:      bets,
		factories: factories,
		dealers:   make(map[Key]*Dealer),
		loop:      newLoop(),
	}
}

// StartShift starts the PitBoss run loop
func (p *PitBoss) StartShift() {
	go p.loop.run(nil)
}

// EndShift stops the pit boss and every dealer it started
func (p *PitBoss) EndShift() {
	_ = p.exec(context.Background(), func() {
		for key, dealer := range p.dealers {
			if dealer != nil {
				dealer.EndShift()
			}

			delete(p.dealers, key)
		}
	})

	p.loop.halt()
}

func (p *PitBoss) exec(ctx context.Context, fn func()) error {
	if err := p.loop.exec(ctx, fn); err != nil {
		if errors.Is(err, errLoopStopped) {
			return ErrClosed
		}

		return err
	}

	return nil
}

func (p *PitBoss) reserve(ctx context.Context, key Key) error {
	var reserveErr error
	err := p.exec(ctx, func() {
		if _, found := p.dealers[key]; found {
			reserveErr = round.ErrRoundStillActive
			return
		}

		p.dealers[key] = nil
	})
	if err != nil {
		return err
	}

	return reserveErr
}

func (p *PitBoss) register(ctx context.Context, dealer *Dealer) error {
	return p.exec(ctx, func() {
		p.dealers[dealer.key] = dealer
	})
}

// unregister removes the key if it still belongs to the dealer.
// A nil dealer releases a reservation.
func (p *PitBoss) unregister(key Key, dealer *Dealer) {
	p.loop.post(func() {
		if current, found := p.dealers[key]; found && current == dealer {
			delete(p.dealers, key)
		}
	})
}

func (p *PitBoss) dealer(ctx context.Context, key Key) (*Dealer, error) {
	var dealer *Dealer
	if err := p.exec(ctx, func() {
		dealer = p.dealers[key]
	}); err != nil {
		return nil, err
	}

	if dealer == nil {
		return nil, ErrGameNotFound
	}

	return dealer, nil
}

// StartGame opens a round, records the bet and deals the game
func (p *PitBoss) StartGame(ctx context.Context, req StartRequest) (*State, error) {
	factory, err := p.factories.Get(req.GameName)
	if err != nil {
		return nil, err
	}

	if req.ClientSeed == "" {
		return nil, UserError("clientSeed is required")
	}

	amount, err := factory.Details(req.AdditionalData)
	if err != nil {
		return nil, err
	}

	key := Key{UserID: req.UserID, GameName: req.GameName}
	if err := p.reserve(ctx, key); err != nil {
		return nil, err
	}

	var dealer *Dealer
	defer func() {
		if dealer == nil {
			p.unregister(key, nil)
		}
	}()

	record, err := p.startRound(ctx, key)
	if err != nil {
		return nil, err
	}

	bet := &round.Bet{
		RoundID:    record.ID,
		UserID:     req.UserID,
		GameName:   req.GameName,
		ClientSeed: req.ClientSeed,
		Amount:     amount,
	}

	if err := p.bets.CreateBet(ctx, bet); err != nil {
		p.abandon(key, record)
		return nil, err
	}

	game, err := factory.CreateGame(playable.Seed{
		RoundID:    record.ID,
		PublicHash: record.PublicHash,
		FinalHash:  record.FinalHash(bet.ClientSeed, bet.Nonce),
		PlayerID:   req.UserID,
		BetID:      bet.ID,
	}, req.AdditionalData)
	if err != nil {
		p.abandon(key, record)
		return nil, err
	}

	d := NewDealer(p, key, record, bet, game)
	if err := p.register(ctx, d); err != nil {
		p.abandon(key, record)
		return nil, err
	}

	dealer = d
	dealer.StartShift()

	// a game can be over on the deal, so State may finish it
	return dealer.State(ctx, req.UserID)
}

// startRound opens a round for the key.
// The key is reserved, so an active round with no dealer was left behind by an earlier process.
func (p *PitBoss) startRound(ctx context.Context, key Key) (*round.Record, error) {
	record, err := p.manager.Start(ctx, key.UserID, key.GameName)
	if !errors.Is(err, round.ErrRoundStillActive) {
		return record, err
	}

	orphan, err := p.manager.RevealAndCloseWithRetry(ctx, key.GameName, key.UserID)
	if err != nil && !errors.Is(err, round.ErrRoundNotFound) {
		return nil, err
	}

	if orphan != nil {
		logrus.WithFields(logrus.Fields{
			"round":  orphan.ID,
			"userID": key.UserID,
			"game":   key.GameName,
		}).Warn("closed orphaned round")
	}

	return p.manager.Start(ctx, key.UserID, key.GameName)
}

// abandon closes a round whose game could not be started
func (p *PitBoss) abandon(key Key, record *round.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
	defer cancel()

	if _, err := p.manager.RevealAndCloseWithRetry(ctx, key.GameName, key.UserID); err != nil {
		logrus.WithError(err).WithField("round", record.ID).Error("could not close abandoned round")
	}
}

// Action performs an action in the user's game
func (p *PitBoss) Action(ctx context.Context, userID int64, gameName string, message *playable.PayloadIn) (*State, error) {
	dealer, err := p.dealer(ctx, Key{UserID: userID, GameName: gameName})
	if err != nil {
		return nil, err
	}

	return dealer.Action(ctx, userID, message)
}

// State returns the user's view of their game in progress
func (p *PitBoss) State(ctx context.Context, userID int64, gameName string) (*State, error) {
	dealer, err := p.dealer(ctx, Key{UserID: userID, GameName: gameName})
	if err != nil {
		return nil, err
	}

	return dealer.State(ctx, userID)
}
