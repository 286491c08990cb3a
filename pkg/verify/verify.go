// Package verify lets a player check a finished bet against the round's revealed secret.
//
// The secret of a round that is still active is never disclosed. A bet whose
// round is still closing gets one short wait before the request is rejected.
package verify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"fairtable-server/pkg/fairness"
	"fairtable-server/pkg/round"
)

// ErrRoundTooOld is returned when the round record is gone or past retention
var ErrRoundTooOld = errors.New("round is too old to verify")

// ErrResultMismatch is returned when replaying the bet does not produce the recorded result
var ErrResultMismatch = errors.New("replayed result does not match the recorded result")

// ErrBetNotSettled is returned when the bet has no recorded result
var ErrBetNotSettled = errors.New("bet has not been settled")

// Options configures a Service
type Options struct {
	// Wait is how long to wait for an active round to close before giving up
	Wait time.Duration
	// Retention is how long an ended round can be verified, zero means forever
	Retention time.Duration
	// Concurrency bounds VerifyMany
	Concurrency int
}

// DefaultOptions returns the default set of options
func DefaultOptions() Options {
	return Options{
		Wait:        time.Second,
		Retention:   90 * 24 * time.Hour,
		Concurrency: 8,
	}
}

// Result is a verified bet
type Result struct {
	BetID            string      `json:"betId"`
	RoundID          string      `json:"roundId"`
	ServerSeed       string      `json:"serverSeed"`
	HashedServerSeed string      `json:"hashedServerSeed"`
	Nonce            int64       `json:"nonce"`
	ClientSeed       string      `json:"clientSeed"`
	FinalHash        string      `json:"finalHash"`
	Result           interface{} `json:"result"`
}

// Service verifies bets
type Service struct {
	rounds    round.Store
	bets      round.BetStore
	clock     quartz.Clock
	options   Options
	replayers map[string]Replayer
}

// NewService returns a new Service
func NewService(rounds round.Store, bets round.BetStore, clock quartz.Clock, options Options, replayers map[string]Replayer) *Service {
	if options.Concurrency < 1 {
		options.Concurrency = 1
	}

	return &Service{
		rounds:    rounds,
		bets:      bets,
		clock:     clock,
		options:   options,
		replayers: replayers,
	}
}

// Verify replays the bet from the revealed secret and checks it against the recorded result
func (s *Service) Verify(ctx context.Context, gameName, betID string) (*Result, error) {
	replayer, ok := s.replayers[gameName]
	if !ok {
		return nil, fmt.Errorf("no replayer for game: %s", gameName)
	}

	bet, err := s.bets.GetBet(ctx, betID)
	if err != nil {
		return nil, err
	}

	if bet.GameName != gameName {
		return nil, round.ErrBetNotFound
	}

	if bet.RoundID == "" {
		return nil, round.ErrNoRoundOnBet
	}

	record, err := s.endedRound(ctx, bet)
	if err != nil {
		return nil, err
	}

	if s.options.Retention > 0 && record.Ended.Before(s.clock.Now().Add(-s.options.Retention)) {
		return nil, ErrRoundTooOld
	}

	if !bet.IsSettled() {
		return nil, ErrBetNotSettled
	}

	if !record.Commitment().Verify() {
		return nil, fmt.Errorf("%w: server seed does not match its hash", ErrResultMismatch)
	}

	finalHash := record.FinalHash(bet.ClientSeed, bet.Nonce)
	result, err := replayer.Replay(finalHash, bet.Result)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"bet":   bet.ID,
			"round": record.ID,
			"game":  gameName,
		}).Warn("verification failed")
		return nil, fmt.Errorf("%w: %v", ErrResultMismatch, err)
	}

	return &Result{
		BetID:            bet.ID,
		RoundID:          record.ID,
		ServerSeed:       record.SecretSeed,
		HashedServerSeed: fairness.Hash(record.SecretSeed),
		Nonce:            bet.Nonce,
		ClientSeed:       bet.ClientSeed,
		FinalHash:        finalHash,
		Result:           result,
	}, nil
}

// endedRound returns the bet's round once no round is active for the bet's user and game.
// An active round is given one wait to close.
func (s *Service) endedRound(ctx context.Context, bet *round.Bet) (*round.Record, error) {
	record, active, err := s.check(ctx, bet)
	if err != nil {
		return nil, err
	}

	if !active {
		return record, nil
	}

	if err := s.sleep(ctx, s.options.Wait); err != nil {
		return nil, err
	}

	record, active, err = s.check(ctx, bet)
	if err != nil {
		return nil, err
	}

	if active {
		return nil, round.ErrRoundStillActive
	}

	return record, nil
}

// check returns the bet's round and whether the user still has an active round for the game
func (s *Service) check(ctx context.Context, bet *round.Bet) (*round.Record, bool, error) {
	record, err := s.getRound(ctx, bet.RoundID)
	if err != nil {
		return nil, false, err
	}

	if record.IsActive() {
		return record, true, nil
	}

	_, err = s.rounds.FindActiveByUser(ctx, bet.UserID, bet.GameName)
	switch {
	case err == nil:
		return record, true, nil
	case errors.Is(err, round.ErrRoundNotFound):
		return record, false, nil
	}

	return nil, false, err
}

func (s *Service) getRound(ctx context.Context, roundID string) (*round.Record, error) {
	record, err := s.rounds.Get(ctx, roundID)
	if errors.Is(err, round.ErrRoundNotFound) {
		return nil, ErrRoundTooOld
	}

	return record, err
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	timer := s.clock.NewTimer(d, "verify", "wait")
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// VerifyMany verifies several bets concurrently.
// It stops at the first failure.
func (s *Service) VerifyMany(ctx context.Context, gameName string, betIDs []string) ([]*Result, error) {
	results := make([]*Result, len(betIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.options.Concurrency)
	for i, betID := range betIDs {
		i, betID := i, betID
		g.Go(func() error {
			result, err := s.Verify(ctx, gameName, betID)
			if err != nil {
				return fmt.Errorf("bet %s: %w", betID, err)
			}

			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
