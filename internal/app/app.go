// Package app builds the server's components from configuration.
package app

import (
	"context"
	"time"

	"github.com/coder/quartz"
	"github.com/sirupsen/logrus"

	"fairtable-server/internal/config"
	"fairtable-server/pkg/blackjack"
	"fairtable-server/pkg/db"
	"fairtable-server/pkg/room"
	"fairtable-server/pkg/room/gamefactory"
	"fairtable-server/pkg/round"
	"fairtable-server/pkg/store"
	"fairtable-server/pkg/verify"
)

// Store is everything the server needs from persistence
type Store interface {
	round.Store
	round.BetStore
	PurgeEnded(ctx context.Context, before time.Time) (int64, error)
}

// App holds the wired components
type App struct {
	Store    Store
	Manager  *round.Manager
	PitBoss  *room.PitBoss
	Verifier *verify.Service

	clock     quartz.Clock
	retention time.Duration
}

// New wires the components around the store
// The pit boss is not started.
func New(cfg config.Config, st Store, clock quartz.Clock) *App {
	manager := round.NewManager(st, clock, RoundOptions(cfg))
	bjOptions := BlackjackOptions(cfg)

	return &App{
		Store:     st,
		Manager:   manager,
		PitBoss:   room.NewPitBoss(manager, st, gamefactory.New(bjOptions)),
		Verifier:  verify.NewService(st, st, clock, VerifyOptions(cfg), verify.Replayers(bjOptions)),
		clock:     clock,
		retention: Retention(cfg),
	}
}

// OpenStore returns the PostgreSQL store, or an in-memory store when memory is true
func OpenStore(cfg config.Config, memory bool) (Store, error) {
	if memory {
		logrus.Warn("using the in-memory store, rounds will not survive a restart")
		return store.NewMemory(quartz.NewReal()), nil
	}

	dbh, err := db.Open(cfg.PGDSN)
	if err != nil {
		return nil, err
	}

	return store.NewPostgres(dbh), nil
}

// Purge deletes rounds that ended outside the retention window
func (a *App) Purge(ctx context.Context) (int64, error) {
	before := a.clock.Now().Add(-a.retention)
	n, err := a.Store.PurgeEnded(ctx, before)
	if err != nil {
		return 0, err
	}

	logrus.WithFields(logrus.Fields{
		"before": before,
		"rounds": n,
	}).Info("purged rounds")

	return n, nil
}

// Retention is how long a revealed round stays verifiable
func Retention(cfg config.Config) time.Duration {
	return time.Duration(cfg.Round.RetentionDays) * 24 * time.Hour
}

// RoundOptions returns the options for round.Manager
func RoundOptions(cfg config.Config) round.Options {
	return round.Options{
		RetryAttempts: cfg.Round.RetryAttempts,
		RetryBackoff:  time.Duration(cfg.Round.RetryBackoffMS) * time.Millisecond,
	}
}

// VerifyOptions returns the options for verify.Service
func VerifyOptions(cfg config.Config) verify.Options {
	return verify.Options{
		Wait:        time.Duration(cfg.Verify.WaitMS) * time.Millisecond,
		Retention:   Retention(cfg),
		Concurrency: cfg.Verify.Concurrency,
	}
}

// BlackjackOptions returns the table rules
func BlackjackOptions(cfg config.Config) blackjack.Options {
	b := cfg.Blackjack
	options := blackjack.DefaultOptions()
	options.Decks = b.Decks
	options.HitSoft17 = b.HitSoft17
	options.MaxSplits = b.MaxSplits
	options.MaxHandsPerSeat = b.MaxHandsPerSeat
	options.MinWager = b.MinWager
	options.MaxWager = b.MaxWager
	options.DoubleAfterSplit = b.DoubleAfterSplit
	options.BlackjackPaysNum = b.BlackjackPaysNum
	options.BlackjackPaysDenom = b.BlackjackPaysDenom
	return options
}
