// Package round tracks the lifecycle of provably fair rounds.
//
// A user may have at most one active round per game. Starting and ending a
// round both take a per-(user, game) lease, and the store enforces the same
// invariant with a compare-and-swap on the round's status.
package round

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fairtable-server/pkg/fairness"
)

// Options configures a Manager
type Options struct {
	// RetryAttempts is how many times RevealAndCloseWithRetry tries before giving up
	RetryAttempts int
	// RetryBackoff is the wait between attempts
	RetryBackoff time.Duration
}

// DefaultOptions returns the default set of options
func DefaultOptions() Options {
	return Options{
		RetryAttempts: 3,
		RetryBackoff:  250 * time.Millisecond,
	}
}

// Manager creates and ends rounds
type Manager struct {
	store   Store
	clock   quartz.Clock
	options Options
	leases  *leases
}

// NewManager returns a new Manager
func NewManager(store Store, clock quartz.Clock, options Options) *Manager {
	if options.RetryAttempts < 1 {
		options.RetryAttempts = 1
	}

	return &Manager{
		store:   store,
		clock:   clock,
		options: options,
		leases:  newLeases(),
	}
}

// Start opens a new round for the user and game.
// It fails fast with ErrRoundStillActive if one is already active.
func (m *Manager) Start(ctx context.Context, userID int64, gameName string) (*Record, error) {
	if !m.leases.acquire(userID, gameName) {
		return nil, ErrRoundStillActive
	}
	defer m.leases.release(userID, gameName)

	if _, err := m.store.FindActiveByUser(ctx, userID, gameName); err == nil {
		return nil, ErrRoundStillActive
	} else if !errors.Is(err, ErrRoundNotFound) {
		return nil, err
	}

	commitment, err := fairness.GenerateCommitment(gameName)
	if err != nil {
		return nil, fmt.Errorf("generate commitment: %w", err)
	}

	record := &Record{
		ID:         uuid.New().String(),
		UserID:     userID,
		GameName:   gameName,
		SecretSeed: commitment.SecretSeed,
		PublicHash: commitment.PublicHash,
		Created:    m.clock.Now(),
	}

	if err := m.store.Create(ctx, record); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"round":      record.ID,
		"userID":     userID,
		"game":       gameName,
		"publicHash": record.PublicHash,
	}).Debug("round started")

	return record, nil
}

// RevealAndClose ends the user's active round for the game and returns it with its secret
func (m *Manager) RevealAndClose(ctx context.Context, gameName string, userID int64) (*Record, error) {
	if !m.leases.acquire(userID, gameName) {
		return nil, ErrRoundStillActive
	}
	defer m.leases.release(userID, gameName)

	active, err := m.store.FindActiveByUser(ctx, userID, gameName)
	if err != nil {
		return nil, err
	}

	record, err := m.store.End(ctx, active.ID)
	if err != nil {
		return nil, err
	}

	if !record.Commitment().Verify() {
		// the store handed back a secret that doesn't match what was published
		return nil, fmt.Errorf("round %s: secret does not match public hash", record.ID)
	}

	logrus.WithFields(logrus.Fields{
		"round":  record.ID,
		"userID": userID,
		"game":   gameName,
	}).Debug("round revealed")

	return record, nil
}

// RevealAndCloseWithRetry calls RevealAndClose, retrying with a fixed backoff while the round is contended
func (m *Manager) RevealAndCloseWithRetry(ctx context.Context, gameName string, userID int64) (*Record, error) {
	var lastErr error
	for attempt := 0; attempt < m.options.RetryAttempts; attempt++ {
		if attempt > 0 {
			if err := m.sleep(ctx, m.options.RetryBackoff); err != nil {
				return nil, err
			}
		}

		record, err := m.RevealAndClose(ctx, gameName, userID)
		if err == nil {
			return record, nil
		}

		if !IsRetryable(err) {
			return nil, err
		}

		lastErr = err
	}

	return nil, lastErr
}

// IsActive returns true if the user has an active round for the game
func (m *Manager) IsActive(ctx context.Context, userID int64, gameName string) (bool, error) {
	_, err := m.store.FindActiveByUser(ctx, userID, gameName)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, ErrRoundNotFound) {
		return false, nil
	}

	return false, err
}

// Get returns a round by its ID
func (m *Manager) Get(ctx context.Context, roundID string) (*Record, error) {
	return m.store.Get(ctx, roundID)
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) error {
	timer := m.clock.NewTimer(d, "round", "retry")
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
