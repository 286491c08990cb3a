package store

import (
	"context"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"

	"fairtable-server/pkg/round"
)

type userGame struct {
	userID   int64
	gameName string
}

// Memory is an in-process implementation of round.Store and round.BetStore
type Memory struct {
	lock   sync.RWMutex
	clock  quartz.Clock
	rounds map[string]*round.Record
	bets   map[string]*round.Bet
	nonces map[userGame]int64
}

// NewMemory returns an empty Memory store
func NewMemory(clock quartz.Clock) *Memory {
	return &Memory{
		clock:  clock,
		rounds: make(map[string]*round.Record),
		bets:   make(map[string]*round.Bet),
		nonces: make(map[userGame]int64),
	}
}

// Create persists a new active round
func (m *Memory) Create(ctx context.Context, record *round.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	if _, found := m.rounds[record.ID]; found {
		return ErrDuplicateKey
	}

	if m.findActive(record.UserID, record.GameName) != nil {
		return round.ErrRoundStillActive
	}

	cp := record.Clone()
	cp.Ended = time.Time{}
	if cp.Created.IsZero() {
		cp.Created = m.clock.Now()
	}

	m.rounds[cp.ID] = cp
	return nil
}

func (m *Memory) findActive(userID int64, gameName string) *round.Record {
	for _, r := range m.rounds {
		if r.UserID == userID && r.GameName == gameName && r.IsActive() {
			return r
		}
	}

	return nil
}

// FindActiveByUser returns the user's active round for the game
func (m *Memory) FindActiveByUser(ctx context.Context, userID int64, gameName string) (*round.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.lock.RLock()
	defer m.lock.RUnlock()

	if r := m.findActive(userID, gameName); r != nil {
		return r.Clone(), nil
	}

	return nil, round.ErrRoundNotFound
}

// End moves an active round to completed
func (m *Memory) End(ctx context.Context, roundID string) (*round.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	r, found := m.rounds[roundID]
	if !found {
		return nil, round.ErrRoundNotFound
	}

	if !r.IsActive() {
		return nil, round.ErrRoundExpired
	}

	r.Ended = m.clock.Now()
	return r.Clone(), nil
}

// Get returns a round by ID
func (m *Memory) Get(ctx context.Context, roundID string) (*round.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.lock.RLock()
	defer m.lock.RUnlock()

	r, found := m.rounds[roundID]
	if !found {
		return nil, round.ErrRoundNotFound
	}

	return r.Clone(), nil
}

// PurgeEnded deletes rounds that ended before the given time and returns how many were removed
func (m *Memory) PurgeEnded(ctx context.Context, before time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	var count int64
	for id, r := range m.rounds {
		if !r.IsActive() && r.Ended.Before(before) {
			delete(m.rounds, id)
			count++
		}
	}

	return count, nil
}

// CreateBet persists a new bet and assigns its ID and nonce
func (m *Memory) CreateBet(ctx context.Context, bet *round.Bet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	if bet.RoundID != "" {
		if _, found := m.rounds[bet.RoundID]; !found {
			return round.ErrRoundNotFound
		}
	}

	key := userGame{userID: bet.UserID, gameName: bet.GameName}
	m.nonces[key]++

	bet.ID = uuid.New().String()
	bet.Nonce = m.nonces[key]
	bet.Created = m.clock.Now()

	m.bets[bet.ID] = bet.Clone()
	return nil
}

// GetBet returns a bet by ID
func (m *Memory) GetBet(ctx context.Context, betID string) (*round.Bet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.lock.RLock()
	defer m.lock.RUnlock()

	bet, found := m.bets[betID]
	if !found {
		return nil, round.ErrBetNotFound
	}

	return bet.Clone(), nil
}

// SettleBet records the result of a bet
func (m *Memory) SettleBet(ctx context.Context, betID string, result []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	bet, found := m.bets[betID]
	if !found {
		return round.ErrBetNotFound
	}

	bet.Result = append([]byte(nil), result...)
	bet.Settled = m.clock.Now()
	return nil
}
