// Package store provides persistence for rounds and bets.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"fairtable-server/pkg/db"
	"fairtable-server/pkg/round"
)

const pqDuplicateKeyErrorCode pq.ErrorCode = "23505"

// ErrDuplicateKey happens when a record with the same key already exists
var ErrDuplicateKey = errors.New("duplicate key constraint violation")

const roundColumns = `
rounds.uuid,
rounds.user_id,
rounds.game_name,
rounds.secret_seed,
rounds.public_hash,
rounds.created,
rounds.ended`

const betColumns = `
bets.uuid,
bets.round_uuid,
bets.user_id,
bets.game_name,
bets.nonce,
bets.client_seed,
bets.amount,
bets.result,
bets.created,
bets.settled`

// Postgres implements round.Store and round.BetStore on PostgreSQL
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a Postgres store
func NewPostgres(dbh *sql.DB) *Postgres {
	return &Postgres{db: dbh}
}

// DB returns the underlying database handle
func (p *Postgres) DB() *sql.DB {
	return p.db
}

func getRoundByRow(row db.Scanner) (*round.Record, error) {
	var r round.Record
	var ended sql.NullTime
	if err := row.Scan(&r.ID, &r.UserID, &r.GameName, &r.SecretSeed, &r.PublicHash, &r.Created, &ended); err != nil {
		if err == sql.ErrNoRows {
			return nil, round.ErrRoundNotFound
		}

		return nil, err
	}

	r.Ended = ended.Time
	return &r, nil
}

func getBetByRow(row db.Scanner) (*round.Bet, error) {
	var b round.Bet
	var roundID sql.NullString
	var result []byte
	var settled sql.NullTime

	if err := row.Scan(&b.ID, &roundID, &b.UserID, &b.GameName, &b.Nonce, &b.ClientSeed, &b.Amount, &result, &b.Created, &settled); err != nil {
		if err == sql.ErrNoRows {
			return nil, round.ErrBetNotFound
		}

		return nil, err
	}

	b.RoundID = roundID.String
	b.Result = result
	b.Settled = settled.Time
	return &b, nil
}

// Create persists a new active round
// The partial unique index on (user_id, game_name) rejects a second active round.
func (p *Postgres) Create(ctx context.Context, record *round.Record) error {
	const query = `
INSERT INTO rounds (uuid, user_id, game_name, secret_seed, public_hash)
VALUES ($1, $2, $3, $4, $5)
RETURNING created`

	row := p.db.QueryRowContext(ctx, query, record.ID, record.UserID, record.GameName, record.SecretSeed, record.PublicHash)
	if err := row.Scan(&record.Created); err != nil {
		if err, ok := err.(*pq.Error); ok && err.Code == pqDuplicateKeyErrorCode {
			if err.Constraint == "rounds_pkey" {
				return ErrDuplicateKey
			}

			return round.ErrRoundStillActive
		}

		return err
	}

	return nil
}

// FindActiveByUser returns the user's active round for the game
func (p *Postgres) FindActiveByUser(ctx context.Context, userID int64, gameName string) (*round.Record, error) {
	const query = `
SELECT ` + roundColumns + `
FROM rounds
WHERE user_id = $1
  AND game_name = $2
  AND ended IS NULL`

	return getRoundByRow(p.db.QueryRowContext(ctx, query, userID, gameName))
}

// End moves an active round to completed.
// The status check and the update happen in a single statement.
func (p *Postgres) End(ctx context.Context, roundID string) (*round.Record, error) {
	if _, err := uuid.Parse(roundID); err != nil {
		return nil, round.ErrRoundNotFound
	}

	const query = `
UPDATE rounds
SET ended = NOW() AT TIME ZONE 'UTC'
WHERE uuid = $1
  AND ended IS NULL
RETURNING ` + roundColumns

	r, err := getRoundByRow(p.db.QueryRowContext(ctx, query, roundID))
	if err == nil {
		return r, nil
	}

	if !errors.Is(err, round.ErrRoundNotFound) {
		return nil, err
	}

	// either it never existed or somebody else ended it first
	if _, err := p.Get(ctx, roundID); err != nil {
		return nil, err
	}

	return nil, round.ErrRoundExpired
}

// Get returns a round by ID
func (p *Postgres) Get(ctx context.Context, roundID string) (*round.Record, error) {
	if _, err := uuid.Parse(roundID); err != nil {
		return nil, round.ErrRoundNotFound
	}

	const query = `
SELECT ` + roundColumns + `
FROM rounds
WHERE uuid = $1`

	return getRoundByRow(p.db.QueryRowContext(ctx, query, roundID))
}

// PurgeEnded deletes rounds that ended before the given time
func (p *Postgres) PurgeEnded(ctx context.Context, before time.Time) (int64, error) {
	const query = `
DELETE FROM rounds
WHERE ended IS NOT NULL
  AND ended < $1`

	res, err := p.db.ExecContext(ctx, query, before.UTC())
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// CreateBet persists a new bet and assigns its ID and nonce
func (p *Postgres) CreateBet(ctx context.Context, bet *round.Bet) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// serializes nonce assignment for the user
	const lockQuery = `SELECT pg_advisory_xact_lock($1)`
	if _, err := tx.ExecContext(ctx, lockQuery, bet.UserID); err != nil {
		rollback(tx)
		return err
	}

	const nonceQuery = `
SELECT COALESCE(MAX(nonce), 0) + 1
FROM bets
WHERE user_id = $1
  AND game_name = $2`

	var nonce int64
	if err := tx.QueryRowContext(ctx, nonceQuery, bet.UserID, bet.GameName).Scan(&nonce); err != nil {
		rollback(tx)
		return err
	}

	var roundID sql.NullString
	if bet.RoundID != "" {
		roundID = sql.NullString{String: bet.RoundID, Valid: true}
	}

	id := uuid.New().String()
	const query = `
INSERT INTO bets (uuid, round_uuid, user_id, game_name, nonce, client_seed, amount)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created`

	var created time.Time
	row := tx.QueryRowContext(ctx, query, id, roundID, bet.UserID, bet.GameName, nonce, bet.ClientSeed, bet.Amount)
	if err := row.Scan(&created); err != nil {
		rollback(tx)
		if err, ok := err.(*pq.Error); ok && err.Code == pqDuplicateKeyErrorCode {
			return ErrDuplicateKey
		}

		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	bet.ID = id
	bet.Nonce = nonce
	bet.Created = created
	return nil
}

// GetBet returns a bet by ID
func (p *Postgres) GetBet(ctx context.Context, betID string) (*round.Bet, error) {
	if _, err := uuid.Parse(betID); err != nil {
		return nil, round.ErrBetNotFound
	}

	const query = `
SELECT ` + betColumns + `
FROM bets
WHERE uuid = $1`

	return getBetByRow(p.db.QueryRowContext(ctx, query, betID))
}

// SettleBet records the result of a bet
func (p *Postgres) SettleBet(ctx context.Context, betID string, result []byte) error {
	const query = `
UPDATE bets
SET result = $1, settled = NOW() AT TIME ZONE 'UTC'
WHERE uuid = $2`

	res, err := p.db.ExecContext(ctx, query, result, betID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return round.ErrBetNotFound
	}

	return nil
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		logrus.WithError(err).Error("could not rollback transaction")
	}
}
