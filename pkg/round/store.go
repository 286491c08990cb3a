package round

import "context"

// Store persists round records
type Store interface {
	// Create persists a new active round.
	// It returns ErrRoundStillActive if the user already has an active round for the game.
	Create(ctx context.Context, record *Record) error

	// FindActiveByUser returns the user's active round for the game or ErrRoundNotFound
	FindActiveByUser(ctx context.Context, userID int64, gameName string) (*Record, error)

	// End moves an active round to completed and returns it with its secret.
	// It returns ErrRoundNotFound if the round doesn't exist and ErrRoundExpired if it already ended.
	End(ctx context.Context, roundID string) (*Record, error)

	// Get returns a round or ErrRoundNotFound
	Get(ctx context.Context, roundID string) (*Record, error)
}

// BetStore persists bets
type BetStore interface {
	// CreateBet persists a bet. The store assigns the ID, the nonce and the created time.
	// The nonce is one more than the user's previous nonce for the game.
	CreateBet(ctx context.Context, bet *Bet) error

	// GetBet returns a bet or ErrBetNotFound
	GetBet(ctx context.Context, betID string) (*Bet, error)

	// SettleBet records the result of a bet
	SettleBet(ctx context.Context, betID string, result []byte) error
}
