package round

import (
	"encoding/json"
	"time"

	"fairtable-server/pkg/fairness"
)

// Status is the lifecycle status of a round
type Status string

// Status constants
const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Record is the persisted commitment for a single round
// The secret seed is never serialized; it is only handed out by Reveal once the round has ended.
type Record struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"userId"`
	GameName   string    `json:"gameName"`
	SecretSeed string    `json:"-"`
	PublicHash string    `json:"publicHash"`
	Created    time.Time `json:"created"`
	Ended      time.Time `json:"ended"`
}

// Status returns whether the round is active or completed
func (r *Record) Status() Status {
	if r.Ended.IsZero() {
		return StatusActive
	}

	return StatusCompleted
}

// IsActive returns true if the round has not ended
func (r *Record) IsActive() bool {
	return r.Status() == StatusActive
}

// Commitment returns the round's commitment
func (r *Record) Commitment() fairness.Commitment {
	return fairness.Commitment{
		GameName:   r.GameName,
		SecretSeed: r.SecretSeed,
		PublicHash: r.PublicHash,
	}
}

// Reveal returns the secret seed once the round has ended
func (r *Record) Reveal() (string, error) {
	if r.IsActive() {
		return "", ErrRoundStillActive
	}

	return r.SecretSeed, nil
}

// FinalHash combines the secret with a bet's client seed and nonce.
// This is server-side only; the result must not be shown to players before reveal.
func (r *Record) FinalHash(clientSeed string, nonce int64) string {
	return fairness.Combine(r.SecretSeed, clientSeed, nonce)
}

// Clone returns a copy of the record
func (r *Record) Clone() *Record {
	cp := *r
	return &cp
}

// Bet is a wager placed against a round
// The core only reads bets; they are created and settled by the table surface.
type Bet struct {
	ID         string          `json:"id"`
	RoundID    string          `json:"roundId"`
	UserID     int64           `json:"userId"`
	GameName   string          `json:"gameName"`
	Nonce      int64           `json:"nonce"`
	ClientSeed string          `json:"clientSeed"`
	Amount     int             `json:"amount"`
	Result     json.RawMessage `json:"result,omitempty"`
	Created    time.Time       `json:"created"`
	Settled    time.Time       `json:"settled"`
}

// IsSettled returns true once a result has been recorded
func (b *Bet) IsSettled() bool {
	return !b.Settled.IsZero()
}

// Clone returns a copy of the bet
func (b *Bet) Clone() *Bet {
	cp := *b
	if b.Result != nil {
		cp.Result = append(json.RawMessage(nil), b.Result...)
	}

	return &cp
}
