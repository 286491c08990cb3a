package round

import "errors"

// ErrRoundStillActive is returned when a round for the user and game is still in play.
// Callers may retry after a short, bounded backoff.
var ErrRoundStillActive = errors.New("a round is still active, try again shortly")

// ErrRoundNotFound is returned when there is no matching round record
var ErrRoundNotFound = errors.New("round not found")

// ErrRoundExpired is returned when the round has already been closed or its record has aged out
var ErrRoundExpired = errors.New("round has expired")

// ErrNoRoundOnBet is returned when a bet was never tied to a round
var ErrNoRoundOnBet = errors.New("bet is not tied to a round")

// ErrBetNotFound is returned when there is no matching bet record
var ErrBetNotFound = errors.New("bet not found")

// IsRetryable returns true if the operation that produced err may be retried
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRoundStillActive)
}
