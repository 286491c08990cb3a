package blackjack

import "errors"

// UserError is an error that is safe to return in a response
type UserError string

func (u UserError) Error() string {
	return string(u)
}

// ErrUnknownPlayerOrHand is returned when the player or hand is not part of the round
var ErrUnknownPlayerOrHand = errors.New("unknown player or hand")

// ErrIllegalAction is returned when the hand's status does not allow the action
var ErrIllegalAction = errors.New("action is not allowed")

// ErrNotThisHandsTurn is returned when another hand has to act first
var ErrNotThisHandsTurn = errors.New("it is not this hand's turn")

// ErrRoundComplete is returned when acting on a completed round
var ErrRoundComplete = errors.New("round is complete")

// ErrAlreadyDealt is returned when dealing a round a second time
var ErrAlreadyDealt = errors.New("round has already been dealt")

// ErrReplayMismatch is returned when a replayed round does not match its settlement
var ErrReplayMismatch = errors.New("replayed round does not match settlement")
