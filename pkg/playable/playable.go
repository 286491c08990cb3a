// Package playable defines how a live game is driven by the room.
package playable

import (
	"encoding/json"
)

// Playable is a game that can be played
type Playable interface {
	// Name returns the name of the game
	Name() string

	// Action performs the player's action
	Action(playerID int64, message *PayloadIn) error

	// GetPlayerState returns the current state of the game for the player
	GetPlayerState(playerID int64) (interface{}, error)

	// GetEndOfGameDetails returns the details after a game is over
	// If the game is still in progress, nil will be returned and the second param will be false
	GetEndOfGameDetails() (gameOverDetails *GameOverDetails, isGameOver bool)
}

// Seed is everything a game needs to deal itself
type Seed struct {
	RoundID    string
	PublicHash string
	FinalHash  string
	PlayerID   int64
	BetID      string
}

// PayloadIn is the format we expect from the client
type PayloadIn struct {
	Action         string         `json:"action"`
	HandIndex      int            `json:"handIndex"`
	AdditionalData AdditionalData `json:"additionalData"`
}

// GameOverDetails provides details on how the game ended
type GameOverDetails struct {
	BalanceAdjustments map[int64]int
	// Log is the settlement a verifier needs to replay the game
	Log interface{}
}

// AdditionalData provides additional data in a payload
type AdditionalData map[string]interface{}

// GetString returns a string for the given key
func (a AdditionalData) GetString(key string) (string, bool) {
	s, ok := a[key].(string)
	return s, ok
}

// GetInt returns an integer value for the given key
func (a AdditionalData) GetInt(key string) (int, bool) {
	floatVal, ok := a[key].(float64)
	if !ok {
		return 0, false
	}

	return int(floatVal), true
}

// GetBool returns a boolean value for the given key
func (a AdditionalData) GetBool(key string) (bool, bool) {
	boolVal, ok := a[key].(bool)
	if !ok {
		return false, false
	}

	return boolVal, true
}

// Decode decodes the value at key into v
func (a AdditionalData) Decode(key string, v interface{}) error {
	b, err := json.Marshal(a[key])
	if err != nil {
		return err
	}

	return json.Unmarshal(b, v)
}
