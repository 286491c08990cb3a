package verify

import (
	"encoding/json"

	"fairtable-server/pkg/blackjack"
	"fairtable-server/pkg/mines"
)

// Replayer rebuilds a game from its FinalHash and checks it against the recorded result
type Replayer interface {
	Replay(finalHash string, result json.RawMessage) (interface{}, error)
}

// ReplayerFunc adapts a function to a Replayer
type ReplayerFunc func(finalHash string, result json.RawMessage) (interface{}, error)

// Replay implements Replayer
func (f ReplayerFunc) Replay(finalHash string, result json.RawMessage) (interface{}, error) {
	return f(finalHash, result)
}

// Replayers returns a replayer for every game the server offers
func Replayers(blackjackOptions blackjack.Options) map[string]Replayer {
	return map[string]Replayer{
		blackjack.Name: ReplayerFunc(func(finalHash string, result json.RawMessage) (interface{}, error) {
			var settlement blackjack.Settlement
			if err := json.Unmarshal(result, &settlement); err != nil {
				return nil, err
			}

			r, err := blackjack.Replay(finalHash, blackjackOptions, &settlement)
			if err != nil {
				return nil, err
			}

			return r.Settlement()
		}),
		mines.Name: ReplayerFunc(func(finalHash string, result json.RawMessage) (interface{}, error) {
			var settlement mines.Settlement
			if err := json.Unmarshal(result, &settlement); err != nil {
				return nil, err
			}

			g, err := mines.Replay(finalHash, &settlement)
			if err != nil {
				return nil, err
			}

			return g.Settlement()
		}),
	}
}
