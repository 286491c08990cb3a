package gamefactory

import (
	"fmt"

	"fairtable-server/pkg/blackjack"
	"fairtable-server/pkg/mines"
	"fairtable-server/pkg/playable"
)

// GameFactory is a factory for creating games that implement the Playable interface
type GameFactory interface {
	// CreateGame builds and deals the game from its seed
	CreateGame(seed playable.Seed, additionalData playable.AdditionalData) (playable.Playable, error)
	// Details validates the request and returns the amount wagered
	Details(additionalData playable.AdditionalData) (amount int, err error)
}

// Factories looks up a factory by game name
type Factories map[string]GameFactory

// New returns the factories for every game the server offers
func New(blackjackOptions blackjack.Options) Factories {
	return Factories{
		blackjack.Name: blackjackFactory{options: blackjackOptions},
		mines.Name:     minesFactory{},
	}
}

// Get returns a factory by the given name
func (f Factories) Get(name string) (GameFactory, error) {
	factory, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("no factory with name: %s", name)
	}

	return factory, nil
}
