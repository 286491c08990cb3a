package mines

import (
	"errors"
	"fmt"
	"math"
)

// ErrGameOver is returned when acting on a finished game
var ErrGameOver = errors.New("game is over")

// ErrTileRevealed is returned when picking a tile twice
var ErrTileRevealed = errors.New("tile has already been revealed")

// ErrReplayMismatch is returned when a replayed game does not match its settlement
var ErrReplayMismatch = errors.New("replayed game does not match settlement")

// UserError is an error that is safe to return in a response
type UserError string

func (u UserError) Error() string {
	return string(u)
}

// Game is a single wager on a board
type Game struct {
	PlayerID int64
	Amount   int

	board    *Board
	picks    []int
	revealed [Tiles]bool
	hitMine  bool
	over     bool
}

// NewGame returns a game for the wager amount on a board derived from finalHash
func NewGame(finalHash string, minesCount, amount int) (*Game, error) {
	if amount <= 0 {
		return nil, UserError("amount must be positive")
	}

	board, err := NewBoard(finalHash, minesCount)
	if err != nil {
		return nil, err
	}

	return &Game{
		Amount: amount,
		board:  board,
		picks:  []int{},
	}, nil
}

// Pick reveals a tile and returns its label.
// A mine ends the game; so does revealing the last diamond.
func (g *Game) Pick(tile int) (string, error) {
	if g.over {
		return "", ErrGameOver
	}

	if tile < 0 || tile >= Tiles {
		return "", UserError(fmt.Sprintf("tile must be between 0 and %d", Tiles-1))
	}

	if g.revealed[tile] {
		return "", ErrTileRevealed
	}

	g.revealed[tile] = true
	g.picks = append(g.picks, tile)

	if g.board.IsMine(tile) {
		g.hitMine = true
		g.over = true
		return LabelMine, nil
	}

	if len(g.picks) == Tiles-g.board.MinesCount {
		g.over = true
	}

	return LabelDiamond, nil
}

// CashOut ends the game
func (g *Game) CashOut() error {
	if g.over {
		return ErrGameOver
	}

	g.over = true
	return nil
}

// IsOver returns true once the game has ended
func (g *Game) IsOver() bool {
	return g.over
}

// Board returns the board, only once the game is over
func (g *Game) Board() (*Board, bool) {
	if !g.over {
		return nil, false
	}

	return g.board, true
}

// Multiplier returns the current multiplier
func (g *Game) Multiplier() float64 {
	if g.hitMine {
		return 0
	}

	return Multiplier(g.board.MinesCount, len(g.picks))
}

// Payout returns the net result of the wager
func (g *Game) Payout() int {
	switch {
	case g.hitMine:
		return -g.Amount
	case len(g.picks) == 0:
		return 0
	}

	return int(math.Floor(float64(g.Amount)*g.Multiplier())) - g.Amount
}

// View is a game as the player may see it
type View struct {
	MinesCount int      `json:"minesCount"`
	Amount     int      `json:"amount"`
	Picks      []int    `json:"picks"`
	Tiles      []string `json:"tiles"`
	Multiplier float64  `json:"multiplier"`
	IsOver     bool     `json:"isOver"`
	HitMine    bool     `json:"hitMine"`
}

// View returns the game with unrevealed tiles blank until the game is over
func (g *Game) View() *View {
	tiles := make([]string, Tiles)
	for i := range tiles {
		if g.over || g.revealed[i] {
			tiles[i] = g.board.Label(i)
		}
	}

	return &View{
		MinesCount: g.board.MinesCount,
		Amount:     g.Amount,
		Picks:      append([]int{}, g.picks...),
		Tiles:      tiles,
		Multiplier: g.Multiplier(),
		IsOver:     g.over,
		HitMine:    g.hitMine,
	}
}

// Settlement records everything needed to replay a game
type Settlement struct {
	MinesCount int   `json:"minesCount"`
	Amount     int   `json:"amount"`
	Picks      []int `json:"picks"`
	Mines      []int `json:"mines"`
	HitMine    bool  `json:"hitMine"`
	Payout     int   `json:"payout"`
}

// Settlement returns the settlement of a finished game
func (g *Game) Settlement() (*Settlement, error) {
	if !g.over {
		return nil, errors.New("game is not over")
	}

	return &Settlement{
		MinesCount: g.board.MinesCount,
		Amount:     g.Amount,
		Picks:      append([]int{}, g.picks...),
		Mines:      append([]int{}, g.board.Mines...),
		HitMine:    g.hitMine,
		Payout:     g.Payout(),
	}, nil
}

// Replay plays the recorded picks on a board derived from finalHash and
// compares the result with the settlement
func Replay(finalHash string, settlement *Settlement) (*Game, error) {
	g, err := NewGame(finalHash, settlement.MinesCount, settlement.Amount)
	if err != nil {
		return nil, err
	}

	for i, tile := range settlement.Picks {
		if _, err := g.Pick(tile); err != nil {
			return g, fmt.Errorf("%w: pick %d: %v", ErrReplayMismatch, i, err)
		}
	}

	if !g.over {
		_ = g.CashOut()
	}

	replayed, _ := g.Settlement()
	switch {
	case !equalInts(replayed.Mines, settlement.Mines):
		return g, fmt.Errorf("%w: mines differ", ErrReplayMismatch)
	case replayed.HitMine != settlement.HitMine:
		return g, fmt.Errorf("%w: hit mine", ErrReplayMismatch)
	case replayed.Payout != settlement.Payout:
		return g, fmt.Errorf("%w: payout", ErrReplayMismatch)
	}

	return g, nil
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
