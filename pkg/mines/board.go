// Package mines is a 5x5 tile game whose mine positions come from a FinalHash.
package mines

import (
	"fairtable-server/pkg/shuffle"
)

// Tiles is the number of tiles on a board
const Tiles = 25

// Tile labels
const (
	LabelMine    = "mine"
	LabelDiamond = "diamond"
)

// Board is the hidden layout of a game
type Board struct {
	MinesCount int   `json:"minesCount"`
	Mines      []int `json:"mines"`
	mines      [Tiles]bool
}

// NewBoard lays out a board from finalHash.
// minesCount is clamped into [1, 24]; the first minesCount positions of the
// derived permutation of the 25 tiles are mines.
func NewBoard(finalHash string, minesCount int) (*Board, error) {
	partition, err := shuffle.NewPartition(finalHash, Tiles, minesCount)
	if err != nil {
		return nil, err
	}

	b := &Board{
		MinesCount: len(partition.A),
		Mines:      partition.A,
	}

	for _, tile := range partition.A {
		b.mines[tile] = true
	}

	return b, nil
}

// IsMine returns true if the tile holds a mine
func (b *Board) IsMine(tile int) bool {
	return tile >= 0 && tile < Tiles && b.mines[tile]
}

// Label returns the label of a tile
func (b *Board) Label(tile int) string {
	if b.IsMine(tile) {
		return LabelMine
	}

	return LabelDiamond
}

// Labels returns the label of every tile, by tile index
func (b *Board) Labels() []string {
	labels := make([]string, Tiles)
	for i := range labels {
		labels[i] = b.Label(i)
	}

	return labels
}

// Multiplier returns what a wager is multiplied by after picks safe tiles on a
// board with minesCount mines
func Multiplier(minesCount, picks int) float64 {
	m := 0.99
	for i := 0; i < picks; i++ {
		m *= float64(Tiles-i) / float64(Tiles-minesCount-i)
	}

	return m
}
