// Package board lays out the fixed cyclic sequence of spaces and resolves
// what landing on each one does.
package board

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/ratrace/game"
)

// Board is an immutable cyclic sequence of spaces.
type Board struct {
	spaces []game.BoardSpace
}

var ErrEmptyBoard = errors.New("board has no spaces")

// New builds a board. Space indexes must run 0..n-1 in order.
func New(spaces []game.BoardSpace) (Board, error) {
	if len(spaces) == 0 {
		return Board{}, ErrEmptyBoard
	}
	for i, s := range spaces {
		if s.Index != i {
			return Board{}, fmt.Errorf("space %d has index %d", i, s.Index)
		}
		if !s.Kind.Valid() {
			return Board{}, fmt.Errorf("space %d: unknown kind %q", i, s.Kind)
		}
	}
	return Board{spaces: append([]game.BoardSpace(nil), spaces...)}, nil
}

// Len is the number of spaces.
func (b Board) Len() int { return len(b.spaces) }

// At returns the space at index i, wrapping around the board.
func (b Board) At(i int) game.BoardSpace {
	return b.spaces[b.wrap(i)]
}

// Advance returns (pos + roll) mod Len.
func (b Board) Advance(pos, roll int) int {
	return b.wrap(pos + roll)
}

// Spaces returns a copy of the layout.
func (b Board) Spaces() []game.BoardSpace {
	return append([]game.BoardSpace(nil), b.spaces...)
}

func (b Board) wrap(i int) int {
	n := len(b.spaces)
	return ((i % n) + n) % n
}

var defaultLayout = []game.SpaceKind{
	game.PaydaySpace,
	game.DealSpace,
	game.ExpenseSpace,
	game.DealSpace,
	game.CharitySpace,
	game.DealSpace,

	game.PaydaySpace,
	game.MarketSpace,
	game.DealSpace,
	game.ExpenseSpace,

	game.LayoffSpace,
	game.DealSpace,
	game.PaydaySpace,
	game.DealSpace,
	game.ChildbirthSpace,
	game.DealSpace,

	game.MarketSpace,
	game.ExpenseSpace,
	game.DealSpace,
	game.MarketSpace,
}

var labels = map[game.SpaceKind]string{
	game.PaydaySpace:     "Payday",
	game.DealSpace:       "Deal",
	game.ExpenseSpace:    "Doodad",
	game.CharitySpace:    "Charity",
	game.ChildbirthSpace: "Baby",
	game.LayoffSpace:     "Downsized",
	game.MarketSpace:     "Market",
}

// Default returns the standard 20-space board.
func Default() Board {
	spaces := make([]game.BoardSpace, len(defaultLayout))
	for i, k := range defaultLayout {
		spaces[i] = game.BoardSpace{Index: i, Kind: k, Label: labels[k]}
	}
	return Board{spaces: spaces}
}
