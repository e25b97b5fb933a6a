package ledger

import "github.com/rustyeddy/ratrace/game"

// Escaped reports whether p's passive income strictly exceeds their total
// expenses.
func Escaped(p *game.Player) bool {
	return p.PassiveIncome > p.TotalExpenses
}

// FindWinner returns the first player in table order who has escaped, or
// nil. Derived fields must be current.
func FindWinner(players []*game.Player) *game.Player {
	for _, p := range players {
		if Escaped(p) {
			return p
		}
	}
	return nil
}
