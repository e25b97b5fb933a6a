// Package ledger derives a player's monthly cashflow from their holdings,
// debts, salary and children, and decides when someone has escaped the
// rat race.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/ratrace/game"
	"github.com/rustyeddy/ratrace/internal/money"
)

// Rules are the fixed economic constants of a game.
type Rules struct {
	TaxRate   decimal.Decimal // share of salary lost to taxes and living costs
	ChildCost int             // monthly cost per dependent
}

// DefaultRules returns a 20% tax approximation and $240 per child.
func DefaultRules() Rules {
	return Rules{
		TaxRate:   money.MustRate("0.2"),
		ChildCost: 240,
	}
}

// Derived holds the recomputed fields of a player.
type Derived struct {
	PassiveIncome int
	TotalExpenses int
	Payday        int
}

// Recompute derives the monthly figures of p. It does not modify p.
func Recompute(r Rules, p *game.Player) Derived {
	passive := 0
	for _, a := range p.Assets {
		passive += a.Cashflow
	}

	payments := 0
	for _, l := range p.Liabilities {
		payments += l.Payment
	}

	expenses := money.Mul(p.Salary, r.TaxRate).
		Add(decimal.NewFromInt(int64(payments))).
		Add(decimal.NewFromInt(int64(p.Children * r.ChildCost))).
		Floor().
		IntPart()

	total := int(expenses)
	return Derived{
		PassiveIncome: passive,
		TotalExpenses: total,
		Payday:        p.Salary + passive - total,
	}
}

// Apply recomputes p and stores the result on it.
func Apply(r Rules, p *game.Player) Derived {
	d := Recompute(r, p)
	p.PassiveIncome = d.PassiveIncome
	p.TotalExpenses = d.TotalExpenses
	p.Payday = d.Payday
	return d
}

// ApplyAll recomputes every player.
func ApplyAll(r Rules, players []*game.Player) {
	for _, p := range players {
		Apply(r, p)
	}
}
