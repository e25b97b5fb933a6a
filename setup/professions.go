// Package setup turns seat choices into the per-player configuration the
// engine consumes at game start.
package setup

import (
	"github.com/rustyeddy/ratrace/game"
	"github.com/rustyeddy/ratrace/internal/money"
)

// Debts are the outstanding balances a profession starts with.
type Debts struct {
	HomeMortgage int `yaml:"home_mortgage" json:"home_mortgage"`
	SchoolLoans  int `yaml:"school_loans" json:"school_loans"`
	CarLoans     int `yaml:"car_loans" json:"car_loans"`
	CreditCards  int `yaml:"credit_cards" json:"credit_cards"`
	RetailDebt   int `yaml:"retail_debt" json:"retail_debt"`
}

type Profession struct {
	ID      string `yaml:"id" json:"id"`
	Title   string `yaml:"title" json:"title"`
	Salary  int    `yaml:"salary" json:"salary"`
	Savings int    `yaml:"savings" json:"savings"`
	Debts   Debts  `yaml:"debts" json:"debts"`
}

// Professions is the standard set dealt out at game start.
var Professions = []Profession{
	{"pilot", "Pilot", 9500, 2500, Debts{143000, 0, 15000, 22000, 1000}},
	{"doctor", "Doctor", 13200, 3500, Debts{202000, 150000, 19000, 9000, 1000}},
	{"engineer", "Engineer", 4900, 1800, Debts{75000, 12000, 7000, 4000, 1000}},
	{"teacher", "Teacher", 3300, 1200, Debts{50000, 12000, 5000, 3000, 1000}},
	{"truck_driver", "Truck Driver", 2500, 950, Debts{38000, 0, 4000, 2000, 1000}},
	{"lawyer", "Lawyer", 7500, 2000, Debts{115000, 78000, 11000, 6000, 1000}},
	{"nurse", "Nurse", 3100, 1000, Debts{47000, 6000, 5000, 3000, 1000}},
	{"manager", "Manager", 4600, 1500, Debts{75000, 12000, 6000, 4000, 1000}},
}

// Lookup finds a profession by ID.
func Lookup(id string) (Profession, bool) {
	for _, p := range Professions {
		if p.ID == id {
			return p, true
		}
	}
	return Profession{}, false
}

// Monthly payment rates on each debt line.
var (
	MortgageRate   = money.MustRate("0.007")
	SchoolLoanRate = money.MustRate("0.005")
	CarLoanRate    = money.MustRate("0.02")
	CreditCardRate = money.MustRate("0.03")
	RetailDebtRate = money.MustRate("0.05")
)

// Liabilities converts a profession's debts into liability lines with
// floored monthly payments. Zero balances are omitted.
func Liabilities(p Profession) []game.Liability {
	lines := []game.Liability{
		{ID: "mortgage", Name: "Home Mortgage", Balance: p.Debts.HomeMortgage, Payment: money.FloorMul(p.Debts.HomeMortgage, MortgageRate)},
		{ID: "school", Name: "School Loans", Balance: p.Debts.SchoolLoans, Payment: money.FloorMul(p.Debts.SchoolLoans, SchoolLoanRate)},
		{ID: "car", Name: "Car Loans", Balance: p.Debts.CarLoans, Payment: money.FloorMul(p.Debts.CarLoans, CarLoanRate)},
		{ID: "cards", Name: "Credit Cards", Balance: p.Debts.CreditCards, Payment: money.FloorMul(p.Debts.CreditCards, CreditCardRate)},
		{ID: "retail", Name: "Retail Debt", Balance: p.Debts.RetailDebt, Payment: money.FloorMul(p.Debts.RetailDebt, RetailDebtRate)},
	}

	out := lines[:0]
	for _, l := range lines {
		if l.Balance > 0 {
			out = append(out, l)
		}
	}
	return out
}
