// Package game holds the data model shared by the ledger, the board, the
// decision policy and the turn engine.
package game

import "strings"

// ControlMode says who makes a player's decisions.
type ControlMode string

const (
	Human     ControlMode = "human"
	Automated ControlMode = "automated"
)

// Valid reports whether m is a known control mode.
func (m ControlMode) Valid() bool {
	return m == Human || m == Automated
}

// AssetCategory classifies an owned holding.
type AssetCategory string

const (
	RealEstate       AssetCategory = "real-estate"
	LiquidInstrument AssetCategory = "liquid-instrument"
	Business         AssetCategory = "business"
)

// Asset is an income-producing or speculative holding.
type Asset struct {
	ID          string
	Name        string
	Cost        int
	DownPayment int // zero for liquid instruments
	Cashflow    int // monthly
	Category    AssetCategory
	Symbol      string
	Quantity    int
}

// Mortgage is the debt still carried on the holding, paid off from the
// proceeds when it is sold. Liquid instruments are bought outright.
func (a Asset) Mortgage() int {
	if a.Category == LiquidInstrument {
		return 0
	}
	if m := a.Cost - a.DownPayment; m > 0 {
		return m
	}
	return 0
}

// Liability is a fixed monthly-expense debt line. Balance and Payment never
// change after game start.
type Liability struct {
	ID      string
	Name    string
	Balance int
	Payment int
}

// Player is one participant. PassiveIncome, TotalExpenses and Payday are
// derived; only ledger.Apply writes them.
type Player struct {
	ID         string
	Name       string
	Mode       ControlMode
	Profession string

	Cash     int
	Salary   int
	Children int
	Position int

	Assets      []Asset
	Liabilities []Liability

	PassiveIncome int
	TotalExpenses int
	Payday        int
}

// IsAutomated reports whether the decision policy plays for p.
func (p *Player) IsAutomated() bool {
	return p.Mode == Automated
}

// Clone returns a deep copy of p.
func (p *Player) Clone() *Player {
	c := *p
	c.Assets = append([]Asset(nil), p.Assets...)
	c.Liabilities = append([]Liability(nil), p.Liabilities...)
	return &c
}

// PlayerConfig is the setup record consumed once per player at game start.
type PlayerConfig struct {
	Name        string
	Mode        ControlMode
	Profession  string
	Cash        int
	Salary      int
	Liabilities []Liability
}

// ThreeBedroomSymbol is the market symbol that also matches any real
// estate listed under the 3-bedroom family of names.
const ThreeBedroomSymbol = "REAL_ESTATE_3BR"

var threeBedroomNames = []string{
	"3br",
	"3-bedroom",
	"3 bedroom",
	"apartment",
	"house 3",
}

// MatchesSymbol reports whether a market event with the given symbol
// targets the asset.
func MatchesSymbol(a Asset, symbol string) bool {
	if symbol == "" {
		return false
	}
	if a.Symbol == symbol {
		return true
	}
	if symbol != ThreeBedroomSymbol || a.Category != RealEstate {
		return false
	}
	name := strings.ToLower(a.Name)
	for _, n := range threeBedroomNames {
		if strings.Contains(name, n) {
			return true
		}
	}
	return false
}

// Holdings returns the assets that a market event with symbol would sell.
func Holdings(assets []Asset, symbol string) []Asset {
	var out []Asset
	for _, a := range assets {
		if MatchesSymbol(a, symbol) {
			out = append(out, a)
		}
	}
	return out
}
