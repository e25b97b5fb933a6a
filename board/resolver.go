package board

import (
	"github.com/rustyeddy/ratrace/game"
	"github.com/rustyeddy/ratrace/ledger"
)

// DefaultDealThreshold is the cash at which a deal space draws from the
// big deal deck.
const DefaultDealThreshold = 6000

// Effect is the outcome of landing on a space.
type Effect interface {
	// NeedsCard reports whether the effect waits on a drawn card.
	NeedsCard() bool
}

// CreditPayday adds the player's net monthly cashflow to their cash.
type CreditPayday struct{ Amount int }

// CharityPrompt asks for a no-cost acknowledgment.
type CharityPrompt struct{}

// LayoffDebit removes one month of total expenses from the player's cash.
type LayoffDebit struct{ Amount int }

// AddChild adds a dependent.
type AddChild struct{}

// DrawCard requests a card of Kind from the provider.
type DrawCard struct{ Kind game.CardKind }

func (CreditPayday) NeedsCard() bool  { return false }
func (CharityPrompt) NeedsCard() bool { return false }
func (LayoffDebit) NeedsCard() bool   { return false }
func (AddChild) NeedsCard() bool      { return false }
func (DrawCard) NeedsCard() bool      { return true }

// Resolver maps a landed space to its effect.
type Resolver struct {
	Rules         ledger.Rules
	DealThreshold int
}

// NewResolver returns a resolver with the default deal threshold.
func NewResolver(r ledger.Rules) Resolver {
	return Resolver{Rules: r, DealThreshold: DefaultDealThreshold}
}

// Resolve decides the effect of p landing on s. It does not modify p.
func (r Resolver) Resolve(s game.BoardSpace, p *game.Player) Effect {
	switch s.Kind {
	case game.PaydaySpace:
		return CreditPayday{Amount: ledger.Recompute(r.Rules, p).Payday}
	case game.CharitySpace:
		return CharityPrompt{}
	case game.LayoffSpace:
		return LayoffDebit{Amount: ledger.Recompute(r.Rules, p).TotalExpenses}
	case game.ChildbirthSpace:
		return AddChild{}
	case game.DealSpace:
		if p.Cash >= r.DealThreshold {
			return DrawCard{Kind: game.BigDeal}
		}
		return DrawCard{Kind: game.SmallDeal}
	case game.ExpenseSpace:
		return DrawCard{Kind: game.ExpenseEvent}
	case game.MarketSpace:
		return DrawCard{Kind: game.MarketEvent}
	}
	return CharityPrompt{}
}

// Apply performs a no-card effect on p's ledger inputs. Card draws and
// prompts leave p unchanged.
func Apply(e Effect, p *game.Player) {
	switch e := e.(type) {
	case CreditPayday:
		p.Cash += e.Amount
	case LayoffDebit:
		p.Cash -= e.Amount
	case AddChild:
		p.Children++
	}
}
