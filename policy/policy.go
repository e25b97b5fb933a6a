// Package policy decides buy or pass for automated players. Every function
// here is read-only over the player snapshot.
package policy

import (
	"fmt"

	"github.com/rustyeddy/ratrace/game"
)

// Action is the choice made on a drawn card. For market events Buy means
// "sell my matching holdings into this offer".
type Action string

const (
	Pass Action = "pass"
	Buy  Action = "buy"
)

// Reason codes attached to a Decision.
const (
	ExpenseForced        = "EXPENSE_FORCED"
	DealAffordable       = "DEAL_AFFORDABLE"
	DealUnaffordable     = "DEAL_UNAFFORDABLE"
	DealNegativeCashflow = "DEAL_NEGATIVE_CASHFLOW"
	MarketHolding        = "MARKET_HOLDING"
	MarketNoHolding      = "MARKET_NO_HOLDING"
	NoRule               = "NO_RULE"
	RecheckUnaffordable  = "RECHECK_UNAFFORDABLE"
	RecheckNoHolding     = "RECHECK_NO_HOLDING"
	PlayerChoice         = "PLAYER_CHOICE"
)

// Snapshot is the part of a player the policy may look at.
type Snapshot struct {
	Cash   int
	Assets []game.Asset
}

// SnapshotOf copies the relevant fields of p.
func SnapshotOf(p *game.Player) Snapshot {
	return Snapshot{
		Cash:   p.Cash,
		Assets: append([]game.Asset(nil), p.Assets...),
	}
}

// Decision is the policy's answer with the rule that produced it.
type Decision struct {
	Action Action
	Code   string
	Msg    string
}

func buy(code, msg string) Decision  { return Decision{Action: Buy, Code: code, Msg: msg} }
func pass(code, msg string) Decision { return Decision{Action: Pass, Code: code, Msg: msg} }

// Decide applies the rules in priority order:
//  1. expenses are always paid;
//  2. deals are bought when affordable and not cashflow-negative;
//  3. market offers are taken when the player holds a matching asset;
//  4. anything else is passed.
func Decide(c game.Card, s Snapshot) Decision {
	switch t := c.Terms.(type) {
	case game.ExpenseTerms:
		return buy(ExpenseForced, "expenses cannot be declined")

	case game.DealTerms:
		need := t.RequiredCash()
		if s.Cash < need {
			return pass(DealUnaffordable,
				fmt.Sprintf("cash %d below required %d", s.Cash, need))
		}
		if t.Cashflow < 0 {
			return pass(DealNegativeCashflow,
				fmt.Sprintf("cashflow %d is negative", t.Cashflow))
		}
		return buy(DealAffordable,
			fmt.Sprintf("cash %d covers required %d", s.Cash, need))

	case game.MarketTerms:
		if n := len(game.Holdings(s.Assets, t.Symbol)); n > 0 {
			return buy(MarketHolding, fmt.Sprintf("holds %d matching %s", n, t.Symbol))
		}
		return pass(MarketNoHolding, fmt.Sprintf("no holding matches %s", t.Symbol))
	}
	return pass(NoRule, "no rule for card")
}

// Recheck re-validates a Buy against the snapshot at the moment it is about
// to be applied. A Buy that can no longer be honoured becomes a Pass.
func Recheck(c game.Card, s Snapshot, d Decision) Decision {
	if d.Action != Buy {
		return d
	}
	switch t := c.Terms.(type) {
	case game.DealTerms:
		if need := t.RequiredCash(); s.Cash < need {
			return pass(RecheckUnaffordable,
				fmt.Sprintf("cash %d below required %d", s.Cash, need))
		}
	case game.MarketTerms:
		if len(game.Holdings(s.Assets, t.Symbol)) == 0 {
			return pass(RecheckNoHolding, fmt.Sprintf("no holding matches %s", t.Symbol))
		}
	}
	return d
}

// CanBuy reports whether a Buy on c is legal for s. Human buy requests go
// through the same gate as the automated re-check.
func CanBuy(c game.Card, s Snapshot) bool {
	if c.Terms == nil {
		return false
	}
	return Recheck(c, s, Decision{Action: Buy}).Action == Buy
}
