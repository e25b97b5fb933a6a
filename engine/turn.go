package engine

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/rustyeddy/ratrace/board"
	"github.com/rustyeddy/ratrace/game"
	"github.com/rustyeddy/ratrace/internal/money"
	"github.com/rustyeddy/ratrace/journal"
	"github.com/rustyeddy/ratrace/ledger"
	"github.com/rustyeddy/ratrace/policy"
)

// startTurnLocked puts the current player in AwaitingRoll and, for an
// automated player, schedules the roll.
func (e *Engine) startTurnLocked() {
	e.clearTurnLocked()
	e.phase = AwaitingRoll
	if e.currentLocked().IsAutomated() {
		e.schedule(e.timings.Think, "think", func() {
			if e.turnDone || e.phase != AwaitingRoll {
				return
			}
			e.rollLocked(context.Background())
		})
	}
}

func (e *Engine) rollLocked(ctx context.Context) {
	p := e.currentLocked()
	_, span := e.tracer.Start(ctx, "engine.roll")
	defer span.End()

	e.phase = Rolling
	e.turnDone = true
	e.dice = e.rng.Intn(6) + 1
	e.narrateLocked(p, journal.Neutral, "%s rolls %d", p.Name, e.dice)

	e.phase = Moving
	p.Position = e.board.Advance(p.Position, e.dice)
	span.SetAttributes(
		attribute.String("player", p.Name),
		attribute.Int("roll", e.dice),
		attribute.Int("position", p.Position),
	)

	e.schedule(e.timings.Travel, "travel", e.resolveLocked)
}

func (e *Engine) resolveLocked() {
	if e.phase != Moving {
		return
	}
	p := e.currentLocked()
	e.phase = ResolvingSpace
	space := e.board.At(p.Position)
	eff := e.resolver.Resolve(space, p)

	e.log.Debug("resolving space",
		zap.String("player", p.Name),
		zap.Int("position", p.Position),
		zap.String("space", string(space.Kind)))

	if p.IsAutomated() {
		e.armWatchdogLocked()
	}

	if d, ok := eff.(board.DrawCard); ok {
		e.requestCardLocked(d.Kind)
		return
	}

	board.Apply(eff, p)
	ledger.Apply(e.rules, p)

	var msg string
	switch eff := eff.(type) {
	case board.CreditPayday:
		msg = p.Name + " collects payday of " + money.Format(eff.Amount)
		e.narrateLocked(p, journal.Success, "%s", msg)
	case board.CharityPrompt:
		msg = p.Name + " gives to charity"
		e.narrateLocked(p, journal.Info, "%s", msg)
	case board.LayoffDebit:
		msg = p.Name + " was downsized and pays " + money.Format(eff.Amount)
		e.narrateLocked(p, journal.Danger, "%s", msg)
	case board.AddChild:
		msg = p.Name + " welcomes a new baby. Expenses went up."
		e.narrateLocked(p, journal.Neutral, "%s", msg)
	}

	if e.checkWinLocked() {
		return
	}
	e.openNoticeLocked(msg)
}

// openNoticeLocked shows a surface with no card. Humans dismiss it;
// automated players have it closed for them.
func (e *Engine) openNoticeLocked(msg string) {
	e.notice = msg
	e.phase = AwaitingDecision
	if e.currentLocked().IsAutomated() {
		e.schedule(e.timings.AutoClose, "auto-close", func() {
			if e.phase == AwaitingDecision && e.card == nil {
				e.advanceLocked()
			}
		})
	}
}

// requestCardLocked starts the off-lock fetch and the minimum display
// timer. The card surface opens once both have finished.
func (e *Engine) requestCardLocked(kind game.CardKind) {
	gen := e.gen
	ctx, cancel := context.WithCancel(context.Background())
	e.fetchCancel = cancel

	e.deferred = append(e.deferred, func() { e.fetch(ctx, gen, kind) })
	e.schedule(e.timings.CardMinimum, "card-minimum", func() {
		e.minShown = true
		e.maybeOpenCardLocked()
	})
}

// fetch runs without the lock held.
func (e *Engine) fetch(ctx context.Context, gen uint64, kind game.CardKind) {
	ctx, span := e.tracer.Start(ctx, "engine.fetch_card")
	span.SetAttributes(attribute.String("kind", string(kind)))
	c, err := e.cards.RequestCard(ctx, kind)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	e.lock()
	defer e.unlock()

	if e.gen != gen || e.phase != ResolvingSpace {
		e.log.Debug("stale card discarded", zap.String("kind", string(kind)))
		return
	}
	if err != nil {
		p := e.currentLocked()
		e.log.Error("no card available", zap.String("kind", string(kind)), zap.Error(err))
		msg := "No card could be drawn for " + p.Name
		e.narrateLocked(p, journal.Neutral, "%s", msg)
		e.openNoticeLocked(msg)
		return
	}
	e.fetched = &c
	e.maybeOpenCardLocked()
}

func (e *Engine) maybeOpenCardLocked() {
	if e.fetched == nil || !e.minShown || e.phase != ResolvingSpace {
		return
	}
	p := e.currentLocked()
	e.card = e.fetched
	e.fetched = nil
	e.phase = AwaitingDecision
	e.narrateLocked(p, journal.Info, "%s draws %q", p.Name, e.card.Title)

	if p.IsAutomated() {
		e.schedule(e.timings.DecisionDelay, "decide", e.autoDecideLocked)
	}
}

func (e *Engine) autoDecideLocked() {
	if e.phase != AwaitingDecision || e.card == nil {
		return
	}
	p := e.currentLocked()
	ledger.Apply(e.rules, p)
	d := policy.Decide(*e.card, policy.SnapshotOf(p))
	e.decision = &d
	e.log.Debug("automated decision",
		zap.String("player", p.Name),
		zap.String("card", e.card.Title),
		zap.String("action", string(d.Action)),
		zap.String("code", d.Code),
		zap.String("reason", d.Msg))

	e.schedule(e.timings.Stamp, "stamp", e.applyAutoDecisionLocked)
}

func (e *Engine) applyAutoDecisionLocked() {
	if e.phase != AwaitingDecision || e.card == nil || e.decision == nil {
		return
	}
	p := e.currentLocked()
	ledger.Apply(e.rules, p)
	d := policy.Recheck(*e.card, policy.SnapshotOf(p), *e.decision)
	if e.decision.Action == policy.Buy && d.Action == policy.Pass {
		e.narrateLocked(p, journal.Neutral, "%s wanted to buy %q but could not afford it", p.Name, e.card.Title)
		e.log.Info("buy downgraded to pass", zap.String("code", d.Code), zap.String("reason", d.Msg))
	}
	e.decision = &d
	e.applyDecisionLocked(context.Background(), d.Action)
}

// applyDecisionLocked applies action on the open card to the current
// player, then ends the game or advances the turn. A pass on an expense
// still pays it.
func (e *Engine) applyDecisionLocked(ctx context.Context, action policy.Action) {
	p := e.currentLocked()
	c := *e.card
	_, span := e.tracer.Start(ctx, "engine.apply_decision")
	defer span.End()
	span.SetAttributes(
		attribute.String("player", p.Name),
		attribute.String("card", c.Title),
		attribute.String("action", string(action)),
	)

	e.phase = ApplyingDecision
	if e.watchdog != nil {
		e.watchdog.Stop()
		e.watchdog = nil
	}

	switch t := c.Terms.(type) {
	case game.ExpenseTerms:
		p.Cash -= t.Cost
		e.narrateLocked(p, journal.Danger, "%s spent %s on %q", p.Name, money.Format(t.Cost), c.Title)

	case game.DealTerms:
		if action != policy.Buy {
			e.narrateLocked(p, journal.Neutral, "%s passes on %q", p.Name, c.Title)
			break
		}
		paid := t.RequiredCash()
		p.Cash -= paid
		p.Assets = append(p.Assets, game.Asset{
			ID:          c.ID,
			Name:        c.Title,
			Cost:        t.Cost,
			DownPayment: t.DownPayment,
			Cashflow:    t.Cashflow,
			Category:    t.Category(),
			Symbol:      t.Symbol,
			Quantity:    1,
		})
		e.narrateLocked(p, journal.Success, "%s bought %q for %s", p.Name, c.Title, money.Format(paid))

	case game.MarketTerms:
		if action != policy.Buy {
			e.narrateLocked(p, journal.Neutral, "%s passes on %q", p.Name, c.Title)
			break
		}
		proceeds, sold := sell(p, t)
		p.Cash += proceeds
		e.narrateLocked(p, journal.Success, "%s sold %d holding(s) and received %s", p.Name, sold, money.Format(proceeds))
	}

	ledger.Apply(e.rules, p)
	if e.checkWinLocked() {
		return
	}
	e.advanceLocked()
}

// sell removes every holding of p matching the offer and returns the net
// proceeds: offer × quantity less the mortgage paid off, per holding.
func sell(p *game.Player, t game.MarketTerms) (proceeds, sold int) {
	kept := p.Assets[:0]
	for _, a := range p.Assets {
		if !game.MatchesSymbol(a, t.Symbol) {
			kept = append(kept, a)
			continue
		}
		qty := a.Quantity
		if qty <= 0 {
			qty = 1
		}
		proceeds += t.OfferPrice*qty - a.Mortgage()
		sold++
	}
	p.Assets = kept
	return proceeds, sold
}

// advanceLocked ends the current turn and hands it to the next player in
// table order.
func (e *Engine) advanceLocked() {
	e.phase = AdvancingTurn
	e.cancelTimersLocked()
	e.gen++
	e.current = (e.current + 1) % len(e.players)
	e.turn++
	e.startTurnLocked()
}

func (e *Engine) armWatchdogLocked() {
	if e.watchdog != nil {
		e.watchdog.Stop()
	}
	gen := e.gen
	e.watchdog = e.sched.AfterFunc(e.timings.Watchdog, func() {
		e.lock()
		defer e.unlock()
		e.watchdogExpiredLocked(gen)
	})
}

// watchdogExpiredLocked force-passes a stalled automated surface. It acts
// at most once per turn and reports whether it did.
func (e *Engine) watchdogExpiredLocked(gen uint64) bool {
	if e.gen != gen || e.phase == GameOver {
		return false
	}
	if e.phase != ResolvingSpace && e.phase != AwaitingDecision {
		return false
	}
	p := e.currentLocked()
	if !p.IsAutomated() {
		return false
	}

	e.watchdog = nil
	e.log.Warn("automated turn stalled, forcing advance",
		zap.String("player", p.Name), zap.String("phase", e.phase.String()))
	e.narrateLocked(p, journal.Neutral, "%s took too long. Moving on.", p.Name)

	if e.card != nil {
		e.applyDecisionLocked(context.Background(), policy.Pass)
		return true
	}
	e.advanceLocked()
	return true
}
