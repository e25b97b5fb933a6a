package engine

import (
	"context"

	"github.com/rustyeddy/ratrace/game"
	"github.com/rustyeddy/ratrace/ledger"
	"github.com/rustyeddy/ratrace/policy"
)

// humanTurnLocked checks that playerID is the human whose turn it is.
func (e *Engine) humanTurnLocked(playerID string) error {
	if !e.started {
		return ErrNotStarted
	}
	if e.phase == GameOver {
		return ErrGameOver
	}
	p := e.currentLocked()
	if p.ID != playerID {
		return ErrNotYourTurn
	}
	if p.IsAutomated() {
		return ErrAutomatedPlayer
	}
	return nil
}

// Roll rolls the dice for a human player waiting to roll.
func (e *Engine) Roll(ctx context.Context, playerID string) error {
	e.lock()
	defer e.unlock()

	if err := e.humanTurnLocked(playerID); err != nil {
		return err
	}
	if e.phase != AwaitingRoll || e.turnDone {
		return ErrWrongPhase
	}
	e.rollLocked(ctx)
	return nil
}

// Buy accepts the open card: buys a deal, sells into a market offer or
// pays an expense.
func (e *Engine) Buy(ctx context.Context, playerID string) error {
	e.lock()
	defer e.unlock()

	c, err := e.openCardLocked(playerID)
	if err != nil {
		return err
	}
	p := e.currentLocked()
	ledger.Apply(e.rules, p)
	if !policy.CanBuy(c, policy.SnapshotOf(p)) {
		return ErrCannotBuy
	}
	d := policy.Decision{Action: policy.Buy, Code: policy.PlayerChoice, Msg: "chosen by player"}
	e.decision = &d
	e.applyDecisionLocked(ctx, policy.Buy)
	return nil
}

// Pass declines the open card. An expense cannot be declined and is paid.
func (e *Engine) Pass(ctx context.Context, playerID string) error {
	e.lock()
	defer e.unlock()

	if _, err := e.openCardLocked(playerID); err != nil {
		return err
	}
	d := policy.Decision{Action: policy.Pass, Code: policy.PlayerChoice, Msg: "chosen by player"}
	e.decision = &d
	e.applyDecisionLocked(ctx, policy.Pass)
	return nil
}

// Dismiss closes a surface without a card (payday, charity, layoff,
// childbirth) and ends the turn.
func (e *Engine) Dismiss(_ context.Context, playerID string) error {
	e.lock()
	defer e.unlock()

	if err := e.humanTurnLocked(playerID); err != nil {
		return err
	}
	if e.phase != AwaitingDecision || e.card != nil {
		return ErrWrongPhase
	}
	e.advanceLocked()
	return nil
}

func (e *Engine) openCardLocked(playerID string) (game.Card, error) {
	if err := e.humanTurnLocked(playerID); err != nil {
		return game.Card{}, err
	}
	if e.phase != AwaitingDecision || e.card == nil {
		return game.Card{}, ErrWrongPhase
	}
	return *e.card, nil
}
