package engine

import (
	"math"
	"time"
)

// Phase is the turn engine's state.
type Phase int

const (
	Idle Phase = iota
	AwaitingRoll
	Rolling
	Moving
	ResolvingSpace
	AwaitingDecision
	ApplyingDecision
	AdvancingTurn
	GameOver
)

var phaseNames = [...]string{
	Idle:             "idle",
	AwaitingRoll:     "awaiting-roll",
	Rolling:          "rolling",
	Moving:           "moving",
	ResolvingSpace:   "resolving-space",
	AwaitingDecision: "awaiting-decision",
	ApplyingDecision: "applying-decision",
	AdvancingTurn:    "advancing-turn",
	GameOver:         "game-over",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Timings are the engine's pacing delays.
type Timings struct {
	Think         time.Duration // automated pre-roll pause
	Travel        time.Duration // roll to space resolution
	CardMinimum   time.Duration // minimum time a card takes to appear
	DecisionDelay time.Duration // card shown to automated decision
	Stamp         time.Duration // decision shown to decision applied
	AutoClose     time.Duration // automated dismissal of a no-card surface
	Watchdog      time.Duration // longest an automated surface may stay open
	CardFetch     time.Duration // provider call timeout
}

func DefaultTimings() Timings {
	return Timings{
		Think:         1500 * time.Millisecond,
		Travel:        600 * time.Millisecond,
		CardMinimum:   800 * time.Millisecond,
		DecisionDelay: 2 * time.Second,
		Stamp:         1500 * time.Millisecond,
		AutoClose:     2 * time.Second,
		Watchdog:      10 * time.Second,
		CardFetch:     5 * time.Second,
	}
}

// Scale multiplies every delay by f. A game played at speed 10 uses
// Scale(0.1).
func (t Timings) Scale(f float64) Timings {
	s := func(d time.Duration) time.Duration { return time.Duration(math.Round(float64(d) * f)) }
	return Timings{
		Think:         s(t.Think),
		Travel:        s(t.Travel),
		CardMinimum:   s(t.CardMinimum),
		DecisionDelay: s(t.DecisionDelay),
		Stamp:         s(t.Stamp),
		AutoClose:     s(t.AutoClose),
		Watchdog:      s(t.Watchdog),
		CardFetch:     s(t.CardFetch),
	}
}
