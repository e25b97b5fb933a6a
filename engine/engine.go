// Package engine runs the turn state machine: rolls, movement, space
// resolution, card decisions and turn rotation, paced by cancellable
// timers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/rustyeddy/ratrace/board"
	"github.com/rustyeddy/ratrace/cards"
	"github.com/rustyeddy/ratrace/game"
	"github.com/rustyeddy/ratrace/internal/clock"
	"github.com/rustyeddy/ratrace/internal/id"
	"github.com/rustyeddy/ratrace/internal/money"
	"github.com/rustyeddy/ratrace/journal"
	"github.com/rustyeddy/ratrace/ledger"
	"github.com/rustyeddy/ratrace/policy"
)

var (
	ErrNotStarted      = errors.New("game not started")
	ErrGameOver        = errors.New("game is over")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrAutomatedPlayer = errors.New("player is automated")
	ErrWrongPhase      = errors.New("action not allowed in this phase")
	ErrCannotBuy       = errors.New("cannot buy this card")
	ErrNoPlayers       = errors.New("no players")
)

const tracerName = "github.com/rustyeddy/ratrace/engine"

// Engine owns all game state. Every exported method and every timer
// callback takes mu; timer callbacks additionally check the turn
// generation they were scheduled under and do nothing once it has moved
// on.
type Engine struct {
	mu sync.Mutex

	board    board.Board
	rules    ledger.Rules
	resolver *board.Resolver
	timings  Timings
	sched    clock.Scheduler
	primary  cards.Provider
	local    cards.Provider
	cards    *cards.Fallback
	journal  journal.Journal
	ring     *journal.Ring
	ringSize int
	log      *zap.Logger
	tracer   trace.Tracer
	rng      *rand.Rand
	exec     func(func())

	gameID   string
	started  bool
	phase    Phase
	players  []*game.Player
	current  int
	turn     int
	gen      uint64
	turnDone bool
	dice     int
	card     *game.Card
	notice   string
	decision *policy.Decision
	winner   int

	fetched     *game.Card
	minShown    bool
	fetchCancel context.CancelFunc
	timers      []clock.Timer
	watchdog    clock.Timer

	// work queued under the lock, run by unlock once mu is released
	deferred []func()
}

type Option func(*Engine)

func WithBoard(b board.Board) Option { return func(e *Engine) { e.board = b } }

// WithRules sets the ledger constants. Unless WithResolver is also given,
// the space resolver uses them too.
func WithRules(r ledger.Rules) Option { return func(e *Engine) { e.rules = r } }

func WithResolver(r board.Resolver) Option { return func(e *Engine) { e.resolver = &r } }

func WithTimings(t Timings) Option { return func(e *Engine) { e.timings = t } }

// WithProvider sets the primary card source. The local deck still backs
// it up.
func WithProvider(p cards.Provider) Option { return func(e *Engine) { e.primary = p } }

// WithLocalDeck replaces the built-in offline deck.
func WithLocalDeck(p cards.Provider) Option { return func(e *Engine) { e.local = p } }

func WithScheduler(s clock.Scheduler) Option { return func(e *Engine) { e.sched = s } }

// WithJournal adds a durable sink next to the in-memory narration ring.
func WithJournal(j journal.Journal) Option { return func(e *Engine) { e.journal = j } }

func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.log = l } }

func WithRand(r *rand.Rand) Option { return func(e *Engine) { e.rng = r } }

func WithTracer(t trace.Tracer) Option { return func(e *Engine) { e.tracer = t } }

func WithRingSize(n int) Option { return func(e *Engine) { e.ringSize = n } }

// WithExecutor sets how card fetches are started. The default runs each
// on its own goroutine; tests may run them inline.
func WithExecutor(f func(func())) Option { return func(e *Engine) { e.exec = f } }

func New(opts ...Option) *Engine {
	e := &Engine{
		board:   board.Default(),
		rules:   ledger.DefaultRules(),
		timings: DefaultTimings(),
		sched:   clock.Real{},
		journal: journal.Discard,
		log:     zap.NewNop(),
		winner:  -1,
		exec:    func(f func()) { go f() },
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.resolver == nil {
		r := board.NewResolver(e.rules)
		e.resolver = &r
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(tracerName)
	}
	if e.local == nil {
		e.local = cards.DefaultDeck(rand.New(rand.NewSource(e.rng.Int63())))
	}
	e.ring = journal.NewRing(e.ringSize)
	e.cards = &cards.Fallback{
		Primary: e.primary,
		Local:   e.local,
		Timeout: e.timings.CardFetch,
		OnFailure: func(kind game.CardKind, err error) {
			e.log.Warn("card provider failed, using local deck",
				zap.String("kind", string(kind)), zap.Error(err))
		},
	}
	return e
}

func (e *Engine) lock() { e.mu.Lock() }

// unlock releases mu and then runs any work queued while it was held.
func (e *Engine) unlock() {
	work := e.deferred
	e.deferred = nil
	e.mu.Unlock()
	for _, f := range work {
		e.exec(f)
	}
}

// Start begins a new game with one player per config, discarding any game
// in progress.
func (e *Engine) Start(configs []game.PlayerConfig) error {
	if len(configs) == 0 {
		return ErrNoPlayers
	}
	for i, c := range configs {
		if !c.Mode.Valid() {
			return fmt.Errorf("player %d: unknown control mode %q", i+1, c.Mode)
		}
	}

	e.lock()
	defer e.unlock()

	e.resetLocked()

	e.players = make([]*game.Player, 0, len(configs))
	for _, c := range configs {
		e.players = append(e.players, &game.Player{
			ID:          id.Prefixed("player"),
			Name:        c.Name,
			Mode:        c.Mode,
			Profession:  c.Profession,
			Cash:        c.Cash,
			Salary:      c.Salary,
			Liabilities: append([]game.Liability(nil), c.Liabilities...),
		})
	}
	ledger.ApplyAll(e.rules, e.players)

	e.gameID = uuid.NewString()
	e.started = true
	e.log.Info("game started",
		zap.String("game", e.gameID), zap.Int("players", len(e.players)))
	e.narrateLocked(nil, journal.Info, "The game has started. Good luck in the rat race!")

	if e.checkWinLocked() {
		return nil
	}
	e.startTurnLocked()
	return nil
}

// Reset abandons the current game, cancels every pending timer and
// returns the engine to Idle.
func (e *Engine) Reset() {
	e.lock()
	defer e.unlock()
	e.resetLocked()
}

func (e *Engine) resetLocked() {
	e.cancelTimersLocked()
	e.gen++
	e.clearTurnLocked()
	e.started = false
	e.phase = Idle
	e.players = nil
	e.current = 0
	e.turn = 0
	e.winner = -1
	e.gameID = ""
	e.ring.Clear()
}

// clearTurnLocked drops every per-turn field.
func (e *Engine) clearTurnLocked() {
	e.turnDone = false
	e.dice = 0
	e.card = nil
	e.notice = ""
	e.decision = nil
	e.fetched = nil
	e.minShown = false
}

// schedule runs fn under the lock after d, unless the turn generation has
// changed or the game has ended by then.
func (e *Engine) schedule(d time.Duration, what string, fn func()) {
	gen := e.gen
	t := e.sched.AfterFunc(d, func() {
		e.lock()
		defer e.unlock()
		if e.gen != gen || e.phase == GameOver {
			e.log.Debug("stale timer ignored",
				zap.String("timer", what), zap.Uint64("gen", gen), zap.Uint64("current_gen", e.gen))
			return
		}
		fn()
	})
	e.timers = append(e.timers, t)
}

func (e *Engine) cancelTimersLocked() {
	for _, t := range e.timers {
		t.Stop()
	}
	e.timers = nil
	if e.watchdog != nil {
		e.watchdog.Stop()
		e.watchdog = nil
	}
	if e.fetchCancel != nil {
		e.fetchCancel()
		e.fetchCancel = nil
	}
}

func (e *Engine) currentLocked() *game.Player {
	return e.players[e.current]
}

func (e *Engine) narrateLocked(p *game.Player, sev journal.Severity, format string, args ...any) {
	entry := journal.Entry{
		ID:       id.Prefixed("evt"),
		GameID:   e.gameID,
		Time:     time.Now().UTC(),
		Turn:     e.turn,
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
	}
	if p != nil {
		entry.PlayerID = p.ID
		entry.PlayerName = p.Name
	}

	_ = e.ring.Record(entry)
	if err := e.journal.Record(entry); err != nil {
		e.log.Warn("journal write failed", zap.String("entry", entry.ID), zap.Error(err))
	}
	e.log.Info(entry.Message,
		zap.String("game", e.gameID),
		zap.Int("turn", e.turn),
		zap.String("player", entry.PlayerName),
		zap.String("severity", string(sev)))
}

// checkWinLocked recomputes every ledger and ends the game if anyone has
// escaped.
func (e *Engine) checkWinLocked() bool {
	ledger.ApplyAll(e.rules, e.players)
	w := ledger.FindWinner(e.players)
	if w == nil {
		return false
	}
	for i, p := range e.players {
		if p == w {
			e.winner = i
		}
	}
	e.cancelTimersLocked()
	e.gen++
	e.phase = GameOver
	e.narrateLocked(w, journal.Success,
		"%s escaped the rat race! Passive income %s exceeds expenses %s.",
		w.Name, money.Format(w.PassiveIncome), money.Format(w.TotalExpenses))
	return true
}

// State is a point-in-time copy of the game.
type State struct {
	GameID     string
	Phase      Phase
	Players    []*game.Player
	Current    int
	Turn       int
	Generation uint64
	Dice       int
	Card       *game.Card
	Notice     string
	Decision   *policy.Decision
	Winner     *game.Player
}

// CurrentPlayer returns the player whose turn it is, or nil before a game
// starts.
func (s State) CurrentPlayer() *game.Player {
	if s.Current < 0 || s.Current >= len(s.Players) {
		return nil
	}
	return s.Players[s.Current]
}

func (e *Engine) Snapshot() State {
	e.lock()
	defer e.unlock()

	s := State{
		GameID:     e.gameID,
		Phase:      e.phase,
		Current:    e.current,
		Turn:       e.turn,
		Generation: e.gen,
		Dice:       e.dice,
		Notice:     e.notice,
	}
	for _, p := range e.players {
		s.Players = append(s.Players, p.Clone())
	}
	if e.card != nil {
		c := *e.card
		s.Card = &c
	}
	if e.decision != nil {
		d := *e.decision
		s.Decision = &d
	}
	if e.winner >= 0 && e.winner < len(s.Players) {
		s.Winner = s.Players[e.winner]
	}
	return s
}

// Log returns the recent narration, newest first.
func (e *Engine) Log() []journal.Entry {
	return e.ring.Entries()
}
