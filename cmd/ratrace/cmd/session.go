package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/ratrace/cards"
	"github.com/rustyeddy/ratrace/config"
	"github.com/rustyeddy/ratrace/engine"
	"github.com/rustyeddy/ratrace/game"
	"github.com/rustyeddy/ratrace/internal/money"
	"github.com/rustyeddy/ratrace/journal"
	"github.com/rustyeddy/ratrace/setup"
)

var errInputClosed = errors.New("input closed while a human player was to act")

const pollInterval = 20 * time.Millisecond

// session is one game played in the terminal.
type session struct {
	engine   *engine.Engine
	journal  journal.Journal
	seed     int64
	maxTurns int
	poll     time.Duration
}

// newSession builds the engine from cfg, prints narration to out and starts
// the game. opts are applied after the configured ones.
func newSession(cfg *config.Config, out io.Writer, log *zap.Logger, opts ...engine.Option) (*session, error) {
	seed := cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	difficulty, err := setup.ParseDifficulty(cfg.Game.Difficulty)
	if err != nil {
		return nil, err
	}
	seats, err := cfg.Seats()
	if err != nil {
		return nil, err
	}
	players, err := setup.Build(seats, difficulty, rng)
	if err != nil {
		return nil, err
	}
	rules, err := cfg.Rules.Ledger()
	if err != nil {
		return nil, err
	}
	resolver, err := cfg.Rules.Resolver()
	if err != nil {
		return nil, err
	}
	timings, err := cfg.Timings.Engine()
	if err != nil {
		return nil, err
	}

	durable, err := openJournal(cfg.Journal)
	if err != nil {
		return nil, err
	}
	j := journal.Multi{journal.NewText(out), durable}

	base := []engine.Option{
		engine.WithRules(rules),
		engine.WithResolver(resolver),
		engine.WithTimings(timings.Scale(1 / cfg.Game.Speed)),
		engine.WithJournal(j),
		engine.WithLogger(log),
		engine.WithRand(rng),
	}
	if cfg.Game.Deck != "" {
		deck, err := cards.LoadDeck(cfg.Game.Deck, rand.New(rand.NewSource(rng.Int63())))
		if err != nil {
			j.Close()
			return nil, err
		}
		base = append(base, engine.WithLocalDeck(deck))
	}

	e := engine.New(append(base, opts...)...)
	if err := e.Start(players); err != nil {
		j.Close()
		return nil, err
	}

	return &session{
		engine:   e,
		journal:  j,
		seed:     seed,
		maxTurns: cfg.Game.MaxTurns,
		poll:     pollInterval,
	}, nil
}

func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "csv":
		j, err := journal.NewCSV(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("create journal: %w", err)
		}
		return j, nil
	case "sqlite":
		j, err := journal.NewSQLite(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("create journal: %w", err)
		}
		return j, nil
	default:
		return journal.Discard, nil
	}
}

// Close stops every pending timer and closes the journals.
func (s *session) Close() error {
	s.engine.Reset()
	return s.journal.Close()
}

// Run drives the game until someone wins, maxTurns turns have been played
// or ctx is done. Human seats read one line of in per prompt.
func (s *session) Run(ctx context.Context, in io.Reader, out io.Writer) (engine.State, error) {
	var lines <-chan string
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	prompted := ""
	for {
		st := s.engine.Snapshot()
		if st.Phase == engine.GameOver {
			return st, nil
		}
		if s.maxTurns > 0 && st.Turn >= s.maxTurns {
			return st, nil
		}

		if p := st.CurrentPlayer(); p != nil && !p.IsAutomated() {
			key := fmt.Sprintf("%d/%s", st.Generation, st.Phase)
			if prompt := promptFor(st); prompt != "" && key != prompted {
				prompted = key
				if lines == nil {
					lines = readLines(ctx, in)
				}
				fmt.Fprint(out, prompt)
				select {
				case <-ctx.Done():
					return st, ctx.Err()
				case line, ok := <-lines:
					if !ok {
						return st, errInputClosed
					}
					if err := act(ctx, s.engine, st, line); err != nil {
						fmt.Fprintf(out, "  %v\n", err)
						prompted = ""
					}
				}
				continue
			}
		}

		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-ticker.C:
		}
	}
}

func readLines(ctx context.Context, in io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// promptFor returns what to ask the current human player, or "" when the
// engine is busy.
func promptFor(st engine.State) string {
	p := st.CurrentPlayer()
	switch {
	case st.Phase == engine.AwaitingRoll:
		return fmt.Sprintf("%s (cash %s), press enter to roll: ", p.Name, money.Format(p.Cash))
	case st.Phase == engine.AwaitingDecision && st.Card != nil:
		return describe(*st.Card) + "\n[b]uy or [p]ass: "
	case st.Phase == engine.AwaitingDecision:
		return st.Notice + ". Press enter to continue: "
	}
	return ""
}

func describe(c game.Card) string {
	switch t := c.Terms.(type) {
	case game.DealTerms:
		return fmt.Sprintf("%s: cost %s, down %s, cashflow %s/month",
			c.Title, money.Format(t.Cost), money.Format(t.RequiredCash()), money.Format(t.Cashflow))
	case game.MarketTerms:
		return fmt.Sprintf("%s: offer %s for each %s", c.Title, money.Format(t.OfferPrice), t.Symbol)
	case game.ExpenseTerms:
		return fmt.Sprintf("%s: pay %s", c.Title, money.Format(t.Cost))
	}
	return c.Title
}

func act(ctx context.Context, e *engine.Engine, st engine.State, line string) error {
	id := st.CurrentPlayer().ID
	switch {
	case st.Phase == engine.AwaitingRoll:
		return e.Roll(ctx, id)
	case st.Card != nil:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "b", "buy":
			return e.Buy(ctx, id)
		case "p", "pass":
			return e.Pass(ctx, id)
		}
		return errors.New("type b to buy or p to pass")
	default:
		return e.Dismiss(ctx, id)
	}
}
