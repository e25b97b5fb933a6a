package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/ratrace/board"
	"github.com/rustyeddy/ratrace/cards"
	"github.com/rustyeddy/ratrace/game"
	"github.com/rustyeddy/ratrace/internal/clock"
	"github.com/rustyeddy/ratrace/journal"
	"github.com/rustyeddy/ratrace/ledger"
	"github.com/rustyeddy/ratrace/policy"
)

var (
	think   = 1500 * time.Millisecond
	travel  = 600 * time.Millisecond
	minimum = 800 * time.Millisecond
	decide  = 2 * time.Second
	stamp   = 1500 * time.Millisecond
	closeD  = 2 * time.Second
)

// fixedDeck always deals the same card per kind.
type fixedDeck map[game.CardKind]game.Card

func (d fixedDeck) RequestCard(_ context.Context, k game.CardKind) (game.Card, error) {
	c, ok := d[k]
	if !ok {
		return game.Card{}, fmt.Errorf("no %s card", k)
	}
	return c, nil
}

func condo() game.Card {
	return game.NewDealCard("deal-1", "Condo 2Br/1Ba", "", game.DealTerms{
		Cost:        40000,
		DownPayment: 4000,
		Cashflow:    140,
		Symbol:      "CONDO",
	})
}

func uniformBoard(t *testing.T, kind game.SpaceKind) board.Board {
	t.Helper()
	spaces := make([]game.BoardSpace, 5)
	for i := range spaces {
		spaces[i] = game.BoardSpace{Index: i, Kind: kind, Label: string(kind)}
	}
	b, err := board.New(spaces)
	require.NoError(t, err)
	return b
}

// smallDealsOnly keeps every deal space on the small deck.
func smallDealsOnly() Option {
	return WithResolver(board.Resolver{Rules: ledger.DefaultRules(), DealThreshold: 1 << 30})
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *clock.Manual) {
	t.Helper()
	m := clock.NewManual()
	base := []Option{
		WithScheduler(m),
		WithExecutor(func(f func()) { f() }),
		WithRand(rand.New(rand.NewSource(7))),
	}
	return New(append(base, opts...)...), m
}

func seat(name string, mode game.ControlMode, cash int) game.PlayerConfig {
	return game.PlayerConfig{
		Name:   name,
		Mode:   mode,
		Cash:   cash,
		Salary: 4000,
		Liabilities: []game.Liability{
			{ID: "loan", Name: "Loan", Balance: 10000, Payment: 100},
		},
	}
}

func bot(name string, cash int) game.PlayerConfig   { return seat(name, game.Automated, cash) }
func human(name string, cash int) game.PlayerConfig { return seat(name, game.Human, cash) }

func countLog(e *Engine, substr string) int {
	n := 0
	for _, entry := range e.Log() {
		if strings.Contains(entry.Message, substr) {
			n++
		}
	}
	return n
}

func TestStart(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t)
	require.NoError(t, e.Start([]game.PlayerConfig{human("Ann", 1000), bot("Bob", 2000)}))

	s := e.Snapshot()
	assert.NotEmpty(t, s.GameID)
	assert.Equal(t, AwaitingRoll, s.Phase)
	assert.Equal(t, 0, s.Current)
	require.Len(t, s.Players, 2)
	for _, p := range s.Players {
		assert.True(t, strings.HasPrefix(p.ID, "player_"))
		assert.Equal(t, 900, p.TotalExpenses)
		assert.Equal(t, 3100, p.Payday)
	}
	assert.Equal(t, 1, countLog(e, "game has started"))

	assert.ErrorIs(t, e.Start(nil), ErrNoPlayers)
	assert.Error(t, e.Start([]game.PlayerConfig{{Name: "x", Mode: "robot"}}))
}

func TestAutomatedBuysSmallDeal(t *testing.T) {
	t.Parallel()

	e, m := newTestEngine(t,
		WithBoard(uniformBoard(t, game.DealSpace)),
		smallDealsOnly(),
		WithLocalDeck(fixedDeck{game.SmallDeal: condo()}),
	)
	require.NoError(t, e.Start([]game.PlayerConfig{bot("Robert", 10000)}))

	m.Advance(think)
	s := e.Snapshot()
	assert.Equal(t, Moving, s.Phase)
	assert.GreaterOrEqual(t, s.Dice, 1)
	assert.LessOrEqual(t, s.Dice, 6)

	m.Advance(travel)
	assert.Equal(t, ResolvingSpace, e.Snapshot().Phase, "card waits for the minimum display time")

	m.Advance(minimum)
	s = e.Snapshot()
	require.Equal(t, AwaitingDecision, s.Phase)
	require.NotNil(t, s.Card)
	assert.Equal(t, "Condo 2Br/1Ba", s.Card.Title)
	assert.Nil(t, s.Decision)

	m.Advance(decide)
	s = e.Snapshot()
	require.NotNil(t, s.Decision)
	assert.Equal(t, policy.Buy, s.Decision.Action)
	assert.Equal(t, policy.DealAffordable, s.Decision.Code)

	m.Advance(stamp)
	s = e.Snapshot()
	p := s.Players[0]
	assert.Equal(t, 6000, p.Cash)
	require.Len(t, p.Assets, 1)
	assert.Equal(t, 140, p.Assets[0].Cashflow)
	assert.Equal(t, game.RealEstate, p.Assets[0].Category)
	assert.Equal(t, 140, p.PassiveIncome)
	assert.Equal(t, 3240, p.Payday)

	assert.Equal(t, AwaitingRoll, s.Phase)
	assert.Equal(t, 1, s.Turn)
	assert.Nil(t, s.Card)
	assert.Zero(t, s.Dice)
	assert.Equal(t, 1, countLog(e, "bought \"Condo 2Br/1Ba\" for $4,000"))
}

func TestAutomatedRotation(t *testing.T) {
	t.Parallel()

	e, m := newTestEngine(t, WithBoard(uniformBoard(t, game.CharitySpace)))
	require.NoError(t, e.Start([]game.PlayerConfig{bot("A", 0), bot("B", 0), bot("C", 0)}))

	perTurn := think + travel + closeD
	for turn := 1; turn <= 9; turn++ {
		m.Advance(perTurn)
		s := e.Snapshot()
		assert.Equal(t, turn%3, s.Current, "turn %d", turn)
		assert.Equal(t, turn, s.Turn)
		assert.Equal(t, AwaitingRoll, s.Phase)
	}
}

func TestAutomatedPaydayAutoCloses(t *testing.T) {
	t.Parallel()

	e, m := newTestEngine(t, WithBoard(uniformBoard(t, game.PaydaySpace)))
	require.NoError(t, e.Start([]game.PlayerConfig{bot("A", 100), bot("B", 100)}))

	m.Advance(think + travel)
	s := e.Snapshot()
	assert.Equal(t, AwaitingDecision, s.Phase)
	assert.Nil(t, s.Card)
	assert.Contains(t, s.Notice, "payday of $3,100")
	assert.Equal(t, 3200, s.Players[0].Cash)

	m.Advance(closeD - time.Millisecond)
	assert.Equal(t, 0, e.Snapshot().Current)
	m.Advance(time.Millisecond)
	assert.Equal(t, 1, e.Snapshot().Current)
}

func TestLayoffAndChildbirth(t *testing.T) {
	t.Parallel()

	t.Run("layoff", func(t *testing.T) {
		t.Parallel()
		e, m := newTestEngine(t, WithBoard(uniformBoard(t, game.LayoffSpace)))
		require.NoError(t, e.Start([]game.PlayerConfig{bot("A", 5000)}))
		m.Advance(think + travel)
		p := e.Snapshot().Players[0]
		assert.Equal(t, 4100, p.Cash)
		assert.Equal(t, 1, countLog(e, "downsized"))
	})

	t.Run("childbirth", func(t *testing.T) {
		t.Parallel()
		e, m := newTestEngine(t, WithBoard(uniformBoard(t, game.ChildbirthSpace)))
		require.NoError(t, e.Start([]game.PlayerConfig{bot("A", 5000)}))
		m.Advance(think + travel)
		p := e.Snapshot().Players[0]
		assert.Equal(t, 1, p.Children)
		assert.Equal(t, 1140, p.TotalExpenses)
		assert.Equal(t, 2860, p.Payday)
	})
}

func TestWatchdogForcesPassOnce(t *testing.T) {
	t.Parallel()

	timings := DefaultTimings()
	timings.DecisionDelay = 30 * time.Second

	e, m := newTestEngine(t,
		WithTimings(timings),
		WithBoard(uniformBoard(t, game.DealSpace)),
		smallDealsOnly(),
		WithLocalDeck(fixedDeck{game.SmallDeal: condo()}),
	)
	require.NoError(t, e.Start([]game.PlayerConfig{bot("Robert", 10000)}))

	m.Advance(think + travel + minimum)
	s := e.Snapshot()
	require.Equal(t, AwaitingDecision, s.Phase)
	stalled := s.Generation

	// the watchdog was armed when the space started resolving
	m.Advance(timings.Watchdog - minimum - time.Millisecond)
	assert.Equal(t, AwaitingDecision, e.Snapshot().Phase)
	m.Advance(time.Millisecond)

	s = e.Snapshot()
	assert.Equal(t, AwaitingRoll, s.Phase)
	assert.Equal(t, 1, s.Turn)
	assert.Equal(t, 10000, s.Players[0].Cash)
	assert.Empty(t, s.Players[0].Assets)
	assert.Equal(t, 1, countLog(e, "took too long"))
	assert.Equal(t, 1, countLog(e, "passes on"))

	e.lock()
	acted := e.watchdogExpiredLocked(stalled)
	e.unlock()
	assert.False(t, acted, "a second firing after close is a no-op")
	assert.Equal(t, 1, countLog(e, "took too long"))
	assert.Equal(t, 1, e.Snapshot().Turn)
}

func TestWatchdogIgnoresHumans(t *testing.T) {
	t.Parallel()

	e, m := newTestEngine(t,
		WithBoard(uniformBoard(t, game.DealSpace)),
		smallDealsOnly(),
		WithLocalDeck(fixedDeck{game.SmallDeal: condo()}),
	)
	require.NoError(t, e.Start([]game.PlayerConfig{human("Ann", 10000)}))
	ann := e.Snapshot().Players[0].ID

	require.NoError(t, e.Roll(context.Background(), ann))
	m.Advance(time.Minute)
	s := e.Snapshot()
	assert.Equal(t, AwaitingDecision, s.Phase)
	assert.NotNil(t, s.Card)
	assert.Zero(t, countLog(e, "took too long"))
}

func TestMarketWithoutHoldingPasses(t *testing.T) {
	t.Parallel()

	offer := game.NewMarketCard("mkt-1", "Buyer for X", "", game.MarketTerms{OfferPrice: 100, Symbol: "X"})
	e, m := newTestEngine(t,
		WithBoard(uniformBoard(t, game.MarketSpace)),
		WithLocalDeck(fixedDeck{game.MarketEvent: offer}),
	)
	require.NoError(t, e.Start([]game.PlayerConfig{bot("Robert", 10000)}))

	m.Advance(think + travel + minimum + decide)
	s := e.Snapshot()
	require.NotNil(t, s.Decision)
	assert.Equal(t, policy.Pass, s.Decision.Action)
	assert.Equal(t, policy.MarketNoHolding, s.Decision.Code)

	m.Advance(stamp)
	s = e.Snapshot()
	assert.Equal(t, 10000, s.Players[0].Cash)
	assert.Equal(t, 1, s.Turn)
}

func TestMarketSaleOnlyTouchesActingPlayer(t *testing.T) {
	t.Parallel()

	offer := game.NewMarketCard("mkt-1", "Condo Buyer", "", game.MarketTerms{OfferPrice: 65000, Symbol: "CONDO"})
	e, m := newTestEngine(t,
		WithBoard(uniformBoard(t, game.MarketSpace)),
		WithLocalDeck(fixedDeck{game.MarketEvent: offer}),
	)
	require.NoError(t, e.Start([]game.PlayerConfig{bot("A", 1000), bot("B", 1000)}))

	holding := game.Asset{ID: "a1", Name: "Condo", Cost: 40000, DownPayment: 4000, Cashflow: 140, Category: game.RealEstate, Symbol: "CONDO", Quantity: 1}
	e.lock()
	for _, p := range e.players {
		p.Assets = []game.Asset{holding}
	}
	e.unlock()

	m.Advance(think + travel + minimum + decide + stamp)
	s := e.Snapshot()
	a, b := s.Players[0], s.Players[1]
	assert.Equal(t, 1000+65000-36000, a.Cash)
	assert.Empty(t, a.Assets)
	assert.Zero(t, a.PassiveIncome)

	assert.Equal(t, 1000, b.Cash)
	assert.Len(t, b.Assets, 1)
	assert.Equal(t, 1, countLog(e, "received $29,000"))
}

func TestSell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		assets   []game.Asset
		terms    game.MarketTerms
		proceeds int
		sold     int
		left     int
	}{
		{
			name:     "real estate pays off mortgage",
			assets:   []game.Asset{{Name: "Condo", Cost: 40000, DownPayment: 4000, Category: game.RealEstate, Symbol: "CONDO", Quantity: 1}},
			terms:    game.MarketTerms{OfferPrice: 65000, Symbol: "CONDO"},
			proceeds: 29000,
			sold:     1,
		},
		{
			name:     "liquid instrument by quantity",
			assets:   []game.Asset{{Name: "MYT4U", Cost: 5, Category: game.LiquidInstrument, Symbol: "MYT4U", Quantity: 100}},
			terms:    game.MarketTerms{OfferPrice: 40, Symbol: "MYT4U"},
			proceeds: 4000,
			sold:     1,
		},
		{
			name: "three bedroom family",
			assets: []game.Asset{
				{Name: "House 3Br/2Ba", Cost: 55000, DownPayment: 5000, Category: game.RealEstate, Symbol: "HOUSE", Quantity: 1},
				{Name: "Land", Cost: 5000, DownPayment: 5000, Category: game.RealEstate, Symbol: "LAND", Quantity: 1},
			},
			terms:    game.MarketTerms{OfferPrice: 135000, Symbol: game.ThreeBedroomSymbol},
			proceeds: 85000,
			sold:     1,
			left:     1,
		},
		{
			name:   "nothing matches",
			assets: []game.Asset{{Name: "Land", Symbol: "LAND", Category: game.RealEstate}},
			terms:  game.MarketTerms{OfferPrice: 1, Symbol: "X"},
			left:   1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := &game.Player{Assets: tt.assets}
			proceeds, sold := sell(p, tt.terms)
			assert.Equal(t, tt.proceeds, proceeds)
			assert.Equal(t, tt.sold, sold)
			assert.Len(t, p.Assets, tt.left)
		})
	}
}

func TestBuyDowngradedWhenCashDrifts(t *testing.T) {
	t.Parallel()

	e, m := newTestEngine(t,
		WithBoard(uniformBoard(t, game.DealSpace)),
		smallDealsOnly(),
		WithLocalDeck(fixedDeck{game.SmallDeal: condo()}),
	)
	require.NoError(t, e.Start([]game.PlayerConfig{bot("Robert", 10000)}))

	m.Advance(think + travel + minimum + decide)
	require.Equal(t, policy.Buy, e.Snapshot().Decision.Action)

	e.lock()
	e.players[0].Cash = 100
	e.unlock()

	m.Advance(stamp)
	s := e.Snapshot()
	assert.Equal(t, 100, s.Players[0].Cash)
	assert.Empty(t, s.Players[0].Assets)
	assert.Equal(t, 1, countLog(e, "wanted to buy \"Condo 2Br/1Ba\" but could not afford it"))
	assert.Equal(t, 1, s.Turn)
}

func TestAutomatedPaysExpense(t *testing.T) {
	t.Parallel()

	bill := game.NewExpenseCard("exp-1", "Car Repair", "", 1500)
	e, m := newTestEngine(t,
		WithBoard(uniformBoard(t, game.ExpenseSpace)),
		WithLocalDeck(fixedDeck{game.ExpenseEvent: bill}),
	)
	require.NoError(t, e.Start([]game.PlayerConfig{bot("Robert", 1000)}))

	m.Advance(think + travel + minimum + decide)
	assert.Equal(t, policy.ExpenseForced, e.Snapshot().Decision.Code)
	m.Advance(stamp)
	assert.Equal(t, -500, e.Snapshot().Players[0].Cash)
	assert.Equal(t, 1, countLog(e, "spent $1,500"))
}

func TestProviderFailureFallsBackToLocal(t *testing.T) {
	t.Parallel()

	var calls int
	failing := func(context.Context, game.CardKind) (game.Card, error) {
		calls++
		return game.Card{}, errors.New("service unavailable")
	}
	e, m := newTestEngine(t,
		WithBoard(uniformBoard(t, game.DealSpace)),
		smallDealsOnly(),
		WithProvider(cards.ProviderFunc(failing)),
		WithLocalDeck(fixedDeck{game.SmallDeal: condo()}),
	)
	require.NoError(t, e.Start([]game.PlayerConfig{bot("Robert", 10000)}))

	m.Advance(think + travel + minimum)
	s := e.Snapshot()
	require.Equal(t, AwaitingDecision, s.Phase)
	require.NotNil(t, s.Card)
	assert.Equal(t, "deal-1", s.Card.ID)
	assert.Equal(t, 1, calls)
}

func TestCardWaitsForSlowFetch(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	slow := cards.ProviderFunc(func(ctx context.Context, k game.CardKind) (game.Card, error) {
		<-release
		return condo(), nil
	})

	m := clock.NewManual()
	e := New(
		WithScheduler(m),
		WithRand(rand.New(rand.NewSource(1))),
		WithBoard(uniformBoard(t, game.DealSpace)),
		smallDealsOnly(),
		WithLocalDeck(slow),
	)
	require.NoError(t, e.Start([]game.PlayerConfig{bot("Robert", 10000)}))

	m.Advance(think + travel + minimum + time.Second)
	assert.Equal(t, ResolvingSpace, e.Snapshot().Phase)

	close(release)
	assert.Eventually(t, func() bool {
		return e.Snapshot().Phase == AwaitingDecision
	}, time.Second, 5*time.Millisecond)

	// decision delay counts from when the card opened
	m.Advance(decide)
	assert.Eventually(t, func() bool {
		return e.Snapshot().Decision != nil
	}, time.Second, 5*time.Millisecond)
}

func TestFetchAfterResetIsDiscarded(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	delivered := make(chan struct{})
	slow := cards.ProviderFunc(func(ctx context.Context, k game.CardKind) (game.Card, error) {
		<-release
		return condo(), nil
	})

	m := clock.NewManual()
	e := New(
		WithScheduler(m),
		WithExecutor(func(f func()) {
			go func() {
				f()
				close(delivered)
			}()
		}),
		WithBoard(uniformBoard(t, game.DealSpace)),
		smallDealsOnly(),
		WithLocalDeck(slow),
	)
	require.NoError(t, e.Start([]game.PlayerConfig{bot("Robert", 10000)}))
	m.Advance(think + travel + minimum)
	require.Equal(t, ResolvingSpace, e.Snapshot().Phase)

	e.Reset()
	close(release)
	<-delivered

	s := e.Snapshot()
	assert.Equal(t, Idle, s.Phase)
	assert.Nil(t, s.Card)
	assert.Empty(t, s.Players)
}

func TestStaleTimersAfterRestart(t *testing.T) {
	t.Parallel()

	m := clock.NewManual()
	e := New(
		WithScheduler(leaky{m}),
		WithExecutor(func(f func()) { f() }),
		WithBoard(uniformBoard(t, game.CharitySpace)),
	)
	require.NoError(t, e.Start([]game.PlayerConfig{bot("A", 0)}))

	m.Advance(time.Second)
	require.NoError(t, e.Start([]game.PlayerConfig{bot("B", 0)}))

	// the first game's think timer would have fired here
	m.Advance(500 * time.Millisecond)
	s := e.Snapshot()
	assert.Equal(t, AwaitingRoll, s.Phase)
	assert.Zero(t, s.Dice)

	m.Advance(think - 500*time.Millisecond)
	s = e.Snapshot()
	assert.Equal(t, Moving, s.Phase)
	assert.NotZero(t, s.Dice)
}

func TestResetCancelsEverything(t *testing.T) {
	t.Parallel()

	e, m := newTestEngine(t, WithBoard(uniformBoard(t, game.CharitySpace)))
	require.NoError(t, e.Start([]game.PlayerConfig{bot("A", 0), bot("B", 0)}))
	m.Advance(think)

	e.Reset()
	assert.Zero(t, m.Pending())
	m.Advance(time.Minute)

	s := e.Snapshot()
	assert.Equal(t, Idle, s.Phase)
	assert.Empty(t, s.Players)
	assert.Empty(t, e.Log())
}

func TestWinEndsGame(t *testing.T) {
	t.Parallel()

	jackpot := game.NewDealCard("deal-2", "Mini Mall", "", game.DealTerms{
		Big: true, Cost: 120000, DownPayment: 25000, Cashflow: 5000, Symbol: "COMMERCIAL",
	})
	e, m := newTestEngine(t,
		WithBoard(uniformBoard(t, game.DealSpace)),
		WithLocalDeck(fixedDeck{game.BigDeal: jackpot}),
	)
	require.NoError(t, e.Start([]game.PlayerConfig{bot("A", 30000), bot("B", 30000)}))

	m.Advance(think + travel + minimum + decide + stamp)
	s := e.Snapshot()
	require.Equal(t, GameOver, s.Phase)
	require.NotNil(t, s.Winner)
	assert.Equal(t, "A", s.Winner.Name)
	assert.Equal(t, 0, s.Current)
	assert.Equal(t, 1, countLog(e, "escaped the rat race"))

	gen := s.Generation
	m.Advance(time.Hour)
	s = e.Snapshot()
	assert.Equal(t, GameOver, s.Phase)
	assert.Equal(t, gen, s.Generation)
	assert.Zero(t, m.Pending())
}

func TestNarrationIsBoundedAndJournaled(t *testing.T) {
	t.Parallel()

	sink := journal.NewRing(1000)
	e, m := newTestEngine(t,
		WithBoard(uniformBoard(t, game.CharitySpace)),
		WithJournal(journal.Multi{sink, failingJournal{}}),
	)
	require.NoError(t, e.Start([]game.PlayerConfig{bot("A", 0), bot("B", 0)}))

	m.Advance(20 * (think + travel + closeD))

	assert.Len(t, e.Log(), journal.DefaultRingSize)
	assert.Greater(t, sink.Len(), journal.DefaultRingSize)

	gameID := e.Snapshot().GameID
	newest := e.Log()[0]
	assert.Equal(t, gameID, newest.GameID)
	assert.False(t, newest.Time.IsZero())
	assert.Equal(t, 20, e.Snapshot().Turn)
}

func TestTimingsScale(t *testing.T) {
	t.Parallel()

	fast := DefaultTimings().Scale(0.1)
	assert.Equal(t, 150*time.Millisecond, fast.Think)
	assert.Equal(t, time.Second, fast.Watchdog)
	assert.Equal(t, 500*time.Millisecond, fast.CardFetch)
}

func TestPhaseString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "awaiting-roll", AwaitingRoll.String())
	assert.Equal(t, "game-over", GameOver.String())
	assert.Equal(t, "unknown", Phase(42).String())
}

// leaky never cancels, so stopped callbacks still fire like a real timer
// that lost the race with Stop.
type leaky struct{ *clock.Manual }

func (l leaky) AfterFunc(d time.Duration, f func()) clock.Timer {
	l.Manual.AfterFunc(d, f)
	return noStop{}
}

type noStop struct{}

func (noStop) Stop() bool { return false }

type failingJournal struct{}

func (failingJournal) Record(journal.Entry) error { return errors.New("disk full") }
func (failingJournal) Close() error               { return nil }
