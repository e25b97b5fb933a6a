// Package cards supplies drawn event cards: a static offline deck and a
// fallback wrapper around any external provider.
package cards

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/ratrace/game"
	"github.com/rustyeddy/ratrace/internal/id"
)

// Provider produces a card of the requested kind. Implementations may
// block, fail or time out.
type Provider interface {
	RequestCard(ctx context.Context, kind game.CardKind) (game.Card, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, kind game.CardKind) (game.Card, error)

func (f ProviderFunc) RequestCard(ctx context.Context, kind game.CardKind) (game.Card, error) {
	return f(ctx, kind)
}

var (
	ErrUnknownKind = errors.New("unknown card kind")
	ErrEmptyDeck   = errors.New("deck has no cards of this kind")
)

// Entry is one catalog line. Which fields apply depends on the deck it
// sits in.
type Entry struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Cost        int    `yaml:"cost,omitempty"`
	DownPayment int    `yaml:"down_payment,omitempty"`
	Cashflow    int    `yaml:"cashflow,omitempty"`
	RangeLow    int    `yaml:"range_low,omitempty"`
	RangeHigh   int    `yaml:"range_high,omitempty"`
	Symbol      string `yaml:"symbol,omitempty"`
	Offer       int    `yaml:"offer,omitempty"`
	Rule        string `yaml:"rule,omitempty"`
}

// Catalog is the full offline card table keyed by deck.
type Catalog map[game.CardKind][]Entry

//go:embed deck.yaml
var defaultCatalog []byte

// ParseCatalog decodes a YAML catalog.
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse card catalog: %w", err)
	}
	return c, nil
}

// Validate requires every deck to be present and every card to be
// well-formed, so that a draw of any kind always succeeds.
func (c Catalog) Validate() error {
	for k := range c {
		if !k.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownKind, k)
		}
	}
	for _, k := range game.CardKinds {
		entries := c[k]
		if len(entries) == 0 {
			return fmt.Errorf("%s: %w", k, ErrEmptyDeck)
		}
		for i, e := range entries {
			if e.Title == "" {
				return fmt.Errorf("%s[%d]: missing title", k, i)
			}
			if err := e.card("", k).Validate(); err != nil {
				return fmt.Errorf("%s[%d]: %w", k, i, err)
			}
		}
	}
	return nil
}

func (e Entry) card(cardID string, k game.CardKind) game.Card {
	switch k {
	case game.MarketEvent:
		return game.NewMarketCard(cardID, e.Title, e.Description, game.MarketTerms{
			OfferPrice: e.Offer,
			Symbol:     e.Symbol,
			Rule:       e.Rule,
		})
	case game.ExpenseEvent:
		return game.NewExpenseCard(cardID, e.Title, e.Description, e.Cost)
	default:
		return game.NewDealCard(cardID, e.Title, e.Description, game.DealTerms{
			Big:         k == game.BigDeal,
			Cost:        e.Cost,
			DownPayment: e.DownPayment,
			Cashflow:    e.Cashflow,
			RangeLow:    e.RangeLow,
			RangeHigh:   e.RangeHigh,
			Symbol:      e.Symbol,
		})
	}
}

// Deck draws uniformly at random from a catalog, with replacement. It is
// safe for concurrent use.
type Deck struct {
	mu      sync.Mutex
	catalog Catalog
	rng     *rand.Rand
}

// NewDeck validates the catalog and returns a deck drawing from it.
func NewDeck(c Catalog, rng *rand.Rand) (*Deck, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid card catalog: %w", err)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Deck{catalog: c, rng: rng}, nil
}

// DefaultDeck returns the built-in offline deck.
func DefaultDeck(rng *rand.Rand) *Deck {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(err)
	}
	d, err := NewDeck(c, rng)
	if err != nil {
		panic(err)
	}
	return d
}

// LoadDeck reads a catalog file.
func LoadDeck(path string, rng *rand.Rand) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read card catalog: %w", err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, err
	}
	return NewDeck(c, rng)
}

// Draw returns a random card of kind k with a fresh id.
func (d *Deck) Draw(k game.CardKind) (game.Card, error) {
	if !k.Valid() {
		return game.Card{}, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}

	d.mu.Lock()
	entries := d.catalog[k]
	if len(entries) == 0 {
		d.mu.Unlock()
		return game.Card{}, fmt.Errorf("%s: %w", k, ErrEmptyDeck)
	}
	e := entries[d.rng.Intn(len(entries))]
	d.mu.Unlock()

	return e.card(id.Prefixed(string(k)), k), nil
}

// RequestCard implements Provider. The offline deck never blocks.
func (d *Deck) RequestCard(_ context.Context, k game.CardKind) (game.Card, error) {
	return d.Draw(k)
}

// Size returns the number of catalog entries of kind k.
func (d *Deck) Size(k game.CardKind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.catalog[k])
}
