package game

import (
	"errors"
	"fmt"
	"strings"
)

// CardKind names the deck a card is drawn from.
type CardKind string

const (
	SmallDeal    CardKind = "small-deal"
	BigDeal      CardKind = "big-deal"
	MarketEvent  CardKind = "market-event"
	ExpenseEvent CardKind = "expense-event"
)

// CardKinds lists every deck.
var CardKinds = []CardKind{SmallDeal, BigDeal, MarketEvent, ExpenseEvent}

// Valid reports whether k is a known card kind.
func (k CardKind) Valid() bool {
	switch k {
	case SmallDeal, BigDeal, MarketEvent, ExpenseEvent:
		return true
	}
	return false
}

// IsDeal reports whether k is a small or big deal.
func (k CardKind) IsDeal() bool {
	return k == SmallDeal || k == BigDeal
}

// Terms is the kind-specific economics of a card. It is implemented only by
// DealTerms, MarketTerms and ExpenseTerms.
type Terms interface {
	kind() CardKind
}

// DealTerms is an investment offer.
type DealTerms struct {
	Big         bool
	Cost        int
	DownPayment int
	Cashflow    int
	RangeLow    int // liquid instruments only
	RangeHigh   int
	Symbol      string
}

func (d DealTerms) kind() CardKind {
	if d.Big {
		return BigDeal
	}
	return SmallDeal
}

// RequiredCash is the cash paid at purchase: the down payment when there
// is one, otherwise the flat cost.
func (d DealTerms) RequiredCash() int {
	if d.DownPayment > 0 {
		return d.DownPayment
	}
	return d.Cost
}

// Category is the asset class a purchase of this deal produces.
func (d DealTerms) Category() AssetCategory {
	switch {
	case !d.Big && d.DownPayment == 0:
		return LiquidInstrument
	case strings.HasPrefix(d.Symbol, "BUSINESS"):
		return Business
	default:
		return RealEstate
	}
}

// MarketTerms is an offer to buy every holding matching Symbol at
// OfferPrice apiece.
type MarketTerms struct {
	OfferPrice int
	Symbol     string
	Rule       string
}

func (MarketTerms) kind() CardKind { return MarketEvent }

// ExpenseTerms is an unavoidable one-off expense.
type ExpenseTerms struct {
	Cost int
}

func (ExpenseTerms) kind() CardKind { return ExpenseEvent }

// Card is a drawn event. It is ephemeral: drawn, decided and discarded.
type Card struct {
	ID          string
	Title       string
	Description string
	Terms       Terms
}

// NewDealCard builds a small or big deal card.
func NewDealCard(id, title, desc string, t DealTerms) Card {
	return Card{ID: id, Title: title, Description: desc, Terms: t}
}

// NewMarketCard builds a market event card.
func NewMarketCard(id, title, desc string, t MarketTerms) Card {
	return Card{ID: id, Title: title, Description: desc, Terms: t}
}

// NewExpenseCard builds an expense card.
func NewExpenseCard(id, title, desc string, cost int) Card {
	return Card{ID: id, Title: title, Description: desc, Terms: ExpenseTerms{Cost: cost}}
}

// Kind is derived from the card's terms. A card without terms has no kind.
func (c Card) Kind() CardKind {
	if c.Terms == nil {
		return ""
	}
	return c.Terms.kind()
}

// Deal returns the deal terms, if c is a deal.
func (c Card) Deal() (DealTerms, bool) {
	d, ok := c.Terms.(DealTerms)
	return d, ok
}

// Market returns the market terms, if c is a market event.
func (c Card) Market() (MarketTerms, bool) {
	m, ok := c.Terms.(MarketTerms)
	return m, ok
}

// Expense returns the expense terms, if c is an expense event.
func (c Card) Expense() (ExpenseTerms, bool) {
	e, ok := c.Terms.(ExpenseTerms)
	return e, ok
}

var ErrNoTerms = errors.New("card has no terms")

// Validate checks the card's economics.
func (c Card) Validate() error {
	switch t := c.Terms.(type) {
	case nil:
		return ErrNoTerms
	case DealTerms:
		if t.Cost < 0 || t.DownPayment < 0 {
			return fmt.Errorf("card %q: negative deal price", c.Title)
		}
		if t.DownPayment > t.Cost {
			return fmt.Errorf("card %q: down payment %d exceeds cost %d", c.Title, t.DownPayment, t.Cost)
		}
		if t.RangeLow > t.RangeHigh {
			return fmt.Errorf("card %q: price range %d..%d is inverted", c.Title, t.RangeLow, t.RangeHigh)
		}
	case MarketTerms:
		if t.Symbol == "" {
			return fmt.Errorf("card %q: market event without symbol", c.Title)
		}
		if t.OfferPrice < 0 {
			return fmt.Errorf("card %q: negative offer", c.Title)
		}
	case ExpenseTerms:
		if t.Cost < 0 {
			return fmt.Errorf("card %q: negative expense", c.Title)
		}
	}
	return nil
}
