package cards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/ratrace/game"
	"github.com/rustyeddy/ratrace/internal/id"
)

// DefaultTimeout bounds a single primary provider call.
const DefaultTimeout = 5 * time.Second

var ErrWrongKind = errors.New("provider returned a card of the wrong kind")

// Fallback asks Primary for a card and falls back to Local on error,
// timeout, an invalid card or a card of the wrong kind. With a Local that
// never fails (a validated Deck), RequestCard always yields a card.
type Fallback struct {
	Primary Provider
	Local   Provider
	Timeout time.Duration

	// OnFailure, when set, is called with the primary's error before the
	// local card is drawn.
	OnFailure func(kind game.CardKind, err error)
}

// RequestCard implements Provider.
func (f *Fallback) RequestCard(ctx context.Context, kind game.CardKind) (game.Card, error) {
	if f.Primary != nil {
		c, err := f.primary(ctx, kind)
		if err == nil {
			return c, nil
		}
		if f.OnFailure != nil {
			f.OnFailure(kind, err)
		}
	}
	if f.Local == nil {
		return game.Card{}, fmt.Errorf("no local deck for %s", kind)
	}
	return f.Local.RequestCard(ctx, kind)
}

type result struct {
	card game.Card
	err  error
}

// primary runs the call in its own goroutine so a provider that ignores
// its context still cannot hold the caller past the timeout.
func (f *Fallback) primary(ctx context.Context, kind game.CardKind) (game.Card, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan result, 1)
	go func() {
		c, err := f.Primary.RequestCard(ctx, kind)
		ch <- result{card: c, err: err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return game.Card{}, fmt.Errorf("request %s card: %w", kind, ctx.Err())
	case r = <-ch:
	}
	if r.err != nil {
		return game.Card{}, fmt.Errorf("request %s card: %w", kind, r.err)
	}
	if err := r.card.Validate(); err != nil {
		return game.Card{}, fmt.Errorf("request %s card: %w", kind, err)
	}
	if got := r.card.Kind(); got != kind {
		return game.Card{}, fmt.Errorf("%w: want %s, got %s", ErrWrongKind, kind, got)
	}
	if r.card.ID == "" {
		r.card.ID = id.Prefixed(string(kind))
	}
	return r.card, nil
}
