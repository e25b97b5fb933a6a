package game

// SpaceKind is what happens when a player lands on a space.
type SpaceKind string

const (
	PaydaySpace     SpaceKind = "payday"
	DealSpace       SpaceKind = "deal-opportunity"
	ExpenseSpace    SpaceKind = "expense-event"
	CharitySpace    SpaceKind = "charity"
	ChildbirthSpace SpaceKind = "childbirth"
	LayoffSpace     SpaceKind = "layoff"
	MarketSpace     SpaceKind = "market-event"
)

// Valid reports whether k is a known space kind.
func (k SpaceKind) Valid() bool {
	switch k {
	case PaydaySpace, DealSpace, ExpenseSpace, CharitySpace, ChildbirthSpace, LayoffSpace, MarketSpace:
		return true
	}
	return false
}

// BoardSpace is one immutable square of the cyclic board.
type BoardSpace struct {
	Index int
	Kind  SpaceKind
	Label string
}
