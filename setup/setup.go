package setup

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/rustyeddy/ratrace/game"
)

const (
	MinPlayers = 1
	MaxPlayers = 6
)

var (
	ErrPlayerCount       = fmt.Errorf("player count must be between %d and %d", MinPlayers, MaxPlayers)
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrUnknownProfession = errors.New("unknown profession")
	ErrUnknownMode       = errors.New("unknown control mode")
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Adjustment is what a difficulty adds to every player's starting sheet.
type Adjustment struct {
	CashBonus   int
	SalaryBonus int
}

var adjustments = map[Difficulty]Adjustment{
	Easy:   {CashBonus: 2000},
	Medium: {CashBonus: 500},
	Hard:   {SalaryBonus: -200},
}

// ParseDifficulty accepts a difficulty name in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := adjustments[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
	return d, nil
}

func (d Difficulty) Adjustment() Adjustment {
	return adjustments[d]
}

// BotNames are handed out to automated seats left unnamed.
var BotNames = []string{"Robert", "Anna", "Warren", "Maria", "Elon", "Olivia", "Jeff", "Elena", "Bill", "Sophia"}

// Seat is one player slot chosen before the game. Profession is optional;
// empty seats are dealt a shuffled profession.
type Seat struct {
	Name       string
	Mode       game.ControlMode
	Profession string
}

// Build deals professions and names to seats and returns one config per
// player, in seat order.
func Build(seats []Seat, d Difficulty, rng *rand.Rand) ([]game.PlayerConfig, error) {
	if len(seats) < MinPlayers || len(seats) > MaxPlayers {
		return nil, fmt.Errorf("%w: got %d", ErrPlayerCount, len(seats))
	}
	adj, ok := adjustments[d]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDifficulty, d)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	deal := append([]Profession(nil), Professions...)
	rng.Shuffle(len(deal), func(i, j int) { deal[i], deal[j] = deal[j], deal[i] })

	out := make([]game.PlayerConfig, 0, len(seats))
	for i, s := range seats {
		if !s.Mode.Valid() {
			return nil, fmt.Errorf("seat %d: %w: %q", i+1, ErrUnknownMode, s.Mode)
		}

		prof := deal[i%len(deal)]
		if s.Profession != "" {
			p, ok := Lookup(s.Profession)
			if !ok {
				return nil, fmt.Errorf("seat %d: %w: %q", i+1, ErrUnknownProfession, s.Profession)
			}
			prof = p
		}

		out = append(out, game.PlayerConfig{
			Name:        seatName(i, s),
			Mode:        s.Mode,
			Profession:  prof.Title,
			Cash:        prof.Savings + adj.CashBonus,
			Salary:      prof.Salary + adj.SalaryBonus,
			Liabilities: Liabilities(prof),
		})
	}
	return out, nil
}

func seatName(i int, s Seat) string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	if s.Mode == game.Automated {
		return BotNames[i%len(BotNames)]
	}
	return fmt.Sprintf("Player %d", i+1)
}
