// Package journal records the narration of a game: ordered, timestamped,
// severity-tagged entries for every player-visible transition.
package journal

import (
	"errors"
	"time"
)

// Severity tags how an entry is presented.
type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Danger  Severity = "danger"
	Neutral Severity = "neutral"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case Info, Success, Danger, Neutral:
		return true
	}
	return false
}

// Entry is one narration line. PlayerID and PlayerName are empty for
// game-level entries.
type Entry struct {
	ID         string
	GameID     string
	Time       time.Time
	Turn       int
	PlayerID   string
	PlayerName string
	Message    string
	Severity   Severity
}

type Journal interface {
	Record(Entry) error
	Close() error
}

// Multi fans every entry out to all of its journals. Record and Close
// visit every member and join the errors.
type Multi []Journal

func (m Multi) Record(e Entry) error {
	var errs []error
	for _, j := range m {
		if err := j.Record(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, j := range m {
		if err := j.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every entry.
var Discard Journal = discard{}

type discard struct{}

func (discard) Record(Entry) error { return nil }
func (discard) Close() error       { return nil }
