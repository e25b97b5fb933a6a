package journal

import (
	"database/sql"
	"fmt"
)

const selectEvents = `
	SELECT id, game_id, time, turn, player_id, player_name, severity, message
	FROM events`

// Get returns a single entry by ID.
func (j *SQLite) Get(id string) (Entry, error) {
	row := j.db.QueryRow(selectEvents+` WHERE id = ?`, id)

	e, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, fmt.Errorf("entry %q not found", id)
		}
		return Entry{}, err
	}
	return e, nil
}

// ListByTurn returns the entries of one turn of a game in the order they
// were recorded.
func (j *SQLite) ListByTurn(gameID string, turn int) ([]Entry, error) {
	rows, err := j.db.Query(selectEvents+`
		WHERE game_id = ? AND turn = ?
		ORDER BY time ASC, rowid ASC`, gameID, turn)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ListByGame returns every entry of a game, oldest first.
func (j *SQLite) ListByGame(gameID string) ([]Entry, error) {
	rows, err := j.db.Query(selectEvents+`
		WHERE game_id = ?
		ORDER BY time ASC, rowid ASC`, gameID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// Recent returns the latest entries across all games, newest first.
func (j *SQLite) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultRingSize
	}
	rows, err := j.db.Query(selectEvents+`
		ORDER BY time DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e   Entry
		sev string
	)
	err := s.Scan(
		&e.ID,
		&e.GameID,
		&e.Time,
		&e.Turn,
		&e.PlayerID,
		&e.PlayerName,
		&sev,
		&e.Message,
	)
	e.Severity = Severity(sev)
	return e, err
}

func collect(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
