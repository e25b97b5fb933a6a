package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) Record(e Entry) error {
	_, err := j.db.Exec(`
		INSERT INTO events
		(id, game_id, time, turn, player_id, player_name, severity, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.GameID, e.Time, e.Turn, e.PlayerID, e.PlayerName, string(e.Severity), e.Message,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
