package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

var csvHeader = []string{"id", "game_id", "time", "turn", "player_id", "player_name", "severity", "message"}

type CSV struct {
	w *csv.Writer
	f *os.File
}

// NewCSV creates (or truncates) path and writes the header row.
func NewCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create journal csv: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return nil, err
	}

	return &CSV{w: w, f: f}, nil
}

func (j *CSV) Record(e Entry) error {
	err := j.w.Write([]string{
		e.ID,
		e.GameID,
		e.Time.Format(time.RFC3339Nano),
		strconv.Itoa(e.Turn),
		e.PlayerID,
		e.PlayerName,
		string(e.Severity),
		e.Message,
	})
	if err != nil {
		return err
	}

	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		_ = j.f.Close()
		return err
	}
	return j.f.Close()
}
