package journal

import (
	"fmt"
	"io"
)

var markers = map[Severity]string{
	Info:    "*",
	Success: "+",
	Danger:  "!",
	Neutral: "-",
}

// Text writes one human-readable line per entry. Close does not close the
// underlying writer.
type Text struct {
	w io.Writer
}

func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

func (t *Text) Record(e Entry) error {
	m, ok := markers[e.Severity]
	if !ok {
		m = " "
	}
	_, err := fmt.Fprintf(t.w, "[turn %3d] %s %s\n", e.Turn, m, e.Message)
	return err
}

func (t *Text) Close() error { return nil }
