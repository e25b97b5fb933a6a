package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatEntryOrg renders one narration entry as an Org-mode heading with
// its facts in a PROPERTIES drawer.
func FormatEntryOrg(e Entry) string {
	who := e.PlayerName
	if who == "" {
		who = "Table"
	}
	heading := fmt.Sprintf("*** Turn %d: %s (%s)", e.Turn, who, shortID(e.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ID: %s\n", e.ID))
	b.WriteString(fmt.Sprintf(":GAME_ID: %s\n", e.GameID))
	b.WriteString(fmt.Sprintf(":TIME: %s\n", e.Time.UTC().Format(time.RFC3339)))
	if e.PlayerID != "" {
		b.WriteString(fmt.Sprintf(":PLAYER_ID: %s\n", e.PlayerID))
	}
	b.WriteString(fmt.Sprintf(":SEVERITY: %s\n", e.Severity))
	b.WriteString(":END:\n")
	b.WriteString(e.Message)
	b.WriteString("\n")
	return b.String()
}

// FormatGameOrg renders entries under a heading per game, in the order
// given.
func FormatGameOrg(entries []Entry) string {
	var b strings.Builder
	game := ""
	for i, e := range entries {
		if i == 0 || e.GameID != game {
			if i > 0 {
				b.WriteString("\n")
			}
			game = e.GameID
			b.WriteString(fmt.Sprintf("** Game %s\n", shortID(game)))
		}
		b.WriteString(FormatEntryOrg(e))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
