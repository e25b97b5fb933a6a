package journal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatEntryOrg(t *testing.T) {
	t.Parallel()

	e := Entry{
		ID:         "evt-01HZX3ABCDEF",
		GameID:     "5f1c2d3e-aaaa-bbbb-cccc-000000000001",
		Time:       time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC),
		Turn:       7,
		PlayerID:   "player-01",
		PlayerName: "Ann",
		Message:    `Ann bought "Condo" for $5,000`,
		Severity:   Success,
	}

	result := FormatEntryOrg(e)

	assert.Contains(t, result, "*** Turn 7: Ann (evt-01HZ)")
	assert.Contains(t, result, ":PROPERTIES:")
	assert.Contains(t, result, ":ID: evt-01HZX3ABCDEF")
	assert.Contains(t, result, ":GAME_ID: 5f1c2d3e-aaaa-bbbb-cccc-000000000001")
	assert.Contains(t, result, ":TIME: 2024-03-15T10:30:45Z")
	assert.Contains(t, result, ":PLAYER_ID: player-01")
	assert.Contains(t, result, ":SEVERITY: success")
	assert.Contains(t, result, ":END:")
	assert.True(t, strings.HasSuffix(result, "Ann bought \"Condo\" for $5,000\n"))
}

func TestFormatEntryOrg_TableEntry(t *testing.T) {
	t.Parallel()

	result := FormatEntryOrg(Entry{ID: "e1", Message: "The game has started.", Severity: Info})

	assert.Contains(t, result, "*** Turn 0: Table (e1)")
	assert.NotContains(t, result, ":PLAYER_ID:")
}

func TestFormatGameOrg(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{ID: "a", GameID: "game-one-long", Message: "one"},
		{ID: "b", GameID: "game-one-long", Message: "two"},
		{ID: "c", GameID: "game-two-long", Message: "three"},
	}

	result := FormatGameOrg(entries)

	assert.Equal(t, 1, strings.Count(result, "** Game game-one"))
	assert.Equal(t, 1, strings.Count(result, "** Game game-two"))
	assert.Equal(t, 3, strings.Count(result, ":PROPERTIES:"))
	assert.Less(t, strings.Index(result, "one"), strings.Index(result, "three"))
	assert.Empty(t, FormatGameOrg(nil))
}
