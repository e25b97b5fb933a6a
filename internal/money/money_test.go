package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloorMul(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		amount int
		rate   string
		want   int
	}{
		{"tax", 4000, "0.2", 800},
		{"mortgage", 143000, "0.007", 1001},
		{"school", 150000, "0.005", 750},
		{"retail", 1000, "0.05", 50},
		{"fractional floors", 3333, "0.2", 666},
		{"zero", 0, "0.03", 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FloorMul(tt.amount, MustRate(tt.rate)))
		})
	}
}

func TestParseRate(t *testing.T) {
	t.Parallel()

	r, err := ParseRate("0.25")
	require.NoError(t, err)
	assert.Equal(t, 250, FloorMul(1000, r))

	_, err = ParseRate("a quarter")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "$0", Format(0))
	assert.Equal(t, "$3,100", Format(3100))
	assert.Equal(t, "$135,000", Format(135000))
	assert.Equal(t, "-$900", Format(-900))
}
