// Package id hands out time-sortable identifiers for players, holdings,
// drawn cards and journal entries.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator produces monotonic ULIDs. The zero value is not usable; use
// NewGenerator.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewGenerator returns a Generator drawing entropy from the given seed.
// A zero seed is replaced with one read from crypto/rand.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// New returns a fresh ULID string.
func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, err := ulid.New(ulid.Timestamp(g.now()), g.entropy)
	if err != nil {
		// Only reachable if the monotonic entropy overflows within one
		// millisecond.
		panic(err)
	}
	return v.String()
}

// Prefixed returns a ULID tagged with a lower-case kind, e.g. "asset_01H…".
func (g *Generator) Prefixed(kind string) string {
	return strings.ToLower(kind) + "_" + g.New()
}

var std = NewGenerator(0)

// New returns a ULID from the package generator.
func New() string { return std.New() }

// Prefixed returns a kind-tagged ULID from the package generator.
func Prefixed(kind string) string { return std.Prefixed(kind) }
