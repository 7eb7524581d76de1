package generator

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces a new value on every call, e.g. panel IDs and
// object keys.
type Generator[T any] interface {
	Next() (T, error)
}

// UUIDV4Generator produces UUIDv4 strings.
type UUIDV4Generator struct{}

func (g *UUIDV4Generator) Next() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

var _ Generator[string] = &UUIDV4Generator{}

// ShortIDGenerator trims UUIDs to their hex digits so they fit in a
// component custom ID next to the action name.
type ShortIDGenerator struct {
	UUIDV4Generator
}

func (g *ShortIDGenerator) Next() (string, error) {
	id, err := g.UUIDV4Generator.Next()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(id, "-", ""), nil
}

var _ Generator[string] = &ShortIDGenerator{}

// SequenceGenerator yields Prefix followed by 1, 2, 3... It is
// deterministic and meant for tests.
type SequenceGenerator struct {
	Prefix  string
	counter atomic.Uint64
}

func (g *SequenceGenerator) Next() (string, error) {
	n := g.counter.Add(1)
	return g.Prefix + strconv.FormatUint(n, 10), nil
}

var _ Generator[string] = &SequenceGenerator{}
