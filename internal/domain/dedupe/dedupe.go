// Package dedupe normalizes names and tracks which ones have been seen.
package dedupe

import (
	"strings"

	"golang.org/x/text/cases"
)

// Normalize trims surrounding whitespace and case-folds s so that two names
// compare equal exactly when a player would consider them the same guess.
func Normalize(s string) string {
	// cases.Caser keeps state between calls and must not be shared.
	return cases.Fold().String(strings.TrimSpace(s))
}

// Equal reports whether a and b normalize to the same name.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Deduper records normalized names to detect repeats.
type Deduper interface {
	// SeenAndRecord checks if name was seen and records it if not.
	// Returns true if name was already seen, false if it was newly recorded.
	SeenAndRecord(name string) bool

	// Seen reports whether name was recorded, without recording it.
	Seen(name string) bool

	Size() int
}

// inMemoryDeduper implements Deduper with a map keyed by normalized name.
// It is not safe for concurrent use; owners serialize access.
type inMemoryDeduper struct {
	seen     map[string]struct{}
	capacity int
}

// New creates an empty Deduper with configuration options.
func New(opts ...Option) Deduper {
	d := &inMemoryDeduper{}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{}, d.capacity)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(name string) bool {
	key := Normalize(name)
	if _, exists := d.seen[key]; exists {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Seen(name string) bool {
	_, exists := d.seen[Normalize(name)]
	return exists
}

func (d *inMemoryDeduper) Size() int {
	return len(d.seen)
}
