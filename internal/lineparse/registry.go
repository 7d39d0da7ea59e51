// Package lineparse provides a line recognizer registry for classifying the
// lines of a booking-option block.
package lineparse

import (
	"sort"
	"sync"
	"time"
)

// Line is one trimmed line of an option block, plus the reference clock used
// for year-rollover date resolution. Freezing Now makes parsing idempotent.
type Line struct {
	Text string
	Now  time.Time
}

// Result is the common interface for all line parse results.
type Result interface {
	Kind() string // e.g. "segment", "fare", "payment", "baggage"
}

// Parser is implemented by each line recognizer.
type Parser interface {
	// Name returns the parser's unique identifier.
	Name() string

	// QuickCheck performs a fast string check before expensive regex.
	// Returns true if the line MIGHT be parseable (false = definitely skip).
	// This should use strings.Contains/HasPrefix, NOT regex.
	QuickCheck(text string) bool

	// Priority determines dispatch order. Lower number = checked first.
	// Cheaper and more specific recognizers should have lower priority.
	Priority() int

	// Parse attempts to parse the line, returns nil if not applicable.
	Parse(line *Line) Result
}

// Registry holds all registered line parsers, sorted for dispatch.
type Registry struct {
	mu      sync.RWMutex
	parsers []Parser
	sorted  bool
}

// New creates a new Registry instance.
func New() *Registry {
	return &Registry{}
}

// Global default registry.
var defaultRegistry = New()

// Default returns the global registry instance.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a parser to the default registry.
// Called during init() in each parser package.
func Register(p Parser) {
	defaultRegistry.Register(p)
}

// Register adds a parser to the registry.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers = append(r.parsers, p)
	r.sorted = false
}

// Sort sorts the parsers by priority. Call before dispatching.
func (r *Registry) Sort() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sorted {
		return
	}
	sort.SliceStable(r.parsers, func(i, j int) bool {
		return r.parsers[i].Priority() < r.parsers[j].Priority()
	})
	r.sorted = true
}

// Dispatch routes a line through the parsers in priority order and returns
// the first successful result. A nil result means no recognizer claimed the
// line; callers treat such lines as free-text notes rather than errors.
func (r *Registry) Dispatch(line *Line) Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.parsers {
		if !p.QuickCheck(line.Text) {
			continue
		}
		if result := p.Parse(line); result != nil {
			return result
		}
	}
	return nil
}
