// Package journal keeps a record of executed trade results.
package journal

import (
	"sync"

	"github.com/FinCodeAI/sol-tx/internal/execution"
)

// Ledger keeps the most recent results in memory for quick inspection.
type Ledger struct {
	mu      sync.Mutex
	results []execution.Result
	next    int
	full    bool
}

// NewLedger creates an empty ledger retaining up to capacity results.
func NewLedger(capacity int) *Ledger {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ledger{results: make([]execution.Result, capacity)}
}

// Record stores a result, evicting the oldest once full.
func (l *Ledger) Record(res execution.Result) {
	l.mu.Lock()
	l.results[l.next] = res
	l.next = (l.next + 1) % len(l.results)
	if l.next == 0 {
		l.full = true
	}
	l.mu.Unlock()
}

// Snapshot returns the retained results, oldest first.
func (l *Ledger) Snapshot() []execution.Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.full {
		out := make([]execution.Result, l.next)
		copy(out, l.results[:l.next])
		return out
	}
	out := make([]execution.Result, 0, len(l.results))
	out = append(out, l.results[l.next:]...)
	out = append(out, l.results[:l.next]...)
	return out
}

// Len reports how many results are retained.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.full {
		return len(l.results)
	}
	return l.next
}

// Reset clears all stored results.
func (l *Ledger) Reset() {
	l.mu.Lock()
	clear(l.results)
	l.next = 0
	l.full = false
	l.mu.Unlock()
}
