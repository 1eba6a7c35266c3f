package dispatch

import (
	"sync"
	"time"

	"com.charlotteservicehub.autotext/internal/model"
)

// Ledger tracks the last outbound action per normalized number. Entries are
// advisory: they live in process memory only and reset on restart, so the
// worst case after a crash is one duplicate message.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]time.Time)}
}

// CheckAndReserve atomically checks the cooldown for a number and, when the
// window has passed, reserves it at now. Returns false while the number is
// still cooling down.
func (l *Ledger) CheckAndReserve(number string, now time.Time, window time.Duration) bool {
	normalized := model.NormalizeNumber(number)

	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.entries[normalized]; ok && now.Sub(last) < window {
		return false
	}

	l.entries[normalized] = now
	return true
}

// Reset clears all cooldown state.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string]time.Time)
}
