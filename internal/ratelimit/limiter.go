// Package ratelimit provides per-identifier sliding-window admission control.
package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindow admits up to limit events per identifier within a trailing
// window. State is local to one relay instance; it deliberately provides no
// global guarantee under horizontal scaling.
type SlidingWindow struct {
	mu     sync.Mutex
	window time.Duration
	limit  int
	events map[string][]time.Time
}

// NewSlidingWindow creates a limiter with the given window length and cap.
func NewSlidingWindow(window time.Duration, limit int) *SlidingWindow {
	return &SlidingWindow{
		window: window,
		limit:  limit,
		events: make(map[string][]time.Time),
	}
}

// Admit prunes timestamps older than now-window, then either rejects
// without recording (cap reached) or records now and accepts.
func (l *SlidingWindow) Admit(uid string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	kept := l.events[uid][:0]
	for _, t := range l.events[uid] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.limit {
		l.events[uid] = kept
		return false
	}

	l.events[uid] = append(kept, now)
	return true
}

// Clear drops all recorded state for uid. Called on disconnect so the map
// stays bounded by the number of identifiers seen since their last session.
func (l *SlidingWindow) Clear(uid string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.events, uid)
}
