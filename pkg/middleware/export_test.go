package middleware

import "time"

// SetClock replaces the limiter's time source.
func SetClock(l *KeyedLimiter, now func() time.Time) {
	l.now = now
}

// Visitors returns the number of keys the limiter tracks.
func Visitors(l *KeyedLimiter) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}
