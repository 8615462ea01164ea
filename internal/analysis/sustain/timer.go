package sustain

import "time"

// Timer tracks the start of a continuously true condition.
// The zero value is an idle timer.
type Timer struct {
	// since is when the condition became true.
	since time.Time
	// active reports whether the condition currently holds.
	active bool
}

// Observe records the condition at now and returns how long it has held.
// A false condition resets the timer and returns 0.
func (t *Timer) Observe(condition bool, now time.Time) time.Duration {
	if !condition {
		t.Reset()

		return 0
	}

	if !t.active {
		t.since = now
		t.active = true
	}

	return t.Elapsed(now)
}

// Elapsed returns how long the condition has held at now, or 0 when idle.
func (t *Timer) Elapsed(now time.Time) time.Duration {
	if !t.active {
		return 0
	}

	if elapsed := now.Sub(t.since); elapsed > 0 {
		return elapsed
	}

	return 0
}

// Sustained reports whether the condition has held for at least threshold at now.
func (t *Timer) Sustained(now time.Time, threshold time.Duration) bool {
	return t.active && t.Elapsed(now) >= threshold
}

// Active reports whether the condition currently holds.
func (t *Timer) Active() bool {
	return t.active
}

// Reset returns the timer to idle.
func (t *Timer) Reset() {
	t.since = time.Time{}
	t.active = false
}
