package playback

import "time"

// Interval rate-limits a periodic action. The first Tick always fires.
type Interval struct {
	now  func() time.Time
	last time.Time
	set  bool
}

// NewInterval creates an interval reading the time from now, or time.Now
// when now is nil.
func NewInterval(now func() time.Time) *Interval {
	if now == nil {
		now = time.Now
	}
	return &Interval{now: now}
}

// Tick reports whether at least d elapsed since the last tick that fired.
func (i *Interval) Tick(d time.Duration) bool {
	t := i.now()
	if i.set && t.Sub(i.last) < d {
		return false
	}
	i.last = t
	i.set = true
	return true
}
