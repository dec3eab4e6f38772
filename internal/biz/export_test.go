package biz

import "time"

// SetKeySource replaces the random key source.
func (g *KeyGenerator) SetKeySource(f func(alphabet string, size int) (string, error)) {
	g.newKey = f
}

// SetClock replaces the clock used for visit timestamps.
func (r *Redirector) SetClock(now func() time.Time) {
	r.now = now
}
