package ingest

import "time"

// ReconnectPolicy computes the delay before the next reconnect attempt:
// min(base * 2^attempts, cap). Attempts reset to zero on a successful
// connect and are otherwise unbounded.
type ReconnectPolicy struct {
	Base time.Duration
	Cap  time.Duration

	attempts int
}

// NextDelay returns the delay for the current attempt and advances the
// attempt counter.
func (p *ReconnectPolicy) NextDelay() time.Duration {
	d := p.delayFor(p.attempts)
	p.attempts++
	return d
}

// delayFor computes the delay for the n-th consecutive failure.
func (p *ReconnectPolicy) delayFor(n int) time.Duration {
	// Past ~30 doublings any sane base has exceeded any sane cap.
	if n > 30 {
		return p.Cap
	}
	d := p.Base << uint(n)
	if d > p.Cap || d <= 0 {
		return p.Cap
	}
	return d
}

// Reset clears the attempt counter after a successful connect.
func (p *ReconnectPolicy) Reset() {
	p.attempts = 0
}

// Attempts reports the number of consecutive failures so far.
func (p *ReconnectPolicy) Attempts() int {
	return p.attempts
}
