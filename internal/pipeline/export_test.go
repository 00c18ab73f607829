package pipeline

import "time"

// SetBackoff overrides the initial retry delay so tests do not sleep.
func (p *Pipeline) SetBackoff(d time.Duration) {
	p.backoff = d
}
