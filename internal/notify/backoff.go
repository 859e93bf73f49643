package notify

import "time"

const (
	backoffFloor  = 1 * time.Second
	backoffFactor = 1.5
	backoffCap    = 300 * time.Second
)

// Backoff is the reconnect delay as a value: the zero value is "no delay",
// and Next derives the following step without mutation. The dispatcher
// threads it through its state transitions.
type Backoff struct {
	Delay time.Duration
}

// Next returns the grown backoff: 0 becomes the 1s floor, anything else is
// multiplied by 1.5 and capped at 300s.
func (b Backoff) Next() Backoff {
	if b.Delay <= 0 {
		return Backoff{Delay: backoffFloor}
	}
	d := time.Duration(float64(b.Delay) * backoffFactor)
	if d > backoffCap {
		d = backoffCap
	}
	return Backoff{Delay: d}
}
