package notify

import (
	"fmt"
	"time"

	logx "mqttnotifier/pkg/logx"
)

// State is the dispatcher's connection state.
type State int

const (
	// StateIdle means no service handle exists yet; the first delivery (or
	// an explicit Connect) establishes one.
	StateIdle State = iota
	// StateConnected means a handle exists and the last call on it worked.
	StateConnected
	// StateReconnecting means the service went away and the dispatcher is
	// in its wait-then-redial cycle.
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Dispatcher owns the notification-service connection and the retry policy
// around it.
//
// It is intentionally single-threaded: Deliver blocks its caller, including
// through backoff sleeps, because the processing loop must not race ahead
// of a down notification service. All state lives in plain fields touched
// only by that one caller.
type Dispatcher struct {
	dial     Dialer
	log      logx.Logger
	testMode bool

	// sleep is swapped out by tests to observe backoff without waiting.
	sleep func(time.Duration)

	state   State
	conn    Conn
	backoff Backoff
}

// NewDispatcher builds a dispatcher around dial. With testMode set, Deliver
// only logs and never touches the service or the connection state.
func NewDispatcher(dial Dialer, testMode bool, log logx.Logger) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Dispatcher{
		dial:     dial,
		log:      log,
		testMode: testMode,
		sleep:    time.Sleep,
		state:    StateIdle,
	}
}

// State returns the current connection state.
func (d *Dispatcher) State() State { return d.state }

// BackoffDelay returns the delay the next reconnect wait would use.
func (d *Dispatcher) BackoffDelay() time.Duration { return d.backoff.Delay }

// Connect eagerly establishes the service handle from the idle state, so a
// session can fail fast at startup instead of on the first message. It is a
// no-op when already connected or in test mode.
func (d *Dispatcher) Connect() error {
	if d.testMode || d.state == StateConnected {
		return nil
	}
	conn, err := d.dial()
	if err != nil {
		return fmt.Errorf("connect notification service: %w", err)
	}
	d.conn = conn
	d.state = StateConnected
	d.log.Info("connected to notification service")
	return nil
}

// Deliver sends n, reconnecting for as long as the service stays in the
// unavailable error class. The wait between attempts starts at zero, jumps
// to 1s after the first failure, then grows by 1.5x up to 300s; only a
// successful delivery resets it. Redialing the session bus can succeed
// while the notification service itself is still gone, so dial success
// alone proves nothing. Deliver returns an error only for the
// non-retryable class, in which case n is dropped by the caller.
func (d *Dispatcher) Deliver(n Notification) error {
	d.log.Debug("delivering notification",
		logx.String("title", n.Title),
		logx.String("body", n.Body))
	if d.testMode {
		d.log.Debug("test mode: delivery suppressed")
		return nil
	}

	for {
		switch d.state {
		case StateConnected:
			id, err := d.conn.Notify(n)
			if err == nil {
				d.backoff = Backoff{}
				d.log.Debug("notification sent", logx.Int64("id", int64(id)))
				return nil
			}
			if !IsUnavailable(err) {
				return fmt.Errorf("notify: %w", err)
			}
			d.log.Warn("notification service unavailable, will reconnect", logx.Err(err))
			d.dropConn()
			d.state = StateReconnecting

		case StateIdle, StateReconnecting:
			if d.state == StateReconnecting {
				// Blocking by design: no other message proceeds while the
				// local service is down.
				d.sleep(d.backoff.Delay)
				d.backoff = d.backoff.Next()
			}
			conn, err := d.dial()
			if err != nil {
				if !IsUnavailable(err) {
					return fmt.Errorf("connect notification service: %w", err)
				}
				d.log.Warn("reconnect failed, backing off",
					logx.Err(err),
					logx.Duration("next_delay", d.backoff.Delay))
				d.state = StateReconnecting
				continue
			}
			if d.state == StateReconnecting {
				d.log.Info("reconnected to notification service")
			}
			d.conn = conn
			d.state = StateConnected
		}
	}
}

// Close releases the service handle and returns the dispatcher to idle.
// The backoff survives so a flapping session does not forget its delay.
func (d *Dispatcher) Close() {
	d.dropConn()
	d.state = StateIdle
}

func (d *Dispatcher) dropConn() {
	if d.conn != nil {
		_ = d.conn.Close()
		d.conn = nil
	}
}
