package app

import (
	"math"
	"runtime/debug"
	"time"

	"golang.org/x/time/rate"

	"mqttnotifier/internal/format"
	"mqttnotifier/internal/message"
	"mqttnotifier/internal/notify"
	"mqttnotifier/internal/template"
	logx "mqttnotifier/pkg/logx"
)

// Deliverer is the dispatcher as the orchestrator sees it.
type Deliverer interface {
	Deliver(n notify.Notification) error
}

// Orchestrator runs the per-message pipeline: parse, resolve, merge,
// render, coerce, deliver. One instance serves one session; it holds only
// read-only state plus the dispatcher, and is driven from the transport's
// single delivery goroutine.
type Orchestrator struct {
	registry *format.Registry
	def      format.Entry
	disp     Deliverer
	log      logx.Logger

	// Unmatched topics are allowed (wildcard subscriptions), so the warning
	// is throttled rather than emitted per message.
	unmatchedWarn *rate.Limiter
}

func NewOrchestrator(registry *format.Registry, def format.Entry, disp Deliverer, log logx.Logger) *Orchestrator {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Orchestrator{
		registry:      registry,
		def:           def,
		disp:          disp,
		log:           log,
		unmatchedWarn: rate.NewLimiter(rate.Every(10*time.Second), 5),
	}
}

// HandleMessage processes one inbound message. It never panics outward: a
// failure in one message's pipeline is logged and the loop moves on.
func (o *Orchestrator) HandleMessage(topic string, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("message pipeline panicked",
				logx.String("topic", topic),
				logx.Any("panic", r),
				logx.Stack(string(debug.Stack())))
		}
	}()

	parsed := message.Parse(topic, payload)
	o.log.Debug("received message",
		logx.String("topic", topic),
		logx.String("payload", parsed.Raw))

	entry, ok := o.registry.Resolve(topic)
	if !ok && o.unmatchedWarn.Allow() {
		o.log.Warn("no format matches topic, using defaults", logx.String("topic", topic))
	}
	merged := format.Merge(o.def, entry)

	vars := template.Vars(parsed.Title, topic, parsed.Body)

	title, err := template.Render(merged.GetTitle(), vars)
	if err != nil {
		o.log.Error("title template failed, dropping message",
			logx.String("topic", topic), logx.Err(err))
		return
	}
	body, err := template.Render(merged.GetBody(), vars)
	if err != nil {
		o.log.Error("body template failed, dropping message",
			logx.String("topic", topic), logx.Err(err))
		return
	}

	if merged.GetMuted() {
		o.log.Debug("topic muted, skipping delivery",
			logx.String("topic", topic),
			logx.String("title", title))
		return
	}

	icon, err := template.Render(merged.GetIcon(), vars)
	if err != nil {
		o.log.Error("icon template failed, dropping message",
			logx.String("topic", topic), logx.Err(err))
		return
	}

	n := notify.Notification{
		Title:     title,
		Body:      body,
		Icon:      icon,
		Urgency:   merged.GetUrgency().Level(),
		TimeoutMs: timeoutMs(merged.GetTimeout(5)),
	}
	if merged.Category != nil {
		n.Category = *merged.Category
	}

	if err := o.disp.Deliver(n); err != nil {
		o.log.Error("notification failed, dropping",
			logx.String("topic", topic), logx.Err(err))
		return
	}
	o.log.Debug("notification handled", logx.String("topic", topic))
}

// timeoutMs converts a timeout in seconds to the wire's millisecond field.
// The field is a signed 32-bit integer where negative values mean "server
// default", so out-of-range products are clamped instead of wrapping.
func timeoutMs(sec float64) int32 {
	ms := sec * 1000
	if ms <= 0 {
		return 0
	}
	if ms >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(ms)
}
