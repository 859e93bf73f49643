package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"

	logx "mqttnotifier/pkg/logx"
)

var errServiceUnknown = dbus.Error{
	Name: "org.freedesktop.DBus.Error.ServiceUnknown",
	Body: []interface{}{"the name org.freedesktop.Notifications was not provided"},
}

// fakeService scripts dial and notify outcomes for the dispatcher.
// A step of nil means success; an error fails that call.
type fakeService struct {
	dialErrs   []error
	notifyErrs []error

	dials    int
	notifies int
	sent     []Notification
}

func (f *fakeService) dialer() Dialer {
	return func() (Conn, error) {
		var err error
		if f.dials < len(f.dialErrs) {
			err = f.dialErrs[f.dials]
		}
		f.dials++
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

func (f *fakeService) Notify(n Notification) (uint32, error) {
	var err error
	if f.notifies < len(f.notifyErrs) {
		err = f.notifyErrs[f.notifies]
	}
	f.notifies++
	if err != nil {
		return 0, err
	}
	f.sent = append(f.sent, n)
	return uint32(len(f.sent)), nil
}

func (f *fakeService) Close() error { return nil }

func newTestDispatcher(f *fakeService) (*Dispatcher, *[]time.Duration) {
	d := NewDispatcher(f.dialer(), false, logx.Nop())
	sleeps := &[]time.Duration{}
	d.sleep = func(delay time.Duration) { *sleeps = append(*sleeps, delay) }
	return d, sleeps
}

func TestDeliverHappyPath(t *testing.T) {
	t.Parallel()
	f := &fakeService{}
	d, sleeps := newTestDispatcher(f)

	if d.State() != StateIdle {
		t.Fatalf("fresh dispatcher state = %v, want idle", d.State())
	}
	if err := d.Deliver(Notification{Title: "hi"}); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if d.State() != StateConnected {
		t.Errorf("state = %v, want connected after lazy connect", d.State())
	}
	if f.dials != 1 || len(f.sent) != 1 {
		t.Errorf("dials = %d, sent = %d, want 1/1", f.dials, len(f.sent))
	}
	if len(*sleeps) != 0 {
		t.Errorf("slept %v on the happy path", *sleeps)
	}
}

func TestDeliverBackoffProgression(t *testing.T) {
	t.Parallel()
	// First delivery fails, then two reconnects fail, then the service is
	// back: waits must be 0, 1s, 1.5s, and the delay must read 0 afterwards.
	f := &fakeService{
		notifyErrs: []error{errServiceUnknown},
		dialErrs:   []error{nil, errServiceUnknown, errServiceUnknown, nil},
	}
	d, sleeps := newTestDispatcher(f)

	if err := d.Deliver(Notification{Title: "hi"}); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	want := []time.Duration{0, 1 * time.Second, 1500 * time.Millisecond}
	if len(*sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", *sleeps, want)
	}
	for i := range want {
		if (*sleeps)[i] != want[i] {
			t.Errorf("sleep[%d] = %v, want %v", i, (*sleeps)[i], want[i])
		}
	}
	if d.BackoffDelay() != 0 {
		t.Errorf("backoff after success = %v, want 0", d.BackoffDelay())
	}
	if len(f.sent) != 1 {
		t.Errorf("sent = %d, want the original delivery retried once", len(f.sent))
	}
	if d.State() != StateConnected {
		t.Errorf("state = %v, want connected", d.State())
	}
}

func TestDeliverBackoffGrowsWhileDialSucceeds(t *testing.T) {
	t.Parallel()
	// The session bus answering the dial says nothing about the notification
	// service itself: Notify keeps failing even though every redial works.
	// The waits must still grow instead of busy-looping at zero.
	f := &fakeService{
		notifyErrs: []error{errServiceUnknown, errServiceUnknown, errServiceUnknown},
	}
	d, sleeps := newTestDispatcher(f)

	if err := d.Deliver(Notification{Title: "hi"}); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	want := []time.Duration{0, 1 * time.Second, 1500 * time.Millisecond}
	if len(*sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", *sleeps, want)
	}
	for i := range want {
		if (*sleeps)[i] != want[i] {
			t.Errorf("sleep[%d] = %v, want %v", i, (*sleeps)[i], want[i])
		}
	}
	if f.dials != 4 {
		t.Errorf("dials = %d, want a redial per failed attempt", f.dials)
	}
	if d.BackoffDelay() != 0 {
		t.Errorf("backoff after delivery = %v, want 0", d.BackoffDelay())
	}
	if len(f.sent) != 1 {
		t.Errorf("sent = %d, want 1", len(f.sent))
	}
}

func TestDeliverOtherErrorDropsNotification(t *testing.T) {
	t.Parallel()
	f := &fakeService{
		notifyErrs: []error{dbus.Error{Name: "org.freedesktop.DBus.Error.InvalidArgs"}},
	}
	d, sleeps := newTestDispatcher(f)

	err := d.Deliver(Notification{Title: "bad"})
	if err == nil {
		t.Fatal("Deliver = nil, want the non-retryable error surfaced")
	}
	if len(*sleeps) != 0 {
		t.Errorf("slept %v, non-retryable errors must not back off", *sleeps)
	}
	if f.dials != 1 {
		t.Errorf("dials = %d, want no reconnect", f.dials)
	}

	// The dispatcher must keep working for the next message.
	if err := d.Deliver(Notification{Title: "next"}); err != nil {
		t.Fatalf("Deliver after drop: %v", err)
	}
}

func TestDeliverTestMode(t *testing.T) {
	t.Parallel()
	f := &fakeService{}
	d := NewDispatcher(f.dialer(), true, logx.Nop())

	if err := d.Deliver(Notification{Title: "hi"}); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if f.dials != 0 || f.notifies != 0 {
		t.Errorf("test mode touched the service: dials=%d notifies=%d", f.dials, f.notifies)
	}
	if d.State() != StateIdle {
		t.Errorf("state = %v, test mode must not transition", d.State())
	}
}

func TestConnectEager(t *testing.T) {
	t.Parallel()
	f := &fakeService{}
	d, _ := newTestDispatcher(f)

	if err := d.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if d.State() != StateConnected || f.dials != 1 {
		t.Errorf("state = %v, dials = %d", d.State(), f.dials)
	}
	// Idempotent.
	if err := d.Connect(); err != nil {
		t.Fatalf("second Connect: %v", err)
	}
	if f.dials != 1 {
		t.Errorf("second Connect dialed again (dials = %d)", f.dials)
	}
}

func TestBackoffProgression(t *testing.T) {
	t.Parallel()
	b := Backoff{}
	want := []time.Duration{
		1 * time.Second,
		1500 * time.Millisecond,
		2250 * time.Millisecond,
	}
	for i, w := range want {
		b = b.Next()
		if b.Delay != w {
			t.Fatalf("step %d = %v, want %v", i, b.Delay, w)
		}
	}

	for i := 0; i < 50; i++ {
		b = b.Next()
	}
	if b.Delay != 300*time.Second {
		t.Errorf("capped delay = %v, want 300s", b.Delay)
	}
}

func TestIsUnavailable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errServiceUnknown, true},
		{dbus.Error{Name: "org.freedesktop.DBus.Error.NoReply"}, true},
		{dbus.Error{Name: "org.freedesktop.DBus.Error.Disconnected"}, true},
		{dbus.Error{Name: "org.freedesktop.DBus.Error.NameHasNoOwner"}, true},
		{dbus.Error{Name: "org.freedesktop.DBus.Error.InvalidArgs"}, false},
		{dbus.ErrClosed, true},
		{errors.New("plain"), false},
	}
	for _, tt := range tests {
		if got := IsUnavailable(tt.err); got != tt.want {
			t.Errorf("IsUnavailable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
