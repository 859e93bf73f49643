// Package notify delivers rendered notifications to the freedesktop
// notification service (org.freedesktop.Notifications) over the D-Bus
// session bus.
//
// Delivery goes through a Dispatcher that owns the connection lifecycle.
// When the service goes away mid-session (notification daemon restarted,
// session bus hiccup), the dispatcher blocks the processing loop and
// reconnects with a growing, capped backoff rather than dropping the
// message. Every other error drops only the current notification.
package notify
