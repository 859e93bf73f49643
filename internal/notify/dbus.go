package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod = "org.freedesktop.Notifications.Notify"
)

// sessionConn is a Conn backed by a private session-bus connection.
// Private (rather than the shared dbus.SessionBus handle) so a reconnect
// really is a fresh connection instead of a cached dead one.
type sessionConn struct {
	conn    *dbus.Conn
	obj     dbus.BusObject
	appName string
}

// SessionDialer returns a Dialer that connects to the session bus and
// targets the org.freedesktop.Notifications object. appName is reported to
// the notification server as the sending application.
func SessionDialer(appName string) Dialer {
	return func() (Conn, error) {
		conn, err := dbus.SessionBusPrivate()
		if err != nil {
			return nil, fmt.Errorf("session bus: %w", err)
		}
		if err := conn.Auth(nil); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("session bus auth: %w", err)
		}
		if err := conn.Hello(); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("session bus hello: %w", err)
		}
		return &sessionConn{
			conn:    conn,
			obj:     conn.Object(notifyDest, notifyPath),
			appName: appName,
		}, nil
	}
}

func (c *sessionConn) Notify(n Notification) (uint32, error) {
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(n.Urgency),
	}
	if n.Category != "" {
		hints["category"] = dbus.MakeVariant(n.Category)
	}

	call := c.obj.Call(notifyMethod, 0,
		c.appName,
		n.ReplacesID,
		n.Icon,
		n.Title,
		n.Body,
		[]string{}, // actions
		hints,
		n.TimeoutMs,
	)
	if call.Err != nil {
		return 0, call.Err
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (c *sessionConn) Close() error { return c.conn.Close() }
