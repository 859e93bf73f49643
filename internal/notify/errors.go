package notify

import (
	"errors"

	"github.com/godbus/dbus/v5"
)

// D-Bus error names that mean the notification service itself is gone or
// unresponsive. These are the only errors worth a reconnect: the service is
// a local daemon and is expected to come back.
var unavailableNames = map[string]struct{}{
	"org.freedesktop.DBus.Error.ServiceUnknown": {},
	"org.freedesktop.DBus.Error.NameHasNoOwner": {},
	"org.freedesktop.DBus.Error.NoReply":        {},
	"org.freedesktop.DBus.Error.Disconnected":   {},
}

// IsUnavailable reports whether err is in the service-unavailable class:
// retry with backoff instead of dropping the notification.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, dbus.ErrClosed) {
		return true
	}
	// godbus surfaces remote errors as dbus.Error values; some paths hand
	// out pointers. Accept either.
	var derr dbus.Error
	if errors.As(err, &derr) {
		_, ok := unavailableNames[derr.Name]
		return ok
	}
	var perr *dbus.Error
	if errors.As(err, &perr) && perr != nil {
		_, ok := unavailableNames[perr.Name]
		return ok
	}
	return false
}
