package notify

// Notification is a fully rendered, type-coerced notification ready for the
// Notify call. Urgency uses the freedesktop hint values (0=low, 1=normal,
// 2=critical). TimeoutMs follows the wire convention: -1 means server
// default, 0 means never expire. An empty Category sends no category hint.
type Notification struct {
	Title      string
	Body       string
	Icon       string
	Urgency    byte
	TimeoutMs  int32
	Category   string
	ReplacesID uint32
}

// Conn is one live handle to the notification service.
type Conn interface {
	// Notify sends a notification and returns the server-assigned ID.
	Notify(n Notification) (uint32, error)
	Close() error
}

// Dialer establishes a fresh Conn. The dispatcher calls it lazily and again
// after every disconnect.
type Dialer func() (Conn, error)
