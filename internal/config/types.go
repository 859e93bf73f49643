package config

import (
	"fmt"
	"strings"

	"mqttnotifier/internal/format"
)

type Config struct {
	Broker       BrokerConfig       `yaml:"broker"`
	Notification NotificationConfig `yaml:"notification"`
	Logging      LoggingConfig      `yaml:"logging"`

	// RestartDelay is a Go duration string (e.g. "0s", "5s") applied between
	// session restarts after an uncaught session failure. 0 restarts
	// immediately and is logged as a warning at startup.
	RestartDelay string `yaml:"restart_delay"`

	// Formats maps topic filters to format entries. Declaration order is
	// significant: resolution returns the first matching filter, so broad
	// patterns declared early shadow specific ones declared later.
	Formats FormatList `yaml:"formats"`
}

type BrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	ClientID string `yaml:"client_id"`
}

// Addr returns the paho broker URL.
func (b BrokerConfig) Addr() string {
	return fmt.Sprintf("tcp://%s:%d", b.Host, b.Port)
}

type NotificationConfig struct {
	// AppName is reported to the notification server as the sending
	// application.
	AppName string `yaml:"app_name"`
	// Duration is the default notification display time in seconds, used
	// when a format entry sets no timeout of its own.
	Duration float64 `yaml:"duration"`
}

type LoggingConfig struct {
	Level   string       `yaml:"level"`
	Console *bool        `yaml:"console"` // nil means true
	Syslog  SyslogConfig `yaml:"syslog"`
	File    FileConfig   `yaml:"file"`
}

type SyslogConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Tag        string `yaml:"tag"`
	MinLevel   string `yaml:"min_level"`
	RatePerSec int    `yaml:"rate_per_sec"`
}

type FileConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// FormatEntry is the on-disk shape of one format. Pointer fields keep the
// unset/explicit distinction that drives the merge over the default format.
type FormatEntry struct {
	Title    *string  `yaml:"title"`
	Body     *string  `yaml:"body"`
	Icon     *string  `yaml:"icon"`
	Urgency  *string  `yaml:"urgency"`
	Muted    *bool    `yaml:"muted"`
	Timeout  *float64 `yaml:"timeout"`
	Category *string  `yaml:"category"`
}

// Domain converts the on-disk entry into the registry's entry type.
func (f FormatEntry) Domain() (format.Entry, error) {
	e := format.Entry{
		Title:    f.Title,
		Body:     f.Body,
		Icon:     f.Icon,
		Muted:    f.Muted,
		Timeout:  f.Timeout,
		Category: f.Category,
	}
	if f.Urgency != nil {
		u, err := format.ParseUrgency(*f.Urgency)
		if err != nil {
			return format.Entry{}, err
		}
		e.Urgency = &u
	}
	return e, nil
}

// NamedFormat pairs a topic filter with its entry, in declaration order.
type NamedFormat struct {
	Pattern string
	Entry   FormatEntry
}

// FormatList is an order-preserving formats section.
type FormatList []NamedFormat

// Patterns converts the list to registry patterns, validating urgency
// values along the way. Filter validation happens in the registry itself.
func (l FormatList) Patterns() ([]format.Pattern, error) {
	out := make([]format.Pattern, 0, len(l))
	for _, nf := range l {
		e, err := nf.Entry.Domain()
		if err != nil {
			return nil, fmt.Errorf("format %q: %w", nf.Pattern, err)
		}
		out = append(out, format.Pattern{Filter: nf.Pattern, Entry: e})
	}
	return out, nil
}

// Normalize fills defaults in place.
func (c *Config) Normalize() {
	if strings.TrimSpace(c.Broker.Host) == "" {
		c.Broker.Host = "localhost"
	}
	if c.Broker.Port == 0 {
		c.Broker.Port = 1883
	}
	if strings.TrimSpace(c.Notification.AppName) == "" {
		c.Notification.AppName = "mqtt"
	}
	if c.Notification.Duration <= 0 {
		c.Notification.Duration = 5
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
}

// Validate rejects configs the core could not run with.
func (c *Config) Validate() error {
	if c.Broker.Port < 1 || c.Broker.Port > 65535 {
		return fmt.Errorf("broker.port %d out of range", c.Broker.Port)
	}
	if _, err := c.Formats.Patterns(); err != nil {
		return err
	}
	for _, nf := range c.Formats {
		if err := format.ValidateFilter(nf.Pattern); err != nil {
			return err
		}
	}
	if _, err := ParseDurationField("restart_delay", c.RestartDelay); err != nil {
		return err
	}
	return nil
}
