package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"mqttnotifier/internal/config"
	"mqttnotifier/internal/format"
	"mqttnotifier/internal/notify"
	mqtt "mqttnotifier/internal/transport/mqtt"
	logx "mqttnotifier/pkg/logx"
)

// Options carries the fully resolved command line.
type Options struct {
	ConfigPath string
	// Overrides are -topic flag formats, appended after config-declared
	// formats in flag order.
	Overrides []config.NamedFormat

	// Non-zero values override the config file.
	Host     string
	Port     int
	Duration float64

	TestMode bool
	Oneshot  bool
	// Verbosity shifts the configured log level: positive is louder.
	Verbosity int
}

// App ties config, logging, transport and the notification pipeline into
// restartable sessions.
type App struct {
	opts Options

	logs *logx.Service
	log  logx.Logger

	cfg *config.Config
}

// New loads the configuration and brings up logging. The broker connection
// waits for Run.
func New(opts Options) (*App, error) {
	a := &App{opts: opts}

	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	a.cfg = cfg

	a.logs, a.log = logx.New(logConfig(cfg, opts))
	return a, nil
}

// loadConfig reads the file (or synthesizes defaults), layers the flag
// overrides on top, and validates the result.
func (a *App) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if a.opts.ConfigPath != "" {
		c, err := config.Load(a.opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		cfg = config.Default()
	}

	if a.opts.Host != "" {
		cfg.Broker.Host = a.opts.Host
	}
	if a.opts.Port != 0 {
		cfg.Broker.Port = a.opts.Port
	}
	if a.opts.Duration > 0 {
		cfg.Notification.Duration = a.opts.Duration
	}
	cfg.Formats = append(cfg.Formats, a.opts.Overrides...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func logConfig(cfg *config.Config, opts Options) logx.Config {
	level := cfg.Logging.Level
	if opts.TestMode {
		level = "trace"
	} else if opts.Verbosity != 0 {
		level = shiftLevel(level, opts.Verbosity)
	}

	console := true
	if cfg.Logging.Console != nil {
		console = *cfg.Logging.Console
	}

	return logx.Config{
		Level:   level,
		Console: console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Syslog: logx.SyslogConfig{
			Enabled:    cfg.Logging.Syslog.Enabled,
			Tag:        cfg.Logging.Syslog.Tag,
			MinLevel:   cfg.Logging.Syslog.MinLevel,
			RatePerSec: cfg.Logging.Syslog.RatePerSec,
		},
	}
}

var levelOrder = []string{"trace", "debug", "info", "warn", "error"}

// shiftLevel moves level by -delta steps in levelOrder (positive delta
// means more verbose), clamped at the ends.
func shiftLevel(level string, delta int) string {
	idx := 2 // info
	for i, l := range levelOrder {
		if l == level {
			idx = i
			break
		}
	}
	idx -= delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(levelOrder) {
		idx = len(levelOrder) - 1
	}
	return levelOrder[idx]
}

// Run drives sessions until ctx is done. Each session is one broker
// connection plus one notification-service connection; any uncaught session
// failure tears the whole session down and, unless running one-shot, a
// fresh one starts after RestartDelay. A config-file change also restarts
// the session, with the file re-read.
func (a *App) Run(ctx context.Context) error {
	restartDelay, err := config.ParseDurationField("restart_delay", a.cfg.RestartDelay)
	if err != nil {
		return err
	}
	if restartDelay == 0 && !a.opts.Oneshot {
		a.log.Warn("restart_delay is 0: failed sessions restart immediately")
	}

	reload := make(chan struct{}, 1)
	if a.opts.ConfigPath != "" {
		go config.Watch(ctx, a.opts.ConfigPath, a.log.With(logx.String("comp", "config")), func() {
			select {
			case reload <- struct{}{}:
			default:
			}
		})
	}

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	defer func() { _, _ = daemon.SdNotify(false, daemon.SdNotifyStopping) }()

	for {
		err := a.runSession(ctx, reload)

		if ctx.Err() != nil {
			a.log.Info("shutting down")
			return nil
		}
		if errors.Is(err, errConfigChanged) {
			a.log.Info("config changed, restarting session")
			cfg, lerr := a.loadConfig()
			if lerr != nil {
				a.log.Warn("config reload failed, keeping previous config", logx.Err(lerr))
			} else {
				a.cfg = cfg
				a.logs.Apply(logConfig(cfg, a.opts))
			}
			continue
		}
		if err != nil {
			a.log.Error("session failed", logx.Err(err))
		}
		if a.opts.Oneshot {
			return err
		}
		if restartDelay > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(restartDelay):
			}
		}
		a.log.Info("restarting session")
	}
}

// errConfigChanged ends a session so it can be rebuilt from the new file.
var errConfigChanged = errors.New("config changed")

// runSession builds the registry, dispatcher and broker connection, then
// blocks until the broker connection dies, the config changes, or ctx is
// done.
func (a *App) runSession(ctx context.Context, reload <-chan struct{}) error {
	patterns, err := a.cfg.Formats.Patterns()
	if err != nil {
		return err
	}
	registry, err := format.NewRegistry(patterns)
	if err != nil {
		return err
	}
	if registry.Len() == 0 {
		a.log.Warn("no formats configured: nothing will be subscribed")
	}

	disp := notify.NewDispatcher(
		notify.SessionDialer(a.cfg.Notification.AppName),
		a.opts.TestMode,
		a.log.With(logx.String("comp", "dispatch")),
	)
	if err := disp.Connect(); err != nil {
		return err
	}
	defer disp.Close()

	orch := NewOrchestrator(
		registry,
		format.Default(a.cfg.Notification.Duration),
		disp,
		a.log.With(logx.String("comp", "pipeline")),
	)

	src := mqtt.NewSource(
		a.cfg.Broker,
		registry.Filters(),
		orch.HandleMessage,
		a.log.With(logx.String("comp", "mqtt")),
	)
	if err := src.Connect(); err != nil {
		return err
	}
	defer src.Close()

	a.log.Info("session running",
		logx.String("broker", a.cfg.Broker.Addr()),
		logx.Int("formats", registry.Len()),
		logx.Bool("test_mode", a.opts.TestMode))

	select {
	case <-ctx.Done():
		return nil
	case <-reload:
		return errConfigChanged
	case err := <-src.Lost():
		return fmt.Errorf("broker connection lost: %w", err)
	}
}

// Close releases logging sinks.
func (a *App) Close() error {
	if a.logs != nil {
		return a.logs.Close()
	}
	return nil
}
