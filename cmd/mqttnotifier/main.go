// Command mqttnotifier subscribes to MQTT topics and raises desktop
// notifications for matching messages, formatted per topic pattern.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mqttnotifier/internal/app"
	"mqttnotifier/internal/config"
)

func main() {
	var (
		cfgPath  string
		host     string
		port     int
		duration float64
		testMode bool
		oneshot  bool

		verbose   int
		quiet     int
		overrides []config.NamedFormat
	)

	flag.StringVar(&cfgPath, "config", "", "path to config file (yaml or json)")
	flag.StringVar(&host, "host", "", "broker host (overrides config)")
	flag.IntVar(&port, "port", 0, "broker port (overrides config)")
	flag.Float64Var(&duration, "notification-duration", 0, "default notification duration in seconds (overrides config)")
	flag.BoolVar(&testMode, "test", false, "log notifications instead of sending them (implies trace logging)")
	flag.BoolVar(&oneshot, "oneshot", false, "exit after the first session ends instead of restarting")
	flag.BoolFunc("v", "be more verbose (repeatable)", func(string) error { verbose++; return nil })
	flag.BoolFunc("q", "be more quiet (repeatable)", func(string) error { quiet++; return nil })
	flag.Func("topic", "subscribe to PATTERN[=BODY[=TITLE]] (repeatable, appended after config formats)", func(raw string) error {
		nf, err := config.ParseTopicOverride(raw)
		if err != nil {
			return err
		}
		overrides = append(overrides, nf)
		return nil
	})
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(app.Options{
		ConfigPath: cfgPath,
		Overrides:  overrides,
		Host:       host,
		Port:       port,
		Duration:   duration,
		TestMode:   testMode,
		Oneshot:    oneshot,
		Verbosity:  verbose - quiet,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}
