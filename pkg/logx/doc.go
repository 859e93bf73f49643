// Package logx configures mqttnotifier's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - Optional syslog sink for daemon use (min-level + rate limiting)
package logx
