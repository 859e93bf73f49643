package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	logx "mqttnotifier/pkg/logx"
)

// Watch blocks watching path for edits and calls onChange after each
// (debounced) change. It watches the parent directory rather than the file
// itself so editors that replace the file via rename are still seen.
//
// When the watcher breaks (its channels close), it is recreated with a
// small growing delay. Watch returns when ctx is done.
func Watch(ctx context.Context, path string, log logx.Logger, onChange func()) {
	if log.IsZero() {
		log = logx.Nop()
	}

	dir := filepath.Dir(path)
	file := filepath.Base(path)

	const (
		restartBase = 250 * time.Millisecond
		restartMax  = 5 * time.Second
	)
	restartDelay := restartBase

	// Debounce to avoid firing on partial writes.
	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	fire := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		log.Debug("config change detected", logx.String("path", path))
		timer = time.AfterFunc(250*time.Millisecond, onChange)
	}

	for {
		if ctx.Err() != nil {
			return
		}

		w, err := fsnotify.NewWatcher()
		if err == nil {
			err = w.Add(dir)
		}
		if err != nil {
			log.Warn("config watch init failed", logx.Err(err), logx.String("dir", dir))
			if w != nil {
				_ = w.Close()
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(restartDelay):
			}
			restartDelay = min(restartDelay*2, restartMax)
			continue
		}
		restartDelay = restartBase

		alive := true
		for alive {
			select {
			case <-ctx.Done():
				_ = w.Close()
				return
			case ev, ok := <-w.Events:
				if !ok {
					alive = false
					break
				}
				if filepath.Base(ev.Name) != file {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove|fsnotify.Chmod) != 0 {
					fire()
				}
			case werr, ok := <-w.Errors:
				if !ok {
					alive = false
					break
				}
				log.Warn("config watch error", logx.Err(werr))
			}
		}

		_ = w.Close()
		log.Debug("config watcher restarting", logx.String("dir", dir))
	}
}
