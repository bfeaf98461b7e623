package config

import (
	"github.com/sirupsen/logrus"

	"github.com/dshills/announcement/internal/config/watcher"
)

// ReloadFunc receives the reloaded configuration, or the error that
// prevented loading it.
type ReloadFunc func(cfg Config, err error)

// WatchFile starts watching the file at path and calls onReload with the
// consolidated configuration whenever it is written, created or replaced.
// Removal is ignored so that the last good configuration stays in effect.
// The caller must Stop the returned watcher.
func WatchFile(path string, env map[string]string, onReload ReloadFunc, opts ...watcher.Option) (*watcher.Watcher, error) {
	w := watcher.New(opts...)
	if err := w.Watch(path); err != nil {
		return nil, err
	}

	w.OnChange(func(event watcher.Event) {
		if event.Op == watcher.OpRemove {
			return
		}
		cfg, err := GetConsolidatedConfig(path, env)
		onReload(cfg, err)
	})

	if err := w.Start(); err != nil {
		return nil, err
	}
	return w, nil
}

// Fields returns cfg as log fields.
func (c Config) Fields() logrus.Fields {
	return logrus.Fields{
		"serialize":    c.Serialize.Bool,
		"logLevel":     c.LogLevel.String,
		"logFormat":    c.LogFormat.String,
		"trace":        c.Trace.Bool,
		"luaNamespace": c.LuaNamespace.String,
	}
}
