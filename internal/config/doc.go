// Package config provides configuration for an announcement dispatcher.
//
// Configuration is layered, with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← ANNOUNCE_*, highest priority
//	├─────────────────────────────┤
//	│  2. Config File             │  ← TOML, YAML or JSON
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Every field is nullable so that a layer which does not mention a setting
// leaves the lower layer's value alone.
//
// # Sub-packages
//
//   - loader: Configuration file loading (TOML, YAML, JSON) with includes
//   - watcher: File watching for live reload
//
// # Basic Usage
//
//	cfg, err := config.GetConsolidatedConfig("announce.toml", config.Environ())
//	if err != nil {
//	    return err
//	}
//	logger, err := config.NewLogger(cfg, os.Stderr)
//
// # Live Reload
//
//	w, err := config.WatchFile("announce.toml", config.Environ(), func(cfg config.Config, err error) {
//	    ...
//	})
//	defer w.Stop()
package config
