package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/agentgate/agentgate/internal/logging"
)

// watchDebounce coalesces editor write bursts into one reload.
const watchDebounce = 250 * time.Millisecond

// configFile reports whether a changed path is one of the policy
// config files Load reads.
func configFile(path string) bool {
	switch filepath.Base(path) {
	case "agentgate.json", "agentgate.jsonc":
		return true
	}
	return false
}

// Watch reloads the policy configuration whenever a config file in the
// directory changes and hands the fresh config to onChange. It blocks
// until ctx is cancelled.
func Watch(ctx context.Context, directory string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dirs := []string{directory, filepath.Join(directory, ".agentgate")}
	for _, dir := range dirs {
		// Missing subdirectories are fine; only existing ones are watched.
		if err := watcher.Add(dir); err != nil && dir == directory {
			return err
		}
	}

	log := logging.Component("config")
	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !configFile(ev.Name) || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("config watch error")
		case <-reload:
			cfg, err := Load(directory)
			if err != nil {
				log.Error().Err(err).Msg("config reload failed; keeping previous policy")
				continue
			}
			log.Info().Msg("config reloaded")
			onChange(cfg)
		}
	}
}
