package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/doodlesbykumbi/tripkeeper/pkg/audit"
	"github.com/doodlesbykumbi/tripkeeper/pkg/config"
	"github.com/doodlesbykumbi/tripkeeper/pkg/server"
)

// watchConfig reloads the configuration whenever the config file is written,
// created or renamed into place. The directory is watched so editors that
// replace the file are noticed too.
func watchConfig(ctx context.Context, filename string, s *server.Server) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(filename)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	log.Printf("Watching %s for configuration changes", filename)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(filename) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			log.Printf("[%s] Config file modified, reloading...", time.Now().Format(time.RFC3339))
			if err := reloadConfig(s); err != nil {
				log.Printf("Error reloading configuration: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

// reloadConfig applies a freshly loaded configuration to a running server.
// The store backend is fixed for the life of the process.
func reloadConfig(s *server.Server) error {
	if err := config.Reload(); err != nil {
		return err
	}
	cfg := config.Get()
	if cfg.Store != s.Config().Store {
		log.Printf("Ignoring store change to %q until restart", cfg.Store)
		reloaded := *cfg
		reloaded.Store = s.Config().Store
		cfg = &reloaded
	}
	audit.SetEnabled(cfg.AuditEnabled)
	s.UpdateConfig(cfg)
	log.Println("Configuration reloaded")
	return nil
}
