package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sambeau/chervil/pkg/chervil/config"
)

// watchFile runs a script, then re-runs it on every write to the file.
// Watches the containing directory rather than the file itself so that
// editors which save via rename keep triggering events.
func watchFile(filename string, cfg *config.Config) {
	absPath, err := filepath.Abs(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating watcher: %v\n", err)
		os.Exit(1)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		fmt.Fprintf(os.Stderr, "Error watching %s: %v\n", filepath.Dir(absPath), err)
		os.Exit(1)
	}

	debounce := time.Duration(cfg.Watch.DebounceMS) * time.Millisecond

	runOnce := func() {
		fmt.Fprintf(os.Stderr, "--- %s (%s)\n", filename, time.Now().Format("15:04:05"))
		executeFile(filename, cfg)
	}

	runOnce()
	fmt.Fprintf(os.Stderr, "watching %s (Ctrl+C to stop)\n", filename)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var mu sync.Mutex
	var lastChange time.Time

	for {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nstopped")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}

			mu.Lock()
			if time.Since(lastChange) < debounce {
				mu.Unlock()
				continue
			}
			lastChange = time.Now()
			mu.Unlock()

			runOnce()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watcher error: %v\n", err)
		}
	}
}
