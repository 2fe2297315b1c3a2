// Package daemon implements guard mode: a background process that watches the
// global gitconfig file and re-applies the scrub whenever something sets one
// of the allow-listed keys again or changes the identity.
package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ByteMirror/gitscrub/config"
	"github.com/ByteMirror/gitscrub/log"
	"github.com/ByteMirror/gitscrub/scrub"

	"github.com/fsnotify/fsnotify"
)

const pidFileName = "guard.pid"

// debounce coalesces the burst of filesystem events a single git config
// rewrite produces (git writes a lock file and renames it over the target).
const debounce = 500 * time.Millisecond

// RunGuard watches gitconfigPath and re-runs scrubber whenever the file
// changes and the store is out of its reset state. A poll ticker backs up the
// watcher for filesystems that drop events. Blocks until ctx is done.
func RunGuard(ctx context.Context, scrubber *scrub.Scrubber, gitconfigPath string, pollInterval time.Duration) error {
	if err := writePIDFile(); err != nil {
		return err
	}
	defer removePIDFile()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the parent directory: git replaces the config file by rename, so
	// a watch on the file itself dies after the first rewrite.
	if err := watcher.Add(filepath.Dir(gitconfigPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(gitconfigPath), err)
	}

	log.InfoLog.Printf("guard watching %s (poll every %s)", gitconfigPath, pollInterval)

	// Enforce once at startup so a dirty store does not wait for an event.
	enforce(ctx, scrubber)

	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var pending *time.Timer
	trigger := make(chan struct{}, 1)
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.InfoLog.Printf("guard stopping")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != gitconfigPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.DebugLog.Printf("guard event: %s", event)
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WarningLog.Printf("guard watcher error: %v", err)

		case <-trigger:
			enforce(ctx, scrubber)

		case <-ticker.C:
			enforce(ctx, scrubber)
		}
	}
}

// enforce re-applies the scrub when the store has drifted from its reset
// state. A clean store is left untouched so guard never rewrites the file in
// a loop with its own events.
func enforce(ctx context.Context, scrubber *scrub.Scrubber) {
	present, identityOK, err := scrubber.Status(ctx)
	if err != nil {
		log.ErrorLog.Printf("guard status check failed: %v", err)
		return
	}
	if len(present) == 0 && identityOK {
		return
	}

	for _, e := range present {
		log.InfoLog.Printf("guard: found %s, re-applying scrub", log.SanitizeKey(e.Key))
	}
	if !identityOK {
		log.InfoLog.Printf("guard: identity drifted, re-applying scrub")
	}

	report, err := scrubber.Run(ctx)
	if err != nil {
		log.ErrorLog.Printf("guard scrub failed: %v", err)
		return
	}
	if report.Failed() {
		log.WarningLog.Printf("guard scrub completed with failures")
	} else {
		log.InfoLog.Printf("guard scrub completed, %d entries remain", len(report.Remaining))
	}
}

func pidFilePath() (string, error) {
	configDir, err := config.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, pidFileName), nil
}

func writePIDFile() error {
	path, err := pidFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func removePIDFile() {
	path, err := pidFilePath()
	if err != nil {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.WarningLog.Printf("failed to remove pid file: %v", err)
	}
}

// StopGuard signals a running guard process, if any. Returns nil when no
// guard is running.
func StopGuard() error {
	path, err := pidFilePath()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read pid file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("invalid pid file %s: %w", path, err)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find guard process %d: %w", pid, err)
	}
	if err := proc.Signal(os.Interrupt); err != nil {
		// Stale pid file from a crashed guard.
		if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
			return removeErr
		}
		return nil
	}
	return nil
}
