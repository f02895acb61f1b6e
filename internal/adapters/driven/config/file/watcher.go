package file

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// WatchPrompts reloads store whenever a prompt file changes on disk and
// then calls onChange, if set. It blocks until ctx is done.
func WatchPrompts(ctx context.Context, store *PromptStore, onChange func(name string)) error {
	// Make sure the directory exists before watching it.
	_, _ = store.Load(driven.PromptChatSystem)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create prompt watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(store.Dir()); err != nil {
		return fmt.Errorf("watch %s: %w", store.Dir(), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, changed := promptChange(event)
			if !changed {
				continue
			}
			logger.Debug("prompt %q changed, reloading", name)
			store.Reload()
			if onChange != nil {
				onChange(name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("prompt watcher: %v", err)
		}
	}
}

// promptChange reports whether event edits a prompt file, and its name.
func promptChange(event fsnotify.Event) (string, bool) {
	base := filepath.Base(event.Name)
	if !strings.HasSuffix(base, ".txt") || strings.HasPrefix(base, ".") {
		return "", false
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	return strings.TrimSuffix(base, ".txt"), true
}
