package profile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultSettle is how long a new profile file must stay quiet before it is
// handed to the callback. The profiler creates then writes its report, so
// the Create event alone usually precedes the content.
const DefaultSettle = 500 * time.Millisecond

// Watch monitors dir for new or rewritten profile reports and calls onProfile
// with each settled path, one call at a time, in path order when several
// settle together. It runs until ctx is cancelled; cancellation is observed
// between callbacks, never during one.
func Watch(ctx context.Context, dir string, settle time.Duration, onProfile func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating profile watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	logrus.Infof("watching %s for %s", dir, Pattern)

	pending := make(map[string]struct{})
	timer := time.NewTimer(settle)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !Matches(event.Name) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(settle)

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			for _, p := range paths {
				if ctx.Err() != nil {
					return nil
				}
				onProfile(p)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logrus.Errorf("profile watcher: %v", err)
		}
	}
}
