package hypernote

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// documentExt is the extension of Hypernote Markdown files watched for
// changes.
const documentExt = ".hnmd"

// A Watcher invokes a callback whenever a Hypernote Markdown file in
// one of the watched directories is written or created. It is used by
// the CLI's watch mode.
type Watcher struct {
	// OnChange is called with the path of every changed document.
	OnChange func(path string)

	// Logger configures logging for internal events.
	Logger *slog.Logger

	fw *fsnotify.Watcher
}

// NewWatcher starts watching the given directories. Close the returned
// watcher (or cancel the context passed to Run) to release it.
func NewWatcher(dirs []string, onChange func(path string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return &Watcher{OnChange: onChange, fw: fw}, nil
}

// Run processes file events until the context is canceled or the
// underlying watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), documentExt) {
				continue
			}
			logger.Debug("document changed", "path", ev.Name)
			if w.OnChange != nil {
				w.OnChange(ev.Name)
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error", "err", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fw.Close()
}
