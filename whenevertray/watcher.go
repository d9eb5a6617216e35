package whenevertray

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Watcher watches the configuration file for changes and journals them. The
// command lines are resolved once, so changes only apply after a restart.
type Watcher struct {
	w    *fsnotify.Watcher
	j    Journaler
	dir  string
	name string
}

// TryWatch attempts to watch the given file asynchronously, but it will log
// into the journaler if, for some reason, it fails to watch the file.
func TryWatch(ctx context.Context, path string, j Journaler) {
	w := newWatcher(path, j)

	go func() {
		if err := w.init(); err != nil {
			j.Write(&EventWarning{
				Component: "watcher",
				Error:     fmt.Sprintf("not watching config because: %v", err),
			})
			return
		}

		w.watch(ctx)
	}()
}

// NewWatcher watches the given file and logs events into the journaler. The
// watcher is stopped once the given context is canceled.
func NewWatcher(ctx context.Context, path string, j Journaler) (*Watcher, error) {
	w := newWatcher(path, j)
	if err := w.init(); err != nil {
		return nil, err
	}

	go w.watch(ctx)
	return w, nil
}

func newWatcher(path string, j Journaler) *Watcher {
	dir, name := filepath.Split(filepath.Clean(path))

	return &Watcher{
		j:    j,
		dir:  dir,
		name: name,
	}
}

// init watches the directory instead of the file, since editors commonly
// replace files by renaming over them.
func (w *Watcher) init() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}

	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return errors.Wrap(err, "failed to watch dir")
	}

	w.w = watcher
	return nil
}

func (w *Watcher) watch(ctx context.Context) {
	defer w.w.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}

			w.j.Write(&EventWarning{
				Component: "watcher",
				Error:     "fsnotify error: " + err.Error(),
			})

		case evt, ok := <-w.w.Events:
			if !ok {
				return
			}

			op, ok := translateFsnotifyEvt(evt, w.name)
			if !ok {
				continue
			}

			w.j.Write(&EventConfigModified{
				Op:   op,
				File: evt.Name,
			})
		}
	}
}

// translateFsnotifyEvt translates an fsnotify event on the watched directory
// into an operation on the file with the given name. False is returned for
// other files and for operations that do not change the content.
func translateFsnotifyEvt(evt fsnotify.Event, name string) (ConfigModifyOp, bool) {
	if filepath.Base(evt.Name) != name {
		return "", false
	}

	switch {
	case evt.Op&fsnotify.Write != 0:
		return ConfigUpdate, true
	case evt.Op&fsnotify.Create != 0:
		return ConfigCreate, true
	case evt.Op&fsnotify.Rename != 0:
		// fsnotify reports a rename only on the old name, so it is as good as
		// a remove.
		fallthrough
	case evt.Op&fsnotify.Remove != 0:
		return ConfigRemove, true
	}

	return "", false
}
