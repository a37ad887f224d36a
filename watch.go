package roofdb

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const watchDebounce = 200 * time.Millisecond

// Watch reloads the document whenever the data file changes on disk and
// calls onChange with the new version. The directory holding the file is
// watched so that atomic replacements are seen as well. Watch blocks until
// ctx is done.
func (db *DB) Watch(ctx context.Context, onChange func(version string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "could not create file watcher")
	}

	defer w.Close()

	target := filepath.Clean(db.path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, "could not watch %s", filepath.Dir(target))
	}

	log := db.e.log
	log.Info("watching data file")

	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != target {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			timer.Reset(watchDebounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("file watcher error", zap.Error(err))

		case <-timer.C:
			changed, err := db.Reload(ctx)
			if err != nil {
				log.Error("could not reload data file", zap.Error(err))
				continue
			}

			if !changed {
				continue
			}

			v, err := db.Version(ctx)
			if err != nil {
				log.Error("could not read document version", zap.Error(err))
				continue
			}

			log.Info("data file reloaded", zap.String("version", v))
			if onChange != nil {
				onChange(v)
			}
		}
	}
}
