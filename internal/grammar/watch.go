package grammar

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/NikitaCOEUR/argot/internal/symbol"
)

// DefaultDebounce is how long a grammar file must stay quiet before a reload
const DefaultDebounce = 150 * time.Millisecond

// Watch rebuilds the grammar at path whenever it changes and hands each new
// tree, or the error that prevented building it, to onChange. A live tree is
// never modified. Watch blocks until ctx is done.
//
// The directory is watched rather than the file so that editors replacing
// the file by rename are followed.
func (l *Loader) Watch(ctx context.Context, path string, debounce time.Duration, onChange func(*symbol.Symbol, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			l.log.Debug().Str("path", abs).Str("op", event.Op.String()).Msg("Grammar changed")
			timer.Reset(debounce)

		case <-timer.C:
			root, err := l.LoadTree(abs)
			if err != nil {
				l.log.Warn().Str("path", abs).Err(err).Msg("Grammar reload failed")
			}
			onChange(root, err)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.log.Warn().Err(err).Msg("Grammar watcher error")
		}
	}
}
