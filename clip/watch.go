package clip

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"go-pianoroll/debug"
	"go-pianoroll/geometry"
)

// Change kinds reported by Watch
const (
	ChangeReloaded = "reloaded"
	ChangeRemoved  = "removed"
)

// WatchCallback is called after the watcher changed the clip.
type WatchCallback func(kind string)

const watchDebounce = 150 * time.Millisecond

// Watch reloads c from path whenever the file is written by someone else
// and closes c when the file is removed. It blocks until ctx is done.
// The parent directory is watched so editors that save by rename are
// picked up too.
func Watch(ctx context.Context, c *Clip, path string, cb WatchCallback) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	debug.Log("watch", "started on %s", abs)

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(watchDebounce)
			fire = timer.C
		} else {
			timer.Reset(watchDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			debug.Log("watch", "stopped")
			return nil

		case <-fire:
			timer, fire = nil, nil
			if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
				c.Close()
				if cb != nil {
					cb(ChangeRemoved)
				}
				continue
			}
			changed, loadErr := reloadIfChanged(c, abs)
			if loadErr != nil {
				debug.Log("watch", "reload failed: %v", loadErr)
				continue
			}
			if changed && cb != nil {
				cb(ChangeReloaded)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			debug.Log("watch", "error: %v", watchErr)
		}
	}
}

// reloadIfChanged skips reloads that would not change anything, such as
// the echo of our own save.
func reloadIfChanged(c *Clip, path string) (bool, error) {
	ts, notes, err := ReadSMF(path)
	if err != nil {
		return false, err
	}
	if c.sameAs(ts, notes) {
		return false, nil
	}
	c.Replace(ts, notes)
	return true, nil
}

func (c *Clip) sameAs(ts geometry.TimeSignature, notes []Event) bool {
	current, err := c.Notes()
	if err != nil {
		return false
	}
	if ts != c.TimeSignature() || len(current) != len(notes) {
		return false
	}
	for i := range current {
		a, b := current[i], notes[i]
		a.Ref, b.Ref = 0, 0
		if a != b {
			return false
		}
	}
	return true
}
