package prefabs

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind tells which reload a file change needs.
type ChangeKind int

const (
	ChangeKinds ChangeKind = iota
	ChangeScene
)

// Change is one debounced prefab file change.
type Change struct {
	Path string
	Kind ChangeKind
}

// Watcher reports changes to kind specs and scene scripts under the
// watched directories.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	Changes  chan Change
	Errors   chan error
	closeCh  chan struct{}
	once     sync.Once
}

const defaultDebounce = 100 * time.Millisecond

func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher:  w,
		debounce: defaultDebounce,
		Changes:  make(chan Change, 16),
		Errors:   make(chan error, 1),
		closeCh:  make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Changes)
	defer close(w.Errors)

	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			kind, ok := classify(event.Name)
			if !ok {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < w.debounce {
				continue
			}
			last[event.Name] = now
			select {
			case w.Changes <- Change{Path: event.Name, Kind: kind}:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func classify(path string) (ChangeKind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ChangeKinds, true
	case ".tengo":
		return ChangeScene, true
	}
	return 0, false
}
