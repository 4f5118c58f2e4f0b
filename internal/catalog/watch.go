package catalog

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads an override catalog file when it changes and hands the
// new Catalog to onChange. Files that fail to load or validate are logged
// and skipped, so the caller keeps serving its current catalog.
type Watcher struct {
	path     string
	loader   *Loader
	onChange func(*Catalog)
	onError  func(error)
	log      *zap.Logger
	debounce time.Duration
	maxWait  time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// WatcherOption tweaks a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long to wait for writes to settle.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithMaxWait caps how long a steady stream of writes can hold off a
// reload. Zero disables the cap.
func WithMaxWait(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.maxWait = d }
}

// WithErrorHandler is called for every rejected reload.
func WithErrorHandler(fn func(error)) WatcherOption {
	return func(w *Watcher) { w.onError = fn }
}

// NewWatcher creates a watcher for the override file at path.
func NewWatcher(path string, loader *Loader, log *zap.Logger, onChange func(*Catalog), opts ...WatcherOption) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Watcher{
		path:     filepath.Clean(path),
		loader:   loader,
		onChange: onChange,
		log:      log.Named("catalog-watcher"),
		debounce: 250 * time.Millisecond,
		maxWait:  2 * time.Second,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Start begins watching in a goroutine. The parent directory is watched
// rather than the file so editors that replace files are still seen.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return err
	}

	w.watcher = fw
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true
	go w.run(ctx)

	w.log.Info("watching catalog", zap.String("path", w.path))
	return nil
}

// Stop terminates the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		w.log.Warn("close watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
		pending time.Time // first event of the current burst
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if pending.IsZero() {
				pending = time.Now()
			}
			wait := w.waitFor(time.Since(pending))
			if timer == nil {
				timer = time.NewTimer(wait)
			} else {
				timer.Reset(wait)
			}
			timerCh = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		case <-timerCh:
			timerCh = nil
			pending = time.Time{}
			w.reload()
		}
	}
}

// waitFor returns the debounce delay after an event, shortened so a burst
// that started elapsed ago still reloads within maxWait.
func (w *Watcher) waitFor(elapsed time.Duration) time.Duration {
	if w.maxWait <= 0 {
		return w.debounce
	}
	left := w.maxWait - elapsed
	if left < 0 {
		left = 0
	}
	return min(w.debounce, left)
}

func (w *Watcher) reload() {
	w.loader.Invalidate()
	cat, err := w.loader.Load(w.path)
	if err != nil {
		w.log.Error("catalog reload rejected", zap.String("path", w.path), zap.Error(err))
		if w.onError != nil {
			w.onError(err)
		}
		return
	}
	w.log.Info("catalog reloaded",
		zap.String("path", w.path),
		zap.String("version", cat.Version()),
		zap.Int("entries", cat.Len()))
	if w.onChange != nil {
		w.onChange(cat)
	}
}
