package compiler

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/obelisk/errors"
	"github.com/teranos/obelisk/logger"
)

// CompileCallback receives every run a SourceWatcher makes
type CompileCallback func(*Result, error)

// SourceWatcher recompiles a set of sources whenever one of them changes
type SourceWatcher struct {
	compiler *Compiler
	paths    []string
	targets  map[string]bool // Cleaned absolute paths of the sources
	watcher  *fsnotify.Watcher

	mu        sync.Mutex
	callbacks []CompileCallback
	pending   *Options // Options to apply before the next run

	done chan struct{}
}

// NewSourceWatcher watches the directories holding paths. Directories are
// watched rather than files so editors that replace a file on save are seen.
func (c *Compiler) NewSourceWatcher(paths []string) (*SourceWatcher, error) {
	if len(paths) == 0 {
		return nil, errors.NewInvalidRequestError("no source files to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	sw := &SourceWatcher{
		compiler: c,
		paths:    paths,
		targets:  make(map[string]bool, len(paths)),
		watcher:  watcher,
		done:     make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			watcher.Close()
			return nil, errors.Wrapf(err, "failed to resolve %s", path)
		}
		sw.targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, errors.Wrapf(err, "failed to watch directory %s", dir)
		}
	}

	return sw, nil
}

// OnCompile registers a callback to be called after each run
func (sw *SourceWatcher) OnCompile(callback CompileCallback) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.callbacks = append(sw.callbacks, callback)
}

// SetOptions replaces the compile options from the next run on.
// Safe to call from any goroutine.
func (sw *SourceWatcher) SetOptions(opts Options) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.pending = &opts
}

// Start compiles once, then recompiles on every settled change until ctx is
// done or Stop is called
func (sw *SourceWatcher) Start(ctx context.Context) {
	go sw.watchLoop(ctx)
}

// Stop stops watching and waits for a run in progress to finish
func (sw *SourceWatcher) Stop() error {
	err := sw.watcher.Close()
	<-sw.done
	return err
}

func (sw *SourceWatcher) watchLoop(ctx context.Context) {
	defer close(sw.done)

	log := logger.AddWatchSymbol(sw.compiler.logger)
	sw.compile(ctx)

	var debounceTimer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !sw.targets[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			log.Infow("Source changed",
				logger.FieldFile, event.Name,
				"op", event.Op.String())

			// Debounce rapid writes into one run
			if debounceTimer == nil {
				debounceTimer = time.NewTimer(sw.compiler.opts.Debounce)
			} else {
				debounceTimer.Reset(sw.compiler.opts.Debounce)
			}
			fire = debounceTimer.C

		case <-fire:
			fire = nil
			sw.compile(ctx)

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			log.Warnw("Source watcher error", logger.FieldError, err.Error())
		}
	}
}

// compile runs the compiler and hands the outcome to every callback.
// Only the watch loop calls it, so runs never overlap.
func (sw *SourceWatcher) compile(ctx context.Context) {
	sw.mu.Lock()
	if sw.pending != nil {
		opts := *sw.pending
		if opts.Debounce <= 0 {
			opts.Debounce = DefaultDebounce
		}
		sw.compiler.opts = opts
		sw.pending = nil
	}
	callbacks := make([]CompileCallback, len(sw.callbacks))
	copy(callbacks, sw.callbacks)
	sw.mu.Unlock()

	res, err := sw.compiler.CompileFiles(ctx, sw.paths)
	if err != nil && !IsCompileError(err) {
		logger.AddWatchSymbol(sw.compiler.logger).Errorw("Recompile failed",
			logger.FieldError, err.Error())
	}

	for _, callback := range callbacks {
		callback(res, err)
	}
}
