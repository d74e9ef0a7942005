package inference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/hearthealth/hearthealth/internal/metrics"
)

type slot struct {
	path    string
	current atomic.Pointer[Artifact]
}

// Registry holds the currently loaded artifact for each model name.
// Reads are lock-free; a reload swaps the pointer only when the new
// artifact loads and validates.
type Registry struct {
	logger  *slog.Logger
	metrics metrics.Recorder

	mu    sync.RWMutex
	slots map[string]*slot

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger, recorder metrics.Recorder) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Registry{
		logger:  logger.With("component", "model_registry"),
		metrics: recorder,
		slots:   make(map[string]*slot),
	}
}

// Register associates a model name with an artifact path and loads it.
// The name stays registered when loading fails so a later file change can
// still bring the model up; Get reports ErrModelNotLoaded until then.
func (r *Registry) Register(name, path string) error {
	s := &slot{path: filepath.Clean(path)}

	r.mu.Lock()
	r.slots[name] = s
	r.mu.Unlock()

	a, err := LoadArtifact(s.path)
	if err != nil {
		return fmt.Errorf("load model %s: %w", name, err)
	}
	s.current.Store(a)

	r.logger.Info("model loaded",
		"model", name,
		"path", s.path,
		"version", a.Version,
		"features", len(a.FeatureNames()),
		"trees", len(a.Trees),
	)
	return nil
}

// Set installs an artifact directly, bypassing the filesystem.
func (r *Registry) Set(name string, a *Artifact) {
	r.mu.Lock()
	s, ok := r.slots[name]
	if !ok {
		s = &slot{}
		r.slots[name] = s
	}
	r.mu.Unlock()
	s.current.Store(a)
}

// Get returns the current artifact for a model name.
func (r *Registry) Get(name string) (*Artifact, error) {
	r.mu.RLock()
	s, ok := r.slots[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotLoaded, name)
	}
	a := s.current.Load()
	if a == nil {
		return nil, fmt.Errorf("%w: %s", ErrModelNotLoaded, name)
	}
	return a, nil
}

// Reload re-reads the artifact for a model name. On failure the previously
// loaded artifact stays in service.
func (r *Registry) Reload(name string) error {
	r.mu.RLock()
	s, ok := r.slots[name]
	r.mu.RUnlock()
	if !ok || s.path == "" {
		return fmt.Errorf("%w: %s", ErrModelNotLoaded, name)
	}

	a, err := LoadArtifact(s.path)
	if err != nil {
		r.metrics.IncModelReload(metrics.OutcomeFailure)
		r.logger.Warn("model reload failed, keeping previous version",
			"model", name,
			"path", s.path,
			"error", err,
		)
		return err
	}

	prev := s.current.Swap(a)
	r.metrics.IncModelReload(metrics.OutcomeSuccess)

	prevVersion := ""
	if prev != nil {
		prevVersion = prev.Version
	}
	r.logger.Info("model reloaded",
		"model", name,
		"version", a.Version,
		"previous_version", prevVersion,
	)
	return nil
}

// Ping reports an error when any registered model is not loaded.
func (r *Registry) Ping(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []string
	for name, s := range r.slots {
		if s.current.Load() == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: %v", ErrModelNotLoaded, missing)
	}
	return nil
}

// Watch starts watching the directories of registered artifacts and reloads
// a model whenever its file is written, created or renamed into place.
// It returns once the watcher is running; Close stops it.
func (r *Registry) Watch() error {
	if r.watcher != nil {
		return errors.New("registry already watching")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	byPath := make(map[string]string)
	dirs := make(map[string]struct{})

	r.mu.RLock()
	for name, s := range r.slots {
		if s.path == "" {
			continue
		}
		byPath[s.path] = name
		dirs[filepath.Dir(s.path)] = struct{}{}
	}
	r.mu.RUnlock()

	// Watch directories, not files: editors and deploy tools replace
	// files by rename, which drops a file-level watch.
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	r.watcher = w
	r.done = make(chan struct{})
	go r.loop(byPath)

	r.logger.Info("watching model artifacts", "files", len(byPath))
	return nil
}

func (r *Registry) loop(byPath map[string]string) {
	defer close(r.done)

	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			name, ok := byPath[filepath.Clean(event.Name)]
			if !ok {
				continue
			}
			_ = r.Reload(name)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Error("model watcher error", "error", err)
		}
	}
}

// Close stops the watcher, if running.
func (r *Registry) Close() error {
	if r.watcher == nil {
		return nil
	}
	err := r.watcher.Close()
	<-r.done
	r.watcher = nil
	return err
}
