package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	domainconfig "symptocare-backend/domain/config"
)

// AnalysisWatcher keeps the analysis thresholds in sync with their YAML
// file. Readers always see a complete, validated config.
type AnalysisWatcher struct {
	path      string
	overrides func(*domainconfig.AnalysisConfig)
	watcher   *fsnotify.Watcher
	current   atomic.Pointer[domainconfig.AnalysisConfig]
	mu        sync.Mutex
	onChange  []func(*domainconfig.AnalysisConfig)
	logger    *zap.Logger
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// NewAnalysisWatcher loads the file once and prepares the watch. overrides
// is applied after every load; it may be nil.
func NewAnalysisWatcher(path string, overrides func(*domainconfig.AnalysisConfig), logger *zap.Logger) (*AnalysisWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &AnalysisWatcher{
		path:      path,
		overrides: overrides,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}

	cfg, err := w.load()
	if err != nil {
		return nil, fmt.Errorf("failed to load initial analysis config: %w", err)
	}
	w.current.Store(cfg)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch analysis config: %w", err)
	}

	// Editors often save by renaming over the file
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.Warn("Failed to watch analysis config directory", zap.Error(err))
	}

	w.watcher = watcher
	return w, nil
}

// Current implements ports.AnalysisConfigSource
func (w *AnalysisWatcher) Current() *domainconfig.AnalysisConfig {
	return w.current.Load()
}

// OnChange registers a callback run after each successful reload
func (w *AnalysisWatcher) OnChange(handler func(*domainconfig.AnalysisConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, handler)
}

// Start begins watching for changes
func (w *AnalysisWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("Analysis config watcher started", zap.String("path", w.path))
}

// Stop ends the watch. Safe to call more than once.
func (w *AnalysisWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
		w.logger.Info("Analysis config watcher stopped")
	})
}

func (w *AnalysisWatcher) watchLoop() {
	var debounceTimer *time.Timer
	debounceDuration := 100 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					_ = w.Reload()
				})
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

// Reload reads the file again. An invalid file keeps the current config.
func (w *AnalysisWatcher) Reload() error {
	next, err := w.load()
	if err != nil {
		w.logger.Error("Invalid analysis config, keeping current", zap.String("path", w.path), zap.Error(err))
		return err
	}

	previous := w.current.Swap(next)
	w.logChanges(previous, next)

	w.mu.Lock()
	handlers := append([]func(*domainconfig.AnalysisConfig){}, w.onChange...)
	w.mu.Unlock()
	for _, handler := range handlers {
		go handler(next)
	}

	w.logger.Info("Analysis config reloaded", zap.String("path", w.path))
	return nil
}

func (w *AnalysisWatcher) load() (*domainconfig.AnalysisConfig, error) {
	cfg, err := LoadAnalysisConfig(w.path)
	if err != nil {
		return nil, err
	}
	if w.overrides != nil {
		w.overrides(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid analysis config: %w", err)
		}
	}
	return cfg, nil
}

func (w *AnalysisWatcher) logChanges(previous, next *domainconfig.AnalysisConfig) {
	if previous == nil {
		return
	}
	var changes []string
	if previous.EpisodeScale != next.EpisodeScale {
		changes = append(changes, fmt.Sprintf("episode_scale: %s -> %s", previous.EpisodeScale, next.EpisodeScale))
	}
	if previous.AlertMissingDaysThreshold != next.AlertMissingDaysThreshold {
		changes = append(changes, fmt.Sprintf("alert_missing_days_threshold: %d -> %d",
			previous.AlertMissingDaysThreshold, next.AlertMissingDaysThreshold))
	}
	if previous.FlagWindowDays != next.FlagWindowDays {
		changes = append(changes, fmt.Sprintf("flag_window_days: %d -> %d", previous.FlagWindowDays, next.FlagWindowDays))
	}
	if len(changes) > 0 {
		w.logger.Info("Analysis config changes detected", zap.Strings("changes", changes))
	}
}
