package gitsource

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ReloadCallback is invoked when rulebook files changed in the remote.
// It receives the rulebook directory inside the checkout and should
// rebuild the rule catalog from it. Returning an error rolls the
// checkout back to the previous commit.
type ReloadCallback func(rulebookPath string) error

// Watcher polls a rulebook repository for new commits and triggers
// catalog reloads when rulebook files change. Reloads are debounced so
// a burst of commits produces a single reload, and a failed reload
// rolls back to the last commit that loaded cleanly.
//
// Basic usage:
//
//	watcher := gitsource.NewWatcher(repo, 30*time.Second, 10*time.Second, reloadFn)
//	if err := watcher.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer watcher.Stop()
type Watcher struct {
	repo          *Repository
	pollInterval  time.Duration
	pollTimeout   time.Duration
	stopCh        chan struct{}
	reloadFn      ReloadCallback
	lastCommitSHA string
	mu            sync.RWMutex
	running       bool
	debounceTimer *time.Timer
	debounceMu    sync.Mutex
	logger        *slog.Logger
	metrics       *WatcherMetrics
}

// WatcherMetrics tracks watcher operation metrics.
type WatcherMetrics struct {
	PollCount         int64
	SuccessfulReloads int64
	FailedReloads     int64
	LastReloadTime    time.Time
	LastReloadDur     time.Duration
	SkippedPolls      int64 // Commits that touched no rulebook files
}

// NewWatcher creates a change watcher for the given repository. The
// watcher polls at the given interval, bounds each git operation by
// timeout, and calls reloadFn when rulebook files change.
func NewWatcher(repo *Repository, interval, timeout time.Duration, reloadFn ReloadCallback) *Watcher {
	return &Watcher{
		repo:         repo,
		pollInterval: interval,
		pollTimeout:  timeout,
		reloadFn:     reloadFn,
		stopCh:       make(chan struct{}),
		logger:       slog.Default(),
		metrics:      &WatcherMetrics{},
	}
}

// SetLogger sets a custom logger for the watcher.
func (w *Watcher) SetLogger(logger *slog.Logger) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.logger = logger
}

// Start begins watching the repository. A background goroutine polls at
// the configured interval until the context is cancelled or Stop is
// called. Returns an error if the watcher is already running or the
// initial commit cannot be read.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}

	commit, err := w.repo.GetCurrentCommit()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to get initial commit: %w", err)
	}
	w.lastCommitSHA = commit.SHA
	w.running = true
	w.mu.Unlock()

	w.logger.Info("rulebook repository watcher started",
		"poll_interval", w.pollInterval,
		"initial_commit", commit.SHA[:8])

	go w.pollLoop(ctx)

	return nil
}

// Stop gracefully stops the watcher. Returns an error if the watcher is
// not running.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return fmt.Errorf("watcher not running")
	}

	w.logger.Info("stopping rulebook repository watcher")
	close(w.stopCh)
	w.running = false

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceMu.Unlock()

	return nil
}

// IsRunning returns true if the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// pollLoop runs the change detection loop.
func (w *Watcher) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped by context cancellation")
			return
		case <-w.stopCh:
			w.logger.Info("watcher stopped")
			return
		case <-ticker.C:
			if err := w.checkForChanges(ctx); err != nil {
				w.logger.Error("error checking for changes", "error", err)
			}
		}
	}
}

// checkForChanges pulls the remote and schedules a reload when rulebook
// files changed. Commits that touch no rulebook files advance the
// tracked SHA without reloading.
func (w *Watcher) checkForChanges(ctx context.Context) error {
	w.mu.Lock()
	w.metrics.PollCount++
	w.mu.Unlock()

	pullCtx, cancel := context.WithTimeout(ctx, w.pollTimeout)
	defer cancel()

	result, err := w.repo.Pull(pullCtx)
	if err != nil {
		return fmt.Errorf("failed to pull: %w", err)
	}

	if !result.HadChanges {
		return nil
	}

	w.logger.Info("detected new commits",
		"from_sha", result.FromSHA[:8],
		"to_sha", result.ToSHA[:8],
		"changed_files", len(result.ChangedFiles))

	if !w.hasRulebookChanges(result.ChangedFiles) {
		// Remember the commit anyway so the same diff is not
		// re-examined on every poll.
		w.mu.Lock()
		w.metrics.SkippedPolls++
		w.lastCommitSHA = result.ToSHA
		w.mu.Unlock()
		w.logger.Info("no rulebook files changed, skipping reload",
			"changed_files", result.ChangedFiles)
		return nil
	}

	w.debounceReload(ctx, result.ToSHA)

	return nil
}

// hasRulebookChanges checks whether any changed file is a rulebook.
func (w *Watcher) hasRulebookChanges(files []string) bool {
	for _, file := range files {
		if isRulebookFile(file) {
			return true
		}
	}
	return false
}

// debounceReload schedules a reload after a short quiet period. When
// several changes arrive within the window only the last one fires.
func (w *Watcher) debounceReload(ctx context.Context, newSHA string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
		if err := w.performReload(ctx, newSHA); err != nil {
			w.logger.Error("reload failed", "error", err)
		}
	})
}

// performReload runs the reload callback and rolls the checkout back to
// the previous commit when the callback fails.
func (w *Watcher) performReload(ctx context.Context, newSHA string) error {
	start := time.Now()
	defer func() {
		w.mu.Lock()
		w.metrics.LastReloadDur = time.Since(start)
		w.metrics.LastReloadTime = time.Now()
		w.mu.Unlock()
	}()

	w.mu.RLock()
	prevSHA := w.lastCommitSHA
	w.mu.RUnlock()

	w.logger.Info("reloading rule catalog", "commit_sha", newSHA[:8])

	rulebookPath := w.repo.GetRulebookPath()

	if err := w.reloadFn(rulebookPath); err != nil {
		w.mu.Lock()
		w.metrics.FailedReloads++
		w.mu.Unlock()
		w.logger.Error("catalog reload failed, attempting rollback",
			"error", err,
			"current_sha", newSHA[:8],
			"rollback_to", prevSHA[:8])

		if rollbackErr := w.rollbackToPrevious(ctx, prevSHA); rollbackErr != nil {
			w.logger.Error("rollback failed",
				"error", rollbackErr,
				"target_sha", prevSHA[:8])
			return fmt.Errorf("reload failed and rollback failed: %w (rollback: %v)", err, rollbackErr)
		}

		w.logger.Info("rolled back to previous commit", "sha", prevSHA[:8])
		return fmt.Errorf("catalog reload failed: %w", err)
	}

	w.mu.Lock()
	w.lastCommitSHA = newSHA
	w.metrics.SuccessfulReloads++
	w.mu.Unlock()

	w.logger.Info("rule catalog reloaded from git",
		"from_sha", prevSHA[:8],
		"to_sha", newSHA[:8],
		"duration", time.Since(start))

	return nil
}

// rollbackToPrevious reverts the checkout and reloads the catalog from
// the rolled-back commit.
func (w *Watcher) rollbackToPrevious(ctx context.Context, sha string) error {
	if err := w.repo.Rollback(ctx, sha); err != nil {
		return fmt.Errorf("failed to rollback checkout: %w", err)
	}

	rulebookPath := w.repo.GetRulebookPath()
	if err := w.reloadFn(rulebookPath); err != nil {
		return fmt.Errorf("failed to reload catalog after rollback: %w", err)
	}

	return nil
}

// ForceCheck immediately checks for changes without waiting for the
// next poll. Useful for CLI commands that trigger a manual sync.
func (w *Watcher) ForceCheck(ctx context.Context) error {
	w.mu.RLock()
	if !w.running {
		w.mu.RUnlock()
		return fmt.Errorf("watcher not running")
	}
	w.mu.RUnlock()

	w.logger.Info("force checking for changes")
	return w.checkForChanges(ctx)
}

// GetLastCommitSHA returns the SHA of the commit the catalog was last
// successfully loaded from.
func (w *Watcher) GetLastCommitSHA() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastCommitSHA
}

// GetMetrics returns a copy of the current watcher metrics.
func (w *Watcher) GetMetrics() WatcherMetrics {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return *w.metrics
}
