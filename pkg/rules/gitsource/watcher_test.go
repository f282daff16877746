package gitsource

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newClonedRepo initializes a source repository and clones it, returning
// the managed clone plus the source handles for adding commits.
func newClonedRepo(t *testing.T) (*Repository, *gogit.Repository, string) {
	t.Helper()

	sourceDir := t.TempDir()
	source := createTestRepo(t, sourceDir)

	repo, err := NewRepository(testConfig(sourceDir, t.TempDir()))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	if err := repo.Clone(context.Background()); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}

	return repo, source, sourceDir
}

func TestNewWatcher(t *testing.T) {
	repo, _, _ := newClonedRepo(t)

	reloadFn := func(path string) error { return nil }
	watcher := NewWatcher(repo, 1*time.Second, 5*time.Second, reloadFn)

	if watcher == nil {
		t.Fatal("NewWatcher() returned nil")
	}
	if watcher.pollInterval != 1*time.Second {
		t.Errorf("pollInterval = %v, want 1s", watcher.pollInterval)
	}
	if watcher.pollTimeout != 5*time.Second {
		t.Errorf("pollTimeout = %v, want 5s", watcher.pollTimeout)
	}
	if watcher.reloadFn == nil {
		t.Error("reloadFn not set")
	}
	if watcher.running {
		t.Error("watcher running before Start()")
	}
}

func TestWatcher_StartStop(t *testing.T) {
	repo, _, _ := newClonedRepo(t)

	watcher := NewWatcher(repo, 1*time.Second, 5*time.Second, func(string) error { return nil })
	watcher.SetLogger(discardLogger())

	ctx := context.Background()
	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if !watcher.IsRunning() {
		t.Error("IsRunning() = false after Start()")
	}
	if watcher.GetLastCommitSHA() == "" {
		t.Error("GetLastCommitSHA() empty after Start()")
	}

	if err := watcher.Start(ctx); err == nil {
		t.Error("second Start() should error")
	}

	if err := watcher.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if watcher.IsRunning() {
		t.Error("IsRunning() = true after Stop()")
	}

	if err := watcher.Stop(); err == nil {
		t.Error("second Stop() should error")
	}
}

func TestWatcher_StartWithoutClone(t *testing.T) {
	sourceDir := t.TempDir()
	createTestRepo(t, sourceDir)

	repo, err := NewRepository(testConfig(sourceDir, t.TempDir()))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}

	// No Clone() call.
	watcher := NewWatcher(repo, 1*time.Second, 5*time.Second, func(string) error { return nil })
	watcher.SetLogger(discardLogger())

	if err := watcher.Start(context.Background()); err == nil {
		t.Error("Start() without clone should error")
	}
}

func TestWatcher_GetLastCommitSHA(t *testing.T) {
	repo, _, _ := newClonedRepo(t)

	watcher := NewWatcher(repo, 1*time.Second, 5*time.Second, func(string) error { return nil })
	watcher.SetLogger(discardLogger())

	if err := watcher.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() { _ = watcher.Stop() }()

	sha := watcher.GetLastCommitSHA()
	if len(sha) != 40 {
		t.Errorf("GetLastCommitSHA() length = %d, want 40", len(sha))
	}
}

func TestWatcher_ContextCancellation(t *testing.T) {
	repo, _, _ := newClonedRepo(t)

	watcher := NewWatcher(repo, 50*time.Millisecond, 5*time.Second, func(string) error { return nil })
	watcher.SetLogger(discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	cancel()

	// Wait for the poll loop to exit.
	time.Sleep(150 * time.Millisecond)

	// The running flag tracks explicit Start/Stop, so Stop still works.
	if err := watcher.Stop(); err != nil {
		t.Errorf("Stop() after context cancellation error = %v", err)
	}
}

func TestWatcher_GetMetrics(t *testing.T) {
	repo, _, _ := newClonedRepo(t)

	watcher := NewWatcher(repo, 50*time.Millisecond, 5*time.Second, func(string) error { return nil })
	watcher.SetLogger(discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() { _ = watcher.Stop() }()

	deadline := time.Now().Add(2 * time.Second)
	for watcher.GetMetrics().PollCount == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}

	if watcher.GetMetrics().PollCount == 0 {
		t.Error("PollCount = 0 after polling window, want > 0")
	}
}

func TestWatcher_HasRulebookChanges(t *testing.T) {
	repo, _, _ := newClonedRepo(t)
	watcher := NewWatcher(repo, 1*time.Second, 5*time.Second, func(string) error { return nil })

	tests := []struct {
		name  string
		files []string
		want  bool
	}{
		{
			name:  "yaml file",
			files: []string{"credit-rules.yaml"},
			want:  true,
		},
		{
			name:  "yml file",
			files: []string{"transport-rules.yml"},
			want:  true,
		},
		{
			name:  "mixed with rulebook",
			files: []string{"README.md", "checks/bills.yaml", "Makefile"},
			want:  true,
		},
		{
			name:  "no rulebook files",
			files: []string{"README.md", "Makefile", "scripts/deploy.sh"},
			want:  false,
		},
		{
			name:  "empty list",
			files: []string{},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := watcher.hasRulebookChanges(tt.files); got != tt.want {
				t.Errorf("hasRulebookChanges() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWatcher_ForceCheck(t *testing.T) {
	repo, _, _ := newClonedRepo(t)

	watcher := NewWatcher(repo, 1*time.Hour, 5*time.Second, func(string) error { return nil })
	watcher.SetLogger(discardLogger())

	// Not running yet.
	if err := watcher.ForceCheck(context.Background()); err == nil {
		t.Error("ForceCheck() on stopped watcher should error")
	}

	if err := watcher.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() { _ = watcher.Stop() }()

	if err := watcher.ForceCheck(context.Background()); err != nil {
		t.Errorf("ForceCheck() error = %v", err)
	}
}

func TestWatcher_ReloadOnRulebookChange(t *testing.T) {
	repo, source, sourceDir := newClonedRepo(t)

	reloadCh := make(chan string, 4)
	reloadFn := func(path string) error {
		reloadCh <- path
		return nil
	}

	watcher := NewWatcher(repo, 100*time.Millisecond, 5*time.Second, reloadFn)
	watcher.SetLogger(discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() { _ = watcher.Stop() }()

	newSHA := commitFile(t, source, sourceDir, "sanctions-rules.yaml", testRulebook)

	var gotPath string
	select {
	case gotPath = <-reloadCh:
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback not invoked after rulebook commit")
	}

	if gotPath != repo.GetRulebookPath() {
		t.Errorf("reload path = %s, want %s", gotPath, repo.GetRulebookPath())
	}

	// The pulled checkout must contain the new rulebook.
	if _, err := os.Stat(filepath.Join(gotPath, "sanctions-rules.yaml")); err != nil {
		t.Errorf("checkout missing pulled rulebook: %v", err)
	}

	// The watcher records the new commit once the reload succeeds.
	deadline := time.Now().Add(2 * time.Second)
	for watcher.GetLastCommitSHA() != newSHA && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if got := watcher.GetLastCommitSHA(); got != newSHA {
		t.Errorf("GetLastCommitSHA() = %s, want %s", got, newSHA)
	}

	if metrics := watcher.GetMetrics(); metrics.SuccessfulReloads == 0 {
		t.Error("SuccessfulReloads = 0, want > 0")
	}
}

func TestWatcher_SkipsNonRulebookCommit(t *testing.T) {
	repo, source, sourceDir := newClonedRepo(t)

	var reloads atomic.Int32
	reloadFn := func(path string) error {
		reloads.Add(1)
		return nil
	}

	watcher := NewWatcher(repo, 100*time.Millisecond, 5*time.Second, reloadFn)
	watcher.SetLogger(discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() { _ = watcher.Stop() }()

	newSHA := commitFile(t, source, sourceDir, "README.md", "# documentation only\n")

	// Wait until the commit was seen and skipped.
	deadline := time.Now().Add(5 * time.Second)
	for watcher.GetLastCommitSHA() != newSHA && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}

	if got := watcher.GetLastCommitSHA(); got != newSHA {
		t.Fatalf("GetLastCommitSHA() = %s, want %s", got, newSHA)
	}
	if n := reloads.Load(); n != 0 {
		t.Errorf("reload callback invoked %d times for non-rulebook commit", n)
	}
	if metrics := watcher.GetMetrics(); metrics.SkippedPolls == 0 {
		t.Error("SkippedPolls = 0, want > 0")
	}
}

func TestWatcher_FailedReloadRollsBack(t *testing.T) {
	repo, source, sourceDir := newClonedRepo(t)

	initial, err := repo.GetCurrentCommit()
	if err != nil {
		t.Fatalf("GetCurrentCommit() error = %v", err)
	}

	// Fail while the poisoned rulebook is present in the checkout,
	// succeed again once rollback removed it.
	rolledBack := make(chan struct{}, 1)
	var calls atomic.Int32
	reloadFn := func(path string) error {
		calls.Add(1)
		if _, err := os.Stat(filepath.Join(path, "broken-rules.yaml")); err == nil {
			return errors.New("catalog rejected")
		}
		select {
		case rolledBack <- struct{}{}:
		default:
		}
		return nil
	}

	watcher := NewWatcher(repo, 100*time.Millisecond, 5*time.Second, reloadFn)
	watcher.SetLogger(discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() { _ = watcher.Stop() }()

	commitFile(t, source, sourceDir, "broken-rules.yaml", "rules: [")

	select {
	case <-rolledBack:
	case <-time.After(5 * time.Second):
		t.Fatal("rollback reload not invoked after failed reload")
	}

	if got := watcher.GetLastCommitSHA(); got != initial.SHA {
		t.Errorf("GetLastCommitSHA() = %s, want previous good commit %s", got, initial.SHA)
	}

	commit, err := repo.GetCurrentCommit()
	if err != nil {
		t.Fatalf("GetCurrentCommit() error = %v", err)
	}
	if commit.SHA != initial.SHA {
		t.Errorf("checkout HEAD = %s, want rolled back %s", commit.SHA, initial.SHA)
	}

	if n := calls.Load(); n < 2 {
		t.Errorf("reload callback invoked %d times, want at least 2 (failure then rollback)", n)
	}

	if metrics := watcher.GetMetrics(); metrics.FailedReloads == 0 {
		t.Error("FailedReloads = 0, want > 0")
	}
}
