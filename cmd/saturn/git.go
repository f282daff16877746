package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"mercator-hq/saturn/pkg/rules/gitsource"
)

var gitFlags struct {
	limit  int
	to     string
	format string
}

var gitCmd = &cobra.Command{
	Use:   "git",
	Short: "Manage the git rulebook source",
	Long: `Manage the git rulebook source.

The git command provides tools for rulebooks stored in a git
repository, including version tracking, synchronization, and rollback.

Subcommands:
  version  - Show current rulebook version (commit info)
  sync     - Force pull latest rulebooks from the remote
  history  - Show rulebook commit history
  rollback - Roll rulebooks back to a specific commit

Examples:
  # Show current rulebook version
  saturn git version

  # Force sync with the remote
  saturn git sync

  # Show last 10 commits
  saturn git history --limit 10

  # Rollback to specific commit
  saturn git rollback --to a1b2c3d4`,
}

var gitVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show current rulebook version",
	Long: `Show current rulebook version information.

Displays the active commit SHA, author, timestamp, and commit message
of the local rulebook checkout.

Examples:
  # Show version info
  saturn git version

  # Output as JSON
  saturn git version --format json`,
	RunE: showGitVersion,
}

var gitSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Force pull latest rulebooks",
	Long: `Force pull latest rulebooks from the git remote.

This command manually triggers a git pull. The running catalog service
picks the new commit up on its next poll; one-shot check invocations
see it immediately.

Examples:
  # Sync with remote
  saturn git sync`,
	RunE: syncGitRulebooks,
}

var gitHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show rulebook commit history",
	Long: `Show rulebook commit history.

Displays the commit history of the rulebook repository, including
commit SHA, author, timestamp, and message. History reach depends on
the clone depth (rules.git.clone.depth).

Examples:
  # Show last 10 commits
  saturn git history --limit 10

  # Output as JSON
  saturn git history --limit 10 --format json`,
	RunE: showGitHistory,
}

var gitRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Roll rulebooks back to a specific commit",
	Long: `Roll rulebooks back to a specific git commit.

This command checks out the target commit in the local rulebook
checkout. The next catalog load reads the rulebooks as of that commit.
Rollback reach depends on the clone depth (rules.git.clone.depth).

Examples:
  # Rollback to commit
  saturn git rollback --to a1b2c3d4e5f6

  # Rollback to short SHA
  saturn git rollback --to a1b2c3d`,
	RunE: rollbackGitRulebooks,
}

func init() {
	rootCmd.AddCommand(gitCmd)
	gitCmd.AddCommand(gitVersionCmd, gitSyncCmd, gitHistoryCmd, gitRollbackCmd)

	gitCmd.PersistentFlags().StringVar(&gitFlags.format, "format", "text", "output format: text, json")

	// Flags for history command
	gitHistoryCmd.Flags().IntVar(&gitFlags.limit, "limit", 10, "number of commits to show")

	// Flags for rollback command
	gitRollbackCmd.Flags().StringVar(&gitFlags.to, "to", "", "target commit SHA")
	_ = gitRollbackCmd.MarkFlagRequired("to")
}

// openGitRepository loads config and opens the rulebook checkout. Clone
// reuses an existing checkout, so repeated invocations are cheap.
func openGitRepository(ctx context.Context) (*gitsource.Repository, error) {
	cfg, err := loadSaturnConfig()
	if err != nil {
		return nil, err
	}
	if err := initLogging(cfg, "warn"); err != nil {
		return nil, err
	}

	if !cfg.Rules.Git.Enabled {
		return nil, fmt.Errorf("git commands require the git source (set rules.git.enabled: true)")
	}

	repo, err := gitsource.NewRepository(gitsourceConfig(&cfg.Rules.Git))
	if err != nil {
		return nil, fmt.Errorf("failed to open git source: %w", err)
	}
	if err := repo.Clone(ctx); err != nil {
		return nil, fmt.Errorf("failed to clone repository: %w", err)
	}

	return repo, nil
}

func showGitVersion(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := openGitRepository(ctx)
	if err != nil {
		return err
	}

	commit, err := repo.GetCurrentCommit()
	if err != nil {
		return fmt.Errorf("failed to get current commit: %w", err)
	}

	switch gitFlags.format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(commit)
	default:
		fmt.Printf("Current Rulebook Version:\n")
		fmt.Printf("  Commit:     %s\n", commit.SHA)
		fmt.Printf("  Branch:     %s\n", commit.Branch)
		fmt.Printf("  Author:     %s\n", commit.Author)
		fmt.Printf("  Timestamp:  %s\n", commit.Timestamp.Format(time.RFC3339))
		fmt.Printf("  Repository: %s\n", commit.Repository)
		if commit.Message != "" {
			fmt.Printf("  Message:    %s\n", commit.Message)
		}
	}

	return nil
}

func syncGitRulebooks(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := openGitRepository(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Syncing with git remote...")

	result, err := repo.Pull(ctx)
	if err != nil {
		return fmt.Errorf("failed to sync: %w", err)
	}

	if !result.HadChanges {
		fmt.Printf("✓ Already up to date (commit %s)\n", result.ToSHA[:8])
		return nil
	}

	fmt.Printf("✓ Synced %s..%s\n", result.FromSHA[:8], result.ToSHA[:8])
	if len(result.ChangedFiles) > 0 {
		fmt.Printf("  %d file(s) changed:\n", len(result.ChangedFiles))
		for _, file := range result.ChangedFiles {
			fmt.Printf("    %s\n", file)
		}
	}

	return nil
}

func showGitHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := openGitRepository(ctx)
	if err != nil {
		return err
	}

	commits, err := repo.GetCommitHistory(gitFlags.limit)
	if err != nil {
		return fmt.Errorf("failed to get commit history: %w", err)
	}

	if len(commits) == 0 {
		fmt.Println("No commits found")
		return nil
	}

	switch gitFlags.format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(commits)
	default:
		fmt.Printf("Rulebook Commit History (last %d commits):\n\n", gitFlags.limit)
		for i, commit := range commits {
			fmt.Printf("%d. %s\n", i+1, commit.SHA[:8])
			fmt.Printf("   Author:    %s\n", commit.Author)
			fmt.Printf("   Date:      %s\n", commit.Timestamp.Format(time.RFC3339))
			fmt.Printf("   Branch:    %s\n", commit.Branch)
			if commit.Message != "" {
				// Truncate long messages
				message := commit.Message
				if len(message) > 60 {
					message = message[:60] + "..."
				}
				fmt.Printf("   Message:   %s\n", message)
			}
			fmt.Println()
		}
	}

	return nil
}

func rollbackGitRulebooks(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := openGitRepository(ctx)
	if err != nil {
		return err
	}

	currentCommit, err := repo.GetCurrentCommit()
	if err != nil {
		return fmt.Errorf("failed to get current commit: %w", err)
	}

	fmt.Printf("Current commit: %s\n", currentCommit.SHA[:8])
	fmt.Printf("Rolling back to: %s\n", gitFlags.to)

	if err := repo.Rollback(ctx, gitFlags.to); err != nil {
		return fmt.Errorf("failed to rollback: %w", err)
	}

	newCommit, err := repo.GetCurrentCommit()
	if err != nil {
		return fmt.Errorf("failed to get new commit: %w", err)
	}

	fmt.Printf("✓ Successfully rolled back to commit %s\n", newCommit.SHA[:8])
	fmt.Printf("  Author: %s\n", newCommit.Author)
	fmt.Printf("  Date:   %s\n", newCommit.Timestamp.Format(time.RFC3339))

	return nil
}
