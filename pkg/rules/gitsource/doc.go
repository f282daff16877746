// Package gitsource provides Git repository integration for rulebook
// distribution.
//
// The package clones a rulebook repository, polls it for new commits,
// and triggers catalog reloads when rulebook files change. It supports
// HTTPS and SSH authentication, branch-based environments, and safe
// rollback when a reload fails.
//
// # Basic Usage
//
//	cfg := gitsource.DefaultConfig()
//	cfg.Repository = "https://github.com/acme/rulebooks.git"
//	cfg.Branch = "main"
//	cfg.Path = "rules/"
//
//	repo, err := gitsource.NewRepository(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := repo.Clone(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//
// The checkout is an ordinary directory, so the rule loader consumes it
// like any other configured path:
//
//	mgr, err := loader.NewManager(&loader.Config{
//		Paths: []string{repo.GetRulebookPath()},
//	})
//
// # Change Detection
//
// The watcher polls the remote and reloads only when rulebook files
// changed:
//
//	watcher := gitsource.NewWatcher(repo, 30*time.Second, 10*time.Second, func(path string) error {
//		return mgr.Reload(context.Background())
//	})
//	watcher.Start(context.Background())
//
// # Authentication
//
// Supported authentication methods:
//   - Token (HTTPS): GitHub, GitLab, Bitbucket access tokens
//   - Basic (HTTPS): username and password
//   - SSH: public key authentication
//   - None: public repositories
//
// # Branch-Based Environments
//
// Use different branches for different environments:
//   - dev branch for draft rulebooks
//   - main branch for the production catalog
//
// # Rollback
//
// A failed reload rolls the checkout back to the previous commit
// automatically. A specific version can also be restored by hand:
//
//	if err := repo.Rollback(ctx, "a1b2c3d4"); err != nil {
//		log.Fatal(err)
//	}
package gitsource
