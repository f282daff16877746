package gitsource

import "time"

// Default poll settings applied when values are unset.
const (
	defaultPollInterval = 30 * time.Second
	defaultPollTimeout  = 10 * time.Second
)

// Config describes a git-hosted rulebook source.
type Config struct {
	// Repository is the clone URL (HTTPS or SSH).
	// Example: "https://github.com/acme/rulebooks.git"
	// Example: "git@github.com:acme/rulebooks.git"
	Repository string `yaml:"repository"`

	// Branch to track.
	// Default: "main"
	Branch string `yaml:"branch"`

	// Path within the repository holding rulebook files.
	// Default: "" (repository root)
	Path string `yaml:"path"`

	// Auth configures authentication against the remote.
	Auth AuthConfig `yaml:"auth"`

	// Poll configures remote change detection.
	Poll PollConfig `yaml:"poll"`

	// Clone configures the local checkout.
	Clone CloneConfig `yaml:"clone"`
}

// AuthConfig configures git authentication.
type AuthConfig struct {
	// Type selects the method: "token", "basic", "ssh" or "none".
	// Default: "none"
	Type string `yaml:"type"`

	// Token for HTTPS token authentication.
	// Required when Type is "token".
	Token string `yaml:"token"`

	// Username and Password for HTTPS basic authentication.
	// Username is required when Type is "basic".
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// SSHKeyPath points at the private key file.
	// Required when Type is "ssh".
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase for encrypted keys.
	// Optional, leave empty if the key is not encrypted.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// PollConfig configures how the remote is checked for new commits.
type PollConfig struct {
	// Enabled turns polling on. When false the repository is cloned
	// once and never refreshed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Interval between polls.
	// Default: 30s
	Interval time.Duration `yaml:"interval"`

	// Timeout for individual git operations.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// CloneConfig configures the local checkout.
type CloneConfig struct {
	// Depth for shallow clones (0 = full history). Shallow clones are
	// faster on large repositories but cannot roll back past the
	// fetched depth.
	// Default: 1
	Depth int `yaml:"depth"`

	// LocalPath where the repository is checked out.
	// Default: a directory under the system temp directory
	LocalPath string `yaml:"local_path"`

	// CleanOnStart removes the checkout before cloning.
	// Default: false
	CleanOnStart bool `yaml:"clean_on_start"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Branch: "main",
		Auth:   AuthConfig{Type: "none"},
		Poll: PollConfig{
			Enabled:  true,
			Interval: defaultPollInterval,
			Timeout:  defaultPollTimeout,
		},
		Clone: CloneConfig{Depth: 1},
	}
}
