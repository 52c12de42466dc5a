package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file locations used by every mode.
type Paths struct {
	DBDir     string `toml:"db_dir"`     // directory holding the per-user GOG Galaxy DBs
	CachePath string `toml:"cache_path"` // IGDB metadata cache document
}

// IGDB contains credentials and pacing for the IGDB API.
type IGDB struct {
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	APIBaseURL     string `toml:"api_base_url"`
	AuthBaseURL    string `toml:"auth_base_url"`
	RequestDelayMS int    `toml:"request_delay_ms"`
}

// Server contains settings for HTTP server mode.
type Server struct {
	Bind         string   `toml:"bind"`
	AllowedCIDRs []string `toml:"allowed_cidrs"`

	// AllowedNetworks is populated from AllowedCIDRs during normalization.
	// An empty list allows every caller.
	AllowedNetworks []*net.IPNet `toml:"-"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// User describes one participant and the location of their database.
type User struct {
	ID       int64    `toml:"id"`
	Username string   `toml:"username"`
	DB       string   `toml:"db"`
	CIDRs    []string `toml:"cidrs"` // networks this user may upload a DB from

	Networks []*net.IPNet `toml:"-"`
}

// Override is a per-title metadata override keyed by slug. It always takes
// precedence over IGDB data.
type Override struct {
	MaxPlayers int    `toml:"max_players"`
	Comment    string `toml:"comment"`
}

// Config encapsulates all configuration values for gamatrix.
type Config struct {
	Paths   Paths   `toml:"paths"`
	IGDB    IGDB    `toml:"igdb"`
	Server  Server  `toml:"server"`
	Logging Logging `toml:"logging"`

	Users []User `toml:"users"`

	// Hidden lists titles excluded from every comparison. Entries are
	// slugged during normalization so free-text titles match.
	Hidden []string `toml:"hidden"`

	// Metadata maps titles to overrides. Keys are slugged during
	// normalization.
	Metadata map[string]Override `toml:"metadata"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/gamatrix/config.toml")
}

// SampleConfig returns the embedded sample configuration file.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded, CIDRs parsed, and override keys
// slugged.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err = os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("gamatrix.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// UserByID returns the configured user with the given ID.
func (c *Config) UserByID(id int64) (User, bool) {
	for _, u := range c.Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// Usernames returns a map of user ID to display name for the given IDs.
// Users missing from the config fall back to the numeric ID string.
func (c *Config) Usernames(ids []int64) map[int64]string {
	names := make(map[int64]string, len(ids))
	for _, id := range ids {
		if u, ok := c.UserByID(id); ok && u.Username != "" {
			names[id] = u.Username
			continue
		}
		names[id] = fmt.Sprintf("%d", id)
	}
	return names
}

// DBPath returns the full path to a user's database file.
func (c *Config) DBPath(u User) string {
	if filepath.IsAbs(u.DB) {
		return u.DB
	}
	return filepath.Join(c.Paths.DBDir, u.DB)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
