package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".forummirror"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .forummirror configuration file.
// All fields are optional; absent fields leave the defaults untouched.
type File struct {
	// ForumURL is the forum root listing to mirror.
	ForumURL string `yaml:"forumURL,omitempty"`

	// Timeout is the per-request connection timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// MinDelay and MaxDelay bound the politeness pause between
	// listing-page fetches.
	MinDelay time.Duration `yaml:"minDelay,omitempty"`
	MaxDelay time.Duration `yaml:"maxDelay,omitempty"`

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string `yaml:"userAgent,omitempty"`

	// MaxBodySize is the maximum response body size in bytes.
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`

	// DBDir is the directory holding the SQLite database.
	DBDir string `yaml:"dbDir,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers should
// handle this based on whether the path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .forummirror in the current directory
//  3. Look for .forummirror in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if
// not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Apply overlays the file's settings onto the config.
// Only fields the file actually sets are applied.
func (cf *File) Apply(c *Config) {
	if cf.ForumURL != "" {
		c.ForumURL = cf.ForumURL
	}
	if cf.Timeout != 0 {
		c.Timeout = cf.Timeout
	}
	if cf.MinDelay != 0 {
		c.MinDelay = cf.MinDelay
	}
	if cf.MaxDelay != 0 {
		c.MaxDelay = cf.MaxDelay
	}
	if cf.UserAgent != "" {
		c.UserAgent = cf.UserAgent
	}
	if cf.MaxBodySize != 0 {
		c.MaxBodySize = cf.MaxBodySize
	}
	if cf.DBDir != "" {
		c.DBDir = cf.DBDir
	}
}
