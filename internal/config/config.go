package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These are chosen to stay well within acceptable request cadence for a
// community-run forum; the mirror is a guest, not a load test.
const (
	// DefaultForumURL is the forum root listing to mirror.
	DefaultForumURL = "https://forum.audiogames.net/"

	// DefaultTimeout is the per-request connection timeout. Forum pages
	// are small; anything slower than this is a problem worth surfacing.
	DefaultTimeout = 30 * time.Second

	// DefaultMinDelay and DefaultMaxDelay bound the randomized pause
	// between listing-page fetches. The pause is drawn uniformly from
	// this range so the request cadence doesn't look mechanical.
	DefaultMinDelay = 1 * time.Second
	DefaultMaxDelay = 3 * time.Second

	// DefaultUserAgent identifies the mirror in HTTP requests.
	// A descriptive User-Agent lets forum operators identify mirror
	// traffic in their logs.
	DefaultUserAgent = "forummirror/1.0 (+https://github.com/nao1215/forummirror)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is generous for forum HTML while preventing memory exhaustion
	// from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "forummirror"
)

// Config holds all configuration options for forummirror.
// This struct is populated from defaults, the optional config file, and
// CLI flags, then passed through the application via dependency injection
// rather than global state.
type Config struct {
	// ForumURL is the root listing of the forum to mirror.
	ForumURL string

	// Timeout is the connection timeout for each HTTP request.
	Timeout time.Duration

	// MinDelay and MaxDelay bound the randomized politeness pause between
	// listing-page fetches. The pause applies uniformly between all
	// listing-page fetches, never before the first one. MaxDelay zero
	// disables the pause.
	MinDelay time.Duration
	MaxDelay time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// DBDir is the directory holding the SQLite database.
	// Defaults to the XDG data directory.
	DBDir string

	// Verbose enables debug-level log output.
	Verbose bool

	// JSONReport selects JSON output for the stats report.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output for the stats report.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the stats report.
	// Empty means stdout.
	ReportFile string

	// ConfigFilePath is the explicit path to the configuration file.
	// Empty means search the default locations.
	ConfigFilePath string
}

// NewConfig creates a Config with default values.
//
// Design decision: We use a constructor instead of relying on zero values
// because most defaults are non-zero. It also documents what the defaults
// are in one place.
func NewConfig() *Config {
	return &Config{
		ForumURL:    DefaultForumURL,
		Timeout:     DefaultTimeout,
		MinDelay:    DefaultMinDelay,
		MaxDelay:    DefaultMaxDelay,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for forummirror.
// On Linux: ~/.local/share/forummirror
// On macOS: ~/Library/Application Support/forummirror
// On Windows: %LOCALAPPDATA%\forummirror
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first error found: fixing one error often makes later
// ones irrelevant.
func (c *Config) Validate() error {
	if c.ForumURL == "" {
		return ErrNoForumURL
	}
	u, err := url.Parse(c.ForumURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidForumURL
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MinDelay < 0 || c.MaxDelay < 0 {
		return ErrInvalidDelay
	}
	if c.MaxDelay > 0 && c.MinDelay > c.MaxDelay {
		return ErrInvalidDelayRange
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
