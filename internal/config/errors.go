package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoForumURL is returned when no forum URL is configured.
	ErrNoForumURL = errors.New("no forum URL specified")

	// ErrInvalidForumURL is returned when the forum URL is not an
	// absolute URL with a scheme and host.
	ErrInvalidForumURL = errors.New("invalid forum URL: must be an absolute http(s) URL")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDelay is returned when a politeness delay is negative.
	// Use zero to disable the pause.
	ErrInvalidDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidDelayRange is returned when the minimum delay exceeds the
	// maximum while the pause is enabled.
	ErrInvalidDelayRange = errors.New("invalid crawl delay range: min must not exceed max")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use zero to fall back to the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used
	// at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
