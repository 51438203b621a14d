// Package log provides logging helpers for forummirror.
//
// It wraps log/slog with a handler that truncates oversized string
// attributes. Post bodies and markup snippets routinely run to kilobytes;
// logging them whole makes progress output unreadable and bloats any
// captured logs, so the handler caps attribute values at a fixed length
// before they reach the underlying handler.
package log
