package log

import (
	"context"
	"log/slog"
	"os"
	"unicode/utf8"
)

// MaxAttrLen is the maximum length of a logged string attribute value.
// Longer values are truncated and suffixed with an ellipsis marker.
const MaxAttrLen = 200

// truncationMarker is appended to truncated attribute values.
const truncationMarker = "...(truncated)"

// TrimHandler wraps an slog.Handler and truncates oversized string
// attribute values before passing records on.
//
// Design decision: We use a handler wrapper rather than trimming at each
// call site because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites stay readable; no component needs to know the cap
type TrimHandler struct {
	// handler is the underlying slog handler that receives trimmed records.
	handler slog.Handler
}

// NewTrimHandler creates a TrimHandler wrapping the given handler.
// If handler is nil, the returned TrimHandler uses slog.Default().Handler().
func NewTrimHandler(handler slog.Handler) *TrimHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &TrimHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *TrimHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle trims the record's attributes and passes it to the underlying handler.
func (h *TrimHandler) Handle(ctx context.Context, r slog.Record) error {
	trimmed := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		trimmed.AddAttrs(trimAttr(a))
		return true
	})

	return h.handler.Handle(ctx, trimmed)
}

// WithAttrs returns a new TrimHandler whose underlying handler has the
// given (trimmed) attributes.
func (h *TrimHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	trimmed := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		trimmed = append(trimmed, trimAttr(a))
	}
	return &TrimHandler{handler: h.handler.WithAttrs(trimmed)}
}

// WithGroup returns a new TrimHandler with the given group name.
func (h *TrimHandler) WithGroup(name string) slog.Handler {
	return &TrimHandler{handler: h.handler.WithGroup(name)}
}

// trimAttr truncates a string attribute value that exceeds MaxAttrLen.
// Group attributes are trimmed recursively; other kinds pass through.
func trimAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if len(s) <= MaxAttrLen {
			return a
		}
		cut := MaxAttrLen
		// Don't split a multi-byte rune.
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return slog.String(a.Key, s[:cut]+truncationMarker)
	case slog.KindGroup:
		group := a.Value.Group()
		trimmed := make([]any, 0, len(group))
		for _, g := range group {
			trimmed = append(trimmed, trimAttr(g))
		}
		return slog.Group(a.Key, trimmed...)
	default:
		return a
	}
}

// Setup creates a structured logger writing to stderr.
// Verbose enables debug-level output; otherwise only info and above are
// logged. The returned logger trims oversized attributes.
func Setup(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(NewTrimHandler(handler))
}
