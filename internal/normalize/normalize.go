package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/forummirror/internal/render"
)

// ErrEmptyContent is returned when a post fragment has no content element.
var ErrEmptyContent = errors.New("post fragment has no content")

// Body reduces a post's content element to normalized paragraph text.
//
// It walks the element's direct children in document order, skipping
// top-level text nodes (inter-element whitespace) and the signature block,
// renders every remaining child, and joins the results with a blank line.
//
// The signature block is the first nested block-level element found inside
// the content; forums embed at most one per post. Passing the content's own
// first child as the signature therefore excludes exactly that subtree and
// nothing else.
func Body(content *goquery.Selection) (string, error) {
	if len(content.Nodes) == 0 {
		return "", ErrEmptyContent
	}

	signature := signatureNode(content)

	var parts []string
	for c := content.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c == signature {
			continue
		}
		if text := render.Text(c); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

// signatureNode locates the signature block inside the content element:
// the first nested div, or nil when the post carries no signature.
func signatureNode(content *goquery.Selection) *html.Node {
	sig := content.Find("div").First()
	if len(sig.Nodes) == 0 {
		return nil
	}
	return sig.Nodes[0]
}

// Display timestamp layouts the forum emits for absolute dates.
// The forum renders ISO 8601 with either a space or a T separator.
var absoluteLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Relative date prefixes. Matching is case-sensitive: the forum renders
// these as literal capitalized words.
const (
	prefixYesterday = "Yesterday"
	prefixToday     = "Today"
)

// ResolveTimestamp parses a display timestamp into an absolute UTC time.
//
// Inputs are either an absolute date/time or a relative form starting with
// the literal word "Yesterday" or "Today" followed by a time-of-day. The
// relative prefix is substituted with the calendar date it names (resolved
// against now, which must be UTC) and the result parsed as a full
// timestamp.
//
// An unparseable input is a data error: the caller cannot ingest a post
// without a trustworthy posted time.
func ResolveTimestamp(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	now = now.UTC()

	switch {
	case strings.HasPrefix(s, prefixYesterday):
		day := now.AddDate(0, 0, -1)
		s = day.Format("2006-01-02") + s[len(prefixYesterday):]
	case strings.HasPrefix(s, prefixToday):
		s = now.Format("2006-01-02") + s[len(prefixToday):]
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
