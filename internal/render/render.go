// Package render converts markup fragments into plain text.
//
// The renderer is a pure function over parsed HTML nodes: it produces a
// best-effort markdown-flavored rendering of nested markup (emphasis,
// links, code, lists, quotes) with no failure modes. Callers that need
// structure-aware handling (signature stripping, paragraph joining) live
// in the normalize package.
package render

import (
	"strings"

	"golang.org/x/net/html"
)

// Text renders a markup fragment as markdown-flavored plain text.
// Unknown elements contribute their children's text; nothing errors.
func Text(n *html.Node) string {
	var sb strings.Builder
	renderNode(&sb, n)

	s := sb.String()
	for strings.Contains(s, " \n") {
		s = strings.ReplaceAll(s, " \n", "\n")
	}
	return strings.TrimSpace(collapseBlankLines(s))
}

// renderNode writes the textual rendering of a node and its children.
func renderNode(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		text := collapseSpace(n.Data)
		if text == "" {
			// A whitespace-only node still separates its neighbors.
			if n.Data != "" && needsSpace(sb.String()) {
				sb.WriteString(" ")
			}
			return
		}
		sb.WriteString(text)
		return
	case html.ElementNode:
		// handled below
	default:
		// Comments, doctypes and documents contribute only their children.
		renderChildren(sb, n)
		return
	}

	switch n.Data {
	case "br":
		sb.WriteString("\n")
	case "p", "div":
		renderChildren(sb, n)
		sb.WriteString("\n\n")
	case "strong", "b":
		sb.WriteString("**")
		renderChildren(sb, n)
		sb.WriteString("**")
	case "em", "i":
		sb.WriteString("*")
		renderChildren(sb, n)
		sb.WriteString("*")
	case "code":
		sb.WriteString("`")
		renderChildren(sb, n)
		sb.WriteString("`")
	case "pre":
		sb.WriteString("\n```\n")
		sb.WriteString(rawText(n))
		sb.WriteString("\n```\n")
	case "a":
		renderAnchor(sb, n)
	case "ul", "ol":
		renderList(sb, n)
	case "li":
		// A stray list item outside ul/ol still renders as one.
		sb.WriteString("- ")
		renderChildren(sb, n)
		sb.WriteString("\n")
	case "blockquote":
		renderBlockquote(sb, n)
	case "img":
		if alt := attr(n, "alt"); alt != "" {
			sb.WriteString(alt)
		}
	case "script", "style":
		// Non-content elements.
	default:
		renderChildren(sb, n)
	}
}

// renderChildren renders all child nodes in document order.
func renderChildren(sb *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(sb, c)
	}
}

// renderAnchor renders a link as [text](href), or just the text when the
// href is empty or a fragment-only reference.
func renderAnchor(sb *strings.Builder, n *html.Node) {
	href := strings.TrimSpace(attr(n, "href"))

	var inner strings.Builder
	renderChildren(&inner, n)
	text := strings.TrimSpace(inner.String())

	if href == "" || strings.HasPrefix(href, "#") {
		sb.WriteString(text)
		return
	}
	if text == "" {
		text = href
	}
	sb.WriteString("[" + text + "](" + href + ")")
}

// renderList renders ul/ol items as one "- item" line each.
func renderList(sb *strings.Builder, n *html.Node) {
	sb.WriteString("\n")
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		var item strings.Builder
		renderChildren(&item, c)
		sb.WriteString("- " + strings.TrimSpace(item.String()) + "\n")
	}
}

// renderBlockquote prefixes each quoted line with "> ".
func renderBlockquote(sb *strings.Builder, n *html.Node) {
	var inner strings.Builder
	renderChildren(&inner, n)

	sb.WriteString("\n")
	for _, line := range strings.Split(strings.TrimSpace(inner.String()), "\n") {
		sb.WriteString("> " + strings.TrimSpace(line) + "\n")
	}
}

// rawText collects the text content of a node without markdown markup.
// Used for pre blocks where whitespace is significant.
func rawText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Trim(sb.String(), "\n")
}

// attr retrieves an attribute value from an HTML node.
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// collapseSpace folds runs of whitespace inside text nodes into single
// spaces, preserving nothing of the source indentation.
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	joined := strings.Join(fields, " ")
	// Keep a leading/trailing space when the original had one, so words
	// separated by tags don't fuse together.
	if joined != "" {
		if startsWithSpace(s) {
			joined = " " + joined
		}
		if endsWithSpace(s) {
			joined += " "
		}
	}
	return joined
}

// needsSpace reports whether appending a separating space to s would
// actually separate two words: s must be non-empty and not already end
// in whitespace.
func needsSpace(s string) bool {
	return len(s) > 0 && s[len(s)-1] != ' ' && s[len(s)-1] != '\n'
}

func startsWithSpace(s string) bool {
	return len(s) > 0 && (s[0] == ' ' || s[0] == '\n' || s[0] == '\t' || s[0] == '\r')
}

func endsWithSpace(s string) bool {
	return len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\n' || s[len(s)-1] == '\t' || s[len(s)-1] == '\r')
}

// collapseBlankLines reduces runs of three or more newlines to a single
// blank line so block elements don't stack separators.
func collapseBlankLines(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}
