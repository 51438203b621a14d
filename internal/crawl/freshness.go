package crawl

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// errNoLastPost is wrapped into the structural error returned when a
// listing entry carries no last-post summary.
var errNoLastPost = errors.New("no last-post summary on listing entry")

// latestPostID extracts the identifier of a thread's most recent post from
// its listing entry, without fetching the thread itself.
//
// The listing associates each entry heading with a "last post" summary in
// the same container row; its link ends in the post's identifier. Absence
// of the summary is a structural error, not "no posts": every listed
// thread has at least its opening post.
func latestPostID(entry *goquery.Selection) (int64, error) {
	link := entry.Parent().Find(selLastPost).First()
	href, ok := link.Attr("href")
	if !ok {
		return 0, structuralErr("read last-post summary", errNoLastPost)
	}

	id, err := postIDFromURL(href)
	if err != nil {
		return 0, structuralErr("parse last-post identifier", err)
	}
	return id, nil
}

// postIDFromURL parses the numeric post identifier from its fixed position
// in a post link path: the segment following "post", as in
// ".../post/77/#p77".
func postIDFromURL(rawURL string) (int64, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, fmt.Errorf("malformed post link %q: %w", rawURL, err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		if seg != "post" || i+1 >= len(segments) {
			continue
		}
		id, err := strconv.ParseInt(segments[i+1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("non-numeric post identifier in %q: %w", rawURL, err)
		}
		return id, nil
	}

	return 0, fmt.Errorf("no post identifier in %q", rawURL)
}
