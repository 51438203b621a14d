package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/forummirror/internal/database"
	"github.com/nao1215/forummirror/internal/fetch"
	"github.com/nao1215/forummirror/internal/model"
	"github.com/nao1215/forummirror/internal/normalize"
)

// Stats accumulates per-run counters for the operator summary.
type Stats struct {
	// RoomsVisited is the number of rooms whose listing was walked.
	RoomsVisited int

	// PagesFetched is the number of pages fetched from the forum.
	PagesFetched int

	// ThreadsFresh is the number of threads skipped because their
	// latest advertised post was already stored.
	ThreadsFresh int

	// ThreadsMoved is the number of moved thread entries skipped.
	ThreadsMoved int

	// PostsCreated is the number of posts ingested this run.
	PostsCreated int

	// PostsSkipped is the number of post fragments skipped because their
	// identifier was already stored.
	PostsSkipped int

	// UsersCreated is the number of users created this run.
	UsersCreated int

	// StructuralErrors is the number of rooms abandoned because an
	// expected listing element was missing.
	StructuralErrors int

	// DataErrors is the number of individual posts or threads skipped
	// because of malformed values.
	DataErrors int
}

// Mirror walks the forum and feeds the store. One Mirror performs one
// sequential crawl; it is not safe for concurrent use and does not need
// to be.
type Mirror struct {
	// fetcher performs the rate-limited page fetches.
	fetcher *fetch.Fetcher

	// store is the shared repository for all four entity types.
	store *database.Store

	// logger receives progress and skip decisions.
	logger *slog.Logger

	// now is the clock used for relative-date resolution.
	// Injected so tests can pin "Yesterday".
	now func() time.Time

	// stats accumulates run counters.
	stats Stats
}

// MirrorOption configures a Mirror.
type MirrorOption func(*Mirror)

// WithLogger sets the logger used for progress output.
func WithLogger(logger *slog.Logger) MirrorOption {
	return func(m *Mirror) {
		m.logger = logger
	}
}

// WithClock overrides the clock used for relative-date resolution.
func WithClock(now func() time.Time) MirrorOption {
	return func(m *Mirror) {
		m.now = now
	}
}

// NewMirror creates a Mirror over the given fetcher and store.
func NewMirror(fetcher *fetch.Fetcher, store *database.Store, opts ...MirrorOption) *Mirror {
	m := &Mirror{
		fetcher: fetcher,
		store:   store,
		logger:  slog.Default(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Run performs one incremental crawl starting from the forum root URL.
//
// Structural and transport failures terminate processing for the affected
// room and the walk continues with its siblings. The returned Stats are
// valid whether the run completed, was cancelled, or gave up on every
// room; the caller reports them regardless.
func (m *Mirror) Run(ctx context.Context, forumURL string) (Stats, error) {
	m.stats = Stats{}

	root, err := m.fetchPage(ctx, forumURL)
	if err != nil {
		return m.stats, err
	}

	var runErr error
	root.Find(selRoomEntry).EachWithBreak(func(_ int, entry *goquery.Selection) bool {
		err := m.mirrorRoom(ctx, forumURL, entry)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			runErr = ctx.Err()
			return false
		}

		// A bad room must not take its siblings down, but a failure that
		// is neither structural nor transport is the store misbehaving
		// and ends the run.
		var crawlErr *Error
		if !errors.As(err, &crawlErr) {
			runErr = err
			return false
		}
		if crawlErr.Kind == KindStructural {
			m.stats.StructuralErrors++
		}
		m.logger.Warn("abandoning room", "error", err)
		return true
	})

	return m.stats, runErr
}

// Stats returns the counters accumulated by the last Run.
func (m *Mirror) Stats() Stats {
	return m.stats
}

// mirrorRoom walks one room: resolves the Room record, derives the listing
// pagination, and visits listing pages from the highest page number down
// to one.
func (m *Mirror) mirrorRoom(ctx context.Context, baseURL string, entry *goquery.Selection) error {
	name, href, err := entryLink(entry)
	if err != nil {
		return err
	}
	roomURL := resolveRef(baseURL, href)

	room, err := m.store.FindRoomByName(ctx, name)
	if err != nil {
		return err
	}
	if room == nil {
		room = &model.Room{Name: name}
		if err := m.store.SaveRoom(ctx, room); err != nil {
			return err
		}
		m.logger.Info("created room", "name", name)
	} else {
		m.logger.Debug("using existing room", "room", room.String())
	}
	m.stats.RoomsVisited++

	doc, err := m.fetchPage(ctx, roomURL)
	if err != nil {
		return err
	}

	pageCount, template := pagination(doc)

	// Newest-first: descending page number is a deliberate, deterministic
	// traversal order, not a source artifact.
	for page := pageCount; page >= 1; page-- {
		pageURL := roomURL
		if template != "" {
			pageURL = fmt.Sprintf(template, page)
		}

		// The first listing page was already fetched above when the room
		// has a single page.
		listing := doc
		if template != "" {
			m.logger.Info("parsing room page", "room", name, "page", page)
			listing, err = m.fetchPage(ctx, pageURL)
			if err != nil {
				return err
			}
		}

		var pageErr error
		listing.Find(selRoomEntry).EachWithBreak(func(_ int, threadEntry *goquery.Selection) bool {
			if err := m.mirrorThreadEntry(ctx, room, pageURL, threadEntry); err != nil {
				pageErr = err
				return false
			}
			return true
		})
		if pageErr != nil {
			return pageErr
		}

		// Persist the room after each page; a no-op when unchanged, but it
		// keeps the committed state consistent with the pages walked.
		if err := m.store.SaveRoom(ctx, room); err != nil {
			return err
		}
	}

	return nil
}

// mirrorThreadEntry handles one thread entry on a listing page: skips moved
// entries, runs the freshness check, and descends only when the listing
// advertises a post not yet stored.
func (m *Mirror) mirrorThreadEntry(ctx context.Context, room *model.Room, pageURL string, entry *goquery.Selection) error {
	name, href, err := entryLink(entry)
	if err != nil {
		return err
	}

	if strings.HasPrefix(name, movedPrefix) {
		m.stats.ThreadsMoved++
		m.logger.Info("skipping moved thread", "name", name)
		return nil
	}

	latest, err := latestPostID(entry)
	if err != nil {
		return err
	}

	exists, err := m.store.PostExists(ctx, latest)
	if err != nil {
		return err
	}
	if exists {
		// Nothing new in this thread; skip it without a single fetch.
		m.stats.ThreadsFresh++
		m.logger.Debug("thread up to date", "name", name, "latestPost", latest)
		return nil
	}

	return m.mirrorThread(ctx, room, name, resolveRef(pageURL, href))
}

// mirrorThread fetches a thread and ingests its posts, visiting post pages
// from the highest page number down to one and fragments in document
// order. A missing pagination control means a single page, not an error.
func (m *Mirror) mirrorThread(ctx context.Context, room *model.Room, name, threadURL string) error {
	thread, err := m.store.FindThreadByNameAndRoom(ctx, name, room.ID)
	if err != nil {
		return err
	}
	if thread == nil {
		thread = &model.Thread{Name: name, RoomID: room.ID}
		if err := m.store.SaveThread(ctx, thread); err != nil {
			return err
		}
		m.logger.Info("created thread", "name", name, "room", room.Name)
	}

	doc, err := m.fetchPage(ctx, threadURL)
	if err != nil {
		return err
	}

	pageCount, template := pagination(doc)

	for page := pageCount; page >= 1; page-- {
		listing := doc
		if template != "" {
			listing, err = m.fetchPage(ctx, fmt.Sprintf(template, page))
			if err != nil {
				return err
			}
		}

		var pageErr error
		listing.Find(selPost).EachWithBreak(func(_ int, fragment *goquery.Selection) bool {
			err := m.ingestPost(ctx, thread, threadURL, fragment)
			if err == nil {
				return true
			}
			var crawlErr *Error
			if errors.As(err, &crawlErr) && crawlErr.Kind == KindData {
				// A malformed post must not abort the page.
				m.stats.DataErrors++
				m.logger.Warn("skipping post", "thread", name, "error", err)
				return true
			}
			pageErr = err
			return false
		})
		if pageErr != nil {
			return pageErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return nil
}

// ingestPost normalizes and stores one post fragment. The stored post
// identifier is the idempotency gate: already-stored posts are skipped
// without touching their content.
func (m *Mirror) ingestPost(ctx context.Context, thread *model.Thread, pageURL string, fragment *goquery.Selection) error {
	href, ok := fragment.Find("a").First().Attr("href")
	if !ok {
		return dataErr("locate post link", errors.New("post fragment has no link"))
	}
	postURL := resolveRef(pageURL, href)

	id, err := postIDFromURL(postURL)
	if err != nil {
		return dataErr("parse post identifier", err)
	}

	exists, err := m.store.PostExists(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		m.stats.PostsSkipped++
		m.logger.Debug("skipping stored post", "id", id)
		return nil
	}

	username := strings.TrimSpace(fragment.Find(selByline).First().Text())
	if username == "" {
		return dataErr("read post byline", errors.New("post fragment has no byline"))
	}

	user, err := m.resolveUser(ctx, username, fragment)
	if err != nil {
		return err
	}

	// The source marks the thread's opening post; it fixes the starter
	// exactly once, even across runs.
	if fragment.HasClass(classFirstPost) && thread.StarterID == nil {
		thread.StarterID = &user.ID
		if err := m.store.SaveThread(ctx, thread); err != nil {
			return err
		}
		m.logger.Info("thread starter", "thread", thread.Name, "user", username)
	}

	rawPosted := strings.TrimSpace(fragment.Find(selPostLink).First().Text())
	posted, err := normalize.ResolveTimestamp(rawPosted, m.now())
	if err != nil {
		return dataErr("resolve post timestamp", err)
	}

	content := fragment.Find(selContent).First()
	body, err := normalize.Body(content)
	if err != nil {
		return dataErr("normalize post body", err)
	}

	post := &model.Post{
		ID:       id,
		ThreadID: thread.ID,
		UserID:   user.ID,
		Posted:   posted,
		Body:     body,
		URL:      postURL,
	}
	if err := m.store.InsertPost(ctx, post); err != nil {
		return err
	}

	m.stats.PostsCreated++
	m.logger.Info("created post", "id", id, "thread", thread.Name, "user", username)
	return nil
}

// fetchPage pauses for the politeness delay, checks for cancellation, and
// fetches one page. All transport failures come back as transport-kind
// errors.
func (m *Mirror) fetchPage(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := m.fetcher.Pause(ctx); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := m.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, transportErr("fetch "+pageURL, err)
	}

	m.stats.PagesFetched++
	return doc, nil
}

// entryLink extracts the title and link of a listing entry heading.
// A heading without a link is a structural error: it signals a layout
// change, not an empty entry.
func entryLink(entry *goquery.Selection) (name, href string, err error) {
	link := entry.Find("a").First()
	href, ok := link.Attr("href")
	if !ok {
		return "", "", structuralErr("parse listing entry", errors.New("entry heading has no link"))
	}
	return strings.TrimSpace(link.Text()), href, nil
}

// pagination derives the page count and a page-URL template from a listing
// page's pagination control.
//
// The control's second-to-last link points at the highest page number; its
// URL minus the trailing number is the template. A missing control means a
// single page: the already-fetched document is the whole listing, and an
// empty template tells the caller so.
func pagination(doc *goquery.Document) (pageCount int, template string) {
	links := doc.Find(selPaging).First().Find("a")
	if links.Length() < 2 {
		return 1, ""
	}

	last := links.Eq(links.Length() - 2)
	href, ok := last.Attr("href")
	if !ok {
		return 1, ""
	}

	page, err := strconv.Atoi(strings.TrimSpace(last.Text()))
	if err != nil || page < 1 {
		return 1, ""
	}

	// ".../page/3/" becomes ".../page/%d".
	trimmed := strings.TrimSuffix(href, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return 1, ""
	}
	return page, trimmed[:idx+1] + "%d"
}

// resolveRef resolves a possibly relative href against the page it was
// found on.
func resolveRef(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}
