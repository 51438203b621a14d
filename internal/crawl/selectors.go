package crawl

// CSS hooks for the forum's markup. These are the crawl's only structural
// assumptions about the source; everything else goes through the document
// tree generically. A layout change on the remote side surfaces as
// structural errors pointing at one of these.
const (
	// selRoomEntry matches room and thread entry headings on listing pages.
	selRoomEntry = "h3"

	// selPaging matches the pagination control on listing pages.
	selPaging = "p.paging"

	// selLastPost matches the "last post" summary inside a thread entry's
	// container row.
	selLastPost = "span.last-post a"

	// selPost matches one post fragment on a thread page.
	selPost = "div.post"

	// selByline matches the author name inside a post fragment.
	selByline = "span.post-byline strong"

	// selAuthorInfo matches the author profile snippet rows.
	selAuthorInfo = "ul.author-info span"

	// selContent matches the post body element.
	selContent = "div.entry-content"

	// selPostLink matches the post's permalink/timestamp element.
	selPostLink = "span.post-link"

	// classFirstPost marks the post fragment that opened the thread.
	classFirstPost = "firstpost"

	// movedPrefix prefixes the title of a thread entry that was moved to
	// another room. Moved entries link to a redirect, not a thread page.
	movedPrefix = "Moved:"

	// registeredPrefix labels the registration date row in the author
	// profile snippet.
	registeredPrefix = "Registered:"
)
