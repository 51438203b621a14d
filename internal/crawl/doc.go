// Package crawl implements the incremental mirror walk.
//
// # Architecture
//
// The Mirror type is the crawl scheduler. It walks the forum top-down
// (room listing, room pages, thread entries, thread pages, post fragments)
// and decides at each level whether a subtree needs visiting at all. Two
// pieces of state make re-runs incremental:
//
//   - The freshness check reads the latest-post identifier a listing entry
//     advertises, without fetching the thread. If that post is already
//     stored, the whole thread is skipped.
//   - Post identifiers are the idempotency tokens: a stored identifier
//     means the post was ingested, so re-encountering it is a cheap skip.
//
// # Ordering
//
// Within a room, listing pages are visited in strictly decreasing page
// number order; within a page, entries are visited in document order.
// The walk is strictly sequential. Skip decisions made late in a run
// depend on repository state written earlier in the same run, so no
// reordering or interleaving is permitted.
//
// # Error scoping
//
// Structural errors (an expected listing element is missing) mean the
// remote layout changed; they abort the current room and are counted,
// while sibling rooms continue. Data errors (unparseable timestamp or
// identifier, missing byline) are fatal only for the single post or
// thread being processed. Cancellation is not an error: committed
// entities stay committed and the run summary is still reported.
package crawl
