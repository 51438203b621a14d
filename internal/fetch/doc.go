// Package fetch performs the HTTP page fetches for the mirror.
//
// The Fetcher is the only component that touches the network. It returns
// parsed documents (goquery) so the rest of the crawl works against a tree
// queryable by tag and class, and it owns the politeness delay inserted
// between listing-page fetches.
//
// Design decision: One fetch in flight at a time, by design. The target
// forum's pagination and rate constraints do not reward parallel fetching,
// and the incremental-skip logic depends on a deterministic visit order.
package fetch
