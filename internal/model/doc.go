// Package model defines the core data structures used throughout forummirror.
//
// This package contains the four persisted entity types:
//   - User: a forum account referenced by the posts and threads it authored
//   - Room: a top-level forum section
//   - Thread: a titled discussion inside a room
//   - Post: a single message inside a thread
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawl, database, report) need to use these
// types, so centralizing them prevents import cycles.
//
// Cross-entity references are plain identifier fields resolved through
// explicit repository lookups. There are no lazy relationship objects; every
// cross-entity access is a query the caller can see.
package model
