// Package main provides the entry point for the forummirror CLI.
//
// forummirror maintains an incremental local mirror of a web forum.
// It crawls rooms, threads, and posts, and stores them in a local
// SQLite database. Re-running the mirror only fetches what changed.
//
// Usage:
//
//	forummirror mirror
//	forummirror stats --markdown
//
// See --help for all available options.
package main

// main is the entry point for forummirror.
func main() {
	Execute()
}
