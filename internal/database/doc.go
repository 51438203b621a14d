// Package database provides SQLite-based storage for forummirror.
//
// This package implements the Store, which persists the four entity types:
// users, rooms, threads, and posts. The posts table is keyed by the forum's
// own post identifier, which is the idempotency gate the incremental crawl
// depends on.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
//  1. No external dependencies - the database is a single file
//  2. CGO-free implementation allows easy cross-compilation
//  3. Sufficient performance for a single sequential writer
//  4. WAL mode provides good concurrent read performance
//
// Every write is a single statement, so an operator interrupt can never
// leave a half-populated row behind.
package database
