package model

import (
	"fmt"
	"time"
)

// User is a forum account.
// Users are created the first time a byline references an unknown display
// name and are never modified afterwards, except that Registered stays nil
// when the registration date could not be resolved at first sight.
type User struct {
	// ID is the internal identifier assigned by the store.
	ID int64 `json:"id"`

	// Name is the display name. Unique across the forum.
	Name string `json:"name"`

	// Registered is the account registration timestamp.
	// Nil for legacy or deleted accounts whose profile no longer shows it.
	Registered *time.Time `json:"registered,omitempty"`
}

// String returns a string representation of the user.
func (u *User) String() string {
	return fmt.Sprintf("%s (#%d)", u.Name, u.ID)
}

// Room is a top-level forum section.
// Rooms are created once per distinct name seen on the forum root listing
// and are never deleted.
type Room struct {
	// ID is the internal identifier assigned by the store.
	ID int64 `json:"id"`

	// Name is the room title. Unique across the forum.
	Name string `json:"name"`
}

// String returns a string representation of the room.
func (r *Room) String() string {
	return fmt.Sprintf("%s (#%d)", r.Name, r.ID)
}

// Thread is a titled discussion inside a room.
// Threads are looked up by the (Name, RoomID) pair; the persisted ID is
// independent of the forum's own thread numbering.
type Thread struct {
	// ID is the internal identifier assigned by the store.
	ID int64 `json:"id"`

	// Name is the thread title.
	Name string `json:"name"`

	// RoomID references the owning room. Required.
	RoomID int64 `json:"room_id"`

	// StarterID references the user who started the thread.
	// Set at most once, from the post the source marks as the thread's
	// first post. Nil until that post is ingested.
	StarterID *int64 `json:"starter_id,omitempty"`
}

// String returns a string representation of the thread.
func (t *Thread) String() string {
	return fmt.Sprintf("%s (#%d)", t.Name, t.ID)
}

// Post is a single message inside a thread.
//
// Design decision: Post.ID is the forum's own post identifier rather than a
// store-assigned one. It is globally unique, immutable, and its presence in
// the store is the sole proof that the post has been ingested. The whole
// incremental crawl hangs off this idempotency token.
type Post struct {
	// ID is the forum-assigned post identifier. Primary key.
	ID int64 `json:"id"`

	// ThreadID references the owning thread. Required.
	ThreadID int64 `json:"thread_id"`

	// UserID references the author. Required.
	UserID int64 `json:"user_id"`

	// Posted is the absolute timestamp the post was made, in UTC.
	Posted time.Time `json:"posted"`

	// Body is the normalized text with the signature block excluded.
	Body string `json:"body"`

	// URL is the source URL the post was ingested from.
	URL string `json:"url"`
}

// String returns a string representation of the post.
func (p *Post) String() string {
	return fmt.Sprintf("post #%d in thread #%d", p.ID, p.ThreadID)
}
