package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/forummirror/internal/model"
)

// newTestStore creates a Store backed by a temporary directory.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return store
}

// TestOpen tests store creation behavior.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		defer store.Close()

		if _, err := os.Stat(filepath.Join(dir, "forummirror.db")); err != nil {
			t.Errorf("expected database file to exist: %v", err)
		}
		if got, want := store.Path(), filepath.Join(dir, "forummirror.db"); got != want {
			t.Errorf("expected path %q, got %q", want, got)
		}
	})

	t.Run("fails when database missing and creation disabled", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{EnableWAL: true})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}

		ctx := context.Background()
		room := &model.Room{Name: "General"}
		if err := store.SaveRoom(ctx, room); err != nil {
			t.Fatalf("failed to save room: %v", err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("failed to close store: %v", err)
		}

		reopened, err := Open(dir, Options{EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen store: %v", err)
		}
		defer reopened.Close()

		found, err := reopened.FindRoomByName(ctx, "General")
		if err != nil {
			t.Fatalf("failed to find room: %v", err)
		}
		if found == nil {
			t.Fatal("expected room to survive reopen")
		}
		if found.ID != room.ID {
			t.Errorf("expected room id %d, got %d", room.ID, found.ID)
		}
	})
}

// TestStoreUsers tests user persistence and lookup.
func TestStoreUsers(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	t.Run("find missing user returns nil", func(t *testing.T) {
		found, err := store.FindUserByName(ctx, "nobody")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found != nil {
			t.Errorf("expected nil, got %+v", found)
		}
	})

	t.Run("save assigns id and roundtrips", func(t *testing.T) {
		registered := time.Date(2019, 6, 1, 10, 30, 0, 0, time.UTC)
		u := &model.User{Name: "alice", Registered: &registered}

		if err := store.SaveUser(ctx, u); err != nil {
			t.Fatalf("failed to save user: %v", err)
		}
		if u.ID == 0 {
			t.Fatal("expected assigned user id")
		}

		found, err := store.FindUserByName(ctx, "alice")
		if err != nil {
			t.Fatalf("failed to find user: %v", err)
		}
		if found == nil {
			t.Fatal("expected user")
		}
		if found.ID != u.ID {
			t.Errorf("expected id %d, got %d", u.ID, found.ID)
		}
		if found.Registered == nil || !found.Registered.Equal(registered) {
			t.Errorf("expected registered %v, got %v", registered, found.Registered)
		}
	})

	t.Run("nil registered stays nil", func(t *testing.T) {
		u := &model.User{Name: "legacy"}
		if err := store.SaveUser(ctx, u); err != nil {
			t.Fatalf("failed to save user: %v", err)
		}

		found, err := store.FindUserByName(ctx, "legacy")
		if err != nil {
			t.Fatalf("failed to find user: %v", err)
		}
		if found.Registered != nil {
			t.Errorf("expected nil registered, got %v", found.Registered)
		}
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		if err := store.SaveUser(ctx, &model.User{Name: "alice"}); err == nil {
			t.Error("expected unique constraint error")
		}
	})

	t.Run("update existing user", func(t *testing.T) {
		u := &model.User{Name: "bob"}
		if err := store.SaveUser(ctx, u); err != nil {
			t.Fatalf("failed to save user: %v", err)
		}

		registered := time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC)
		u.Registered = &registered
		if err := store.SaveUser(ctx, u); err != nil {
			t.Fatalf("failed to update user: %v", err)
		}

		found, err := store.FindUserByName(ctx, "bob")
		if err != nil {
			t.Fatalf("failed to find user: %v", err)
		}
		if found.Registered == nil || !found.Registered.Equal(registered) {
			t.Errorf("expected registered %v, got %v", registered, found.Registered)
		}
	})
}

// TestStoreThreads tests thread persistence and the starter update path.
func TestStoreThreads(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	room := &model.Room{Name: "Off-topic"}
	if err := store.SaveRoom(ctx, room); err != nil {
		t.Fatalf("failed to save room: %v", err)
	}

	t.Run("find missing thread returns nil", func(t *testing.T) {
		found, err := store.FindThreadByNameAndRoom(ctx, "missing", room.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found != nil {
			t.Errorf("expected nil, got %+v", found)
		}
	})

	t.Run("save and set starter later", func(t *testing.T) {
		thread := &model.Thread{Name: "Introductions", RoomID: room.ID}
		if err := store.SaveThread(ctx, thread); err != nil {
			t.Fatalf("failed to save thread: %v", err)
		}
		if thread.ID == 0 {
			t.Fatal("expected assigned thread id")
		}

		starter := &model.User{Name: "carol"}
		if err := store.SaveUser(ctx, starter); err != nil {
			t.Fatalf("failed to save user: %v", err)
		}

		thread.StarterID = &starter.ID
		if err := store.SaveThread(ctx, thread); err != nil {
			t.Fatalf("failed to update thread: %v", err)
		}

		found, err := store.FindThreadByNameAndRoom(ctx, "Introductions", room.ID)
		if err != nil {
			t.Fatalf("failed to find thread: %v", err)
		}
		if found == nil {
			t.Fatal("expected thread")
		}
		if found.StarterID == nil || *found.StarterID != starter.ID {
			t.Errorf("expected starter %d, got %v", starter.ID, found.StarterID)
		}
	})

	t.Run("same name allowed in different rooms", func(t *testing.T) {
		other := &model.Room{Name: "Development"}
		if err := store.SaveRoom(ctx, other); err != nil {
			t.Fatalf("failed to save room: %v", err)
		}

		if err := store.SaveThread(ctx, &model.Thread{Name: "Introductions", RoomID: other.ID}); err != nil {
			t.Errorf("expected same thread name in another room to save: %v", err)
		}
	})

	t.Run("duplicate name in same room rejected", func(t *testing.T) {
		if err := store.SaveThread(ctx, &model.Thread{Name: "Introductions", RoomID: room.ID}); err == nil {
			t.Error("expected unique constraint error")
		}
	})
}

// TestStorePosts tests the post idempotency gate and insertion.
func TestStorePosts(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	room := &model.Room{Name: "Chat"}
	if err := store.SaveRoom(ctx, room); err != nil {
		t.Fatalf("failed to save room: %v", err)
	}
	author := &model.User{Name: "dave"}
	if err := store.SaveUser(ctx, author); err != nil {
		t.Fatalf("failed to save user: %v", err)
	}
	thread := &model.Thread{Name: "hello", RoomID: room.ID}
	if err := store.SaveThread(ctx, thread); err != nil {
		t.Fatalf("failed to save thread: %v", err)
	}

	post := &model.Post{
		ID:       75,
		ThreadID: thread.ID,
		UserID:   author.ID,
		Posted:   time.Date(2024, 3, 9, 18, 30, 14, 0, time.UTC),
		Body:     "first",
		URL:      "https://forum.example.net/post/75/#p75",
	}

	t.Run("exists is false before insert", func(t *testing.T) {
		exists, err := store.PostExists(ctx, post.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if exists {
			t.Error("expected post to not exist yet")
		}
	})

	t.Run("insert then exists", func(t *testing.T) {
		if err := store.InsertPost(ctx, post); err != nil {
			t.Fatalf("failed to insert post: %v", err)
		}

		exists, err := store.PostExists(ctx, post.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !exists {
			t.Error("expected post to exist")
		}
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		if err := store.InsertPost(ctx, post); err == nil {
			t.Error("expected primary key violation")
		}
	})
}

// TestEntityCounts tests the totals report.
func TestEntityCounts(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	counts, err := store.EntityCounts(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts != (Counts{}) {
		t.Errorf("expected zero counts, got %+v", counts)
	}

	room := &model.Room{Name: "Chat"}
	if err := store.SaveRoom(ctx, room); err != nil {
		t.Fatalf("failed to save room: %v", err)
	}
	user := &model.User{Name: "erin"}
	if err := store.SaveUser(ctx, user); err != nil {
		t.Fatalf("failed to save user: %v", err)
	}
	thread := &model.Thread{Name: "counting", RoomID: room.ID}
	if err := store.SaveThread(ctx, thread); err != nil {
		t.Fatalf("failed to save thread: %v", err)
	}
	for i := int64(1); i <= 3; i++ {
		post := &model.Post{
			ID:       i,
			ThreadID: thread.ID,
			UserID:   user.ID,
			Posted:   time.Date(2024, 3, 10, 0, 0, int(i), 0, time.UTC),
			Body:     "post",
			URL:      "https://forum.example.net/post/1/",
		}
		if err := store.InsertPost(ctx, post); err != nil {
			t.Fatalf("failed to insert post: %v", err)
		}
	}

	counts, err = store.EntityCounts(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Counts{Users: 1, Rooms: 1, Threads: 1, Posts: 3}
	if counts != want {
		t.Errorf("expected %+v, got %+v", want, counts)
	}
}

// TestRecentThreads tests the recent activity listing.
func TestRecentThreads(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	room := &model.Room{Name: "Chat"}
	if err := store.SaveRoom(ctx, room); err != nil {
		t.Fatalf("failed to save room: %v", err)
	}
	user := &model.User{Name: "frank"}
	if err := store.SaveUser(ctx, user); err != nil {
		t.Fatalf("failed to save user: %v", err)
	}

	// Three threads: "old" with one early post, "busy" with two posts,
	// "empty" with none.
	old := &model.Thread{Name: "old", RoomID: room.ID}
	busy := &model.Thread{Name: "busy", RoomID: room.ID}
	empty := &model.Thread{Name: "empty", RoomID: room.ID}
	for _, th := range []*model.Thread{old, busy, empty} {
		if err := store.SaveThread(ctx, th); err != nil {
			t.Fatalf("failed to save thread: %v", err)
		}
	}

	posts := []*model.Post{
		{ID: 1, ThreadID: old.ID, Posted: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, ThreadID: busy.ID, Posted: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 3, ThreadID: busy.ID, Posted: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, p := range posts {
		p.UserID = user.ID
		p.Body = "post"
		p.URL = "https://forum.example.net/post/1/"
		if err := store.InsertPost(ctx, p); err != nil {
			t.Fatalf("failed to insert post: %v", err)
		}
	}

	summaries, err := store.RecentThreads(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].Thread.Name != "busy" {
		t.Errorf("expected busiest thread first, got %q", summaries[0].Thread.Name)
	}
	if summaries[0].PostCount != 2 {
		t.Errorf("expected 2 posts, got %d", summaries[0].PostCount)
	}
	if summaries[0].RoomName != "Chat" {
		t.Errorf("expected room name Chat, got %q", summaries[0].RoomName)
	}
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !summaries[0].LastPosted.Equal(want) {
		t.Errorf("expected last posted %v, got %v", want, summaries[0].LastPosted)
	}
	if summaries[1].Thread.Name != "old" {
		t.Errorf("expected old thread second, got %q", summaries[1].Thread.Name)
	}

	t.Run("limit respected", func(t *testing.T) {
		limited, err := store.RecentThreads(ctx, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(limited) != 1 {
			t.Errorf("expected 1 summary, got %d", len(limited))
		}
	})
}
