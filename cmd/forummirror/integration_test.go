package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nao1215/forummirror/internal/database"
)

// newSmallForum serves a one-room, one-thread, one-post forum.
func newSmallForum(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `<html><body>
			<h3><a href="http://%s/room/chat/">Chat</a></h3>
		</body></html>`, r.Host)
	})

	mux.HandleFunc("/room/chat/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<div class="thread-entry">
				<h3><a href="http://%[1]s/thread/1/hello/">hello</a></h3>
				<span class="last-post"><a href="http://%[1]s/post/75/#p75">2024-03-09 18:30:14</a></span>
			</div>
		</body></html>`, r.Host)
	})

	mux.HandleFunc("/thread/1/hello/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<div class="post firstpost">
				<span class="post-link"><a href="http://%[1]s/post/75/#p75">2024-03-09 18:30:14</a></span>
				<span class="post-byline">By <strong>alice</strong></span>
				<div class="entry-content"><p>opening the thread</p></div>
			</div>
		</body></html>`, r.Host)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// TestMirrorCommandEndToEnd runs the mirror command against a local
// fixture forum and checks the stored result.
func TestMirrorCommandEndToEnd(t *testing.T) {
	server := newSmallForum(t)
	dbDir := t.TempDir()

	cmd := NewRootCmd()
	cmd.SetArgs([]string{
		"mirror", server.URL + "/",
		"--db-dir", dbDir,
		"--min-delay", "0s",
		"--max-delay", "0s",
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store, err := database.Open(dbDir, database.Options{EnableWAL: true})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	counts, err := store.EntityCounts(ctx)
	if err != nil {
		t.Fatalf("failed to count entities: %v", err)
	}

	want := database.Counts{Users: 1, Rooms: 1, Threads: 1, Posts: 1}
	if counts != want {
		t.Errorf("expected counts %+v, got %+v", want, counts)
	}

	exists, err := store.PostExists(ctx, 75)
	if err != nil {
		t.Fatalf("failed to check post: %v", err)
	}
	if !exists {
		t.Error("expected post 75 to be stored")
	}
}
