package model

import (
	"testing"
	"time"
)

// TestStringers tests the display representations.
func TestStringers(t *testing.T) {
	t.Parallel()

	t.Run("user", func(t *testing.T) {
		t.Parallel()
		u := &User{ID: 7, Name: "alice"}
		if got := u.String(); got != "alice (#7)" {
			t.Errorf("unexpected string %q", got)
		}
	})

	t.Run("room", func(t *testing.T) {
		t.Parallel()
		r := &Room{ID: 1, Name: "Chat"}
		if got := r.String(); got != "Chat (#1)" {
			t.Errorf("unexpected string %q", got)
		}
	})

	t.Run("thread", func(t *testing.T) {
		t.Parallel()
		th := &Thread{ID: 3, Name: "hello"}
		if got := th.String(); got != "hello (#3)" {
			t.Errorf("unexpected string %q", got)
		}
	})
}

// TestUserRegisteredPointer tests that the registration date is optional.
func TestUserRegisteredPointer(t *testing.T) {
	t.Parallel()

	u := User{Name: "legacy"}
	if u.Registered != nil {
		t.Error("expected nil registered by default")
	}

	ts := time.Date(2019, 6, 1, 10, 30, 0, 0, time.UTC)
	u.Registered = &ts
	if !u.Registered.Equal(ts) {
		t.Errorf("expected %v, got %v", ts, u.Registered)
	}
}
