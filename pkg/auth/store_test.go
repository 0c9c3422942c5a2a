package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreSetGet(t *testing.T) {
	s := NewStore(t.TempDir())

	s.Set(KeyAccessToken, "tok-a")
	s.Set(KeyRefreshToken, "tok-r")

	if got := s.Get(KeyAccessToken); got != "tok-a" {
		t.Errorf("Get(access) = %q, want %q", got, "tok-a")
	}
	if got := s.Get(KeyRefreshToken); got != "tok-r" {
		t.Errorf("Get(refresh) = %q, want %q", got, "tok-r")
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s := NewStore(dir)
	s.Set(KeyAccessToken, "persisted")

	// A new Store over the same directory models a process restart.
	s2 := NewStore(dir)
	if got := s2.Get(KeyAccessToken); got != "persisted" {
		t.Errorf("after reopen Get = %q, want %q", got, "persisted")
	}
}

func TestStoreEmptyStringIsStored(t *testing.T) {
	s := NewStore(t.TempDir())
	s.Set(KeyAccessToken, "something")
	s.Set(KeyAccessToken, "")

	if got := s.Get(KeyAccessToken); got != "" {
		t.Errorf("Get after empty Set = %q, want empty", got)
	}
}

func TestStoreRemoveAndClear(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	s.Set(KeyAccessToken, "a")
	s.Set(KeyRefreshToken, "r")

	s.Remove(KeyAccessToken)
	if got := s.Get(KeyAccessToken); got != "" {
		t.Errorf("Get after Remove = %q, want empty", got)
	}

	s.Clear()
	if got := s.Get(KeyRefreshToken); got != "" {
		t.Errorf("Get after Clear = %q, want empty", got)
	}
	if _, err := os.Stat(filepath.Join(dir, KeyRefreshToken)); !os.IsNotExist(err) {
		t.Errorf("refresh token file still exists after Clear")
	}
}

func TestStoreClearPurgesEarlierProcessKeys(t *testing.T) {
	dir := t.TempDir()
	NewStore(dir).Set(KeyAccessToken, "old")

	// Fresh instance that never wrote the key itself.
	s := NewStore(dir)
	s.Clear()

	if got := NewStore(dir).Get(KeyAccessToken); got != "" {
		t.Errorf("Get after Clear in new process = %q, want empty", got)
	}
}

func TestStoreDegradesWhenDirUnusable(t *testing.T) {
	// A regular file in place of the directory makes every file op fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	s := NewStore(blocker)
	if !s.Degraded() {
		t.Fatal("expected store to be degraded")
	}

	// Still usable as in-memory storage, no panic or error.
	s.Set(KeyAccessToken, "mem-only")
	if got := s.Get(KeyAccessToken); got != "mem-only" {
		t.Errorf("degraded Get = %q, want %q", got, "mem-only")
	}
	s.Remove(KeyAccessToken)
	s.Set(KeyRefreshToken, "r")
	s.Clear()
	if got := s.Get(KeyRefreshToken); got != "" {
		t.Errorf("degraded Get after Clear = %q, want empty", got)
	}
}
