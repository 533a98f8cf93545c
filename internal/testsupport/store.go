package testsupport

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"tagflow/internal/config"
	"tagflow/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SeedUser inserts an account with a placeholder password hash.
func SeedUser(t testing.TB, st *store.Store, username, role string) *store.User {
	t.Helper()

	user, err := st.CreateUser(context.Background(), username, "not-a-real-hash", role)
	if err != nil {
		t.Fatalf("store.CreateUser: %v", err)
	}
	return user
}

// SeedMusic inserts a music item with the given filepath. The filename is
// the base name without extension, matching library ingestion.
func SeedMusic(t testing.TB, st *store.Store, path string) *store.MusicItem {
	t.Helper()

	base := filepath.Base(path)
	item := &store.MusicItem{Filepath: path, Filename: strings.TrimSuffix(base, filepath.Ext(base))}
	if err := st.CreateMusic(context.Background(), item); err != nil {
		t.Fatalf("store.CreateMusic: %v", err)
	}
	return item
}

// SeedQuestion inserts a catalog question.
func SeedQuestion(t testing.TB, st *store.Store, title string, multiple bool, options ...string) *store.Question {
	t.Helper()

	question := &store.Question{Title: title, IsMultipleChoice: multiple, Options: options}
	if err := st.CreateQuestion(context.Background(), question); err != nil {
		t.Fatalf("store.CreateQuestion: %v", err)
	}
	return question
}
