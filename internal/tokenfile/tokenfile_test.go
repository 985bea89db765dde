package tokenfile

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestLoadMissingFileIsEmptyState(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "auth.json"))

	state, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !state.Empty() {
		t.Fatalf("expected empty state, got %+v", state)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "auth.json"))

	saved := State{
		Token:     "bearer-token",
		Email:     "ana@example.com",
		ServerURL: "http://localhost:8085",
		SavedAt:   time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Token != saved.Token {
		t.Fatalf("token mismatch: got %q, want %q", loaded.Token, saved.Token)
	}
	if loaded.Email != saved.Email {
		t.Fatalf("email mismatch: got %q, want %q", loaded.Email, saved.Email)
	}
	if loaded.ServerURL != saved.ServerURL {
		t.Fatalf("server url mismatch: got %q, want %q", loaded.ServerURL, saved.ServerURL)
	}
	if !loaded.SavedAt.Equal(saved.SavedAt) {
		t.Fatalf("saved at mismatch: got %v, want %v", loaded.SavedAt, saved.SavedAt)
	}
	if loaded.Empty() {
		t.Fatal("loaded state should not be empty")
	}
}

func TestSaveCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "auth.json")
	store := NewStore(path)

	if err := store.Save(State{Token: "x"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("state file missing after save: %v", err)
	}
}

func TestSaveRestrictsPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no unix permission bits on windows")
	}

	path := filepath.Join(t.TempDir(), "auth.json")
	store := NewStore(path)

	if err := store.Save(State{Token: "secret"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat returned error: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected mode 0600, got %o", perm)
	}
}

func TestClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")
	store := NewStore(path)

	if err := store.Save(State{Token: "gone soon"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file to be gone, stat said: %v", err)
	}

	// Clearing again is a no-op, not an error.
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear returned error: %v", err)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}

	if _, err := NewStore(path).Load(); err == nil {
		t.Fatal("expected error for corrupt state file")
	}
}
