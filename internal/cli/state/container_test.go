package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Mann-lohchab/Portal/internal/model"
)

func testSummary() model.Summary {
	return model.Summary{
		ID:        "A1",
		FirstName: "Alex",
		LastName:  "Moreau",
		Email:     "a1@example.local",
		Role:      model.RoleAdmin,
	}
}

func TestContainerLoginLogout(t *testing.T) {
	store := NewFileStoreAt(t.TempDir())
	c := NewContainer(store)

	if c.IsAuthenticated() {
		t.Fatalf("fresh container must be signed out")
	}

	if err := c.Login("token-1", testSummary()); err != nil {
		t.Fatalf("login error: %v", err)
	}
	snap := c.Snapshot()
	if !snap.IsAuthenticated() {
		t.Fatalf("expected authenticated after login")
	}
	if snap.Token != "token-1" || snap.User.ID != "A1" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	if err := c.Logout(); err != nil {
		t.Fatalf("logout error: %v", err)
	}
	if c.IsAuthenticated() {
		t.Fatalf("expected signed out after logout")
	}
}

func TestContainerHydratesFromMirror(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStoreAt(dir)

	first := NewContainer(store)
	if err := first.Login("token-1", testSummary()); err != nil {
		t.Fatalf("login error: %v", err)
	}

	// A second container over the same mirror picks the state back up.
	second := NewContainer(NewFileStoreAt(dir))
	snap := second.Snapshot()
	if !snap.IsAuthenticated() {
		t.Fatalf("expected hydrated container to be authenticated")
	}
	if snap.Token != "token-1" || snap.User.Role != model.RoleAdmin {
		t.Fatalf("unexpected hydrated snapshot: %+v", snap)
	}
}

func TestContainerDiscardsCorruptMirror(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStoreAt(dir)
	if err := store.Save("token-1", testSummary()); err != nil {
		t.Fatalf("save error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "principal.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("corrupt write error: %v", err)
	}

	c := NewContainer(NewFileStoreAt(dir))
	if c.IsAuthenticated() {
		t.Fatalf("corrupt mirror must hydrate to signed out")
	}

	// The corrupt entries were dropped, not kept for the next start.
	if _, err := os.Stat(filepath.Join(dir, "token")); !os.IsNotExist(err) {
		t.Fatalf("expected corrupt mirror to be cleared")
	}
}

func TestContainerLogoutIsIdempotent(t *testing.T) {
	c := NewContainer(NewFileStoreAt(t.TempDir()))
	if err := c.Logout(); err != nil {
		t.Fatalf("logout on signed-out container: %v", err)
	}
	if err := c.Logout(); err != nil {
		t.Fatalf("repeated logout: %v", err)
	}
}

func TestContainerWithoutMirror(t *testing.T) {
	c := NewContainer(nil)
	if err := c.Login("token-1", testSummary()); err != nil {
		t.Fatalf("login error: %v", err)
	}
	if !c.IsAuthenticated() {
		t.Fatalf("expected authenticated")
	}
	if err := c.Logout(); err != nil {
		t.Fatalf("logout error: %v", err)
	}
}

func TestFileStorePermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	store := NewFileStoreAt(dir)
	if err := store.Save("token-1", testSummary()); err != nil {
		t.Fatalf("save error: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "token"))
	if err != nil {
		t.Fatalf("stat error: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("expected 0600 token file, got %v", info.Mode().Perm())
	}
	dirInfo, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat dir error: %v", err)
	}
	if dirInfo.Mode().Perm() != 0700 {
		t.Fatalf("expected 0700 config dir, got %v", dirInfo.Mode().Perm())
	}
}
