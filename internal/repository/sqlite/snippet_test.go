package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rajnsunny/SnipStash/internal/apperror"
	"github.com/rajnsunny/SnipStash/internal/model"
)

// newTestDB opens a fresh in-memory database per test. t.Cleanup closes it
// when the test (and its subtests) finish.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser inserts an owner row — snippets.user_id has a foreign key
// on users, so every snippet needs a real owner.
func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()
	user := &model.User{Name: "tester", Email: email, PasswordHash: "x"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestSnippet(t *testing.T, db *DB, ownerID string, s model.Snippet) *model.Snippet {
	t.Helper()
	s.UserID = ownerID
	if s.Language == "" {
		s.Language = model.LangGo
	}
	if err := db.Create(context.Background(), &s); err != nil {
		t.Fatalf("failed to create test snippet: %v", err)
	}
	return &s
}

func TestCreate(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "a@example.com")

	snippet := &model.Snippet{
		UserID:   owner.ID,
		Title:    "Hello World",
		Code:     "print('hello')",
		Language: model.LangPython,
		Tags:     []string{"debugging"},
	}

	if err := db.Create(context.Background(), snippet); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if snippet.ID == "" {
		t.Error("Create() did not set snippet.ID")
	}
	if snippet.CreatedAt.IsZero() {
		t.Error("Create() did not set snippet.CreatedAt")
	}
	if snippet.UpdatedAt.IsZero() {
		t.Error("Create() did not set snippet.UpdatedAt")
	}
}

func TestCreate_VerifyPersistence(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "a@example.com")

	original := createTestSnippet(t, db, owner.ID, model.Snippet{
		Title:    "persist me",
		Code:     "SELECT 1",
		Language: model.LangSQL,
		Tags:     []string{"database", "mine"},
	})

	found, err := db.GetByID(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if found.Title != "persist me" {
		t.Errorf("Title = %q, want %q", found.Title, "persist me")
	}
	if found.UserID != owner.ID {
		t.Errorf("UserID = %q, want %q", found.UserID, owner.ID)
	}
	if found.Language != model.LangSQL {
		t.Errorf("Language = %q, want %q", found.Language, model.LangSQL)
	}
	if len(found.Tags) != 2 || !found.HasTag("database") || !found.HasTag("mine") {
		t.Errorf("Tags = %v, want [database mine]", found.Tags)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListByOwner_ScopedAndNewestFirst(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	first := createTestSnippet(t, db, alice.ID, model.Snippet{Title: "oldest", Code: "a"})
	time.Sleep(2 * time.Millisecond)
	second := createTestSnippet(t, db, alice.ID, model.Snippet{Title: "newest", Code: "b"})
	createTestSnippet(t, db, bob.ID, model.Snippet{Title: "bobs", Code: "c"})

	snippets, err := db.ListByOwner(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}

	if len(snippets) != 2 {
		t.Fatalf("ListByOwner() returned %d snippets, want 2", len(snippets))
	}
	if snippets[0].ID != second.ID || snippets[1].ID != first.ID {
		t.Errorf("order = [%s %s], want newest first [%s %s]",
			snippets[0].Title, snippets[1].Title, "newest", "oldest")
	}
	for _, s := range snippets {
		if s.UserID != alice.ID {
			t.Errorf("snippet %s owned by %s leaked into alice's list", s.ID, s.UserID)
		}
	}
}

func TestSearch(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "a@example.com")
	other := createTestUser(t, db, "b@example.com")

	createTestSnippet(t, db, owner.ID, model.Snippet{
		Title:       "binary search",
		Code:        "func search(xs []int, x int) int { return 0 }",
		Language:    model.LangGo,
		Description: "classic algorithm",
		Tags:        []string{"function", "arrays"},
	})
	createTestSnippet(t, db, owner.ID, model.Snippet{
		Title:    "fetch wrapper",
		Code:     "const get = (url) => fetch(url)",
		Language: model.LangJavaScript,
		Tags:     []string{"api", "network", "function"},
	})
	createTestSnippet(t, db, owner.ID, model.Snippet{
		Title:    "hello",
		Code:     "print('hi')",
		Language: model.LangPython,
		Tags:     []string{"debugging"},
	})
	// Another owner's snippet that would match every criterion below.
	createTestSnippet(t, db, other.ID, model.Snippet{
		Title:    "binary search too",
		Code:     "def search(): pass",
		Language: model.LangPython,
		Tags:     []string{"function", "debugging"},
	})

	ctx := context.Background()

	t.Run("text matches title description and code", func(t *testing.T) {
		for _, text := range []string{"binary", "classic", "[]int"} {
			got, err := db.Search(ctx, owner.ID, model.Criteria{Text: text})
			if err != nil {
				t.Fatalf("Search(%q) error = %v", text, err)
			}
			if len(got) != 1 || got[0].Title != "binary search" {
				t.Errorf("Search(%q) = %d results, want the binary search snippet", text, len(got))
			}
		}
	})

	t.Run("text match is case-insensitive", func(t *testing.T) {
		got, err := db.Search(ctx, owner.ID, model.Criteria{Text: "BINARY"})
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(got) != 1 {
			t.Errorf("got %d results, want 1", len(got))
		}
	})

	t.Run("language filter is exact", func(t *testing.T) {
		got, err := db.Search(ctx, owner.ID, model.Criteria{Language: model.LangPython})
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(got) != 1 || got[0].Title != "hello" {
			t.Errorf("got %d results, want only the python snippet", len(got))
		}
	})

	t.Run("tag filter is exact membership", func(t *testing.T) {
		got, err := db.Search(ctx, owner.ID, model.Criteria{Tag: "function"})
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("got %d results, want 2", len(got))
		}
		// "fun" is not a stored tag even though it prefixes one.
		got, err = db.Search(ctx, owner.ID, model.Criteria{Tag: "fun"})
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("partial tag matched %d snippets, want 0", len(got))
		}
	})

	t.Run("criteria combine with AND", func(t *testing.T) {
		got, err := db.Search(ctx, owner.ID, model.Criteria{
			Text:     "search",
			Language: model.LangGo,
			Tag:      "arrays",
		})
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(got) != 1 || got[0].Title != "binary search" {
			t.Errorf("got %d results, want exactly the go snippet", len(got))
		}

		got, err = db.Search(ctx, owner.ID, model.Criteria{
			Text:     "search",
			Language: model.LangPython, // no python snippet contains "search"
		})
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %d results, want 0", len(got))
		}
	})

	t.Run("no criteria returns full owner collection", func(t *testing.T) {
		got, err := db.Search(ctx, owner.ID, model.Criteria{})
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(got) != 3 {
			t.Errorf("got %d results, want all 3", len(got))
		}
	})

	t.Run("never returns another owner's snippets", func(t *testing.T) {
		got, err := db.Search(ctx, owner.ID, model.Criteria{Text: "search", Tag: "function"})
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		for _, s := range got {
			if s.UserID != owner.ID {
				t.Errorf("snippet %s owned by %s leaked into results", s.ID, s.UserID)
			}
		}
	})

	t.Run("like wildcards in text are literal", func(t *testing.T) {
		got, err := db.Search(ctx, owner.ID, model.Criteria{Text: "%"})
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("bare %% matched %d snippets, want 0", len(got))
		}
	})
}

func TestUpdate(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "a@example.com")
	created := createTestSnippet(t, db, owner.ID, model.Snippet{
		Title: "before",
		Code:  "old",
		Tags:  []string{"loop"},
	})

	created.Title = "after"
	created.Code = "new"
	created.Tags = []string{"debugging"}

	if err := db.Update(context.Background(), created); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := db.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Title != "after" || found.Code != "new" {
		t.Errorf("update not persisted: %+v", found)
	}
	if len(found.Tags) != 1 || found.Tags[0] != "debugging" {
		t.Errorf("Tags = %v, want [debugging]", found.Tags)
	}

	// The tag index must follow the stored set: the old tag no longer
	// matches, the new one does.
	if got, _ := db.Search(context.Background(), owner.ID, model.Criteria{Tag: "loop"}); len(got) != 0 {
		t.Errorf("stale tag index: %d results for removed tag", len(got))
	}
	if got, _ := db.Search(context.Background(), owner.ID, model.Criteria{Tag: "debugging"}); len(got) != 1 {
		t.Errorf("tag index missing new tag")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Update(context.Background(), &model.Snippet{ID: "nonexistent", Language: model.LangGo})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "a@example.com")
	created := createTestSnippet(t, db, owner.ID, model.Snippet{Title: "bye", Code: "x", Tags: []string{"t"}})

	if err := db.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := db.GetByID(context.Background(), created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("after delete: error = %v, want ErrNotFound", err)
	}
	// Cascade removed the index rows too.
	if got, _ := db.Search(context.Background(), owner.ID, model.Criteria{Tag: "t"}); len(got) != 0 {
		t.Errorf("tag index rows survived delete")
	}
}

func TestDelete_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Delete(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
