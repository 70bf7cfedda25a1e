package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/rajnsunny/SnipStash/internal/apperror"
	"github.com/rajnsunny/SnipStash/internal/model"
)

// mockSnippetRepo is an in-memory repository.SnippetRepository. The
// service doesn't know or care which implementation it gets — that's
// the point of the interface.
type mockSnippetRepo struct {
	snippets map[string]*model.Snippet
	nextID   int
	failAll  bool // simulate a persistence failure
}

func newMockRepo() *mockSnippetRepo {
	return &mockSnippetRepo{
		snippets: make(map[string]*model.Snippet),
	}
}

func (m *mockSnippetRepo) Create(_ context.Context, snippet *model.Snippet) error {
	if m.failAll {
		return errors.New("mock: storage unavailable")
	}
	m.nextID++
	snippet.ID = fmt.Sprintf("mock-%d", m.nextID)
	stored := *snippet
	m.snippets[snippet.ID] = &stored
	return nil
}

func (m *mockSnippetRepo) GetByID(_ context.Context, id string) (*model.Snippet, error) {
	if m.failAll {
		return nil, errors.New("mock: storage unavailable")
	}
	snippet, ok := m.snippets[id]
	if !ok {
		return nil, apperror.NotFound("snippet", id)
	}
	result := *snippet
	return &result, nil
}

func (m *mockSnippetRepo) ListByOwner(_ context.Context, ownerID string) ([]model.Snippet, error) {
	if m.failAll {
		return nil, errors.New("mock: storage unavailable")
	}
	result := make([]model.Snippet, 0)
	for _, s := range m.snippets {
		if s.UserID == ownerID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSnippetRepo) Search(_ context.Context, ownerID string, c model.Criteria) ([]model.Snippet, error) {
	if m.failAll {
		return nil, errors.New("mock: storage unavailable")
	}
	result := make([]model.Snippet, 0)
	for _, s := range m.snippets {
		if s.UserID != ownerID {
			continue
		}
		if c.Text != "" {
			needle := strings.ToLower(c.Text)
			if !strings.Contains(strings.ToLower(s.Title), needle) &&
				!strings.Contains(strings.ToLower(s.Description), needle) &&
				!strings.Contains(strings.ToLower(s.Code), needle) {
				continue
			}
		}
		if c.Language != "" && s.Language != c.Language {
			continue
		}
		if c.Tag != "" && !s.HasTag(c.Tag) {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockSnippetRepo) Update(_ context.Context, snippet *model.Snippet) error {
	if m.failAll {
		return errors.New("mock: storage unavailable")
	}
	if _, ok := m.snippets[snippet.ID]; !ok {
		return apperror.NotFound("snippet", snippet.ID)
	}
	stored := *snippet
	m.snippets[snippet.ID] = &stored
	return nil
}

func (m *mockSnippetRepo) Delete(_ context.Context, id string) error {
	if m.failAll {
		return errors.New("mock: storage unavailable")
	}
	if _, ok := m.snippets[id]; !ok {
		return apperror.NotFound("snippet", id)
	}
	delete(m.snippets, id)
	return nil
}

func newTestService(t *testing.T) (*SnippetService, *mockSnippetRepo) {
	t.Helper()
	repo := newMockRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewSnippetService(repo, logger)
	return svc, repo
}

func validInput() SnippetInput {
	return SnippetInput{
		Title:    "fetch users",
		Code:     "const res = await fetch('/api/users')",
		Language: model.LangJavaScript,
	}
}

func TestCreate_Success(t *testing.T) {
	svc, _ := newTestService(t)

	snippet, err := svc.Create(context.Background(), "user-a", validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if snippet.ID == "" {
		t.Error("expected snippet to have an ID")
	}
	if snippet.UserID != "user-a" {
		t.Errorf("UserID = %q, want %q", snippet.UserID, "user-a")
	}
	if snippet.Title != "fetch users" {
		t.Errorf("Title = %q, want %q", snippet.Title, "fetch users")
	}
}

func TestCreate_MergesUserAndInferredTags(t *testing.T) {
	svc, _ := newTestService(t)

	in := SnippetInput{
		Title:    "loop with logging",
		Code:     "for (let i = 0; i < 10; i++) { console.log(i) }",
		Language: model.LangJavaScript,
		Tags:     []string{"work", "loop"},
	}
	snippet, err := svc.Create(context.Background(), "user-a", in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// "loop" appears in both sources but must be stored once.
	want := []string{"debugging", "loop", "work"}
	if !slices.Equal(snippet.Tags, want) {
		t.Errorf("Tags = %v, want %v", snippet.Tags, want)
	}
}

func TestCreate_InferenceAloneWhenNoUserTags(t *testing.T) {
	svc, _ := newTestService(t)

	in := SnippetInput{
		Title:    "error guard",
		Code:     "try { risky() } catch (e) { console.error(e) }",
		Language: model.LangJavaScript,
	}
	snippet, err := svc.Create(context.Background(), "user-a", in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if !snippet.HasTag("error-handling") {
		t.Errorf("Tags = %v, want error-handling present", snippet.Tags)
	}
}

func TestCreate_TrimsWhitespace(t *testing.T) {
	svc, _ := newTestService(t)

	in := validInput()
	in.Title = "  spaced out  "
	in.Description = "  desc  "
	snippet, err := svc.Create(context.Background(), "user-a", in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if snippet.Title != "spaced out" {
		t.Errorf("Title = %q, want trimmed %q", snippet.Title, "spaced out")
	}
	if snippet.Description != "desc" {
		t.Errorf("Description = %q, want trimmed %q", snippet.Description, "desc")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct {
		name   string
		mutate func(*SnippetInput)
	}{
		{"empty title", func(in *SnippetInput) { in.Title = "" }},
		{"whitespace-only title", func(in *SnippetInput) { in.Title = "   " }},
		{"title too long", func(in *SnippetInput) { in.Title = strings.Repeat("a", MaxTitleLength+1) }},
		{"empty code", func(in *SnippetInput) { in.Code = "" }},
		{"unknown language", func(in *SnippetInput) { in.Language = "brainfuck" }},
		{"empty language", func(in *SnippetInput) { in.Language = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			_, err := svc.Create(context.Background(), "user-a", in)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCreate_RepoFailure(t *testing.T) {
	svc, repo := newTestService(t)
	repo.failAll = true

	_, err := svc.Create(context.Background(), "user-a", validInput())
	if err == nil {
		t.Fatal("Create() should surface repository errors")
	}
	if errors.Is(err, apperror.ErrValidation) {
		t.Errorf("persistence failure must not look like a validation error: %v", err)
	}
}

func TestGetByID_Success(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), "user-a", validInput())
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	found, err := svc.GetByID(context.Background(), "user-a", created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Title != created.Title {
		t.Errorf("Title = %q, want %q", found.Title, created.Title)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetByID(context.Background(), "user-a", "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGetByID_WrongOwner(t *testing.T) {
	svc, _ := newTestService(t)

	created, _ := svc.Create(context.Background(), "user-a", validInput())

	_, err := svc.GetByID(context.Background(), "user-b", created.ID)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
	if errors.Is(err, apperror.ErrNotFound) {
		t.Error("wrong owner must be Forbidden, not NotFound")
	}
}

func TestList_ScopedToOwner(t *testing.T) {
	svc, _ := newTestService(t)

	svc.Create(context.Background(), "user-a", validInput())
	svc.Create(context.Background(), "user-a", validInput())
	svc.Create(context.Background(), "user-b", validInput())

	snippets, err := svc.List(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snippets) != 2 {
		t.Errorf("List() returned %d items, want 2", len(snippets))
	}
	for _, s := range snippets {
		if s.UserID != "user-a" {
			t.Errorf("List() leaked snippet of %q", s.UserID)
		}
	}
}

func TestSearch_InvalidLanguage(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Search(context.Background(), "user-a", model.Criteria{Language: "cobol-2026"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestSearch_ZeroCriteriaReturnsAll(t *testing.T) {
	svc, _ := newTestService(t)

	svc.Create(context.Background(), "user-a", validInput())
	svc.Create(context.Background(), "user-a", validInput())

	snippets, err := svc.Search(context.Background(), "user-a", model.Criteria{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(snippets) != 2 {
		t.Errorf("Search() returned %d items, want 2", len(snippets))
	}
}

func TestSearch_CombinesCriteria(t *testing.T) {
	svc, _ := newTestService(t)

	js := SnippetInput{
		Title:    "fetch helper",
		Code:     "await fetch('/x')",
		Language: model.LangJavaScript,
	}
	py := SnippetInput{
		Title:    "fetch rows",
		Code:     "def fetch_rows():\n    pass",
		Language: model.LangPython,
	}
	svc.Create(context.Background(), "user-a", js)
	svc.Create(context.Background(), "user-a", py)

	snippets, err := svc.Search(context.Background(), "user-a", model.Criteria{
		Text:     "fetch",
		Language: model.LangPython,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(snippets) != 1 || snippets[0].Language != model.LangPython {
		t.Errorf("Search() = %v, want only the python snippet", snippets)
	}
}

func TestUpdate_CodeChangeReinfers(t *testing.T) {
	svc, _ := newTestService(t)

	created, _ := svc.Create(context.Background(), "user-a", SnippetInput{
		Title:    "plain",
		Code:     "let x = 1",
		Language: model.LangJavaScript,
	})

	in := SnippetInput{
		Title:    "plain",
		Code:     "for (const x of xs) { console.log(x) }",
		Language: model.LangJavaScript,
		Tags:     []string{"work"},
	}
	updated, err := svc.Update(context.Background(), "user-a", created.ID, in)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if !updated.HasTag("loop") || !updated.HasTag("debugging") || !updated.HasTag("work") {
		t.Errorf("Tags = %v, want loop, debugging and work after code change", updated.Tags)
	}
}

func TestUpdate_LanguageChangeReinfers(t *testing.T) {
	svc, _ := newTestService(t)

	created, _ := svc.Create(context.Background(), "user-a", SnippetInput{
		Title:    "user query",
		Code:     "select id, email from users where active = 1",
		Language: model.LangOther,
	})
	if !created.HasTag("general") || created.HasTag("database") {
		t.Fatalf("setup: want the catch-all tag only, got %v", created.Tags)
	}

	in := SnippetInput{
		Title:    "user query",
		Code:     "select id, email from users where active = 1",
		Language: model.LangSQL,
	}
	updated, err := svc.Update(context.Background(), "user-a", created.ID, in)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !updated.HasTag("database") {
		t.Errorf("Tags = %v, want database after language change", updated.Tags)
	}
	if updated.HasTag("general") {
		t.Errorf("Tags = %v, catch-all tag should not survive re-inference", updated.Tags)
	}
}

// A metadata-only edit must NOT re-run inference: the stored tags become
// exactly the deduplicated user-supplied set, so previously inferred
// tags survive only if the client sent them back. Clients that post only
// their own tags will observe inferred tags disappearing on rename.
// That behavior is intentional; this test pins it.
func TestUpdate_MetadataOnlySkipsInference(t *testing.T) {
	svc, _ := newTestService(t)

	created, _ := svc.Create(context.Background(), "user-a", SnippetInput{
		Title:    "looper",
		Code:     "for (let i = 0; i < 3; i++) { console.log(i) }",
		Language: model.LangJavaScript,
	})
	if !created.HasTag("loop") {
		t.Fatalf("setup: expected inferred loop tag, got %v", created.Tags)
	}

	in := SnippetInput{
		Title:    "renamed looper", // only metadata changes
		Code:     created.Code,
		Language: created.Language,
		Tags:     []string{"mine", "mine"},
	}
	updated, err := svc.Update(context.Background(), "user-a", created.ID, in)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	want := []string{"mine"}
	if !slices.Equal(updated.Tags, want) {
		t.Errorf("Tags = %v, want exactly %v (no re-inference on metadata edit)", updated.Tags, want)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), "user-a", "nonexistent", validInput())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUpdate_WrongOwner(t *testing.T) {
	svc, _ := newTestService(t)

	created, _ := svc.Create(context.Background(), "user-a", validInput())

	in := validInput()
	in.Title = "hijacked"
	_, err := svc.Update(context.Background(), "user-b", created.ID, in)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}

	// The snippet must be untouched.
	unchanged, _ := svc.GetByID(context.Background(), "user-a", created.ID)
	if unchanged.Title != created.Title {
		t.Errorf("Title = %q, want unchanged %q", unchanged.Title, created.Title)
	}
}

func TestUpdate_OwnershipCheckedBeforeValidation(t *testing.T) {
	svc, _ := newTestService(t)

	created, _ := svc.Create(context.Background(), "user-a", validInput())

	// Invalid input AND wrong owner: Forbidden wins.
	_, err := svc.Update(context.Background(), "user-b", created.ID, SnippetInput{})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden before validation", err)
	}
}

func TestDelete_Success(t *testing.T) {
	svc, _ := newTestService(t)

	created, _ := svc.Create(context.Background(), "user-a", validInput())

	if err := svc.Delete(context.Background(), "user-a", created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := svc.GetByID(context.Background(), "user-a", created.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("after delete: error = %v, want ErrNotFound", err)
	}
}

func TestDelete_EmptyID(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Delete(context.Background(), "user-a", "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestDelete_WrongOwner(t *testing.T) {
	svc, _ := newTestService(t)

	created, _ := svc.Create(context.Background(), "user-a", validInput())

	err := svc.Delete(context.Background(), "user-b", created.ID)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}

	// Still there for the real owner.
	if _, err := svc.GetByID(context.Background(), "user-a", created.ID); err != nil {
		t.Errorf("snippet should survive a forbidden delete: %v", err)
	}
}
