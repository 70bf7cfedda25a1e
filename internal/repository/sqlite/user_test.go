package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/rajnsunny/SnipStash/internal/apperror"
	"github.com/rajnsunny/SnipStash/internal/model"
)

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Name:         "Alice",
		Email:        "Alice@Example.com",
		PasswordHash: "$2a$12$fakehash",
	}

	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if user.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q, want lowercased", user.Email)
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("CreateUser() did not set timestamps")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)

	first := &model.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "h"}
	if err := db.CreateUser(context.Background(), first); err != nil {
		t.Fatalf("setup: CreateUser() error = %v", err)
	}

	// Same address with different casing is still a duplicate.
	dup := &model.User{Name: "Mallory", Email: "ALICE@example.com", PasswordHash: "h"}
	err := db.CreateUser(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "alice@example.com")

	found, err := db.GetUserByEmail(context.Background(), "ALICE@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
	if found.PasswordHash == "" {
		t.Error("PasswordHash not loaded — login verification would always fail")
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUpsertGitHubUser_InsertThenUpdate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{Name: "octo", Email: "octo@example.com", GitHubID: 1234567}
	if err := db.UpsertGitHubUser(context.Background(), user); err != nil {
		t.Fatalf("UpsertGitHubUser() insert error = %v", err)
	}
	firstID := user.ID
	if firstID == "" {
		t.Fatal("upsert did not assign an ID")
	}

	// Second login with a changed profile keeps the internal ID.
	again := &model.User{Name: "octocat", Email: "new@example.com", GitHubID: 1234567}
	if err := db.UpsertGitHubUser(context.Background(), again); err != nil {
		t.Fatalf("UpsertGitHubUser() update error = %v", err)
	}
	if again.ID != firstID {
		t.Errorf("internal ID changed across logins: %q != %q", again.ID, firstID)
	}

	found, err := db.GetUserByID(context.Background(), firstID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.Name != "octocat" || found.Email != "new@example.com" {
		t.Errorf("profile not refreshed: %+v", found)
	}
}
