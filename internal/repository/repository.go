// Package repository declares the storage interfaces the service layer
// depends on. Concrete backends live in subpackages (sqlite, redis); the
// services only ever see these interfaces.
package repository

import (
	"context"

	"github.com/rajnsunny/SnipStash/internal/model"
)

// SnippetRepository abstracts the per-owner snippet collection.
//
// Listing and searching are always owner-scoped — there is no "all
// snippets" query anywhere in the system. GetByID is not scoped: the
// service layer fetches by id and then checks ownership itself, so it can
// distinguish "not found" from "not yours".
//
// Both ListByOwner and Search return newest-first by creation time.
type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetByID(ctx context.Context, id string) (*model.Snippet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Snippet, error)
	Search(ctx context.Context, ownerID string, c model.Criteria) ([]model.Snippet, error)
	Update(ctx context.Context, snippet *model.Snippet) error
	Delete(ctx context.Context, id string) error
}

// UserRepository abstracts user accounts.
//
// CreateUser fails with a conflict error when the email is already
// registered. UpsertGitHubUser inserts on first OAuth login and refreshes
// the profile on subsequent logins, keyed by the GitHub ID.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpsertGitHubUser(ctx context.Context, user *model.User) error
}
