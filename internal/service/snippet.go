// Package service contains the business logic layer.
//
// Handlers parse HTTP and translate errors; services enforce the rules
// (validation, ownership, classification); repositories persist. The
// services see only the repository interfaces, never a concrete backend.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rajnsunny/SnipStash/internal/apperror"
	"github.com/rajnsunny/SnipStash/internal/classify"
	"github.com/rajnsunny/SnipStash/internal/model"
	"github.com/rajnsunny/SnipStash/internal/repository"
)

const (
	MaxTitleLength = 100
	MaxCodeLength  = 100000 // ~100KB of code
)

// SnippetInput carries the caller-supplied fields of a create or update.
// Tags is the user-supplied seed the merge policy combines with inferred
// tags.
type SnippetInput struct {
	Title       string
	Code        string
	Language    model.Language
	Description string
	Tags        []string
}

// SnippetService handles business logic for code snippets: validation,
// ownership enforcement, tag classification and the search pipeline.
type SnippetService struct {
	repo   repository.SnippetRepository
	logger *slog.Logger
}

// NewSnippetService creates a SnippetService. The caller decides which
// repository implementation to inject (sqlite, redis, mock for tests).
func NewSnippetService(repo repository.SnippetRepository, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		repo:   repo,
		logger: logger,
	}
}

// validateInput enforces the create/update field rules: title and code
// non-empty, language one of the enumerated values, sane lengths.
func validateInput(in *SnippetInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if in.Title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if len(in.Title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if in.Code == "" {
		return apperror.ValidationFailed("code", "code is required")
	}
	if len(in.Code) > MaxCodeLength {
		return apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}
	if !in.Language.Valid() {
		return apperror.ValidationFailed("programmingLanguage",
			fmt.Sprintf("programmingLanguage must be one of: %s", languageList()))
	}
	return nil
}

func languageList() string {
	names := make([]string, len(model.Languages))
	for i, l := range model.Languages {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}

// Create validates and saves a new snippet for ownerID.
//
// The classifier always runs on create: the persisted tag set is the
// merge of the user-supplied tags with the inferred ones, computed here
// and now — never recomputed at read time.
func (s *SnippetService) Create(ctx context.Context, ownerID string, in SnippetInput) (*model.Snippet, error) {
	if ownerID == "" {
		return nil, apperror.Unauthorized("caller identity is required")
	}
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	inferred := classify.Infer(in.Code, in.Language)

	snippet := &model.Snippet{
		UserID:      ownerID,
		Title:       in.Title,
		Code:        in.Code,
		Language:    in.Language,
		Description: in.Description,
		Tags:        classify.Merge(in.Tags, inferred),
	}

	if err := s.repo.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("owner", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("owner", ownerID),
		slog.String("language", snippet.Language.String()),
		slog.Int("tags", len(snippet.Tags)),
	)

	return snippet, nil
}

// GetByID retrieves a snippet and enforces ownership. A snippet that
// exists but belongs to someone else returns ErrForbidden — distinct from
// ErrNotFound, because clients react differently to the two.
func (s *SnippetService) GetByID(ctx context.Context, ownerID, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if snippet.UserID != ownerID {
		return nil, apperror.Forbidden("snippet does not belong to caller")
	}

	return snippet, nil
}

// List returns the owner's full collection, newest first.
func (s *SnippetService) List(ctx context.Context, ownerID string) ([]model.Snippet, error) {
	snippets, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list snippets",
			slog.String("owner", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing snippets: %w", err)
	}
	return snippets, nil
}

// Search runs the search pipeline for ownerID. The three criteria are
// independently optional and combine with AND; with none supplied the
// result is the full owner collection (the caller decides whether that
// means "clear filter" or "filter matched everything"). Results never
// include another owner's snippets.
func (s *SnippetService) Search(ctx context.Context, ownerID string, c model.Criteria) ([]model.Snippet, error) {
	if c.Language != "" && !c.Language.Valid() {
		return nil, apperror.ValidationFailed("programmingLanguage",
			fmt.Sprintf("programmingLanguage must be one of: %s", languageList()))
	}

	snippets, err := s.repo.Search(ctx, ownerID, c)
	if err != nil {
		s.logger.Error("search failed",
			slog.String("owner", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("searching snippets: %w", err)
	}
	return snippets, nil
}

// Update modifies an existing snippet after the ownership check.
//
// Classification re-runs only when code or language changed. A pure
// metadata edit (title/description/tags) persists the merge of the new
// user tags alone — previously inferred tags survive only if the caller
// sent them back. This asymmetry is deliberate product behavior, pinned
// by tests; do not "fix" it here without changing the tests too.
func (s *SnippetService) Update(ctx context.Context, ownerID, id string, in SnippetInput) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Ownership is checked before any validation or write is attempted.
	if snippet.UserID != ownerID {
		return nil, apperror.Forbidden("snippet does not belong to caller")
	}

	if err := validateInput(&in); err != nil {
		return nil, err
	}

	if in.Code != snippet.Code || in.Language != snippet.Language {
		inferred := classify.Infer(in.Code, in.Language)
		snippet.Tags = classify.Merge(in.Tags, inferred)
	} else {
		snippet.Tags = classify.Merge(in.Tags, nil)
	}

	snippet.Title = in.Title
	snippet.Code = in.Code
	snippet.Language = in.Language
	snippet.Description = in.Description

	if err := s.repo.Update(ctx, snippet); err != nil {
		s.logger.Error("failed to update snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated",
		slog.String("id", snippet.ID),
		slog.String("owner", ownerID),
	)

	return snippet, nil
}

// Delete removes a snippet after the ownership check.
func (s *SnippetService) Delete(ctx context.Context, ownerID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if snippet.UserID != ownerID {
		return apperror.Forbidden("snippet does not belong to caller")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("snippet deleted",
		slog.String("id", id),
		slog.String("owner", ownerID),
	)
	return nil
}
