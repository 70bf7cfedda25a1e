// Package redis implements the repository interfaces on a Redis server.
// It is the alternative to the default SQLite backend, selected with
// STORE=redis.
//
// Layout: each snippet/user is a JSON blob under its own key, with set
// indexes for the lookups the services need:
//
//	snippet:<id>            JSON snippet
//	snippets:owner:<userID> set of snippet IDs owned by userID
//	user:<id>               JSON user
//	user:email:<email>      userID (lowercased email index)
//	user:github:<ghID>      userID (GitHub identity index)
//
// Search loads the owner's set and filters in memory — the contract is
// inclusion, not ranking, and an owner's collection is small.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/xid"

	"github.com/rajnsunny/SnipStash/internal/apperror"
	"github.com/rajnsunny/SnipStash/internal/model"
	"github.com/rajnsunny/SnipStash/internal/repository"
)

// Store provides snippet and user persistence in Redis.
type Store struct {
	client *redis.Client
}

var (
	_ repository.SnippetRepository = (*Store)(nil)
	_ repository.UserRepository    = (*Store)(nil)
)

// New creates a Store around an existing Redis client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func snippetKey(id string) string     { return "snippet:" + id }
func ownerKey(userID string) string   { return "snippets:owner:" + userID }
func userKey(id string) string        { return "user:" + id }
func emailKey(email string) string    { return "user:email:" + strings.ToLower(email) }
func githubKey(githubID int64) string { return fmt.Sprintf("user:github:%d", githubID) }

// Create stores a new snippet and adds it to its owner's index set.
func (s *Store) Create(ctx context.Context, snippet *model.Snippet) error {
	snippet.ID = xid.New().String()

	now := time.Now()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now
	if snippet.Tags == nil {
		snippet.Tags = []string{}
	}

	data, err := json.Marshal(snippet)
	if err != nil {
		return fmt.Errorf("redis: encoding snippet: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, snippetKey(snippet.ID), data, 0)
	pipe.SAdd(ctx, ownerKey(snippet.UserID), snippet.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: creating snippet: %w", err)
	}
	return nil
}

// GetByID retrieves a snippet by ID.
func (s *Store) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	data, err := s.client.Get(ctx, snippetKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("redis: getting snippet %s: %w", id, err)
	}

	var snippet model.Snippet
	if err := json.Unmarshal([]byte(data), &snippet); err != nil {
		return nil, fmt.Errorf("redis: decoding snippet %s: %w", id, err)
	}
	return &snippet, nil
}

// ListByOwner returns every snippet owned by ownerID, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]model.Snippet, error) {
	ids, err := s.client.SMembers(ctx, ownerKey(ownerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: listing owner set: %w", err)
	}

	snippets := make([]model.Snippet, 0, len(ids))
	for _, id := range ids {
		snippet, err := s.GetByID(ctx, id)
		if err != nil {
			// A dangling index entry (deleted blob) is skipped, any other
			// failure aborts.
			if apperrorIsNotFound(err) {
				continue
			}
			return nil, err
		}
		snippets = append(snippets, *snippet)
	}

	sortNewestFirst(snippets)
	return snippets, nil
}

// Search applies the criteria predicates over the owner's collection.
func (s *Store) Search(ctx context.Context, ownerID string, c model.Criteria) ([]model.Snippet, error) {
	all, err := s.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	results := make([]model.Snippet, 0, len(all))
	for _, snippet := range all {
		if matches(&snippet, c) {
			results = append(results, snippet)
		}
	}
	return results, nil
}

// matches applies AND semantics over the supplied criteria, mirroring the
// SQL predicates of the sqlite backend.
func matches(s *model.Snippet, c model.Criteria) bool {
	if c.Text != "" {
		text := strings.ToLower(c.Text)
		if !strings.Contains(strings.ToLower(s.Title), text) &&
			!strings.Contains(strings.ToLower(s.Description), text) &&
			!strings.Contains(strings.ToLower(s.Code), text) {
			return false
		}
	}
	if c.Language != "" && s.Language != c.Language {
		return false
	}
	if c.Tag != "" && !s.HasTag(c.Tag) {
		return false
	}
	return true
}

// Update rewrites the snippet blob. The owner index is untouched — owner
// is immutable.
func (s *Store) Update(ctx context.Context, snippet *model.Snippet) error {
	// Existence check first so a vanished snippet surfaces as NotFound
	// rather than silently reappearing.
	if _, err := s.GetByID(ctx, snippet.ID); err != nil {
		return err
	}

	snippet.UpdatedAt = time.Now()
	if snippet.Tags == nil {
		snippet.Tags = []string{}
	}

	data, err := json.Marshal(snippet)
	if err != nil {
		return fmt.Errorf("redis: encoding snippet: %w", err)
	}
	if err := s.client.Set(ctx, snippetKey(snippet.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis: updating snippet %s: %w", snippet.ID, err)
	}
	return nil
}

// Delete removes the snippet blob and its owner index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	snippet, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, snippetKey(id))
	pipe.SRem(ctx, ownerKey(snippet.UserID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: deleting snippet %s: %w", id, err)
	}
	return nil
}

func sortNewestFirst(snippets []model.Snippet) {
	sort.Slice(snippets, func(i, j int) bool {
		if !snippets[i].CreatedAt.Equal(snippets[j].CreatedAt) {
			return snippets[i].CreatedAt.After(snippets[j].CreatedAt)
		}
		return snippets[i].ID > snippets[j].ID
	})
}

func apperrorIsNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
