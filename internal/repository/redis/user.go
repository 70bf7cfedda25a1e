package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/xid"

	"github.com/rajnsunny/SnipStash/internal/apperror"
	"github.com/rajnsunny/SnipStash/internal/model"
)

// storedUser is the persisted shape of a user. model.User hides
// PasswordHash and GitHubID from API JSON with `json:"-"`, but the store
// must keep them, so it has its own serialization.
type storedUser struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	GitHubID     int64     `json:"githubId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toStored(u *model.User) storedUser {
	return storedUser{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		GitHubID:     u.GitHubID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (su storedUser) toModel() *model.User {
	return &model.User{
		ID:           su.ID,
		Name:         su.Name,
		Email:        su.Email,
		PasswordHash: su.PasswordHash,
		GitHubID:     su.GitHubID,
		CreatedAt:    su.CreatedAt,
		UpdatedAt:    su.UpdatedAt,
	}
}

// CreateUser stores a password account. The email index is claimed with
// SETNX so a concurrent duplicate registration loses cleanly.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(user.Email)

	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	claimed, err := s.client.SetNX(ctx, emailKey(user.Email), user.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("redis: claiming email index: %w", err)
	}
	if !claimed {
		return apperror.Conflict("user", user.Email)
	}

	if err := s.writeUser(ctx, user); err != nil {
		// Roll the index claim back so the address isn't burned.
		s.client.Del(ctx, emailKey(user.Email))
		return err
	}
	return nil
}

// GetUserByID retrieves a user by internal ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("redis: getting user %s: %w", id, err)
	}

	var su storedUser
	if err := json.Unmarshal([]byte(data), &su); err != nil {
		return nil, fmt.Errorf("redis: decoding user %s: %w", id, err)
	}
	return su.toModel(), nil
}

// GetUserByEmail retrieves a user through the email index.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	id, err := s.client.Get(ctx, emailKey(email)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("redis: resolving email %s: %w", email, err)
	}
	return s.GetUserByID(ctx, id)
}

// UpsertGitHubUser inserts on first OAuth login, refreshes the profile on
// later ones. The GitHub index key keeps the internal ID stable.
func (s *Store) UpsertGitHubUser(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(user.Email)

	existingID, err := s.client.Get(ctx, githubKey(user.GitHubID)).Result()
	switch {
	case err == redis.Nil:
		now := time.Now()
		user.ID = xid.New().String()
		user.CreatedAt = now
		user.UpdatedAt = now

		pipe := s.client.Pipeline()
		pipe.Set(ctx, githubKey(user.GitHubID), user.ID, 0)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("redis: claiming github index: %w", err)
		}
		return s.writeUser(ctx, user)

	case err != nil:
		return fmt.Errorf("redis: resolving github id %d: %w", user.GitHubID, err)
	}

	existing, err := s.GetUserByID(ctx, existingID)
	if err != nil {
		return err
	}
	user.ID = existing.ID
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now()
	return s.writeUser(ctx, user)
}

func (s *Store) writeUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(toStored(user))
	if err != nil {
		return fmt.Errorf("redis: encoding user: %w", err)
	}
	if err := s.client.Set(ctx, userKey(user.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis: writing user %s: %w", user.ID, err)
	}
	return nil
}
