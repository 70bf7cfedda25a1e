// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Snippet represents a saved unit of code plus metadata, owned by exactly
// one user.
//
// The `json:"..."` tags tell Go's encoding/json package how to
// serialize/deserialize this struct to/from JSON. The field names follow the
// public API contract: `programmingLanguage` (not `language`) and `userId`
// are the spellings clients depend on.
//
// Tags is the persisted merged tag set: user-supplied tags combined with
// the tags inferred by the classifier at create/update time. It is computed
// when the snippet is written, never lazily at read time.
type Snippet struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Code        string    `json:"code"`
	Language    Language  `json:"programmingLanguage"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasTag reports whether the snippet's tag set contains tag (exact match).
func (s *Snippet) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Criteria is the optional (text, language, tag) triple driving a search.
// All three fields are independently optional; the zero value means
// "no filtering" and a search with it returns the full owner collection.
type Criteria struct {
	Text     string   // free-text substring match over title, description, code
	Language Language // exact language filter
	Tag      string   // exact tag membership filter
}

// IsZero reports whether no criterion is set. Callers use this to
// distinguish "clear filter" from "search that matched everything".
func (c Criteria) IsZero() bool {
	return c.Text == "" && c.Language == "" && c.Tag == ""
}
