package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/rajnsunny/SnipStash/internal/apperror"
	"github.com/rajnsunny/SnipStash/internal/model"
	"github.com/rajnsunny/SnipStash/internal/repository"
)

// Compile-time check that *DB implements repository.SnippetRepository.
var _ repository.SnippetRepository = (*DB)(nil)

const snippetColumns = `id, user_id, title, code, language, description, tags, created_at, updated_at`

// Create inserts a new snippet and its tag index rows in one transaction.
// The snippet's ID and timestamps are assigned here; the caller's struct
// is updated in place.
func (db *DB) Create(ctx context.Context, snippet *model.Snippet) error {
	snippet.ID = xid.New().String()

	now := time.Now()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now

	tagsJSON, err := marshalTags(snippet.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: encoding tags for snippet %s: %w", snippet.ID, err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snippets (`+snippetColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snippet.ID,
		snippet.UserID,
		snippet.Title,
		snippet.Code,
		string(snippet.Language),
		snippet.Description,
		tagsJSON,
		snippet.CreatedAt,
		snippet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating snippet: %w", err)
	}

	if err := insertTagRows(ctx, tx, snippet.ID, snippet.Tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing snippet create: %w", err)
	}
	return nil
}

// GetByID retrieves a single snippet by its ID, owner check NOT included —
// that belongs to the service layer, which needs to tell "missing" apart
// from "not yours".
func (db *DB) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets WHERE id = ?`, id)

	snippet, err := scanSnippet(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}
	return snippet, nil
}

// ListByOwner returns every snippet owned by ownerID, newest first.
func (db *DB) ListByOwner(ctx context.Context, ownerID string) ([]model.Snippet, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+snippetColumns+`
		 FROM snippets
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	defer rows.Close()

	return collectSnippets(rows)
}

// Search runs the owner-scoped search query. All supplied criteria must
// hold (AND semantics): free text is a case-insensitive substring match
// over title, description and code; language is exact; tag is exact
// membership via the snippet_tags index. With no criteria this degrades to
// ListByOwner's result.
func (db *DB) Search(ctx context.Context, ownerID string, c model.Criteria) ([]model.Snippet, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + snippetColumns + ` FROM snippets WHERE user_id = ?`)
	args := []any{ownerID}

	if c.Text != "" {
		pattern := "%" + escapeLike(strings.ToLower(c.Text)) + "%"
		sb.WriteString(` AND (lower(title) LIKE ? ESCAPE '\'
			OR lower(description) LIKE ? ESCAPE '\'
			OR lower(code) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	if c.Language != "" {
		sb.WriteString(` AND language = ?`)
		args = append(args, string(c.Language))
	}
	if c.Tag != "" {
		sb.WriteString(` AND id IN (SELECT snippet_id FROM snippet_tags WHERE tag = ?)`)
		args = append(args, c.Tag)
	}

	sb.WriteString(` ORDER BY created_at DESC, id DESC`)

	rows, err := db.conn.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: searching snippets: %w", err)
	}
	defer rows.Close()

	return collectSnippets(rows)
}

// Update rewrites the mutable snippet fields and rebuilds the tag index
// rows. created_at and user_id are immutable and never touched.
func (db *DB) Update(ctx context.Context, snippet *model.Snippet) error {
	snippet.UpdatedAt = time.Now()

	tagsJSON, err := marshalTags(snippet.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: encoding tags for snippet %s: %w", snippet.ID, err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE snippets
		 SET title = ?, code = ?, language = ?, description = ?, tags = ?, updated_at = ?
		 WHERE id = ?`,
		snippet.Title,
		snippet.Code,
		string(snippet.Language),
		snippet.Description,
		tagsJSON,
		snippet.UpdatedAt,
		snippet.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating snippet %s: %w", snippet.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", snippet.ID)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snippet_tags WHERE snippet_id = ?`, snippet.ID); err != nil {
		return fmt.Errorf("sqlite: clearing tag index for snippet %s: %w", snippet.ID, err)
	}
	if err := insertTagRows(ctx, tx, snippet.ID, snippet.Tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing snippet update: %w", err)
	}
	return nil
}

// Delete removes a snippet. The tag index rows go with it via the
// ON DELETE CASCADE on snippet_tags.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM snippets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting snippet %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", id)
	}

	return nil
}

// insertTagRows writes the snippet_tags index entries for a snippet.
func insertTagRows(ctx context.Context, tx *sql.Tx, snippetID string, tags []string) error {
	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO snippet_tags (snippet_id, tag) VALUES (?, ?)`,
			snippetID, tag,
		); err != nil {
			return fmt.Errorf("sqlite: indexing tag %q for snippet %s: %w", tag, snippetID, err)
		}
	}
	return nil
}

// marshalTags serializes the tag set for the snippets.tags column. A nil
// slice is stored as an empty JSON array so scans never produce nil tags.
func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// scanSnippet reads one snippet row. The scan argument abstracts over
// sql.Row.Scan and sql.Rows.Scan.
func scanSnippet(scan func(dest ...any) error) (*model.Snippet, error) {
	var (
		s        model.Snippet
		language string
		tagsJSON string
	)
	if err := scan(
		&s.ID,
		&s.UserID,
		&s.Title,
		&s.Code,
		&language,
		&s.Description,
		&tagsJSON,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}

	s.Language = model.Language(language)
	if err := json.Unmarshal([]byte(tagsJSON), &s.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	return &s, nil
}

// collectSnippets drains a result set into a slice.
func collectSnippets(rows *sql.Rows) ([]model.Snippet, error) {
	snippets := []model.Snippet{}
	for rows.Next() {
		s, err := scanSnippet(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		snippets = append(snippets, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}
	return snippets, nil
}

// escapeLike escapes LIKE wildcards in user-supplied search text so a
// query for "100%" matches the literal characters.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
