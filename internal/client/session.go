package client

import (
	"context"

	"github.com/rajnsunny/SnipStash/internal/model"
	"github.com/rajnsunny/SnipStash/internal/view"
)

// Session pairs a Client with a local view.State and keeps the two in
// sync: every remote call dispatches the matching action through
// view.Apply. It is the state container behind the interactive browse
// command, and runs one request at a time: Loading is set when an
// operation starts and cleared when its result (success or failure) is
// applied.
//
// Session inherits the reducer's overlay semantics: mutations made
// while a filter is active update the canonical list but leave the
// filtered overlay as it was, until the filter is re-applied or
// cleared.
type Session struct {
	api   *Client
	state view.State
}

// NewSession wraps an authenticated Client.
func NewSession(api *Client) *Session {
	return &Session{api: api}
}

// State returns a copy of the current view state.
func (s *Session) State() view.State { return s.state }

// Displayed returns the snippets the UI should render: the filtered
// overlay when a filter is active, the canonical list otherwise.
func (s *Session) Displayed() []model.Snippet { return s.state.Displayed() }

func (s *Session) begin() {
	s.state = view.Apply(s.state, view.StartLoading{})
}

func (s *Session) fail(err error) error {
	s.state = view.Apply(s.state, view.Failed{Message: err.Error()})
	return err
}

// Refresh reloads the canonical list from the server.
func (s *Session) Refresh(ctx context.Context) error {
	s.begin()
	snippets, err := s.api.List(ctx)
	if err != nil {
		return s.fail(err)
	}
	s.state = view.Apply(s.state, view.Loaded{Snippets: snippets})
	return nil
}

// Get fetches one snippet and installs it as the detail view.
func (s *Session) Get(ctx context.Context, id string) (*model.Snippet, error) {
	s.begin()
	snippet, err := s.api.Get(ctx, id)
	if err != nil {
		return nil, s.fail(err)
	}
	s.state = view.Apply(s.state, view.Fetched{Snippet: *snippet})
	return snippet, nil
}

// Add creates a snippet on the server and prepends it locally.
func (s *Session) Add(ctx context.Context, payload SnippetPayload) (*model.Snippet, error) {
	s.begin()
	snippet, err := s.api.Create(ctx, payload)
	if err != nil {
		return nil, s.fail(err)
	}
	s.state = view.Apply(s.state, view.Added{Snippet: *snippet})
	return snippet, nil
}

// Update replaces a snippet on the server and in the canonical list.
func (s *Session) Update(ctx context.Context, id string, payload SnippetPayload) (*model.Snippet, error) {
	s.begin()
	snippet, err := s.api.Update(ctx, id, payload)
	if err != nil {
		return nil, s.fail(err)
	}
	s.state = view.Apply(s.state, view.Updated{Snippet: *snippet})
	return snippet, nil
}

// Delete removes a snippet on the server and from the canonical list.
func (s *Session) Delete(ctx context.Context, id string) error {
	s.begin()
	if err := s.api.Delete(ctx, id); err != nil {
		return s.fail(err)
	}
	s.state = view.Apply(s.state, view.Deleted{ID: id})
	return nil
}

// ApplyFilter runs a server-side search and installs the result as the
// filtered overlay.
func (s *Session) ApplyFilter(ctx context.Context, criteria model.Criteria) error {
	s.begin()
	snippets, err := s.api.Search(ctx, criteria)
	if err != nil {
		return s.fail(err)
	}
	s.state = view.Apply(s.state, view.FilterApplied{Snippets: snippets})
	return nil
}

// ClearFilter drops the overlay and falls back to the canonical list.
func (s *Session) ClearFilter() {
	s.state = view.Apply(s.state, view.FilterCleared{})
}
