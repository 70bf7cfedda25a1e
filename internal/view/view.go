// Package view holds the client-side collection state: the canonical
// snippet list plus an optional filtered overlay.
//
// State evolves through a pure reducer: Apply(state, action) returns the
// next state and never mutates its input. Mutation actions (Added,
// Updated, Deleted) touch ONLY the canonical list; an active overlay is
// left exactly as it was, even when the mutated snippet is part of it.
// The overlay therefore goes stale until the next FilterApplied or
// FilterCleared. That staleness is intended behavior, pinned by the
// tests in this package — a client that wants a fresh overlay re-runs
// its filter after mutating.
package view

import "github.com/rajnsunny/SnipStash/internal/model"

// State is the whole view model. The zero value is a valid empty state.
type State struct {
	// Snippets is the canonical collection, newest first.
	Snippets []model.Snippet

	// Filtered is the overlay produced by the last filter run. nil means
	// no filter is active; an empty non-nil slice means a filter matched
	// nothing. The distinction drives Displayed.
	Filtered []model.Snippet

	// Current is the snippet open in a detail view, set by Fetched and
	// replaced by the next Fetched.
	Current *model.Snippet

	// Loading is set by StartLoading and cleared by every data action.
	Loading bool

	// ErrMsg holds the last failure, cleared by the next successful
	// data action.
	ErrMsg string
}

// FilterActive reports whether an overlay is in place.
func (s State) FilterActive() bool { return s.Filtered != nil }

// Displayed returns the list a UI should render: the overlay when a
// filter is active, the canonical list otherwise.
func (s State) Displayed() []model.Snippet {
	if s.Filtered != nil {
		return s.Filtered
	}
	return s.Snippets
}

// Action is a closed set of state transitions; each variant carries its
// payload.
type Action interface{ isAction() }

// Loaded replaces the canonical list (a full fetch completed).
type Loaded struct{ Snippets []model.Snippet }

// Added prepends a newly created snippet to the canonical list.
type Added struct{ Snippet model.Snippet }

// Updated replaces the canonical entry with the same ID.
type Updated struct{ Snippet model.Snippet }

// Deleted removes the canonical entry with the given ID.
type Deleted struct{ ID string }

// Fetched installs a single snippet as the detail view. It does not
// touch the canonical list.
type Fetched struct{ Snippet model.Snippet }

// FilterApplied installs a filtered overlay.
type FilterApplied struct{ Snippets []model.Snippet }

// FilterCleared removes the overlay; Displayed falls back to the
// canonical list.
type FilterCleared struct{}

// StartLoading marks a request in flight.
type StartLoading struct{}

// Failed records a request failure.
type Failed struct{ Message string }

func (Loaded) isAction()        {}
func (Added) isAction()         {}
func (Updated) isAction()       {}
func (Deleted) isAction()       {}
func (Fetched) isAction()       {}
func (FilterApplied) isAction() {}
func (FilterCleared) isAction() {}
func (StartLoading) isAction()  {}
func (Failed) isAction()        {}

// Apply computes the next state. Slices in the result are fresh copies
// where they change; the input state is never modified.
func Apply(s State, a Action) State {
	switch a := a.(type) {
	case Loaded:
		s.Snippets = append([]model.Snippet(nil), a.Snippets...)
		s.Loading = false
		s.ErrMsg = ""

	case Added:
		next := make([]model.Snippet, 0, len(s.Snippets)+1)
		next = append(next, a.Snippet)
		next = append(next, s.Snippets...)
		s.Snippets = next
		s.Loading = false
		s.ErrMsg = ""

	case Updated:
		next := append([]model.Snippet(nil), s.Snippets...)
		for i := range next {
			if next[i].ID == a.Snippet.ID {
				next[i] = a.Snippet
			}
		}
		s.Snippets = next
		s.Loading = false
		s.ErrMsg = ""

	case Deleted:
		next := make([]model.Snippet, 0, len(s.Snippets))
		for _, sn := range s.Snippets {
			if sn.ID != a.ID {
				next = append(next, sn)
			}
		}
		s.Snippets = next
		s.Loading = false
		s.ErrMsg = ""

	case Fetched:
		snippet := a.Snippet
		s.Current = &snippet
		s.Loading = false
		s.ErrMsg = ""

	case FilterApplied:
		// Non-nil even for zero matches: an empty overlay means "filter
		// matched nothing", not "no filter".
		overlay := make([]model.Snippet, 0, len(a.Snippets))
		overlay = append(overlay, a.Snippets...)
		s.Filtered = overlay
		s.Loading = false
		s.ErrMsg = ""

	case FilterCleared:
		s.Filtered = nil

	case StartLoading:
		s.Loading = true

	case Failed:
		s.ErrMsg = a.Message
		s.Loading = false
	}

	return s
}
