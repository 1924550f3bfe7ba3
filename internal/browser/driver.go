// Package browser is the UI driver capability the portal flows run on: a single
// browser tab exposed as navigate/find/wait/click primitives.
package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTimeout is returned when a wait condition is not met within its bound.
	ErrTimeout = errors.New("browser: timed out waiting for condition")
	// ErrNotClickable is returned when a click still fails after every retry.
	ErrNotClickable = errors.New("browser: element not clickable")
)

// Element is a handle to a node in the live page. Handles go stale when the
// page re-renders; callers re-query instead of caching them across steps.
type Element interface {
	// Text returns the rendered text of the node, newline separated.
	Text(ctx context.Context) (string, error)
	// Click clicks the node once, without retry.
	Click(ctx context.Context) error
	// FindAll returns descendants matching selector without waiting.
	FindAll(ctx context.Context, selector string) ([]Element, error)
}

// Driver owns the browser session.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)

	// Find returns the first match without waiting. Absence is (nil, false, nil).
	Find(ctx context.Context, selector string) (Element, bool, error)
	// FindAll returns every match without waiting; the slice may be empty.
	FindAll(ctx context.Context, selector string) ([]Element, error)
	// WaitAll waits until at least one node matches and returns all matches.
	WaitAll(ctx context.Context, selector string, timeout time.Duration) ([]Element, error)
	// WaitVisible waits until the first match is visible.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) (Element, error)
	// WaitInvisible waits until no match is visible. Absence satisfies it.
	WaitInvisible(ctx context.Context, selector string) error

	// Click waits out the loading indicator, waits for selector to be
	// clickable, clicks it and waits out the loading indicator again,
	// retrying the whole sequence per the driver's ClickPolicy.
	Click(ctx context.Context, selector string) error
	// ClickElement is Click for a node already in hand, such as a button
	// inside a list row.
	ClickElement(ctx context.Context, el Element) error
	Type(ctx context.Context, selector, text string) error

	Close() error
}
