// Package browsertest provides a scripted in-memory browser.Driver.
//
// A Fake holds a flat map of selector -> nodes. Tests seed the selectors a flow
// will query and attach click handlers that mutate the map, which is how a
// cascading dropdown or a pop-up appearing after a click is modelled.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/mhrs-agent/internal/browser"
)

// Call is one recorded driver interaction.
type Call struct {
	Op       string
	Selector string
}

// Fake implements browser.Driver.
type Fake struct {
	mu       sync.Mutex
	url      string
	nodes    map[string][]*Node
	handlers map[string]func()
	failures map[string]int
	stuck    map[string]bool
	navigate func(url string)
	calls    []Call
	policy   browser.ClickPolicy
}

// New returns an empty page at about:blank. Clicks retry 3 times without pause.
func New() *Fake {
	return &Fake{
		url:      "about:blank",
		nodes:    make(map[string][]*Node),
		handlers: make(map[string]func()),
		failures: make(map[string]int),
		stuck:    make(map[string]bool),
		policy:   browser.ClickPolicy{Attempts: 3},
	}
}

// SetClickPolicy overrides the retry policy used by Click.
func (f *Fake) SetClickPolicy(p browser.ClickPolicy) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.policy = p
}

// Set replaces the nodes matching selector.
func (f *Fake) Set(selector string, nodes ...*Node) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range nodes {
		n.adopt(f)
	}
	f.nodes[selector] = nodes
}

// Remove drops every node matching selector.
func (f *Fake) Remove(selector string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.nodes, selector)
}

// OnClick registers fn to run after a successful Click(selector). A selector
// with a handler is clickable even when no node is seeded for it.
func (f *Fake) OnClick(selector string, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[selector] = fn
}

// OnNavigate registers fn to run after every Navigate.
func (f *Fake) OnNavigate(fn func(url string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigate = fn
}

// FailClicks makes the next n clicks on selector fail as if the element went stale.
func (f *Fake) FailClicks(selector string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[selector] = n
}

// Stuck makes WaitInvisible(selector) time out.
func (f *Fake) Stuck(selector string, stuck bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stuck[selector] = stuck
}

// SetURL moves the fake page without recording a navigation.
func (f *Fake) SetURL(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.url = url
}

// Calls returns a copy of the interaction log.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Count returns how many times op was called with selector.
func (f *Fake) Count(op, selector string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Op == op && c.Selector == selector {
			n++
		}
	}
	return n
}

// Touched reports whether any operation referenced selector.
func (f *Fake) Touched(selector string) bool {
	for _, c := range f.Calls() {
		if c.Selector == selector {
			return true
		}
	}
	return false
}

// Navigations returns the URLs passed to Navigate, in order.
func (f *Fake) Navigations() []string {
	var out []string
	for _, c := range f.Calls() {
		if c.Op == "navigate" {
			out = append(out, c.Selector)
		}
	}
	return out
}

func (f *Fake) record(op, selector string) {
	f.calls = append(f.calls, Call{Op: op, Selector: selector})
}

func (f *Fake) lookup(op, selector string) []browser.Element {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(op, selector)
	return elements(f.nodes[selector])
}

func (f *Fake) Navigate(_ context.Context, url string) error {
	f.mu.Lock()
	f.record("navigate", url)
	f.url = url
	fn := f.navigate
	f.mu.Unlock()
	if fn != nil {
		fn(url)
	}
	return nil
}

func (f *Fake) Location(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url, nil
}

func (f *Fake) Find(_ context.Context, selector string) (browser.Element, bool, error) {
	els := f.lookup("find", selector)
	if len(els) == 0 {
		return nil, false, nil
	}
	return els[0], true, nil
}

func (f *Fake) FindAll(_ context.Context, selector string) ([]browser.Element, error) {
	return f.lookup("find_all", selector), nil
}

func (f *Fake) WaitAll(_ context.Context, selector string, _ time.Duration) ([]browser.Element, error) {
	els := f.lookup("wait_all", selector)
	if len(els) == 0 {
		return nil, fmt.Errorf("browsertest: wait for %s: %w", selector, browser.ErrTimeout)
	}
	return els, nil
}

func (f *Fake) WaitVisible(_ context.Context, selector string, _ time.Duration) (browser.Element, error) {
	els := f.lookup("wait_visible", selector)
	if len(els) == 0 {
		return nil, fmt.Errorf("browsertest: wait visible %s: %w", selector, browser.ErrTimeout)
	}
	return els[0], nil
}

func (f *Fake) WaitInvisible(_ context.Context, selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("wait_invisible", selector)
	if f.stuck[selector] {
		return fmt.Errorf("browsertest: wait invisible %s: %w", selector, browser.ErrTimeout)
	}
	return nil
}

var errStale = errors.New("browsertest: stale element reference")

func (f *Fake) Click(ctx context.Context, selector string) error {
	f.mu.Lock()
	policy := f.policy
	f.mu.Unlock()

	return browser.RetryClick(ctx, policy, selector, func(ctx context.Context) error {
		f.mu.Lock()
		f.record("click", selector)
		if f.failures[selector] > 0 {
			f.failures[selector]--
			f.mu.Unlock()
			return errStale
		}
		nodes := f.nodes[selector]
		handler := f.handlers[selector]
		f.mu.Unlock()

		switch {
		case len(nodes) > 0:
			if err := nodes[0].click(); err != nil {
				return err
			}
		case handler == nil:
			return fmt.Errorf("browsertest: %s: %w", selector, browser.ErrTimeout)
		}
		if handler != nil {
			handler()
		}
		return nil
	})
}

// ClickElement retries el.Click under the fake's click policy.
func (f *Fake) ClickElement(ctx context.Context, el browser.Element) error {
	f.mu.Lock()
	policy := f.policy
	f.mu.Unlock()
	return browser.RetryClick(ctx, policy, "element", el.Click)
}

func (f *Fake) Type(_ context.Context, selector, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("type", selector)
	if len(f.nodes[selector]) == 0 {
		return fmt.Errorf("browsertest: type into %s: %w", selector, browser.ErrTimeout)
	}
	f.nodes[selector][0].typed = append(f.nodes[selector][0].typed, text)
	return nil
}

func (f *Fake) Close() error { return nil }

// Node is a scripted page node. It implements browser.Element.
type Node struct {
	mu       sync.Mutex
	owner    *Fake
	text     string
	children map[string][]*Node
	onClick  func()
	failures int
	clicks   int
	typed    []string
}

// NewNode builds a node whose text is lines joined by newlines.
func NewNode(lines ...string) *Node {
	return &Node{
		text:     strings.Join(lines, "\n"),
		children: make(map[string][]*Node),
	}
}

// WithChildren sets the descendants returned for selector.
func (n *Node) WithChildren(selector string, children ...*Node) *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, c := range children {
		c.owner = n.owner
	}
	n.children[selector] = children
	return n
}

// OnClick sets fn to run when the node is clicked.
func (n *Node) OnClick(fn func()) *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onClick = fn
	return n
}

// FailClicks makes the next k clicks on the node fail.
func (n *Node) FailClicks(k int) *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = k
	return n
}

// Clicks returns how many successful clicks the node received.
func (n *Node) Clicks() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.clicks
}

// Typed returns the text typed into the node.
func (n *Node) Typed() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.typed...)
}

func (n *Node) adopt(f *Fake) {
	n.owner = f
	for _, cs := range n.children {
		for _, c := range cs {
			c.adopt(f)
		}
	}
}

func (n *Node) Text(_ context.Context) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.text, nil
}

func (n *Node) Click(_ context.Context) error {
	if owner := n.owner; owner != nil {
		owner.mu.Lock()
		owner.record("click_node", firstLine(n.text))
		owner.mu.Unlock()
	}
	return n.click()
}

func (n *Node) click() error {
	n.mu.Lock()
	if n.failures > 0 {
		n.failures--
		n.mu.Unlock()
		return errStale
	}
	n.clicks++
	fn := n.onClick
	n.mu.Unlock()
	if fn != nil {
		fn()
	}
	return nil
}

func (n *Node) FindAll(_ context.Context, selector string) ([]browser.Element, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return elements(n.children[selector]), nil
}

func elements(nodes []*Node) []browser.Element {
	out := make([]browser.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n)
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

var _ browser.Driver = (*Fake)(nil)
