package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/wolfman30/mhrs-agent/pkg/logging"
)

const pollInterval = 100 * time.Millisecond

// ChromeConfig configures the chromedp-backed driver.
type ChromeConfig struct {
	Headless     bool
	ExecPath     string
	WindowWidth  int
	WindowHeight int
	// Timeout bounds every individual wait (default 30s).
	Timeout time.Duration
	// LoadingSelector is the spinner Click waits out before and after clicking.
	LoadingSelector string
	Click           ClickPolicy
}

// Chrome drives one Chrome tab through the DevTools protocol.
type Chrome struct {
	cfg    ChromeConfig
	tab    context.Context
	cancel context.CancelFunc
	logger *logging.Logger
}

// ChromeOption is a functional option for configuring Chrome.
type ChromeOption func(*Chrome)

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ChromeOption {
	return func(c *Chrome) {
		c.logger = logger
	}
}

// NewChrome starts a browser and opens the tab every operation runs in.
// The browser lives until Close or until ctx is cancelled.
func NewChrome(ctx context.Context, cfg ChromeConfig, opts ...ChromeOption) (*Chrome, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Click.Attempts == 0 {
		cfg.Click = DefaultClickPolicy()
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("headless", cfg.Headless))
	if cfg.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.WindowWidth > 0 && cfg.WindowHeight > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	tab, tabCancel := chromedp.NewContext(allocCtx)

	c := &Chrome{
		cfg: cfg,
		tab: tab,
		cancel: func() {
			tabCancel()
			allocCancel()
		},
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	// An empty Run launches the browser process.
	if err := chromedp.Run(tab); err != nil {
		c.cancel()
		return nil, fmt.Errorf("browser: start chrome: %w", err)
	}
	c.logger.Info("browser: chrome started", "headless", cfg.Headless)
	return c, nil
}

// Close shuts the tab and the browser process down.
func (c *Chrome) Close() error {
	c.cancel()
	return nil
}

// run executes actions in the tab, bounded by timeout and by the caller's ctx.
func (c *Chrome) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(c.tab, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	if err := c.run(ctx, c.cfg.Timeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	return nil
}

func (c *Chrome) Location(ctx context.Context) (string, error) {
	var loc string
	if err := c.run(ctx, c.cfg.Timeout, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("browser: location: %w", err)
	}
	return loc, nil
}

func (c *Chrome) Find(ctx context.Context, selector string) (Element, bool, error) {
	els, err := c.FindAll(ctx, selector)
	if err != nil {
		return nil, false, err
	}
	if len(els) == 0 {
		return nil, false, nil
	}
	return els[0], true, nil
}

func (c *Chrome) FindAll(ctx context.Context, selector string) ([]Element, error) {
	var nodes []*cdp.Node
	if err := c.run(ctx, c.cfg.Timeout,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	); err != nil {
		return nil, fmt.Errorf("browser: find %s: %w", selector, err)
	}
	return c.wrap(nodes), nil
}

func (c *Chrome) WaitAll(ctx context.Context, selector string, timeout time.Duration) ([]Element, error) {
	if timeout <= 0 {
		timeout = c.cfg.Timeout
	}
	var nodes []*cdp.Node
	if err := c.run(ctx, timeout, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll)); err != nil {
		return nil, fmt.Errorf("browser: wait for %s: %w", selector, err)
	}
	return c.wrap(nodes), nil
}

func (c *Chrome) WaitVisible(ctx context.Context, selector string, timeout time.Duration) (Element, error) {
	if timeout <= 0 {
		timeout = c.cfg.Timeout
	}
	var nodes []*cdp.Node
	if err := c.run(ctx, timeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Nodes(selector, &nodes, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("browser: wait visible %s: %w", selector, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("browser: wait visible %s: %w", selector, ErrTimeout)
	}
	return &chromeElement{c: c, node: nodes[0]}, nil
}

// WaitInvisible polls until no node matching selector has a layout box.
// chromedp.WaitNotVisible requires the node to exist, so it cannot be used here.
func (c *Chrome) WaitInvisible(ctx context.Context, selector string) error {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return fmt.Errorf("browser: quote selector: %w", err)
	}
	expr := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%s)).every(e => !(e.offsetWidth || e.offsetHeight || e.getClientRects().length))`,
		quoted,
	)

	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	err = retry.Do(
		func() error {
			var hidden bool
			if err := c.run(waitCtx, c.cfg.Timeout, chromedp.Evaluate(expr, &hidden)); err != nil {
				return retry.Unrecoverable(err)
			}
			if !hidden {
				return errStillVisible
			}
			return nil
		},
		retry.Context(waitCtx),
		retry.Attempts(0),
		retry.Delay(pollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if waitCtx.Err() != nil || errors.Is(err, errStillVisible) {
		return fmt.Errorf("browser: wait invisible %s: %w", selector, ErrTimeout)
	}
	return fmt.Errorf("browser: wait invisible %s: %w", selector, err)
}

var errStillVisible = errors.New("still visible")

func (c *Chrome) Click(ctx context.Context, selector string) error {
	return RetryClick(ctx, c.clickPolicy(), selector, func(ctx context.Context) error {
		if err := c.waitLoading(ctx); err != nil {
			return err
		}
		if err := c.run(ctx, c.cfg.Timeout,
			chromedp.WaitVisible(selector, chromedp.ByQuery),
			chromedp.WaitEnabled(selector, chromedp.ByQuery),
			chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible),
		); err != nil {
			return err
		}
		return c.waitLoading(ctx)
	})
}

// elementLabel names element clicks in retry logs and metrics.
const elementLabel = "element"

func (c *Chrome) ClickElement(ctx context.Context, el Element) error {
	return RetryClick(ctx, c.clickPolicy(), elementLabel, func(ctx context.Context) error {
		if err := c.waitLoading(ctx); err != nil {
			return err
		}
		if err := el.Click(ctx); err != nil {
			return err
		}
		return c.waitLoading(ctx)
	})
}

func (c *Chrome) clickPolicy() ClickPolicy {
	p := c.cfg.Click
	next := p.OnRetry
	p.OnRetry = func(selector string, attempt uint, err error) {
		c.logger.Warn("browser: click attempt failed", "selector", selector, "attempt", attempt, "error", err)
		if next != nil {
			next(selector, attempt, err)
		}
	}
	return p
}

func (c *Chrome) waitLoading(ctx context.Context) error {
	if c.cfg.LoadingSelector == "" {
		return nil
	}
	return c.WaitInvisible(ctx, c.cfg.LoadingSelector)
}

func (c *Chrome) Type(ctx context.Context, selector, text string) error {
	if err := c.run(ctx, c.cfg.Timeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("browser: type into %s: %w", selector, err)
	}
	return nil
}

func (c *Chrome) wrap(nodes []*cdp.Node) []Element {
	els := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, &chromeElement{c: c, node: n})
	}
	return els
}

type chromeElement struct {
	c    *Chrome
	node *cdp.Node
}

func (e *chromeElement) Text(ctx context.Context) (string, error) {
	var text string
	if err := e.c.run(ctx, e.c.cfg.Timeout,
		chromedp.Text([]cdp.NodeID{e.node.NodeID}, &text, chromedp.ByNodeID),
	); err != nil {
		return "", fmt.Errorf("browser: read text: %w", err)
	}
	return text, nil
}

func (e *chromeElement) Click(ctx context.Context) error {
	if err := e.c.run(ctx, e.c.cfg.Timeout,
		chromedp.ScrollIntoView([]cdp.NodeID{e.node.NodeID}, chromedp.ByNodeID),
		chromedp.MouseClickNode(e.node),
	); err != nil {
		return fmt.Errorf("browser: click node: %w", err)
	}
	return nil
}

func (e *chromeElement) FindAll(ctx context.Context, selector string) ([]Element, error) {
	var nodes []*cdp.Node
	if err := e.c.run(ctx, e.c.cfg.Timeout,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.FromNode(e.node), chromedp.AtLeast(0)),
	); err != nil {
		return nil, fmt.Errorf("browser: find %s in node: %w", selector, err)
	}
	return e.c.wrap(nodes), nil
}

var _ Driver = (*Chrome)(nil)
