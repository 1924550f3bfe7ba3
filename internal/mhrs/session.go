package mhrs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/wolfman30/mhrs-agent/internal/browser"
	"github.com/wolfman30/mhrs-agent/pkg/logging"
)

// Credentials are the citizen login (T.C. identity number and password).
type Credentials struct {
	Username string
	Password string
}

// Session owns the logged-in state of one browser. It logs in lazily the
// first time a flow needs it and then stays authenticated for its lifetime.
type Session struct {
	driver  browser.Driver
	creds   Credentials
	baseURL string
	logger  *logging.Logger

	mu            sync.Mutex
	authenticated bool
}

func NewSession(d browser.Driver, creds Credentials, baseURL string, logger *logging.Logger) *Session {
	if logger == nil {
		logger = logging.Default()
	}
	return &Session{
		driver:  d,
		creds:   creds,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Authenticated reports whether a login has completed.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Reset forgets the login so the next EnsureLoggedIn logs in again.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
}

// EnsureLoggedIn logs in unless a previous call already did. A failed login
// leaves the session unauthenticated and returns an error wrapping ErrAuth.
func (s *Session) EnsureLoggedIn(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.authenticated {
		return nil
	}
	if err := s.login(ctx); err != nil {
		s.logger.Error("session: login failed", "error", err)
		return fmt.Errorf("%w: %w", ErrAuth, err)
	}
	s.authenticated = true
	s.logger.Info("session: logged in")
	return nil
}

func (s *Session) login(ctx context.Context) error {
	if s.creds.Username == "" || s.creds.Password == "" {
		return errors.New("missing credentials")
	}
	steps := []func(context.Context) error{
		func(ctx context.Context) error { return s.driver.Navigate(ctx, s.baseURL) },
		func(ctx context.Context) error { return s.driver.Type(ctx, SelectorUsername, s.creds.Username) },
		func(ctx context.Context) error { return s.driver.Type(ctx, SelectorPassword, s.creds.Password) },
		func(ctx context.Context) error { return s.driver.WaitInvisible(ctx, SelectorLoading) },
		func(ctx context.Context) error { return s.driver.Click(ctx, SelectorLoginButton) },
		func(ctx context.Context) error { return s.driver.WaitInvisible(ctx, SelectorLoading) },
		// Dismiss the informational dialog shown after every login.
		func(ctx context.Context) error { return s.driver.Click(ctx, SelectorModalFirstButton) },
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// GoHome opens the landing page unless the browser is already on it.
func (s *Session) GoHome(ctx context.Context) error {
	loc, err := s.driver.Location(ctx)
	if err != nil {
		return fmt.Errorf("mhrs: read location: %w", err)
	}
	if sameURL(loc, s.baseURL) {
		return nil
	}
	if err := s.driver.Navigate(ctx, s.baseURL); err != nil {
		return fmt.Errorf("mhrs: open home page: %w", err)
	}
	return nil
}

func sameURL(a, b string) bool {
	return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}
