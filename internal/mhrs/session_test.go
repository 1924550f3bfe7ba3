package mhrs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/mhrs-agent/internal/browser/browsertest"
	"github.com/wolfman30/mhrs-agent/pkg/logging"
)

func TestSession_EnsureLoggedInOnce(t *testing.T) {
	ctx := context.Background()
	p := newTestPortal()
	s := NewSession(p.f, testCreds, testBaseURL, logging.Discard())

	require.NoError(t, s.EnsureLoggedIn(ctx))
	require.NoError(t, s.EnsureLoggedIn(ctx))

	assert.True(t, s.Authenticated())
	assert.Equal(t, []string{testBaseURL}, p.f.Navigations())
	assert.Equal(t, 1, p.f.Count("click", SelectorLoginButton))
	assert.Equal(t, 1, p.okButton.Clicks(), "post-login dialog dismissed")

	var ops []string
	for _, c := range p.f.Calls() {
		if c.Op == "type" || c.Op == "click" {
			ops = append(ops, c.Op+" "+c.Selector)
		}
	}
	assert.Equal(t, []string{
		"type " + SelectorUsername,
		"type " + SelectorPassword,
		"click " + SelectorLoginButton,
		"click " + SelectorModalFirstButton,
	}, ops)
}

func TestSession_LoginFailureIsRetriedNextCall(t *testing.T) {
	ctx := context.Background()
	f := browsertest.New()
	s := NewSession(f, testCreds, testBaseURL, logging.Discard())

	err := s.EnsureLoggedIn(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuth)
	assert.False(t, s.Authenticated())

	f.Set(SelectorUsername, browsertest.NewNode(""))
	f.Set(SelectorPassword, browsertest.NewNode(""))
	f.Set(SelectorLoginButton, browsertest.NewNode("Giriş"))
	f.Set(SelectorModalFirstButton, browsertest.NewNode("Tamam"))

	require.NoError(t, s.EnsureLoggedIn(ctx))
	assert.True(t, s.Authenticated())
	assert.Len(t, f.Navigations(), 2)
}

func TestSession_MissingCredentials(t *testing.T) {
	p := newTestPortal()
	s := NewSession(p.f, Credentials{Username: "12345678901"}, testBaseURL, logging.Discard())

	err := s.EnsureLoggedIn(context.Background())
	assert.ErrorIs(t, err, ErrAuth)
	assert.Empty(t, p.f.Navigations())
}

func TestSession_Reset(t *testing.T) {
	ctx := context.Background()
	p := newTestPortal()
	s := NewSession(p.f, testCreds, testBaseURL, logging.Discard())

	require.NoError(t, s.EnsureLoggedIn(ctx))
	s.Reset()
	assert.False(t, s.Authenticated())
	require.NoError(t, s.EnsureLoggedIn(ctx))
	assert.Equal(t, 2, p.f.Count("click", SelectorLoginButton))
}

func TestSession_GoHomeOnlyWhenAway(t *testing.T) {
	ctx := context.Background()
	f := browsertest.New()
	s := NewSession(f, testCreds, testBaseURL, nil)

	f.SetURL("https://mhrs.test/vatandas/#") // trailing slash differs only
	require.NoError(t, s.GoHome(ctx))
	assert.Empty(t, f.Navigations())

	f.SetURL("https://mhrs.test/vatandas/#/randevu-ara")
	require.NoError(t, s.GoHome(ctx))
	assert.Equal(t, []string{testBaseURL}, f.Navigations())
}
