package server_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focus-cli/errs"
	"focus-cli/server"
)

func TestMatchesBlocked(t *testing.T) {
	domains := []string{"reddit.com", "news.ycombinator.com"}

	tests := []struct {
		host string
		want bool
	}{
		{"reddit.com", true},
		{"REDDIT.COM", true},
		{"reddit.com.", true},
		{"old.reddit.com", true},
		{"news.ycombinator.com", true},
		{"notreddit.com", false},
		{"reddit.com.evil.example", false},
		{"example.com", false},
		{"", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, server.MatchesBlocked(tc.host, domains), "host %q", tc.host)
	}
}

func TestMatchesBlocked_EmptyBlocklist(t *testing.T) {
	assert.False(t, server.MatchesBlocked("reddit.com", nil))
}

func startResponder(t *testing.T, domains []string) *server.Responder {
	r := server.New(0, domains) // ephemeral port
	require.NoError(t, r.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = r.Stop(ctx)
	})
	return r
}

func TestResponder_ServesBlockedPage(t *testing.T) {
	r := startResponder(t, []string{"reddit.com"})

	resp, err := http.Get("http://" + r.Addr() + "/some/path")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Blocked")
}

func TestResponder_MetricsEndpoint(t *testing.T) {
	r := startResponder(t, []string{"reddit.com"})

	// Generate at least one sample first.
	resp, err := http.Get("http://" + r.Addr() + "/")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get("http://" + r.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "focus_responder_requests_total")
}

func TestResponder_StopReleasesPort(t *testing.T) {
	first := server.New(0, nil)
	require.NoError(t, first.Start())

	_, portStr, err := net.SplitHostPort(first.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, first.Stop(ctx))

	second := server.New(port, nil)
	require.NoError(t, second.Start(), "port must be rebindable after Stop returns")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = second.Stop(ctx)
	}()
}

func TestResponder_BindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	r := server.New(port, nil)
	require.ErrorIs(t, r.Start(), errs.ErrListenerBind)
}

func TestResponder_StopWithoutStart(t *testing.T) {
	r := server.New(0, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, r.Stop(ctx))
}
