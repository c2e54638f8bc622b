package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docify/internal/common"
	"github.com/ternarybob/docify/internal/httpclient"
)

type fakeRemote struct {
	enabled bool
	html    []byte
	err     error
	calls   int
}

func (f *fakeRemote) Enabled() bool { return f.enabled }
func (f *fakeRemote) Render(ctx context.Context, url string) ([]byte, error) {
	f.calls++
	return f.html, f.err
}

type fakeChrome struct {
	html  []byte
	err   error
	calls int
}

func (f *fakeChrome) Render(ctx context.Context, url string, profile HeaderProfile) ([]byte, error) {
	f.calls++
	return f.html, f.err
}
func (f *fakeChrome) Close() error { return nil }

func testConfig() *common.FetcherConfig {
	return &common.FetcherConfig{
		RequestTimeout: 5 * time.Second,
		BodyThreshold:  100,
	}
}

func newTestService(t *testing.T, config *common.FetcherConfig, remote remoteRenderTier, chrome chromeRenderTier) *Service {
	t.Helper()
	client, err := httpclient.NewScrapeClient(config.RequestTimeout)
	require.NoError(t, err)
	return newServiceWithTiers(config, client, remote, chrome, arbor.NewLogger())
}

func TestFetchSucceedsOverThreshold(t *testing.T) {
	page := "<html>" + strings.Repeat("content ", 50) + "</html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	remote := &fakeRemote{enabled: true}
	svc := newTestService(t, testConfig(), remote, nil)

	result, err := svc.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, page, string(result.HTML))
	assert.Equal(t, "http:modern-browser", result.Method)
	assert.False(t, result.RenderingAttempted)
	assert.Zero(t, remote.calls, "no escalation when the first profile succeeds")
}

func TestFetchNeverErrorsWhenAllTiersFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	remote := &fakeRemote{enabled: true, err: fmt.Errorf("render unavailable")}
	chrome := &fakeChrome{err: fmt.Errorf("no chrome")}
	svc := newTestService(t, testConfig(), remote, chrome)

	result, err := svc.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Nil(t, result.HTML)
	assert.True(t, result.RenderingAttempted)
	assert.Equal(t, 1, remote.calls)
	assert.Equal(t, 1, chrome.calls)
}

func TestFetchKeepsUndersizedCandidate(t *testing.T) {
	small := "<html>tiny</html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, small)
	}))
	defer server.Close()

	svc := newTestService(t, testConfig(), &fakeRemote{}, nil)

	result, err := svc.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, small, string(result.HTML))
	assert.True(t, result.RenderingAttempted)
	assert.Contains(t, result.Method, "http:")
}

func TestFetchRenderedContentWinsWhenBigger(t *testing.T) {
	small := "<html>shell</html>"
	rendered := "<html>" + strings.Repeat("hydrated ", 40) + "</html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, small)
	}))
	defer server.Close()

	remote := &fakeRemote{enabled: true, html: []byte(rendered)}
	svc := newTestService(t, testConfig(), remote, nil)

	result, err := svc.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, rendered, string(result.HTML))
	assert.Equal(t, "render:remote", result.Method)
	assert.True(t, result.RenderingAttempted)
}

func TestFetchProfileRotationOnBlock(t *testing.T) {
	page := "<html>" + strings.Repeat("served to mobile ", 20) + "</html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.UserAgent(), "iPhone") {
			fmt.Fprint(w, page)
			return
		}
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer server.Close()

	svc := newTestService(t, testConfig(), &fakeRemote{}, nil)

	result, err := svc.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, page, string(result.HTML))
	assert.Equal(t, "http:mobile", result.Method)
}

func TestRetryPolicyBackoffGrows(t *testing.T) {
	policy := NewRetryPolicy()

	first := policy.CalculateBackoff(0)
	third := policy.CalculateBackoff(2)

	// Jitter is ±25%, so attempt 2 (4s nominal) always exceeds attempt 0
	// (1s nominal).
	assert.Greater(t, third, first)
	assert.LessOrEqual(t, third, policy.MaxBackoff+policy.MaxBackoff/4)
}

func TestRetryPolicyShouldRetry(t *testing.T) {
	policy := NewRetryPolicy()

	assert.True(t, policy.ShouldRetry(0, 503, nil))
	assert.True(t, policy.ShouldRetry(0, 429, nil))
	assert.False(t, policy.ShouldRetry(0, 404, nil))
	assert.False(t, policy.ShouldRetry(3, 503, nil))
	assert.True(t, policy.ShouldRetry(0, 0, context.DeadlineExceeded))
}
