// -----------------------------------------------------------------------
// Remote Renderer - Hosted browser rendering tier (browserless-compatible)
// -----------------------------------------------------------------------

package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docify/internal/common"
	"github.com/ternarybob/docify/internal/httpclient"
)

// RemoteRenderer calls a hosted rendering service that runs the page in a
// real browser and returns the settled HTML. Disabled when no token is
// configured.
type RemoteRenderer struct {
	config *common.FetcherConfig
	client *http.Client
	logger arbor.ILogger
}

// NewRemoteRenderer creates a remote renderer from fetcher config.
func NewRemoteRenderer(config *common.FetcherConfig, logger arbor.ILogger) *RemoteRenderer {
	return &RemoteRenderer{
		config: config,
		client: httpclient.NewDefaultHTTPClient(config.RendererTimeout),
		logger: logger,
	}
}

// Enabled reports whether the renderer has an endpoint and token.
func (r *RemoteRenderer) Enabled() bool {
	return r.config.RendererURL != "" && r.config.RendererToken != ""
}

type renderRequest struct {
	URL         string            `json:"url"`
	GotoOptions renderGotoOptions `json:"gotoOptions"`
}

type renderGotoOptions struct {
	WaitUntil string `json:"waitUntil"`
	Timeout   int    `json:"timeout"`
}

// Render posts the URL to the rendering service and returns the rendered
// HTML.
func (r *RemoteRenderer) Render(ctx context.Context, url string) ([]byte, error) {
	if !r.Enabled() {
		return nil, fmt.Errorf("remote renderer not configured")
	}

	payload, err := json.Marshal(renderRequest{
		URL: url,
		GotoOptions: renderGotoOptions{
			WaitUntil: "networkidle2",
			Timeout:   int(r.config.RendererTimeout.Milliseconds()),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build render request: %w", err)
	}

	endpoint := fmt.Sprintf("%s?token=%s", r.config.RendererURL, r.config.RendererToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read render response: %w", err)
	}

	return body, nil
}
