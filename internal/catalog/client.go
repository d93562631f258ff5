// Package catalog fetches the indicator and preset catalogs the builder
// validates drafts against.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ducminhle1904/bot-builder/internal/errors"
	"github.com/ducminhle1904/bot-builder/internal/logger"
	"github.com/ducminhle1904/bot-builder/pkg/strategy"
)

// DefaultTimeout bounds a single catalog fetch. A slow catalog must not
// block the editing session, which starts on the built-in fallback.
const DefaultTimeout = 10 * time.Second

// Client talks to the catalog service.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

// NewClient creates a catalog client for the given base URL.
func NewClient(baseURL string, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     log,
	}
}

// presetsResponse is the wire shape of the preset catalog endpoint.
type presetsResponse struct {
	Presets []strategy.Preset `json:"presets"`
}

// FetchIndicators retrieves the indicator catalog. The response body is
// the catalog itself: indicator list, timeframe list and an optional
// comparator list.
func (c *Client) FetchIndicators(ctx context.Context) (*strategy.Catalog, error) {
	var catalog strategy.Catalog
	if err := c.getJSON(ctx, c.baseURL+"/indicators", &catalog); err != nil {
		return nil, errors.Wrap(err, errors.CategoryCollaborator, "catalog", "fetch_indicators")
	}
	return &catalog, nil
}

// FetchPresets retrieves the full preset catalog. Filtering by bot type
// happens client-side via strategy.FilterPresets.
func (c *Client) FetchPresets(ctx context.Context) ([]strategy.Preset, error) {
	var resp presetsResponse
	if err := c.getJSON(ctx, c.baseURL+"/presets", &resp); err != nil {
		return nil, errors.Wrap(err, errors.CategoryCollaborator, "catalog", "fetch_presets")
	}
	return resp.Presets, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("could not build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("catalog service returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not parse response: %w", err)
	}
	return nil
}
