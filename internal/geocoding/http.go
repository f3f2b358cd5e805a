package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"
)

// HTTPClient is the subset of *http.Client the REST providers need.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// maxErrorBody caps how much of a failed response ends up in the error text.
const maxErrorBody = 512

// restEndpoint performs rate limited JSON GET requests for a single geocoding API.
type restEndpoint struct {
	api     string
	rawURL  string
	client  HTTPClient
	limiter *rate.Limiter
	header  http.Header
	log     *slog.Logger

	// statusErr lets a provider map specific statuses to its own sentinel errors.
	statusErr func(status int) error
}

func (e *restEndpoint) getJSON(ctx context.Context, params url.Values, out any) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	target, err := url.Parse(e.rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse base URL: %w", err)
	}
	target.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range e.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute reverse geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if e.statusErr != nil {
			if mapped := e.statusErr(resp.StatusCode); mapped != nil {
				return mapped
			}
		}
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		e.log.ErrorContext(ctx, "Geocoding API error", "api", e.api, "status", resp.StatusCode, "body", string(snippet))
		return fmt.Errorf("%s API returned status %d: %s", e.api, resp.StatusCode, string(snippet))
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", e.api, err)
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
