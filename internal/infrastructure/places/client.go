package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/vicino/backend/internal/domain"
)

// Provider status strings on the wire.
const (
	statusOK            = "OK"
	statusZeroResults   = "ZERO_RESULTS"
	statusOverLimit     = "OVER_QUERY_LIMIT"
	statusNotFound      = "NOT_FOUND"
	statusInvalidResult = "INVALID_REQUEST"
)

// Client handles communication with the external place-data provider.
// Every request passes through the rate gate first.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	gate       *RateGate
	debug      bool
}

// NewClient creates a new provider client. The gate is injected so callers
// control throttling policy (and tests can use a permissive one).
func NewClient(apiKey, baseURL string, gate *RateGate) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:  apiKey,
		baseURL: baseURL,
		gate:    gate,
	}
}

// SetDebug enables verbose request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns the sleep before retry attempt n.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(250*(1<<attempt)) * time.Millisecond
}

// NearbySearch looks up places around a coordinate. The keyword is a
// category hint passed through to the provider.
func (c *Client) NearbySearch(ctx context.Context, lat, lon float64, radiusMeters int, keyword string) ([]domain.PlaceRecord, error) {
	params := url.Values{}
	params.Add("location", fmt.Sprintf("%f,%f", lat, lon))
	params.Add("radius", fmt.Sprintf("%d", radiusMeters))
	if keyword != "" {
		params.Add("keyword", keyword)
	}
	params.Add("key", c.apiKey)

	reqURL := fmt.Sprintf("%s/nearbysearch/json?%s", c.baseURL, params.Encode())
	return c.search(ctx, reqURL)
}

// TextSearch looks up places matching a free-text query, optionally biased
// toward a location.
func (c *Client) TextSearch(ctx context.Context, query string, lat, lon *float64) ([]domain.PlaceRecord, error) {
	params := url.Values{}
	params.Add("query", query)
	if lat != nil && lon != nil {
		params.Add("location", fmt.Sprintf("%f,%f", *lat, *lon))
	}
	params.Add("key", c.apiKey)

	reqURL := fmt.Sprintf("%s/textsearch/json?%s", c.baseURL, params.Encode())
	return c.search(ctx, reqURL)
}

// search runs a search-shaped request with transient-failure retries.
// A provider throttle is returned immediately as ErrRateLimited; the retry
// decision for that case belongs to the caller.
func (c *Client) search(ctx context.Context, reqURL string) ([]domain.PlaceRecord, error) {
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.gate.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate gate wait aborted: %w", err)
		}

		body, status, err := c.doRequest(ctx, reqURL)
		if err != nil {
			log.Printf("[PLACES] Request error (attempt %d): %v", attempt, err)
			lastErr = err
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		if status == http.StatusTooManyRequests {
			c.gate.ReportThrottled()
			return nil, domain.ErrRateLimited
		}
		if status != http.StatusOK {
			log.Printf("[PLACES] API error (attempt %d) - Status: %d", attempt, status)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrProviderUnavailable, status)
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		var resp domain.PlacesSearchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		switch resp.Status {
		case statusOK, statusZeroResults:
			if c.debug {
				log.Printf("[PLACES] %d raw results", len(resp.Results))
			}
			return resp.Results, nil
		case statusOverLimit:
			c.gate.ReportThrottled()
			return nil, domain.ErrRateLimited
		default:
			return nil, fmt.Errorf("%w: provider status %s: %s", domain.ErrProviderUnavailable, resp.Status, resp.ErrorMessage)
		}
	}

	return nil, lastErr
}

// Details retrieves the extended record for a single place.
func (c *Client) Details(ctx context.Context, placeID string) (*domain.PlaceRecord, error) {
	if err := c.gate.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate gate wait aborted: %w", err)
	}

	params := url.Values{}
	params.Add("place_id", placeID)
	params.Add("fields", "place_id,name,vicinity,formatted_address,geometry,types,rating,user_ratings_total,price_level,business_status,opening_hours,photos,formatted_phone_number,website")
	params.Add("key", c.apiKey)

	reqURL := fmt.Sprintf("%s/details/json?%s", c.baseURL, params.Encode())

	body, status, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	if status == http.StatusTooManyRequests {
		c.gate.ReportThrottled()
		return nil, domain.ErrRateLimited
	}
	if status == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderUnavailable, status)
	}

	var resp domain.PlaceDetailsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	switch resp.Status {
	case statusOK:
		return &resp.Result, nil
	case statusZeroResults, statusNotFound:
		return nil, domain.ErrNotFound
	case statusOverLimit:
		c.gate.ReportThrottled()
		return nil, domain.ErrRateLimited
	default:
		return nil, fmt.Errorf("%w: provider status %s: %s", domain.ErrProviderUnavailable, resp.Status, resp.ErrorMessage)
	}
}

// doRequest executes an HTTP GET and returns the body and status code.
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Vicino/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}

	return body, resp.StatusCode, nil
}
