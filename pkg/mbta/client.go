package mbta

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/jsonapi"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/subway-routing/internal/models"
)

const (
	// DefaultBaseURL is the base URL of the MBTA v3 API
	DefaultBaseURL = "https://api-v3.mbta.com/"

	// subwayRoutesEndpoint lists routes of the light rail (0) and heavy rail (1) types
	subwayRoutesEndpoint = "routes?filter[type]=0,1&fields[route]=long_name"

	// routePatternsEndpoint lists canonical route patterns with their
	// representative trip, its stops and their parent stations included
	routePatternsEndpoint = "route_patterns?filter[route]=%s&filter[canonical]=true" +
		"&include=representative_trip.stops.parent_station"

	apiKeyHeader = "x-api-key"
)

// Client fetches subway data from the MBTA v3 JSON:API
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *logrus.Logger
}

// ClientConfig holds configuration for the MBTA API client
type ClientConfig struct {
	BaseURL string
	APIKey  string // Optional: raises the rate limit when set
	Timeout time.Duration
}

// NewClient creates a new MBTA API client
func NewClient(config ClientConfig, logger *logrus.Logger) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  config.APIKey,
		logger:  logger,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetName returns the source name
func (c *Client) GetName() string {
	return "mbta-api"
}

// FetchRoutes returns all subway routes
func (c *Client) FetchRoutes(ctx context.Context) ([]models.Route, error) {
	body, err := c.get(ctx, subwayRoutesEndpoint)
	if err != nil {
		return nil, err
	}

	resources, err := unmarshalResources[routeResource](body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	routes := make([]models.Route, 0, len(resources))
	for _, resource := range resources {
		routes = append(routes, resource.toRoute())
	}
	if err := validateRoutes(routes); err != nil {
		return nil, fmt.Errorf("%w: invalid route: %w", ErrFetchFailed, err)
	}

	c.logger.WithField("routes", len(routes)).Debug("Fetched subway routes")
	return routes, nil
}

// FetchCanonicalRoutePatterns returns the canonical route patterns of the
// given routes, without replacement shuttle patterns
func (c *Client) FetchCanonicalRoutePatterns(ctx context.Context, routeIDs []string) ([]models.RoutePattern, error) {
	if len(routeIDs) == 0 {
		return []models.RoutePattern{}, nil
	}

	endpoint := fmt.Sprintf(routePatternsEndpoint, url.QueryEscape(strings.Join(routeIDs, ",")))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	resources, err := unmarshalResources[routePatternResource](body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	patterns := make([]models.RoutePattern, 0, len(resources))
	for _, resource := range resources {
		patterns = append(patterns, resource.toRoutePattern())
	}

	filtered := filterPatterns(patterns, routeIDs)
	c.logger.WithFields(logrus.Fields{
		"patterns": len(filtered),
		"dropped":  len(patterns) - len(filtered),
	}).Debug("Fetched canonical route patterns")

	return filtered, nil
}

// get performs a GET request and returns the JSON:API response body. Every
// failure is reported as ErrFetchFailed.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	requestURL := c.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", jsonapi.MediaType)
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("url", requestURL).Warn("MBTA request failed")
		return nil, fmt.Errorf("%w: failed to send request: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrFetchFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WithFields(logrus.Fields{
			"url":    requestURL,
			"status": resp.StatusCode,
		}).Warn("MBTA request returned an unsuccessful status")
		return nil, fmt.Errorf("%w: unsuccessful HTTP response (status %d): %s",
			ErrFetchFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if len(body) == 0 {
		return nil, fmt.Errorf("%w: response body was empty", ErrFetchFailed)
	}

	return body, nil
}
