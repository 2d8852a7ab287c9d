package mbta

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/subway-routing/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	threeRoutesBody = `{"data":[` +
		`{"attributes":{"long_name":"Red Line"},"id":"Red","links":{"self":"/routes/Red"},"relationships":{"line":{"data":{"id":"line-Red","type":"line"}}},"type":"route"},` +
		`{"attributes":{"long_name":"Mattapan Trolley"},"id":"Mattapan","links":{"self":"/routes/Mattapan"},"relationships":{"line":{"data":{"id":"line-Mattapan","type":"line"}}},"type":"route"},` +
		`{"attributes":{"long_name":"Orange Line"},"id":"Orange","links":{"self":"/routes/Orange"},"relationships":{"line":{"data":{"id":"line-Orange","type":"line"}}},"type":"route"}` +
		`],"jsonapi":{"version":"1.0"}}`

	routeMissingLongNameBody = `{"data":[{"attributes":{},"id":"Red","links":{"self":"/routes/Red"},"relationships":{"line":{"data":{"id":"line-Red","type":"line"}}},"type":"route"}],"jsonapi":{"version":"1.0"}}`

	rateLimitedBody = `{"errors":[{"code":"rate_limited","detail":"You have exceeded your allowed usage rate.","status":"429"}],"jsonapi":{"version":"1.0"}}`

	emptyBody = `{"data":[],"jsonapi":{"version":"1.0"}}`

	singleStopPatternBody = `{"data":[` +
		`{"attributes":{},"id":"Green-E-886-0","relationships":{"representative_trip":{"data":{"id":"canonical-Green-E-C1-0","type":"trip"}},"route":{"data":{"id":"Green-E","type":"route"}}},"type":"route_pattern"},` +
		`{"attributes":{},"id":"Shuttle-Generic-0","relationships":{"representative_trip":{"data":{"id":"canonical-Shuttle-0","type":"trip"}},"route":{"data":{"id":"Shuttle-Generic","type":"route"}}},"type":"route_pattern"}` +
		`],"included":[` +
		`{"attributes":{"name":"Symphony"},"id":"70241","relationships":{"parent_station":{"data":{"id":"place-symcl","type":"stop"}},"zone":{"data":{"id":"RapidTransit","type":"zone"}}},"type":"stop"},` +
		`{"attributes":{"name":"Symphony"},"id":"place-symcl","relationships":{"parent_station":{"data":null},"zone":{"data":null}},"type":"stop"},` +
		`{"attributes":{},"id":"canonical-Green-E-C1-0","relationships":{"route":{"data":{"id":"Green-E","type":"route"}},"stops":{"data":[{"id":"70241","type":"stop"}]}},"type":"trip"},` +
		`{"attributes":{},"id":"canonical-Shuttle-0","relationships":{"stops":{"data":[{"id":"place-symcl","type":"stop"}]}},"type":"trip"}` +
		`],"jsonapi":{"version":"1.0"}}`
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewClient(ClientConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, logger)
}

func respondWith(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient(ClientConfig{}, logrus.New())
	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, 30*time.Second, client.client.Timeout)

	client = NewClient(ClientConfig{BaseURL: "http://localhost:9000", APIKey: "key"}, logrus.New())
	assert.Equal(t, "http://localhost:9000/", client.baseURL)
	assert.Equal(t, "key", client.apiKey)
}

func TestFetchRoutes_Success(t *testing.T) {
	var gotPath, gotType, gotKey, gotAccept string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		gotType = r.URL.Query().Get("filter[type]")
		gotKey = r.Header.Get("x-api-key")
		_, _ = w.Write([]byte(threeRoutesBody))
	})
	client.apiKey = "secret"

	routes, err := client.FetchRoutes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Route{
		{ID: "Red", Name: "Red Line"},
		{ID: "Mattapan", Name: "Mattapan Trolley"},
		{ID: "Orange", Name: "Orange Line"},
	}, routes)

	assert.Equal(t, "/routes", gotPath)
	assert.Equal(t, "0,1", gotType)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "application/vnd.api+json", gotAccept)
}

func TestFetchRoutes_Empty(t *testing.T) {
	client := newTestClient(t, respondWith(http.StatusOK, emptyBody))

	routes, err := client.FetchRoutes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, routes)
}

func TestFetchRoutes_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "missing long name", status: http.StatusOK, body: routeMissingLongNameBody},
		{name: "rate limited", status: http.StatusTooManyRequests, body: rateLimitedBody},
		{name: "forbidden", status: http.StatusForbidden, body: `{"errors":[{"code":"forbidden","status":"403"}]}`},
		{name: "malformed", status: http.StatusOK, body: "malformed"},
		{name: "empty body", status: http.StatusOK, body: ""},
		{name: "missing data", status: http.StatusOK, body: `{"jsonapi":{"version":"1.0"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, respondWith(tt.status, tt.body))

			routes, err := client.FetchRoutes(context.Background())
			assert.Nil(t, routes)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFetchFailed))
		})
	}
}

func TestFetchRoutes_RateLimitedMessage(t *testing.T) {
	client := newTestClient(t, respondWith(http.StatusTooManyRequests, rateLimitedBody))

	_, err := client.FetchRoutes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestFetchRoutes_ServerUnavailable(t *testing.T) {
	server := httptest.NewServer(respondWith(http.StatusOK, threeRoutesBody))
	server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL}, logrus.New())
	_, err := client.FetchRoutes(context.Background())
	assert.True(t, errors.Is(err, ErrFetchFailed))
}

func TestFetchCanonicalRoutePatterns_Success(t *testing.T) {
	var gotPath, gotRoutes, gotCanonical, gotInclude string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRoutes = r.URL.Query().Get("filter[route]")
		gotCanonical = r.URL.Query().Get("filter[canonical]")
		gotInclude = r.URL.Query().Get("include")
		_, _ = w.Write([]byte(singleStopPatternBody))
	})

	patterns, err := client.FetchCanonicalRoutePatterns(context.Background(), []string{"Green-E", "Red"})
	require.NoError(t, err)

	assert.Equal(t, "/route_patterns", gotPath)
	assert.Equal(t, "Green-E,Red", gotRoutes)
	assert.Equal(t, "true", gotCanonical)
	assert.Equal(t, "representative_trip.stops.parent_station", gotInclude)

	// the shuttle pattern is dropped
	require.Len(t, patterns, 1)
	pattern := patterns[0]
	assert.Equal(t, "Green-E-886-0", pattern.ID)
	assert.Equal(t, "Green-E", pattern.RouteID())
	require.NotNil(t, pattern.RepresentativeTrip)
	assert.Equal(t, "canonical-Green-E-C1-0", pattern.RepresentativeTrip.ID)
	require.Len(t, pattern.RepresentativeTrip.Stops, 1)

	stop := pattern.RepresentativeTrip.Stops[0]
	assert.Equal(t, "70241", stop.ID)
	assert.Equal(t, "Symphony", stop.Name)
	require.NotNil(t, stop.ParentStation)
	assert.Equal(t, &models.Stop{ID: "place-symcl", Name: "Symphony"}, stop.ParentStation)
}

func TestFetchCanonicalRoutePatterns_NoRoutes(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	patterns, err := client.FetchCanonicalRoutePatterns(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, patterns)
	assert.False(t, called)
}

func TestFetchCanonicalRoutePatterns_MissingTripKeepsNilStops(t *testing.T) {
	body := `{"data":[{"id":"Red-1-0","type":"route_pattern","relationships":{"route":{"data":{"id":"Red","type":"route"}},"representative_trip":{"data":{"id":"canonical-Red","type":"trip"}}}}],"included":[]}`
	client := newTestClient(t, respondWith(http.StatusOK, body))

	patterns, err := client.FetchCanonicalRoutePatterns(context.Background(), []string{"Red"})
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	require.NotNil(t, patterns[0].RepresentativeTrip)
	assert.Nil(t, patterns[0].RepresentativeTrip.Stops)
}

func TestFetchCanonicalRoutePatterns_NullRelationships(t *testing.T) {
	body := `{"data":[{"id":"Red-1-0","type":"route_pattern","relationships":{"route":{"data":{"id":"Red","type":"route"}},"representative_trip":{"data":null}}},` +
		`{"id":"Red-1-1","type":"route_pattern","relationships":{"route":{"data":null}}}]}`
	client := newTestClient(t, respondWith(http.StatusOK, body))

	patterns, err := client.FetchCanonicalRoutePatterns(context.Background(), []string{"Red"})
	require.NoError(t, err)

	// the pattern without a route cannot belong to a requested route
	require.Len(t, patterns, 1)
	assert.Equal(t, "Red-1-0", patterns[0].ID)
	assert.Nil(t, patterns[0].RepresentativeTrip)
}

func TestFetchCanonicalRoutePatterns_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "bad request", status: http.StatusBadRequest, body: `{"errors":[{"code":"bad_request","status":"400"}]}`},
		{name: "malformed", status: http.StatusOK, body: "malformed"},
		{name: "data is not a list", status: http.StatusOK, body: `{"data":{"id":"p","type":"route_pattern"}}`},
		{name: "wrong resource type", status: http.StatusOK, body: `{"data":[{"id":"canonical-Red","type":"trip"}]}`},
		{name: "error document", status: http.StatusOK, body: rateLimitedBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, respondWith(tt.status, tt.body))

			patterns, err := client.FetchCanonicalRoutePatterns(context.Background(), []string{"Red"})
			assert.Nil(t, patterns)
			assert.True(t, errors.Is(err, ErrFetchFailed))
		})
	}
}
