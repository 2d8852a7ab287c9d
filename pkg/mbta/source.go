package mbta

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/smarttransit/subway-routing/internal/models"
)

// ErrFetchFailed wraps every transport, status or parsing failure of a Source
var ErrFetchFailed = errors.New("failed to fetch subway data")

// Source supplies subway routes and their canonical route patterns
type Source interface {
	// FetchRoutes returns all subway routes (light rail and heavy rail)
	FetchRoutes(ctx context.Context) ([]models.Route, error)

	// FetchCanonicalRoutePatterns returns the canonical route patterns of the
	// given routes. Patterns belonging to any other route, such as
	// replacement shuttles, are dropped.
	FetchCanonicalRoutePatterns(ctx context.Context, routeIDs []string) ([]models.RoutePattern, error)

	// GetName returns the name of the source implementation
	GetName() string
}

var validate = validator.New()

// validateRoutes checks that every route has an ID and a name
func validateRoutes(routes []models.Route) error {
	for i := range routes {
		if err := validate.Struct(routes[i]); err != nil {
			return err
		}
	}
	return nil
}

// filterPatterns keeps only patterns whose route is one of routeIDs
func filterPatterns(patterns []models.RoutePattern, routeIDs []string) []models.RoutePattern {
	wanted := make(map[string]bool, len(routeIDs))
	for _, id := range routeIDs {
		wanted[id] = true
	}

	filtered := make([]models.RoutePattern, 0, len(patterns))
	for _, pattern := range patterns {
		if pattern.Route != nil && wanted[pattern.Route.ID] {
			filtered = append(filtered, pattern)
		}
	}
	return filtered
}
