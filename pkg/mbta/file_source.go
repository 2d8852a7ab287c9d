package mbta

import (
	"context"
	"fmt"
	"os"

	"github.com/smarttransit/subway-routing/internal/models"
	"gopkg.in/yaml.v3"
)

// FileSource reads routes and route patterns from a YAML fixture file.
// The file is read on every call so edits are picked up by the next reload.
type FileSource struct {
	path string
}

type fixtureFile struct {
	Routes        []models.Route        `yaml:"routes"`
	RoutePatterns []models.RoutePattern `yaml:"route_patterns"`
}

// NewFileSource creates a source backed by the YAML file at path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// GetName returns the source name
func (f *FileSource) GetName() string {
	return "file:" + f.path
}

// FetchRoutes returns the routes listed in the fixture file
func (f *FileSource) FetchRoutes(ctx context.Context) ([]models.Route, error) {
	fixture, err := f.read()
	if err != nil {
		return nil, err
	}
	if err := validateRoutes(fixture.Routes); err != nil {
		return nil, fmt.Errorf("%w: invalid route in %s: %w", ErrFetchFailed, f.path, err)
	}
	if fixture.Routes == nil {
		return []models.Route{}, nil
	}
	return fixture.Routes, nil
}

// FetchCanonicalRoutePatterns returns the fixture's patterns for routeIDs
func (f *FileSource) FetchCanonicalRoutePatterns(ctx context.Context, routeIDs []string) ([]models.RoutePattern, error) {
	fixture, err := f.read()
	if err != nil {
		return nil, err
	}
	return filterPatterns(fixture.RoutePatterns, routeIDs), nil
}

func (f *FileSource) read() (*fixtureFile, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	var fixture fixtureFile
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrFetchFailed, f.path, err)
	}
	return &fixture, nil
}
