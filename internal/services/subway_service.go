package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bluele/gcache"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/subway-routing/internal/graph"
	"github.com/smarttransit/subway-routing/internal/models"
	"github.com/smarttransit/subway-routing/pkg/mbta"
)

var (
	// ErrNotLoaded is returned by queries issued before any successful load
	ErrNotLoaded = errors.New("route data has not been loaded yet")

	// ErrRouteNotFound is returned when the graph references a route ID that
	// is missing from the loaded route list
	ErrRouteNotFound = errors.New("route not found in loaded route data")
)

// subwaySnapshot is one generation of loaded data. It is never modified
// after being published.
type subwaySnapshot struct {
	generation uint64
	loadedAt   time.Time
	routes     []models.Route
	routesByID map[string]models.Route
	graph      *graph.TransitGraph
	stopCounts []models.RouteStopCount
}

// pathKey identifies a path query by resolved station IDs within one
// generation, so names that only differ in case share an entry
type pathKey struct {
	generation uint64
	sourceID   string
	destID     string
}

// cachedPath wraps a path result so that "no path" can be cached too
type cachedPath struct {
	directions []models.Direction
}

// SubwayService loads subway route data and answers queries about it
type SubwayService struct {
	source mbta.Source
	logger *logrus.Logger

	current atomic.Pointer[subwaySnapshot]
	loadMu  sync.Mutex

	pathCache gcache.Cache
}

// NewSubwayService creates a new subway service. pathCacheSize is the number
// of path results kept per service; zero disables the cache.
func NewSubwayService(source mbta.Source, pathCacheSize int, logger *logrus.Logger) *SubwayService {
	s := &SubwayService{
		source: source,
		logger: logger,
	}
	if pathCacheSize > 0 {
		s.pathCache = gcache.New(pathCacheSize).LRU().Build()
	}
	return s
}

// LoadRouteData fetches routes and their canonical route patterns from the
// source and replaces the loaded data. On any failure the previously loaded
// data is kept unchanged.
func (s *SubwayService) LoadRouteData(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	startTime := time.Now()

	routes, err := s.source.FetchRoutes(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to fetch subway routes")
		return fmt.Errorf("failed to load route data: %w", err)
	}

	routeIDs := make([]string, 0, len(routes))
	for _, route := range routes {
		routeIDs = append(routeIDs, route.ID)
	}

	patterns, err := s.source.FetchCanonicalRoutePatterns(ctx, routeIDs)
	if err != nil {
		s.logger.WithError(err).Error("Failed to fetch route patterns")
		return fmt.Errorf("failed to load route data: %w", err)
	}

	transitGraph, err := graph.Build(patterns)
	if err != nil {
		s.logger.WithError(err).Error("Failed to build transit graph")
		return fmt.Errorf("failed to load route data: %w", err)
	}

	var generation uint64 = 1
	if previous := s.current.Load(); previous != nil {
		generation = previous.generation + 1
	}

	snapshot := newSubwaySnapshot(generation, routes, transitGraph)
	s.current.Store(snapshot)
	if s.pathCache != nil {
		s.pathCache.Purge()
	}

	s.logger.WithFields(logrus.Fields{
		"source":     s.source.GetName(),
		"generation": generation,
		"routes":     len(routes),
		"patterns":   len(patterns),
		"stations":   transitGraph.Len(),
		"load_ms":    time.Since(startTime).Milliseconds(),
	}).Info("Route data loaded")

	return nil
}

func newSubwaySnapshot(generation uint64, routes []models.Route, transitGraph *graph.TransitGraph) *subwaySnapshot {
	snapshot := &subwaySnapshot{
		generation: generation,
		loadedAt:   time.Now(),
		routes:     routes,
		routesByID: make(map[string]models.Route, len(routes)),
		graph:      transitGraph,
		stopCounts: make([]models.RouteStopCount, 0, len(routes)),
	}

	for _, route := range routes {
		if _, exists := snapshot.routesByID[route.ID]; !exists {
			snapshot.routesByID[route.ID] = route
		}
	}

	// A route serving no station is still counted, with zero stops
	for _, route := range routes {
		count := 0
		for _, node := range transitGraph.Nodes() {
			if node.Routes.Contains(route.ID) {
				count++
			}
		}
		snapshot.stopCounts = append(snapshot.stopCounts, models.RouteStopCount{
			Route:     route,
			StopCount: count,
		})
	}

	return snapshot
}

func (s *SubwayService) snapshot() (*subwaySnapshot, error) {
	snapshot := s.current.Load()
	if snapshot == nil {
		return nil, ErrNotLoaded
	}
	return snapshot, nil
}

// GetRoutes returns the most recently loaded list of routes
func (s *SubwayService) GetRoutes() ([]models.Route, error) {
	snapshot, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	routes := make([]models.Route, len(snapshot.routes))
	copy(routes, snapshot.routes)
	return routes, nil
}

// GetRouteWithMostStops returns the route serving the most stations, or nil
// when no routes are loaded. Ties go to the lexicographically smallest route ID.
func (s *SubwayService) GetRouteWithMostStops() (*models.RouteStopCount, error) {
	return s.extremeRoute(func(candidate, best int) bool { return candidate > best })
}

// GetRouteWithFewestStops returns the route serving the fewest stations, or
// nil when no routes are loaded. Ties go to the lexicographically smallest
// route ID.
func (s *SubwayService) GetRouteWithFewestStops() (*models.RouteStopCount, error) {
	return s.extremeRoute(func(candidate, best int) bool { return candidate < best })
}

func (s *SubwayService) extremeRoute(better func(candidate, best int) bool) (*models.RouteStopCount, error) {
	snapshot, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	var best *models.RouteStopCount
	for i := range snapshot.stopCounts {
		candidate := snapshot.stopCounts[i]
		if best == nil ||
			better(candidate.StopCount, best.StopCount) ||
			(candidate.StopCount == best.StopCount && candidate.Route.ID < best.Route.ID) {
			best = &candidate
		}
	}
	return best, nil
}

// GetStopCounts returns every loaded route with its station count, in route
// list order
func (s *SubwayService) GetStopCounts() ([]models.RouteStopCount, error) {
	snapshot, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	counts := make([]models.RouteStopCount, len(snapshot.stopCounts))
	copy(counts, snapshot.stopCounts)
	return counts, nil
}

// GetTransferStops maps the name of every station served by two or more
// routes to those routes, in the order the station first saw them. Stations
// sharing a name collide; the one discovered last wins.
func (s *SubwayService) GetTransferStops() (map[string][]models.Route, error) {
	snapshot, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	transfers := make(map[string][]models.Route)
	for _, node := range snapshot.graph.Nodes() {
		if node.Routes.Len() < 2 {
			continue
		}
		routes, err := snapshot.resolveRoutes(node.Routes.IDs())
		if err != nil {
			return nil, err
		}
		transfers[node.Name] = routes
	}
	return transfers, nil
}

// FindPath returns directions along a path with the fewest stops between the
// stations named sourceName and destName (case-insensitive). A nil slice with
// a nil error means no path exists, including when both names refer to the
// same station. Unknown names fail with graph.ErrStationNotFound.
func (s *SubwayService) FindPath(sourceName, destName string) ([]models.Direction, error) {
	snapshot, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	// Names are resolved before the cache so an unknown name always fails
	source, err := snapshot.graph.FindStation(sourceName)
	if err != nil {
		return nil, err
	}
	dest, err := snapshot.graph.FindStation(destName)
	if err != nil {
		return nil, err
	}

	cacheKey := pathKey{generation: snapshot.generation, sourceID: source.ID, destID: dest.ID}
	if s.pathCache != nil {
		if value, err := s.pathCache.Get(cacheKey); err == nil {
			return copyDirections(value.(cachedPath).directions), nil
		}
	}

	steps := snapshot.graph.PathBetween(source, dest)

	var directions []models.Direction
	if steps != nil {
		directions = make([]models.Direction, 0, len(steps))
		for _, step := range steps {
			route, ok := snapshot.routesByID[step.RouteID]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrRouteNotFound, step.RouteID)
			}
			directions = append(directions, models.Direction{
				Route:    route,
				StopName: step.StopName,
			})
		}
	}

	if s.pathCache != nil {
		if err := s.pathCache.Set(cacheKey, cachedPath{directions: copyDirections(directions)}); err != nil {
			s.logger.WithError(err).Warn("Failed to cache path result")
		}
	}

	return directions, nil
}

// Status reports what data is currently loaded
func (s *SubwayService) Status() models.DataStatus {
	status := models.DataStatus{Source: s.source.GetName()}

	snapshot := s.current.Load()
	if snapshot == nil {
		return status
	}

	loadedAt := snapshot.loadedAt
	status.Loaded = true
	status.Generation = snapshot.generation
	status.LoadedAt = &loadedAt
	status.Routes = len(snapshot.routes)
	status.Stations = snapshot.graph.Len()
	return status
}

// copyDirections copies a path result, keeping nil as nil
func copyDirections(directions []models.Direction) []models.Direction {
	if directions == nil {
		return nil
	}
	copied := make([]models.Direction, len(directions))
	copy(copied, directions)
	return copied
}

func (snapshot *subwaySnapshot) resolveRoutes(ids []string) ([]models.Route, error) {
	routes := make([]models.Route, 0, len(ids))
	for _, id := range ids {
		route, ok := snapshot.routesByID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrRouteNotFound, id)
		}
		routes = append(routes, route)
	}
	return routes, nil
}
