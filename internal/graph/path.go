package graph

import (
	"fmt"
	"strings"
)

// Step is one direction of a path: ride RouteID to the station StopName
type Step struct {
	RouteID  string
	StopName string
}

// FindStation returns the first node whose name matches name, ignoring case
func (g *TransitGraph) FindStation(name string) (*StationNode, error) {
	for _, node := range g.nodes {
		if strings.EqualFold(node.Name, name) {
			return node, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrStationNotFound, name)
}

// FindPath returns directions along a path with the fewest stops from the
// station named sourceName to the station named destName. The source station
// is not included in the result.
//
// Both names are always resolved first, so an unknown name yields
// ErrStationNotFound even when the two names are equal. A nil slice with a
// nil error means there is no path, which includes source and destination
// being the same station.
func (g *TransitGraph) FindPath(sourceName, destName string) ([]Step, error) {
	source, err := g.FindStation(sourceName)
	if err != nil {
		return nil, err
	}
	dest, err := g.FindStation(destName)
	if err != nil {
		return nil, err
	}

	return g.PathBetween(source, dest), nil
}

// PathBetween returns directions along a path with the fewest stops between
// two resolved stations, or nil when dest is unreachable or equal to source.
func (g *TransitGraph) PathBetween(source, dest *StationNode) []Step {
	edges := g.shortestEdgePath(source, dest)
	if edges == nil {
		return nil
	}
	return g.directions(edges)
}

// shortestEdgePath runs a breadth-first search from source and returns the
// edges leading to dest, or nil when dest is unreachable or equal to source.
// Outgoing edges are scanned in insertion order, which decides ties.
func (g *TransitGraph) shortestEdgePath(source, dest *StationNode) []*Edge {
	if source == dest {
		return nil
	}

	// edge used to first reach each discovered station
	reachedBy := map[string]*Edge{}
	discovered := map[string]bool{source.ID: true}
	queue := []*StationNode{source}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for pair := current.edges.Oldest(); pair != nil; pair = pair.Next() {
			edge := pair.Value
			if discovered[edge.DestID] {
				continue
			}
			discovered[edge.DestID] = true
			reachedBy[edge.DestID] = edge

			if edge.DestID == dest.ID {
				return unwind(reachedBy, source.ID, dest.ID)
			}
			queue = append(queue, g.byID[edge.DestID])
		}
	}

	return nil
}

// unwind follows reachedBy back from destID to sourceID and returns the edges
// in travel order
func unwind(reachedBy map[string]*Edge, sourceID, destID string) []*Edge {
	var path []*Edge
	for id := destID; id != sourceID; {
		edge := reachedBy[id]
		path = append(path, edge)
		id = edge.SourceID
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// directions converts an edge path into steps. The current route is kept for
// as long as it serves the next hop; on boarding or when a transfer is forced
// the first route of the edge is taken.
func (g *TransitGraph) directions(path []*Edge) []Step {
	steps := make([]Step, 0, len(path))
	currentRoute := ""

	for _, edge := range path {
		if currentRoute == "" || !edge.Routes.Contains(currentRoute) {
			currentRoute = edge.Routes.First()
		}
		steps = append(steps, Step{
			RouteID:  currentRoute,
			StopName: g.byID[edge.DestID].Name,
		})
	}

	return steps
}
