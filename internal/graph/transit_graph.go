// Package graph builds a directed station graph from subway route patterns and
// answers fewest-stops path queries over it.
//
// Nodes are full stations (platforms are folded into their parent station).
// An edge from one station to another exists when at least one route pattern
// visits them consecutively, and carries every route that makes that hop.
package graph

import (
	"fmt"

	"github.com/smarttransit/subway-routing/internal/models"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// TransitGraph holds one node per station, in first-discovery order
type TransitGraph struct {
	nodes []*StationNode
	byID  map[string]*StationNode
}

// StationNode is a vertex of the graph
type StationNode struct {
	ID     string
	Name   string
	Routes *RouteSet

	// destination station ID -> edge, in the order the hops were first seen
	edges *orderedmap.OrderedMap[string, *Edge]
}

// Edge is a directed hop between two consecutive stations
type Edge struct {
	SourceID string
	DestID   string
	Routes   *RouteSet
}

func newTransitGraph() *TransitGraph {
	return &TransitGraph{
		byID: make(map[string]*StationNode),
	}
}

func newStationNode(id, name string) *StationNode {
	return &StationNode{
		ID:     id,
		Name:   name,
		Routes: NewRouteSet(),
		edges:  orderedmap.New[string, *Edge](),
	}
}

// Build generates a transit graph from a list of route patterns.
//
// Patterns are processed in order. Stations are merged by ID, so a station
// visited by several patterns becomes one node carrying the union of their
// route IDs; edges are merged the same way. Any pattern with a missing route,
// missing stop list, nil stop, or station without an ID fails the whole build
// with ErrMalformedInput and no graph is returned.
func Build(patterns []models.RoutePattern) (*TransitGraph, error) {
	g := newTransitGraph()

	for i := range patterns {
		pattern := &patterns[i]

		routeID := pattern.RouteID()
		if routeID == "" {
			return nil, fmt.Errorf("%w: pattern %q has no route", ErrMalformedInput, pattern.ID)
		}
		if pattern.RepresentativeTrip == nil || pattern.RepresentativeTrip.Stops == nil {
			return nil, fmt.Errorf("%w: pattern %q has no stop list", ErrMalformedInput, pattern.ID)
		}

		stations, err := resolveStations(pattern)
		if err != nil {
			return nil, err
		}

		for _, station := range stations {
			g.addStation(station, routeID)
		}
		for j := 0; j+1 < len(stations); j++ {
			g.addEdge(stations[j].ID, stations[j+1].ID, routeID)
		}
	}

	return g, nil
}

// resolveStations maps every stop of the pattern to its full station
func resolveStations(pattern *models.RoutePattern) ([]*models.Stop, error) {
	stops := pattern.RepresentativeTrip.Stops
	stations := make([]*models.Stop, 0, len(stops))

	for position, stop := range stops {
		if stop == nil {
			return nil, fmt.Errorf("%w: pattern %q has an empty stop at position %d",
				ErrMalformedInput, pattern.ID, position)
		}
		station := stop.Station()
		if station.ID == "" {
			return nil, fmt.Errorf("%w: pattern %q has a stop or parent station without an ID at position %d",
				ErrMalformedInput, pattern.ID, position)
		}
		stations = append(stations, station)
	}

	return stations, nil
}

func (g *TransitGraph) addStation(station *models.Stop, routeID string) {
	node, ok := g.byID[station.ID]
	if !ok {
		node = newStationNode(station.ID, station.Name)
		g.byID[station.ID] = node
		g.nodes = append(g.nodes, node)
	}
	node.Routes.Add(routeID)
}

func (g *TransitGraph) addEdge(sourceID, destID, routeID string) {
	source := g.byID[sourceID]
	if edge, ok := source.edges.Get(destID); ok {
		edge.Routes.Add(routeID)
		return
	}
	source.edges.Set(destID, &Edge{
		SourceID: sourceID,
		DestID:   destID,
		Routes:   NewRouteSet(routeID),
	})
}

// Nodes returns the station nodes in first-discovery order
func (g *TransitGraph) Nodes() []*StationNode {
	return g.nodes
}

// Node returns the node for a station ID
func (g *TransitGraph) Node(id string) (*StationNode, bool) {
	node, ok := g.byID[id]
	return node, ok
}

// Len returns the number of stations in the graph
func (g *TransitGraph) Len() int {
	return len(g.nodes)
}

// Equal reports whether both graphs hold the same stations under
// StationNode.Equal, regardless of node order
func (g *TransitGraph) Equal(other *TransitGraph) bool {
	if g.Len() != other.Len() {
		return false
	}
	for _, node := range g.nodes {
		otherNode, ok := other.byID[node.ID]
		if !ok || !node.Equal(otherNode) {
			return false
		}
	}
	return true
}

// Edges returns the outgoing edges in the order they were first seen
func (n *StationNode) Edges() []*Edge {
	edges := make([]*Edge, 0, n.edges.Len())
	for pair := n.edges.Oldest(); pair != nil; pair = pair.Next() {
		edges = append(edges, pair.Value)
	}
	return edges
}

// EdgeTo returns the outgoing edge to the given station ID
func (n *StationNode) EdgeTo(destID string) (*Edge, bool) {
	return n.edges.Get(destID)
}

// NeighborIDs returns the destination station IDs of the outgoing edges
func (n *StationNode) NeighborIDs() []string {
	ids := make([]string, 0, n.edges.Len())
	for pair := n.edges.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}

// Equal compares ID, name, route set and the set of neighbor IDs. The route
// sets of the outgoing edges are not compared.
func (n *StationNode) Equal(other *StationNode) bool {
	if n == other {
		return true
	}
	if other == nil {
		return false
	}
	if n.ID != other.ID || n.Name != other.Name || !n.Routes.Equal(other.Routes) {
		return false
	}
	if n.edges.Len() != other.edges.Len() {
		return false
	}
	for pair := n.edges.Oldest(); pair != nil; pair = pair.Next() {
		if _, ok := other.edges.Get(pair.Key); !ok {
			return false
		}
	}
	return true
}
