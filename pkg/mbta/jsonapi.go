package mbta

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/google/jsonapi"
	"github.com/smarttransit/subway-routing/internal/models"
)

// Resources of the MBTA v3 JSON:API. Only the attributes and relationships
// the transit graph needs are declared; jsonapi resolves relationships
// against the document's included resources.

type routeResource struct {
	ID       string `jsonapi:"primary,route"`
	LongName string `jsonapi:"attr,long_name"`
}

type routePatternResource struct {
	ID                 string         `jsonapi:"primary,route_pattern"`
	Route              *routeResource `jsonapi:"relation,route"`
	RepresentativeTrip *tripResource  `jsonapi:"relation,representative_trip"`
}

type tripResource struct {
	ID    string          `jsonapi:"primary,trip"`
	Stops []*stopResource `jsonapi:"relation,stops"`
}

type stopResource struct {
	ID            string        `jsonapi:"primary,stop"`
	Name          string        `jsonapi:"attr,name"`
	ParentStation *stopResource `jsonapi:"relation,parent_station"`
}

// unmarshalResources decodes the primary data of a JSON:API document. A
// document without data, such as an error document, is rejected.
func unmarshalResources[T any](body []byte) ([]*T, error) {
	var payload jsonapi.ManyPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if payload.Data == nil {
		return nil, fmt.Errorf("response has no data")
	}

	items, err := jsonapi.UnmarshalManyPayload(bytes.NewReader(body), reflect.TypeOf(new(T)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode resources: %w", err)
	}

	resources := make([]*T, 0, len(items))
	for _, item := range items {
		resource, ok := item.(*T)
		if !ok {
			return nil, fmt.Errorf("unexpected resource %T", item)
		}
		resources = append(resources, resource)
	}
	return resources, nil
}

func (r *routeResource) toRoute() models.Route {
	return models.Route{ID: r.ID, Name: r.LongName}
}

// toRoutePattern keeps missing relationships as nil for the graph builder
// to reject
func (p *routePatternResource) toRoutePattern() models.RoutePattern {
	pattern := models.RoutePattern{ID: p.ID}
	if p.Route != nil {
		pattern.Route = &models.RouteRef{ID: p.Route.ID}
	}
	if p.RepresentativeTrip != nil {
		pattern.RepresentativeTrip = p.RepresentativeTrip.toTrip()
	}
	return pattern
}

func (t *tripResource) toTrip() *models.Trip {
	trip := &models.Trip{ID: t.ID}
	if t.Stops == nil {
		return trip
	}

	trip.Stops = make([]*models.Stop, 0, len(t.Stops))
	for _, stop := range t.Stops {
		trip.Stops = append(trip.Stops, stop.toStop(true))
	}
	return trip
}

// toStop converts a stop and, when withParent is set, its parent station.
// Parent stations are full stations and their own parents are not followed.
func (s *stopResource) toStop(withParent bool) *models.Stop {
	stop := &models.Stop{ID: s.ID, Name: s.Name}
	if withParent && s.ParentStation != nil {
		stop.ParentStation = s.ParentStation.toStop(false)
	}
	return stop
}
