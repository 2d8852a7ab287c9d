package models

// Route represents a subway line such as the Red Line or the Mattapan Trolley
type Route struct {
	ID   string `json:"id" yaml:"id" validate:"required"`
	Name string `json:"name" yaml:"name" validate:"required"`
}

// RouteRef references a route by ID from a route pattern
type RouteRef struct {
	ID string `json:"id" yaml:"id"`
}

// RoutePattern is one canonical sequence of stops traveled along a route.
// Route and RepresentativeTrip may be nil when the source omitted them; the
// graph builder rejects such patterns.
type RoutePattern struct {
	ID                 string    `json:"id" yaml:"id"`
	Route              *RouteRef `json:"route" yaml:"route"`
	RepresentativeTrip *Trip     `json:"representative_trip" yaml:"representative_trip"`
}

// RouteID returns the referenced route ID, or "" if the pattern has no route
func (p *RoutePattern) RouteID() string {
	if p.Route == nil {
		return ""
	}
	return p.Route.ID
}

// Trip holds the ordered stops of a route pattern's representative trip.
// A nil Stops slice means the stop list was missing.
type Trip struct {
	ID    string  `json:"id" yaml:"id"`
	Stops []*Stop `json:"stops" yaml:"stops"`
}

// Stop represents a station or a platform belonging to a station
type Stop struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	ParentStation *Stop  `json:"parent_station,omitempty" yaml:"parent_station,omitempty"`
}

// Station returns the full station the stop belongs to: its parent station
// when it has one, otherwise the stop itself.
func (s *Stop) Station() *Stop {
	if s.ParentStation != nil {
		return s.ParentStation
	}
	return s
}

// RouteStopCount pairs a route with the number of distinct stations it serves
type RouteStopCount struct {
	Route     Route `json:"route"`
	StopCount int   `json:"stop_count"`
}
