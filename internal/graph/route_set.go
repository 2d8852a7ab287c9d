package graph

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// RouteSet is a set of route IDs that remembers insertion order
type RouteSet struct {
	ids *orderedmap.OrderedMap[string, struct{}]
}

// NewRouteSet creates a set holding the given route IDs in order
func NewRouteSet(ids ...string) *RouteSet {
	s := &RouteSet{ids: orderedmap.New[string, struct{}]()}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id. Adding an existing ID keeps its original position.
func (s *RouteSet) Add(id string) {
	if _, present := s.ids.Get(id); present {
		return
	}
	s.ids.Set(id, struct{}{})
}

// Contains reports whether id is in the set
func (s *RouteSet) Contains(id string) bool {
	_, present := s.ids.Get(id)
	return present
}

// First returns the earliest inserted route ID, or "" for an empty set
func (s *RouteSet) First() string {
	if pair := s.ids.Oldest(); pair != nil {
		return pair.Key
	}
	return ""
}

// Len returns the number of route IDs in the set
func (s *RouteSet) Len() int {
	return s.ids.Len()
}

// IDs returns the route IDs in insertion order
func (s *RouteSet) IDs() []string {
	ids := make([]string, 0, s.ids.Len())
	for pair := s.ids.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}

// Equal compares two sets ignoring insertion order
func (s *RouteSet) Equal(other *RouteSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for pair := s.ids.Oldest(); pair != nil; pair = pair.Next() {
		if !other.Contains(pair.Key) {
			return false
		}
	}
	return true
}
