package models

import "time"

// Direction is one step of a computed path: ride Route to the stop named StopName
type Direction struct {
	Route    Route  `json:"route"`
	StopName string `json:"stop_name"`
}

// PathResponse is returned by the path endpoint
type PathResponse struct {
	Status       string      `json:"status"`
	From         string      `json:"from"`
	To           string      `json:"to"`
	Found        bool        `json:"found"`
	Message      string      `json:"message,omitempty"`
	Directions   []Direction `json:"directions"`
	Stops        int         `json:"stops"`
	SearchTimeMs int64       `json:"search_time_ms"`
}

// TransferStop is a station served by two or more routes
type TransferStop struct {
	Name   string  `json:"name"`
	Routes []Route `json:"routes"`
}

// DataStatus describes the currently loaded route data
type DataStatus struct {
	Loaded     bool       `json:"loaded"`
	Source     string     `json:"source"`
	Generation uint64     `json:"generation"`
	LoadedAt   *time.Time `json:"loaded_at,omitempty"`
	Routes     int        `json:"routes"`
	Stations   int        `json:"stations"`
}
