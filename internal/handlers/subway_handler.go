package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/subway-routing/internal/graph"
	"github.com/smarttransit/subway-routing/internal/models"
	"github.com/smarttransit/subway-routing/internal/services"
	"github.com/smarttransit/subway-routing/internal/utils"
	"github.com/smarttransit/subway-routing/pkg/mbta"
)

const (
	MessageSameStation     = "You cannot get a route from a station to itself!"
	MessageUnknownStations = "The stop names provided were not recognized."
	MessageNoRoute         = "No route could be found between the given stations."
)

// SubwayHandler handles HTTP requests for subway route queries
type SubwayHandler struct {
	subway    *services.SubwayService
	searchLog *services.SearchLogService
	logger    *logrus.Logger
}

// NewSubwayHandler creates a new subway handler
func NewSubwayHandler(subway *services.SubwayService, searchLog *services.SearchLogService, logger *logrus.Logger) *SubwayHandler {
	return &SubwayHandler{
		subway:    subway,
		searchLog: searchLog,
		logger:    logger,
	}
}

// GetRoutes handles GET /api/v1/routes
func (h *SubwayHandler) GetRoutes(c *gin.Context) {
	routes, err := h.subway.GetRoutes()
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"count":  len(routes),
		"routes": routes,
	})
}

// GetRouteWithMostStops handles GET /api/v1/routes/most-stops
func (h *SubwayHandler) GetRouteWithMostStops(c *gin.Context) {
	route, err := h.subway.GetRouteWithMostStops()
	h.respondRouteStopCount(c, route, err)
}

// GetRouteWithFewestStops handles GET /api/v1/routes/fewest-stops
func (h *SubwayHandler) GetRouteWithFewestStops(c *gin.Context) {
	route, err := h.subway.GetRouteWithFewestStops()
	h.respondRouteStopCount(c, route, err)
}

func (h *SubwayHandler) respondRouteStopCount(c *gin.Context, route *models.RouteStopCount, err error) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	if route == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "No routes are loaded",
			"code":    "NO_ROUTES",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"route":      route.Route,
		"stop_count": route.StopCount,
	})
}

// GetTransferStops handles GET /api/v1/stops/transfers
func (h *SubwayHandler) GetTransferStops(c *gin.Context) {
	transfers, err := h.subway.GetTransferStops()
	if err != nil {
		h.respondError(c, err)
		return
	}

	stops := make([]models.TransferStop, 0, len(transfers))
	for name, routes := range transfers {
		stops = append(stops, models.TransferStop{Name: name, Routes: routes})
	}
	sort.Slice(stops, func(i, j int) bool { return stops[i].Name < stops[j].Name })

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"count":  len(stops),
		"stops":  stops,
	})
}

// FindPath handles GET /api/v1/path?from=&to=
func (h *SubwayHandler) FindPath(c *gin.Context) {
	startTime := time.Now()

	var query models.PathQuery
	err := c.ShouldBindQuery(&query)
	from := strings.TrimSpace(query.From)
	to := strings.TrimSpace(query.To)
	if err != nil || from == "" || to == "" {
		h.logger.WithError(err).Warn("Invalid path request")
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Both 'from' and 'to' query parameters are required",
			"code":    "INVALID_REQUEST",
		})
		return
	}

	response := models.PathResponse{
		Status:     "success",
		From:       from,
		To:         to,
		Directions: []models.Direction{},
	}

	if strings.EqualFold(from, to) {
		response.Message = MessageSameStation
		elapsed := time.Since(startTime)
		response.SearchTimeMs = elapsed.Milliseconds()
		h.recordSearch(c, from, to, false, 0, elapsed)
		c.JSON(http.StatusOK, response)
		return
	}

	directions, err := h.subway.FindPath(from, to)
	if err != nil {
		if errors.Is(err, graph.ErrStationNotFound) {
			h.recordSearch(c, from, to, false, 0, time.Since(startTime))
		}
		h.respondError(c, err)
		return
	}

	if directions == nil {
		response.Message = MessageNoRoute
	} else {
		response.Found = true
		response.Directions = directions
		response.Stops = len(directions)
	}
	elapsed := time.Since(startTime)
	response.SearchTimeMs = elapsed.Milliseconds()

	h.recordSearch(c, from, to, response.Found, response.Stops, elapsed)

	h.logger.WithFields(logrus.Fields{
		"from":           from,
		"to":             to,
		"found":          response.Found,
		"stops":          response.Stops,
		"search_time_ms": response.SearchTimeMs,
	}).Debug("Path search completed")

	c.JSON(http.StatusOK, response)
}

func (h *SubwayHandler) recordSearch(c *gin.Context, from, to string, found bool, stops int, elapsed time.Duration) {
	h.searchLog.RecordPathSearch(services.PathSearch{
		From:      from,
		To:        to,
		Found:     found,
		StopCount: stops,
		Elapsed:   elapsed,
		IPAddress: utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	})
}

// GetPopularSearches handles GET /api/v1/search/popular?limit=
func (h *SubwayHandler) GetPopularSearches(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "limit must be an integer",
				"code":    "INVALID_REQUEST",
			})
			return
		}
		limit = parsed
	}

	searches, err := h.searchLog.GetPopularSearches(limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"count":    len(searches),
		"searches": searches,
	})
}

// respondError maps service errors to HTTP responses
func (h *SubwayHandler) respondError(c *gin.Context, err error) {
	respondError(c, h.logger, err)
}

func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, graph.ErrStationNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": MessageUnknownStations,
			"code":    "STATION_NOT_FOUND",
		})
	case errors.Is(err, services.ErrNotLoaded):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "Route data is not loaded yet. Please try again shortly.",
			"code":    "DATA_NOT_LOADED",
		})
	case errors.Is(err, services.ErrAnalyticsDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "Search analytics is not enabled",
			"code":    "ANALYTICS_DISABLED",
		})
	case errors.Is(err, mbta.ErrFetchFailed), errors.Is(err, graph.ErrMalformedInput):
		logger.WithError(err).Error("Route data load failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"status":  "error",
			"message": "Failed to load route data from the upstream source",
			"code":    "LOAD_FAILED",
		})
	default:
		logger.WithError(err).Error("Request failed with internal error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Internal server error",
			"code":    "INTERNAL_ERROR",
		})
	}
}
