package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smarttransit/subway-routing/internal/database"
	"github.com/smarttransit/subway-routing/internal/services"
)

// HealthCheck handles GET /health. The service is healthy once route data
// is loaded; db is optional and reported when set.
func HealthCheck(subway *services.SubwayService, db database.DB, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		dataStatus := subway.Status()
		response := gin.H{
			"status":    "healthy",
			"version":   version,
			"data":      dataStatus,
			"timestamp": time.Now().Unix(),
		}
		code := http.StatusOK

		if !dataStatus.Loaded {
			response["status"] = "unhealthy"
			code = http.StatusServiceUnavailable
		}

		if db != nil {
			response["database"] = "healthy"
			if err := db.Ping(); err != nil {
				// analytics is optional, so a failing database only degrades
				response["database"] = "unhealthy"
				if code == http.StatusOK {
					response["status"] = "degraded"
				}
			}
		}

		c.JSON(code, response)
	}
}
