package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/subway-routing/internal/middleware"
	"github.com/smarttransit/subway-routing/internal/services"
)

// AdminHandler handles route data administration
type AdminHandler struct {
	subway        *services.SubwayService
	cron          *services.CronService
	reloadTimeout time.Duration
	logger        *logrus.Logger
}

// NewAdminHandler creates a new admin handler. cron may be nil.
func NewAdminHandler(subway *services.SubwayService, cron *services.CronService, reloadTimeout time.Duration, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		subway:        subway,
		cron:          cron,
		reloadTimeout: reloadTimeout,
		logger:        logger,
	}
}

// Reload handles POST /api/v1/admin/reload
func (h *AdminHandler) Reload(c *gin.Context) {
	adminCtx, _ := middleware.GetAdminContext(c)
	h.logger.WithField("subject", adminCtx.Subject).Info("Route data reload requested")

	ctx := c.Request.Context()
	if h.reloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.reloadTimeout)
		defer cancel()
	}

	if err := h.subway.LoadRouteData(ctx); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Route data reloaded",
		"data":    h.subway.Status(),
	})
}

// Status handles GET /api/v1/admin/status
func (h *AdminHandler) Status(c *gin.Context) {
	response := gin.H{
		"status": "success",
		"data":   h.subway.Status(),
	}
	if h.cron != nil {
		response["cron"] = h.cron.GetJobStatus()
	}
	c.JSON(http.StatusOK, response)
}
