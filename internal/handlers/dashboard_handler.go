package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"linkbuilding-service/internal/middleware"
	"linkbuilding-service/internal/models"
	"linkbuilding-service/internal/repository"
)

// DashboardHandler aggregates overview metrics for the admin panel home page.
type DashboardHandler struct {
	sites  *repository.SiteRepository
	orders *repository.OrderRepository
	logger *logrus.Entry
}

func NewDashboardHandler(sites *repository.SiteRepository, orders *repository.OrderRepository, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{
		sites:  sites,
		orders: orders,
		logger: logger.WithField("component", "dashboard-handler"),
	}
}

// GetOverview returns site and order aggregates
// GET /api/v1/dashboard/overview
func (h *DashboardHandler) GetOverview(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	sitesOverview, err := h.sites.GetSitesOverview(tenantID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build sites overview")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to build overview")
		return
	}

	ordersOverview, err := h.orders.GetOrdersOverview(tenantID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build orders overview")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to build overview")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data: gin.H{
			"sites":  sitesOverview,
			"orders": ordersOverview,
		},
	})
}
