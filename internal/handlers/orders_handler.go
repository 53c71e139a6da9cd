package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"linkbuilding-service/internal/events"
	"linkbuilding-service/internal/middleware"
	"linkbuilding-service/internal/models"
	"linkbuilding-service/internal/repository"
	"linkbuilding-service/internal/services"
)

// OrdersHandler exposes order and placement operations.
type OrdersHandler struct {
	orders  *repository.OrderRepository
	sites   *repository.SiteRepository
	clients *repository.ClientRepository
	events  *events.Publisher
	logger  *logrus.Entry
}

func NewOrdersHandler(orders *repository.OrderRepository, sites *repository.SiteRepository, clients *repository.ClientRepository, publisher *events.Publisher, logger *logrus.Logger) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		sites:   sites,
		clients: clients,
		events:  publisher,
		logger:  logger.WithField("component", "orders-handler"),
	}
}

// CreateOrder places an order for a client on a site. Prices are captured at
// order time: the site's base price and the client's marked-up price.
// POST /api/v1/orders
func (h *OrdersHandler) CreateOrder(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_CLIENT_ID", "clientId must be a valid UUID")
		return
	}
	siteID, err := uuid.Parse(req.SiteID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_SITE_ID", "siteId must be a valid UUID")
		return
	}

	client, err := h.clients.GetClientByID(tenantID, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "CLIENT_NOT_FOUND", "Client not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load client")
		return
	}

	site, err := h.sites.GetSiteByID(tenantID, siteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "SITE_NOT_FOUND", "Site not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load site")
		return
	}
	if site.Status != models.SiteStatusActive {
		respondError(c, http.StatusConflict, "SITE_INACTIVE", "Orders can only be placed on active sites")
		return
	}

	order := &models.Order{
		ClientID:       clientID,
		SiteID:         siteID,
		AnchorText:     req.AnchorText,
		TargetURL:      req.TargetURL,
		TargetKeywords: req.TargetKeywords,
		BasePrice:      site.BasePrice,
		ClientPrice:    services.DisplayedPrice(site.BasePrice, client.EffectiveMarkup()),
		DueDate:        req.DueDate,
	}
	if req.ContentRequirements != nil {
		data, err := json.Marshal(req.ContentRequirements)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "contentRequirements must be a JSON object")
			return
		}
		order.ContentRequirements = datatypes.JSON(data)
	}
	if userID != "" {
		order.CreatedBy = &userID
		order.UpdatedBy = &userID
	}

	if err := h.orders.CreateOrder(tenantID, order); err != nil {
		h.logger.WithError(err).Error("Failed to create order")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create order")
		return
	}

	h.events.Publish(events.SubjectOrderCreated, tenantID, userID, order)

	c.JSON(http.StatusCreated, models.OrderResponse{Success: true, Data: order})
}

// GetOrder retrieves one order with client, site and placements
// GET /api/v1/orders/:id
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Order ID must be a valid UUID")
		return
	}

	order, err := h.orders.GetOrderByID(tenantID, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get order")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get order")
		return
	}

	c.JSON(http.StatusOK, models.OrderResponse{Success: true, Data: order})
}

// ListOrders lists orders with filters and pagination
// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	req.Page, req.Limit = parsePagination(req.Page, req.Limit)

	orders, total, err := h.orders.ListOrders(tenantID, &req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list orders")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list orders")
		return
	}

	c.JSON(http.StatusOK, models.OrderListResponse{
		Success:    true,
		Data:       orders,
		Pagination: models.NewPaginationInfo(req.Page, req.Limit, total),
	})
}

// UpdateOrder applies a partial update to order content fields
// PUT /api/v1/orders/:id
func (h *OrdersHandler) UpdateOrder(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Order ID must be a valid UUID")
		return
	}

	var req models.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.AnchorText != nil {
		updates["anchor_text"] = *req.AnchorText
	}
	if req.TargetURL != nil {
		updates["target_url"] = *req.TargetURL
	}
	if req.TargetKeywords != nil {
		updates["target_keywords"] = pq.StringArray(req.TargetKeywords)
	}
	if req.ContentRequirements != nil {
		data, err := json.Marshal(req.ContentRequirements)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "contentRequirements must be a JSON object")
			return
		}
		updates["content_requirements"] = datatypes.JSON(data)
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "No fields to update")
		return
	}
	if userID != "" {
		updates["updated_by"] = userID
	}

	if err := h.orders.UpdateOrder(tenantID, orderID, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
			return
		}
		h.logger.WithError(err).Error("Failed to update order")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update order")
		return
	}

	order, err := h.orders.GetOrderByID(tenantID, orderID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to reload order")
		return
	}
	c.JSON(http.StatusOK, models.OrderResponse{Success: true, Data: order})
}

// UpdateOrderStatus moves the order through its lifecycle
// PUT /api/v1/orders/:id/status
func (h *OrdersHandler) UpdateOrderStatus(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Order ID must be a valid UUID")
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	order, err := h.orders.UpdateOrderStatus(tenantID, orderID, models.OrderStatus(req.Status), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
			return
		}
		if errors.Is(err, repository.ErrInvalidTransition) {
			respondError(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to update order status")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update order status")
		return
	}

	h.events.Publish(events.SubjectOrderStatus, tenantID, userID, gin.H{
		"orderId": order.ID,
		"status":  order.Status,
	})

	c.JSON(http.StatusOK, models.OrderResponse{Success: true, Data: order})
}

// DeleteOrder soft deletes an order
// DELETE /api/v1/orders/:id
func (h *OrdersHandler) DeleteOrder(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Order ID must be a valid UUID")
		return
	}

	if err := h.orders.DeleteOrder(tenantID, orderID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete order")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to delete order")
		return
	}

	message := "Order deleted"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}

// CreatePlacement records a live placement against an order
// POST /api/v1/orders/:id/placements
func (h *OrdersHandler) CreatePlacement(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Order ID must be a valid UUID")
		return
	}

	var req models.CreatePlacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	order, err := h.orders.GetOrderByID(tenantID, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load order")
		return
	}

	placement := &models.Placement{
		OrderID:       order.ID,
		LiveURL:       req.LiveURL,
		PublishedDate: req.PublishedDate,
		Notes:         req.Notes,
	}
	if req.Status != nil {
		placement.Status = models.PlacementStatus(*req.Status)
	}

	if err := h.orders.CreatePlacement(tenantID, placement); err != nil {
		h.logger.WithError(err).Error("Failed to create placement")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create placement")
		return
	}

	if placement.Status == models.PlacementStatusLive {
		h.events.Publish(events.SubjectPlacementLive, tenantID, userID, placement)
	}

	c.JSON(http.StatusCreated, models.PlacementResponse{Success: true, Data: placement})
}

// ListPlacements lists the placements for an order
// GET /api/v1/orders/:id/placements
func (h *OrdersHandler) ListPlacements(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Order ID must be a valid UUID")
		return
	}

	placements, err := h.orders.ListPlacements(tenantID, orderID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list placements")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list placements")
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: placements})
}

// UpdatePlacement applies a partial update to a placement
// PUT /api/v1/placements/:id
func (h *OrdersHandler) UpdatePlacement(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)

	placementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Placement ID must be a valid UUID")
		return
	}

	var req struct {
		LiveURL       *string    `json:"liveUrl,omitempty"`
		PublishedDate *time.Time `json:"publishedDate,omitempty"`
		Status        *string    `json:"status,omitempty"`
		Notes         *string    `json:"notes,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.LiveURL != nil {
		updates["live_url"] = *req.LiveURL
	}
	if req.PublishedDate != nil {
		updates["published_date"] = *req.PublishedDate
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "No fields to update")
		return
	}

	if err := h.orders.UpdatePlacement(tenantID, placementID, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "PLACEMENT_NOT_FOUND", "Placement not found")
			return
		}
		h.logger.WithError(err).Error("Failed to update placement")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update placement")
		return
	}

	if req.Status != nil && models.PlacementStatus(*req.Status) == models.PlacementStatusLive {
		h.events.Publish(events.SubjectPlacementLive, tenantID, userID, gin.H{"placementId": placementID})
	}

	message := "Placement updated"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}
