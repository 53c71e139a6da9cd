package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"linkbuilding-service/internal/middleware"
	"linkbuilding-service/internal/models"
	"linkbuilding-service/internal/repository"
)

// ClientsHandler exposes CRUD for agency clients.
type ClientsHandler struct {
	repo   *repository.ClientRepository
	logger *logrus.Entry
}

func NewClientsHandler(repo *repository.ClientRepository, logger *logrus.Logger) *ClientsHandler {
	return &ClientsHandler{
		repo:   repo,
		logger: logger.WithField("component", "clients-handler"),
	}
}

// CreateClient creates a client
// POST /api/v1/clients
func (h *ClientsHandler) CreateClient(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)

	var req models.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	client := &models.Client{
		Name:          req.Name,
		Company:       req.Company,
		Email:         req.Email,
		Phone:         req.Phone,
		Website:       req.Website,
		MarkupPercent: req.MarkupPercent,
		Notes:         req.Notes,
	}
	if req.Status != nil {
		client.Status = models.ClientStatus(*req.Status)
	}
	if userID != "" {
		client.CreatedBy = &userID
		client.UpdatedBy = &userID
	}

	if err := h.repo.CreateClient(tenantID, client); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			respondError(c, http.StatusConflict, "CLIENT_EXISTS", "A client with this email already exists")
			return
		}
		h.logger.WithError(err).Error("Failed to create client")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create client")
		return
	}

	c.JSON(http.StatusCreated, models.ClientResponse{Success: true, Data: client})
}

// GetClient retrieves one client
// GET /api/v1/clients/:id
func (h *ClientsHandler) GetClient(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Client ID must be a valid UUID")
		return
	}

	client, err := h.repo.GetClientByID(tenantID, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "CLIENT_NOT_FOUND", "Client not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get client")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get client")
		return
	}

	c.JSON(http.StatusOK, models.ClientResponse{Success: true, Data: client})
}

// ListClients lists clients with filters and pagination
// GET /api/v1/clients
func (h *ClientsHandler) ListClients(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.ListClientsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	req.Page, req.Limit = parsePagination(req.Page, req.Limit)

	clients, total, err := h.repo.ListClients(tenantID, &req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list clients")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list clients")
		return
	}

	c.JSON(http.StatusOK, models.ClientListResponse{
		Success:    true,
		Data:       clients,
		Pagination: models.NewPaginationInfo(req.Page, req.Limit, total),
	})
}

// UpdateClient applies a partial update
// PUT /api/v1/clients/:id
func (h *ClientsHandler) UpdateClient(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Client ID must be a valid UUID")
		return
	}

	var req models.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Company != nil {
		updates["company"] = *req.Company
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Website != nil {
		updates["website"] = *req.Website
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.MarkupPercent != nil {
		if *req.MarkupPercent < 0 {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "markupPercent must not be negative")
			return
		}
		updates["markup_percent"] = *req.MarkupPercent
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "No fields to update")
		return
	}
	if userID != "" {
		updates["updated_by"] = userID
	}

	if err := h.repo.UpdateClient(tenantID, clientID, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "CLIENT_NOT_FOUND", "Client not found")
			return
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			respondError(c, http.StatusConflict, "CLIENT_EXISTS", "A client with this email already exists")
			return
		}
		h.logger.WithError(err).Error("Failed to update client")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update client")
		return
	}

	client, err := h.repo.GetClientByID(tenantID, clientID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to reload client")
		return
	}
	c.JSON(http.StatusOK, models.ClientResponse{Success: true, Data: client})
}

// DeleteClient soft deletes a client
// DELETE /api/v1/clients/:id
func (h *ClientsHandler) DeleteClient(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Client ID must be a valid UUID")
		return
	}

	if err := h.repo.DeleteClient(tenantID, clientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "CLIENT_NOT_FOUND", "Client not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete client")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to delete client")
		return
	}

	message := "Client deleted"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}
