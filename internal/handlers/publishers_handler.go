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

// PublishersHandler exposes CRUD for publishers.
type PublishersHandler struct {
	repo   *repository.PublisherRepository
	logger *logrus.Entry
}

func NewPublishersHandler(repo *repository.PublisherRepository, logger *logrus.Logger) *PublishersHandler {
	return &PublishersHandler{
		repo:   repo,
		logger: logger.WithField("component", "publishers-handler"),
	}
}

// CreatePublisher creates a publisher
// POST /api/v1/publishers
func (h *PublishersHandler) CreatePublisher(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)

	var req models.CreatePublisherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	publisher := &models.Publisher{
		Name:    req.Name,
		Email:   req.Email,
		Website: req.Website,
		Phone:   req.Phone,
		Notes:   req.Notes,
	}
	if req.Status != nil {
		publisher.Status = models.PublisherStatus(*req.Status)
	}
	if userID != "" {
		publisher.CreatedBy = &userID
		publisher.UpdatedBy = &userID
	}

	if err := h.repo.CreatePublisher(tenantID, publisher); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			respondError(c, http.StatusConflict, "PUBLISHER_EXISTS", "A publisher with this email already exists")
			return
		}
		h.logger.WithError(err).Error("Failed to create publisher")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create publisher")
		return
	}

	c.JSON(http.StatusCreated, models.PublisherResponse{Success: true, Data: publisher})
}

// GetPublisher retrieves one publisher
// GET /api/v1/publishers/:id
func (h *PublishersHandler) GetPublisher(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	publisherID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Publisher ID must be a valid UUID")
		return
	}

	publisher, err := h.repo.GetPublisherByID(tenantID, publisherID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "PUBLISHER_NOT_FOUND", "Publisher not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get publisher")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get publisher")
		return
	}

	c.JSON(http.StatusOK, models.PublisherResponse{Success: true, Data: publisher})
}

// ListPublishers lists publishers with filters and pagination
// GET /api/v1/publishers
func (h *PublishersHandler) ListPublishers(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.ListPublishersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	req.Page, req.Limit = parsePagination(req.Page, req.Limit)

	publishers, total, err := h.repo.ListPublishers(tenantID, &req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list publishers")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list publishers")
		return
	}

	c.JSON(http.StatusOK, models.PublisherListResponse{
		Success:    true,
		Data:       publishers,
		Pagination: models.NewPaginationInfo(req.Page, req.Limit, total),
	})
}

// UpdatePublisher applies a partial update
// PUT /api/v1/publishers/:id
func (h *PublishersHandler) UpdatePublisher(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)

	publisherID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Publisher ID must be a valid UUID")
		return
	}

	var req models.UpdatePublisherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Website != nil {
		updates["website"] = *req.Website
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
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
	if userID != "" {
		updates["updated_by"] = userID
	}

	if err := h.repo.UpdatePublisher(tenantID, publisherID, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "PUBLISHER_NOT_FOUND", "Publisher not found")
			return
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			respondError(c, http.StatusConflict, "PUBLISHER_EXISTS", "A publisher with this email already exists")
			return
		}
		h.logger.WithError(err).Error("Failed to update publisher")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update publisher")
		return
	}

	publisher, err := h.repo.GetPublisherByID(tenantID, publisherID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to reload publisher")
		return
	}
	c.JSON(http.StatusOK, models.PublisherResponse{Success: true, Data: publisher})
}

// DeletePublisher soft deletes a publisher unless sites still reference it
// DELETE /api/v1/publishers/:id
func (h *PublishersHandler) DeletePublisher(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	publisherID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Publisher ID must be a valid UUID")
		return
	}

	count, err := h.repo.CountSitesForPublisher(tenantID, publisherID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to count publisher sites")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to delete publisher")
		return
	}
	if count > 0 {
		respondError(c, http.StatusConflict, "PUBLISHER_IN_USE", "Publisher still has sites assigned; reassign or remove them first")
		return
	}

	if err := h.repo.DeletePublisher(tenantID, publisherID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "PUBLISHER_NOT_FOUND", "Publisher not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete publisher")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to delete publisher")
		return
	}

	message := "Publisher deleted"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}
