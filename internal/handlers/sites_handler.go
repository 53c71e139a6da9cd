package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"linkbuilding-service/internal/events"
	"linkbuilding-service/internal/middleware"
	"linkbuilding-service/internal/models"
	"linkbuilding-service/internal/repository"
)

// SitesHandler exposes CRUD for guest blog sites.
type SitesHandler struct {
	repo   *repository.SiteRepository
	events *events.Publisher
	logger *logrus.Entry
}

func NewSitesHandler(repo *repository.SiteRepository, publisher *events.Publisher, logger *logrus.Logger) *SitesHandler {
	return &SitesHandler{
		repo:   repo,
		events: publisher,
		logger: logger.WithField("component", "sites-handler"),
	}
}

// CreateSite creates a single guest blog site
// POST /api/v1/sites
func (h *SitesHandler) CreateSite(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)

	var req models.CreateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if !models.IsValidSiteCategory(req.Category) {
		respondError(c, http.StatusBadRequest, "INVALID_CATEGORY", "Category is not a recognized niche value")
		return
	}

	site := &models.GuestBlogSite{
		SiteURL:         req.SiteURL,
		DomainAuthority: req.DomainAuthority,
		DomainRating:    req.DomainRating,
		MonthlyTraffic:  req.MonthlyTraffic,
		SpamScore:       req.SpamScore,
		TurnaroundTime:  req.TurnaroundTime,
		Category:        models.SiteCategory(req.Category),
		BasePrice:       req.BasePrice,
		Country:         req.Country,
		Notes:           req.Notes,
	}
	if req.Status != nil {
		site.Status = models.SiteStatus(*req.Status)
	}
	if req.SiteLanguage != nil {
		site.SiteLanguage = *req.SiteLanguage
	}
	if req.PublisherID != nil && *req.PublisherID != "" {
		publisherID, err := uuid.Parse(*req.PublisherID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_PUBLISHER_ID", "publisherId must be a valid UUID")
			return
		}
		site.PublisherID = &publisherID
	}
	if userID != "" {
		site.CreatedBy = &userID
		site.UpdatedBy = &userID
	}

	if err := h.repo.CreateSite(tenantID, site); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			respondError(c, http.StatusConflict, "SITE_EXISTS", "A site with this URL already exists")
			return
		}
		h.logger.WithError(err).Error("Failed to create site")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create site")
		return
	}

	h.events.Publish(events.SubjectSiteCreated, tenantID, userID, site)

	c.JSON(http.StatusCreated, models.SiteResponse{Success: true, Data: site})
}

// GetSite retrieves one site
// GET /api/v1/sites/:id
func (h *SitesHandler) GetSite(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	siteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Site ID must be a valid UUID")
		return
	}

	site, err := h.repo.GetSiteByID(tenantID, siteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "SITE_NOT_FOUND", "Site not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get site")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get site")
		return
	}

	c.JSON(http.StatusOK, models.SiteResponse{Success: true, Data: site})
}

// ListSites lists sites with filters and pagination
// GET /api/v1/sites
func (h *SitesHandler) ListSites(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.ListSitesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	req.Page, req.Limit = parsePagination(req.Page, req.Limit)

	sites, total, err := h.repo.ListSites(tenantID, &req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list sites")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list sites")
		return
	}

	c.JSON(http.StatusOK, models.SiteListResponse{
		Success:    true,
		Data:       sites,
		Pagination: models.NewPaginationInfo(req.Page, req.Limit, total),
	})
}

// UpdateSite applies a partial update
// PUT /api/v1/sites/:id
func (h *SitesHandler) UpdateSite(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)

	siteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Site ID must be a valid UUID")
		return
	}

	var req models.UpdateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.SiteURL != nil {
		updates["site_url"] = *req.SiteURL
	}
	if req.DomainAuthority != nil {
		if *req.DomainAuthority < 0 || *req.DomainAuthority > 100 {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "domainAuthority must be between 0 and 100")
			return
		}
		updates["domain_authority"] = *req.DomainAuthority
	}
	if req.DomainRating != nil {
		if *req.DomainRating < 0 || *req.DomainRating > 100 {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "domainRating must be between 0 and 100")
			return
		}
		updates["domain_rating"] = *req.DomainRating
	}
	if req.MonthlyTraffic != nil {
		updates["monthly_traffic"] = *req.MonthlyTraffic
	}
	if req.SpamScore != nil {
		updates["spam_score"] = *req.SpamScore
	}
	if req.TurnaroundTime != nil {
		updates["turnaround_time"] = *req.TurnaroundTime
	}
	if req.Category != nil {
		if !models.IsValidSiteCategory(*req.Category) {
			respondError(c, http.StatusBadRequest, "INVALID_CATEGORY", "Category is not a recognized niche value")
			return
		}
		updates["category"] = *req.Category
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.BasePrice != nil {
		if *req.BasePrice <= 0 {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "basePrice must be greater than zero")
			return
		}
		updates["base_price"] = *req.BasePrice
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if req.SiteLanguage != nil {
		updates["site_language"] = *req.SiteLanguage
	}
	if req.PublisherID != nil {
		if *req.PublisherID == "" {
			updates["publisher_id"] = nil
		} else {
			publisherID, err := uuid.Parse(*req.PublisherID)
			if err != nil {
				respondError(c, http.StatusBadRequest, "INVALID_PUBLISHER_ID", "publisherId must be a valid UUID")
				return
			}
			updates["publisher_id"] = publisherID
		}
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

	if err := h.repo.UpdateSite(tenantID, siteID, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "SITE_NOT_FOUND", "Site not found")
			return
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			respondError(c, http.StatusConflict, "SITE_EXISTS", "A site with this URL already exists")
			return
		}
		h.logger.WithError(err).Error("Failed to update site")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update site")
		return
	}

	site, err := h.repo.GetSiteByID(tenantID, siteID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to reload site")
		return
	}
	c.JSON(http.StatusOK, models.SiteResponse{Success: true, Data: site})
}

// DeleteSite soft deletes a site
// DELETE /api/v1/sites/:id
func (h *SitesHandler) DeleteSite(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	siteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Site ID must be a valid UUID")
		return
	}

	if err := h.repo.DeleteSite(tenantID, siteID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "SITE_NOT_FOUND", "Site not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete site")
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to delete site")
		return
	}

	message := "Site deleted"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}

// GetCategories returns the fixed niche taxonomy
// GET /api/v1/sites/categories
func (h *SitesHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: models.SiteCategories()})
}
