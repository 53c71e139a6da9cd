package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"linkbuilding-service/internal/models"
)

// Cache TTL constants
const (
	SiteCacheTTL     = 5 * time.Minute
	SiteListCacheTTL = 2 * time.Minute
	OverviewCacheTTL = 1 * time.Minute
)

type SiteRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewSiteRepository(db *gorm.DB, redisClient *redis.Client) *SiteRepository {
	return &SiteRepository{db: db, redis: redisClient}
}

func siteCacheKey(tenantID string, siteID uuid.UUID) string {
	return fmt.Sprintf("linkbuilding:site:%s:%s", tenantID, siteID.String())
}

// invalidateSiteCaches drops the single-site entry and all list caches for the tenant.
func (r *SiteRepository) invalidateSiteCaches(ctx context.Context, tenantID string, siteID uuid.UUID) {
	if r.redis == nil {
		return
	}
	_ = r.redis.Del(ctx, siteCacheKey(tenantID, siteID)).Err()
	r.invalidateTenantListCaches(ctx, tenantID)
}

func (r *SiteRepository) invalidateTenantListCaches(ctx context.Context, tenantID string) {
	if r.redis == nil {
		return
	}
	pattern := fmt.Sprintf("linkbuilding:sites:list:%s:*", tenantID)
	iter := r.redis.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		_ = r.redis.Del(ctx, iter.Val()).Err()
	}
	_ = r.redis.Del(ctx, fmt.Sprintf("linkbuilding:sites:overview:%s", tenantID)).Err()
}

// CreateSite creates a new guest blog site. Each create is its own statement;
// bulk upload relies on this for per-row independent commits.
func (r *SiteRepository) CreateSite(tenantID string, site *models.GuestBlogSite) error {
	site.TenantID = tenantID
	site.CreatedAt = time.Now()
	site.UpdatedAt = time.Now()
	if site.ID == uuid.Nil {
		site.ID = uuid.New()
	}
	if site.Status == "" {
		site.Status = models.SiteStatusActive
	}
	if site.SiteLanguage == "" {
		site.SiteLanguage = "en"
	}

	err := r.db.Create(site).Error
	if err == nil {
		r.invalidateTenantListCaches(context.Background(), tenantID)
	}
	return err
}

// GetSiteByID retrieves a site by ID with caching.
func (r *SiteRepository) GetSiteByID(tenantID string, siteID uuid.UUID) (*models.GuestBlogSite, error) {
	ctx := context.Background()
	cacheKey := siteCacheKey(tenantID, siteID)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var site models.GuestBlogSite
			if err := json.Unmarshal([]byte(val), &site); err == nil {
				return &site, nil
			}
		}
	}

	var site models.GuestBlogSite
	err := r.db.Where("tenant_id = ? AND id = ?", tenantID, siteID).
		Preload("Publisher").
		First(&site).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(site); err == nil {
			r.redis.Set(ctx, cacheKey, data, SiteCacheTTL)
		}
	}

	return &site, nil
}

// GetSiteByURL retrieves a site by its URL, used for duplicate detection.
func (r *SiteRepository) GetSiteByURL(tenantID, siteURL string) (*models.GuestBlogSite, error) {
	var site models.GuestBlogSite
	err := r.db.Where("tenant_id = ? AND site_url = ?", tenantID, siteURL).First(&site).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &site, nil
}

// UpdateSite applies a partial update and invalidates caches.
func (r *SiteRepository) UpdateSite(tenantID string, siteID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.Model(&models.GuestBlogSite{}).
		Where("tenant_id = ? AND id = ?", tenantID, siteID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.invalidateSiteCaches(context.Background(), tenantID, siteID)
	return nil
}

// DeleteSite soft deletes a site.
func (r *SiteRepository) DeleteSite(tenantID string, siteID uuid.UUID) error {
	result := r.db.Where("tenant_id = ? AND id = ?", tenantID, siteID).
		Delete(&models.GuestBlogSite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.invalidateSiteCaches(context.Background(), tenantID, siteID)
	return nil
}

// ListSites retrieves sites with filters and pagination.
func (r *SiteRepository) ListSites(tenantID string, req *models.ListSitesRequest) ([]models.GuestBlogSite, int64, error) {
	var sites []models.GuestBlogSite
	var total int64

	query := r.db.Model(&models.GuestBlogSite{}).Where("tenant_id = ?", tenantID)

	if req.Search != nil && *req.Search != "" {
		term := "%" + strings.ToLower(*req.Search) + "%"
		query = query.Where("LOWER(site_url) LIKE ? OR LOWER(country) LIKE ?", term, term)
	}
	if req.Category != nil && *req.Category != "" {
		query = query.Where("category = ?", *req.Category)
	}
	if req.Status != nil && *req.Status != "" {
		query = query.Where("status = ?", *req.Status)
	}
	if req.Country != nil && *req.Country != "" {
		query = query.Where("country = ?", *req.Country)
	}
	if req.PublisherID != nil && *req.PublisherID != "" {
		query = query.Where("publisher_id = ?", *req.PublisherID)
	}
	if req.MinDA != nil {
		query = query.Where("domain_authority >= ?", *req.MinDA)
	}
	if req.MaxPrice != nil {
		query = query.Where("base_price <= ?", *req.MaxPrice)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortColumn := "created_at"
	if req.SortBy != nil && *req.SortBy != "" {
		switch *req.SortBy {
		case "siteUrl":
			sortColumn = "site_url"
		case "domainAuthority":
			sortColumn = "domain_authority"
		case "domainRating":
			sortColumn = "domain_rating"
		case "basePrice":
			sortColumn = "base_price"
		case "monthlyTraffic":
			sortColumn = "monthly_traffic"
		}
	}
	sortOrder := "DESC"
	if req.SortOrder != nil && strings.ToUpper(*req.SortOrder) == "ASC" {
		sortOrder = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortColumn, sortOrder))

	offset := (req.Page - 1) * req.Limit
	err := query.Preload("Publisher").Offset(offset).Limit(req.Limit).Find(&sites).Error
	if err != nil {
		return nil, 0, err
	}

	return sites, total, nil
}

// GetSitesOverview aggregates site counts for the dashboard, with caching.
func (r *SiteRepository) GetSitesOverview(tenantID string) (*models.SitesOverview, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("linkbuilding:sites:overview:%s", tenantID)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var overview models.SitesOverview
			if err := json.Unmarshal([]byte(val), &overview); err == nil {
				return &overview, nil
			}
		}
	}

	overview := &models.SitesOverview{ByCategory: make(map[models.SiteCategory]int)}

	var total, active, inactive int64
	base := r.db.Model(&models.GuestBlogSite{}).Where("tenant_id = ?", tenantID)
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", models.SiteStatusActive).Count(&active).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", models.SiteStatusInactive).Count(&inactive).Error; err != nil {
		return nil, err
	}
	overview.TotalSites = int(total)
	overview.ActiveSites = int(active)
	overview.InactiveSites = int(inactive)

	type averages struct {
		AvgDA    float64
		AvgDR    float64
		AvgPrice float64
	}
	var avg averages
	if err := r.db.Model(&models.GuestBlogSite{}).
		Where("tenant_id = ?", tenantID).
		Select("COALESCE(AVG(domain_authority),0) as avg_da, COALESCE(AVG(domain_rating),0) as avg_dr, COALESCE(AVG(base_price),0) as avg_price").
		Scan(&avg).Error; err != nil {
		return nil, err
	}
	overview.AverageDA = avg.AvgDA
	overview.AverageDR = avg.AvgDR
	overview.AverageBasePrice = avg.AvgPrice

	type categoryCount struct {
		Category models.SiteCategory
		Count    int
	}
	var counts []categoryCount
	if err := r.db.Model(&models.GuestBlogSite{}).
		Where("tenant_id = ?", tenantID).
		Select("category, COUNT(*) as count").
		Group("category").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	for _, c := range counts {
		overview.ByCategory[c.Category] = c.Count
	}

	if r.redis != nil {
		if data, err := json.Marshal(overview); err == nil {
			r.redis.Set(ctx, cacheKey, data, OverviewCacheTTL)
		}
	}

	return overview, nil
}
