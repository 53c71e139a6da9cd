package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SiteStatus represents the status of a guest blog site
type SiteStatus string

const (
	SiteStatusActive   SiteStatus = "ACTIVE"
	SiteStatusInactive SiteStatus = "INACTIVE"
)

// SiteCategory is the fixed niche taxonomy for guest blog sites
type SiteCategory string

const (
	CategoryTechnologyGadgets  SiteCategory = "TECHNOLOGY_GADGETS"
	CategoryBusinessFinance    SiteCategory = "BUSINESS_FINANCE"
	CategoryHealthFitness      SiteCategory = "HEALTH_FITNESS"
	CategoryTravelLifestyle    SiteCategory = "TRAVEL_LIFESTYLE"
	CategoryFoodCooking        SiteCategory = "FOOD_COOKING"
	CategoryFashionBeauty      SiteCategory = "FASHION_BEAUTY"
	CategorySportsFitness      SiteCategory = "SPORTS_FITNESS"
	CategoryEducationCareer    SiteCategory = "EDUCATION_CAREER"
	CategoryHomeGarden         SiteCategory = "HOME_GARDEN"
	CategoryEntertainmentMedia SiteCategory = "ENTERTAINMENT_MEDIA"
	CategoryAutomotive         SiteCategory = "AUTOMOTIVE"
	CategoryRealEstate         SiteCategory = "REAL_ESTATE"
	CategoryMarketingSEO       SiteCategory = "MARKETING_SEO"
	CategoryGeneral            SiteCategory = "GENERAL"
)

// SiteCategories returns every member of the category taxonomy.
func SiteCategories() []SiteCategory {
	return []SiteCategory{
		CategoryTechnologyGadgets,
		CategoryBusinessFinance,
		CategoryHealthFitness,
		CategoryTravelLifestyle,
		CategoryFoodCooking,
		CategoryFashionBeauty,
		CategorySportsFitness,
		CategoryEducationCareer,
		CategoryHomeGarden,
		CategoryEntertainmentMedia,
		CategoryAutomotive,
		CategoryRealEstate,
		CategoryMarketingSEO,
		CategoryGeneral,
	}
}

// IsValidSiteCategory reports whether value is a member of the category taxonomy.
func IsValidSiteCategory(value string) bool {
	for _, c := range SiteCategories() {
		if string(c) == value {
			return true
		}
	}
	return false
}

// GuestBlogSite represents a site available for guest post placements
// Composite indexes on tenant_id mirror the multi-tenant query patterns of the admin panel.
type GuestBlogSite struct {
	ID              uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID        string         `json:"tenantId" gorm:"not null;index:idx_sites_tenant_id;index:idx_sites_tenant_status;index:idx_sites_tenant_category;index:idx_sites_tenant_url,unique"`
	SiteURL         string         `json:"siteUrl" gorm:"not null;index:idx_sites_tenant_url,unique"`
	DomainAuthority int            `json:"domainAuthority"`
	DomainRating    int            `json:"domainRating"`
	MonthlyTraffic  int64          `json:"monthlyTraffic"`
	SpamScore       *int           `json:"spamScore,omitempty"`
	TurnaroundTime  string         `json:"turnaroundTime" gorm:"not null"`
	Category        SiteCategory   `json:"category" gorm:"not null;index:idx_sites_tenant_category"`
	Status          SiteStatus     `json:"status" gorm:"not null;default:ACTIVE;index:idx_sites_tenant_status"`
	BasePrice       float64        `json:"basePrice" gorm:"not null"`
	Country         string         `json:"country" gorm:"not null"`
	SiteLanguage    string         `json:"siteLanguage" gorm:"not null;default:en"`
	PublisherID     *uuid.UUID     `json:"publisherId,omitempty" gorm:"type:uuid;index"`
	Publisher       *Publisher     `json:"publisher,omitempty" gorm:"foreignKey:PublisherID"`
	Notes           *string        `json:"notes,omitempty"`
	CreatedBy       *string        `json:"createdBy,omitempty"`
	UpdatedBy       *string        `json:"updatedBy,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// CreateSiteRequest represents the payload for creating a guest blog site
type CreateSiteRequest struct {
	SiteURL         string  `json:"siteUrl" binding:"required"`
	DomainAuthority int     `json:"domainAuthority" binding:"min=0,max=100"`
	DomainRating    int     `json:"domainRating" binding:"min=0,max=100"`
	MonthlyTraffic  int64   `json:"monthlyTraffic" binding:"min=0"`
	SpamScore       *int    `json:"spamScore,omitempty"`
	TurnaroundTime  string  `json:"turnaroundTime" binding:"required"`
	Category        string  `json:"category" binding:"required"`
	Status          *string `json:"status,omitempty"`
	BasePrice       float64 `json:"basePrice" binding:"required,gt=0"`
	Country         string  `json:"country" binding:"required"`
	SiteLanguage    *string `json:"siteLanguage,omitempty"`
	PublisherID     *string `json:"publisherId,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// UpdateSiteRequest represents a partial update to a guest blog site
type UpdateSiteRequest struct {
	SiteURL         *string  `json:"siteUrl,omitempty"`
	DomainAuthority *int     `json:"domainAuthority,omitempty"`
	DomainRating    *int     `json:"domainRating,omitempty"`
	MonthlyTraffic  *int64   `json:"monthlyTraffic,omitempty"`
	SpamScore       *int     `json:"spamScore,omitempty"`
	TurnaroundTime  *string  `json:"turnaroundTime,omitempty"`
	Category        *string  `json:"category,omitempty"`
	Status          *string  `json:"status,omitempty"`
	BasePrice       *float64 `json:"basePrice,omitempty"`
	Country         *string  `json:"country,omitempty"`
	SiteLanguage    *string  `json:"siteLanguage,omitempty"`
	PublisherID     *string  `json:"publisherId,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
}

// ListSitesRequest captures list filters, sorting and pagination
type ListSitesRequest struct {
	Page        int      `form:"page"`
	Limit       int      `form:"limit"`
	Search      *string  `form:"search"`
	Category    *string  `form:"category"`
	Status      *string  `form:"status"`
	Country     *string  `form:"country"`
	PublisherID *string  `form:"publisherId"`
	MinDA       *int     `form:"minDa"`
	MaxPrice    *float64 `form:"maxPrice"`
	SortBy      *string  `form:"sortBy"`
	SortOrder   *string  `form:"sortOrder"`
}

type SiteResponse struct {
	Success bool           `json:"success"`
	Data    *GuestBlogSite `json:"data"`
	Message *string        `json:"message,omitempty"`
}

type SiteListResponse struct {
	Success    bool            `json:"success"`
	Data       []GuestBlogSite `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

// SitesOverview aggregates site counts for the dashboard
type SitesOverview struct {
	TotalSites       int                  `json:"totalSites"`
	ActiveSites      int                  `json:"activeSites"`
	InactiveSites    int                  `json:"inactiveSites"`
	AverageDA        float64              `json:"averageDa"`
	AverageDR        float64              `json:"averageDr"`
	AverageBasePrice float64              `json:"averageBasePrice"`
	ByCategory       map[SiteCategory]int `json:"byCategory"`
}

// TableName returns the table name for the GuestBlogSite model
func (GuestBlogSite) TableName() string {
	return "guest_blog_sites"
}
