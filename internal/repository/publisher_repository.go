package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"linkbuilding-service/internal/models"
)

type PublisherRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewPublisherRepository(db *gorm.DB, redisClient *redis.Client) *PublisherRepository {
	return &PublisherRepository{db: db, redis: redisClient}
}

// CreatePublisher creates a new publisher.
func (r *PublisherRepository) CreatePublisher(tenantID string, publisher *models.Publisher) error {
	publisher.TenantID = tenantID
	publisher.CreatedAt = time.Now()
	publisher.UpdatedAt = time.Now()
	if publisher.ID == uuid.Nil {
		publisher.ID = uuid.New()
	}
	if publisher.Status == "" {
		publisher.Status = models.PublisherStatusActive
	}
	return r.db.Create(publisher).Error
}

// GetPublisherByID retrieves a publisher by ID.
func (r *PublisherRepository) GetPublisherByID(tenantID string, publisherID uuid.UUID) (*models.Publisher, error) {
	var publisher models.Publisher
	err := r.db.Where("tenant_id = ? AND id = ?", tenantID, publisherID).First(&publisher).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &publisher, nil
}

// ResolvePublisher looks up an existing publisher by exact name or email,
// case-insensitively. Used by the bulk uploader's reference resolution.
func (r *PublisherRepository) ResolvePublisher(tenantID, nameOrEmail string) (*models.Publisher, error) {
	needle := strings.ToLower(strings.TrimSpace(nameOrEmail))
	if needle == "" {
		return nil, ErrNotFound
	}

	var publisher models.Publisher
	err := r.db.Where("tenant_id = ? AND (LOWER(name) = ? OR LOWER(email) = ?)", tenantID, needle, needle).
		First(&publisher).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &publisher, nil
}

// UpdatePublisher applies a partial update.
func (r *PublisherRepository) UpdatePublisher(tenantID string, publisherID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.Model(&models.Publisher{}).
		Where("tenant_id = ? AND id = ?", tenantID, publisherID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePublisher soft deletes a publisher.
func (r *PublisherRepository) DeletePublisher(tenantID string, publisherID uuid.UUID) error {
	result := r.db.Where("tenant_id = ? AND id = ?", tenantID, publisherID).
		Delete(&models.Publisher{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPublishers retrieves publishers with filters and pagination.
func (r *PublisherRepository) ListPublishers(tenantID string, req *models.ListPublishersRequest) ([]models.Publisher, int64, error) {
	var publishers []models.Publisher
	var total int64

	query := r.db.Model(&models.Publisher{}).Where("tenant_id = ?", tenantID)

	if req.Search != nil && *req.Search != "" {
		term := "%" + strings.ToLower(*req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", term, term)
	}
	if req.Status != nil && *req.Status != "" {
		query = query.Where("status = ?", *req.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (req.Page - 1) * req.Limit
	err := query.Order("name ASC").Offset(offset).Limit(req.Limit).Find(&publishers).Error
	if err != nil {
		return nil, 0, err
	}

	return publishers, total, nil
}

// CountSitesForPublisher returns how many sites reference the publisher.
// Delete is blocked while the count is non-zero.
func (r *PublisherRepository) CountSitesForPublisher(tenantID string, publisherID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.GuestBlogSite{}).
		Where("tenant_id = ? AND publisher_id = ?", tenantID, publisherID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count publisher sites: %w", err)
	}
	return count, nil
}
