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

const ClientCacheTTL = 5 * time.Minute

type ClientRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewClientRepository(db *gorm.DB, redisClient *redis.Client) *ClientRepository {
	return &ClientRepository{db: db, redis: redisClient}
}

func clientCacheKey(tenantID string, clientID uuid.UUID) string {
	return fmt.Sprintf("linkbuilding:client:%s:%s", tenantID, clientID.String())
}

// CreateClient creates a new client.
func (r *ClientRepository) CreateClient(tenantID string, client *models.Client) error {
	client.TenantID = tenantID
	client.CreatedAt = time.Now()
	client.UpdatedAt = time.Now()
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	if client.Status == "" {
		client.Status = models.ClientStatusActive
	}
	return r.db.Create(client).Error
}

// GetClientByID retrieves a client by ID with caching. The bulk uploader
// reads this on every preview to pick up the markup context.
func (r *ClientRepository) GetClientByID(tenantID string, clientID uuid.UUID) (*models.Client, error) {
	ctx := context.Background()
	cacheKey := clientCacheKey(tenantID, clientID)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var client models.Client
			if err := json.Unmarshal([]byte(val), &client); err == nil {
				return &client, nil
			}
		}
	}

	var client models.Client
	err := r.db.Where("tenant_id = ? AND id = ?", tenantID, clientID).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(client); err == nil {
			r.redis.Set(ctx, cacheKey, data, ClientCacheTTL)
		}
	}

	return &client, nil
}

// UpdateClient applies a partial update and invalidates the cache entry.
func (r *ClientRepository) UpdateClient(tenantID string, clientID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.Model(&models.Client{}).
		Where("tenant_id = ? AND id = ?", tenantID, clientID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	if r.redis != nil {
		_ = r.redis.Del(context.Background(), clientCacheKey(tenantID, clientID)).Err()
	}
	return nil
}

// DeleteClient soft deletes a client.
func (r *ClientRepository) DeleteClient(tenantID string, clientID uuid.UUID) error {
	result := r.db.Where("tenant_id = ? AND id = ?", tenantID, clientID).
		Delete(&models.Client{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	if r.redis != nil {
		_ = r.redis.Del(context.Background(), clientCacheKey(tenantID, clientID)).Err()
	}
	return nil
}

// ListClients retrieves clients with filters and pagination.
func (r *ClientRepository) ListClients(tenantID string, req *models.ListClientsRequest) ([]models.Client, int64, error) {
	var clients []models.Client
	var total int64

	query := r.db.Model(&models.Client{}).Where("tenant_id = ?", tenantID)

	if req.Search != nil && *req.Search != "" {
		term := "%" + strings.ToLower(*req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(COALESCE(company, '')) LIKE ?", term, term, term)
	}
	if req.Status != nil && *req.Status != "" {
		query = query.Where("status = ?", *req.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (req.Page - 1) * req.Limit
	err := query.Order("name ASC").Offset(offset).Limit(req.Limit).Find(&clients).Error
	if err != nil {
		return nil, 0, err
	}

	return clients, total, nil
}
