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

// ErrInvalidTransition is returned when an order status change is not allowed
// by the lifecycle.
var ErrInvalidTransition = errors.New("invalid order status transition")

const OrdersOverviewCacheTTL = 1 * time.Minute

type OrderRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewOrderRepository(db *gorm.DB, redisClient *redis.Client) *OrderRepository {
	return &OrderRepository{db: db, redis: redisClient}
}

func (r *OrderRepository) invalidateOverview(tenantID string) {
	if r.redis == nil {
		return
	}
	_ = r.redis.Del(context.Background(), fmt.Sprintf("linkbuilding:orders:overview:%s", tenantID)).Err()
}

// CreateOrder creates a new order.
func (r *OrderRepository) CreateOrder(tenantID string, order *models.Order) error {
	order.TenantID = tenantID
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	err := r.db.Create(order).Error
	if err == nil {
		r.invalidateOverview(tenantID)
	}
	return err
}

// GetOrderByID retrieves an order with its client, site and placements.
func (r *OrderRepository) GetOrderByID(tenantID string, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("tenant_id = ? AND id = ?", tenantID, orderID).
		Preload("Client").
		Preload("Site").
		Preload("Placements").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// UpdateOrder applies a partial update to order content fields. Status changes
// go through UpdateOrderStatus so the lifecycle is enforced.
func (r *OrderRepository) UpdateOrder(tenantID string, orderID uuid.UUID, updates map[string]interface{}) error {
	delete(updates, "status")
	updates["updated_at"] = time.Now()
	result := r.db.Model(&models.Order{}).
		Where("tenant_id = ? AND id = ?", tenantID, orderID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateOrderStatus moves the order to a new status after checking the
// transition against the lifecycle.
func (r *OrderRepository) UpdateOrderStatus(tenantID string, orderID uuid.UUID, target models.OrderStatus, actorID string) (*models.Order, error) {
	var order models.Order

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND id = ?", tenantID, orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !order.Status.CanTransitionTo(target) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, target)
		}

		updates := map[string]interface{}{
			"status":     target,
			"updated_at": time.Now(),
		}
		if actorID != "" {
			updates["updated_by"] = actorID
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}
		order.Status = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.invalidateOverview(tenantID)
	return &order, nil
}

// DeleteOrder soft deletes an order.
func (r *OrderRepository) DeleteOrder(tenantID string, orderID uuid.UUID) error {
	result := r.db.Where("tenant_id = ? AND id = ?", tenantID, orderID).
		Delete(&models.Order{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.invalidateOverview(tenantID)
	return nil
}

// ListOrders retrieves orders with filters and pagination.
func (r *OrderRepository) ListOrders(tenantID string, req *models.ListOrdersRequest) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.Model(&models.Order{}).Where("tenant_id = ?", tenantID)

	if req.ClientID != nil && *req.ClientID != "" {
		query = query.Where("client_id = ?", *req.ClientID)
	}
	if req.SiteID != nil && *req.SiteID != "" {
		query = query.Where("site_id = ?", *req.SiteID)
	}
	if req.Status != nil && *req.Status != "" {
		query = query.Where("status = ?", *req.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortColumn := "created_at"
	if req.SortBy != nil && *req.SortBy != "" {
		switch *req.SortBy {
		case "dueDate":
			sortColumn = "due_date"
		case "clientPrice":
			sortColumn = "client_price"
		case "status":
			sortColumn = "status"
		}
	}
	sortOrder := "DESC"
	if req.SortOrder != nil && strings.ToUpper(*req.SortOrder) == "ASC" {
		sortOrder = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortColumn, sortOrder))

	offset := (req.Page - 1) * req.Limit
	err := query.Preload("Client").Preload("Site").Offset(offset).Limit(req.Limit).Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// CreatePlacement records a live placement against an order.
func (r *OrderRepository) CreatePlacement(tenantID string, placement *models.Placement) error {
	placement.TenantID = tenantID
	placement.CreatedAt = time.Now()
	placement.UpdatedAt = time.Now()
	if placement.ID == uuid.Nil {
		placement.ID = uuid.New()
	}
	if placement.Status == "" {
		placement.Status = models.PlacementStatusPending
	}
	return r.db.Create(placement).Error
}

// ListPlacements retrieves the placements recorded for an order.
func (r *OrderRepository) ListPlacements(tenantID string, orderID uuid.UUID) ([]models.Placement, error) {
	var placements []models.Placement
	err := r.db.Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("created_at DESC").
		Find(&placements).Error
	if err != nil {
		return nil, err
	}
	return placements, nil
}

// UpdatePlacement applies a partial update to a placement.
func (r *OrderRepository) UpdatePlacement(tenantID string, placementID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.Model(&models.Placement{}).
		Where("tenant_id = ? AND id = ?", tenantID, placementID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetOrdersOverview aggregates order counts and revenue, with caching.
// Revenue sums client prices of published orders only.
func (r *OrderRepository) GetOrdersOverview(tenantID string) (*models.OrdersOverview, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("linkbuilding:orders:overview:%s", tenantID)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var overview models.OrdersOverview
			if err := json.Unmarshal([]byte(val), &overview); err == nil {
				return &overview, nil
			}
		}
	}

	overview := &models.OrdersOverview{ByStatus: make(map[models.OrderStatus]int)}

	type statusCount struct {
		Status models.OrderStatus
		Count  int
	}
	var counts []statusCount
	if err := r.db.Model(&models.Order{}).
		Where("tenant_id = ?", tenantID).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	for _, c := range counts {
		overview.ByStatus[c.Status] = c.Count
		overview.TotalOrders += c.Count
	}
	overview.PendingOrders = overview.ByStatus[models.OrderStatusPending]
	overview.PublishedOrders = overview.ByStatus[models.OrderStatusPublished]

	var revenue float64
	if err := r.db.Model(&models.Order{}).
		Where("tenant_id = ? AND status = ?", tenantID, models.OrderStatusPublished).
		Select("COALESCE(SUM(client_price),0)").
		Scan(&revenue).Error; err != nil {
		return nil, err
	}
	overview.TotalRevenue = revenue

	if r.redis != nil {
		if data, err := json.Marshal(overview); err == nil {
			r.redis.Set(ctx, cacheKey, data, OrdersOverviewCacheTTL)
		}
	}

	return overview, nil
}
