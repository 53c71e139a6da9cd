package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderStatus represents the lifecycle state of a guest post order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusSubmitted  OrderStatus = "SUBMITTED"
	OrderStatusPublished  OrderStatus = "PUBLISHED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRejected   OrderStatus = "REJECTED"
)

// orderTransitions defines the allowed status transitions
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusInProgress, OrderStatusCancelled, OrderStatusRejected},
	OrderStatusInProgress: {OrderStatusSubmitted, OrderStatusCancelled},
	OrderStatusSubmitted:  {OrderStatusPublished, OrderStatusInProgress, OrderStatusRejected},
	OrderStatusPublished:  {},
	OrderStatusCancelled:  {},
	OrderStatusRejected:   {},
}

// CanTransitionTo reports whether the order status may move to target.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// PlacementStatus represents the state of a published placement
type PlacementStatus string

const (
	PlacementStatusPending PlacementStatus = "PENDING"
	PlacementStatusLive    PlacementStatus = "LIVE"
	PlacementStatusRemoved PlacementStatus = "REMOVED"
)

// Order represents a guest post order placed for a client on a site.
// BasePrice and ClientPrice are captured at order time so later markup
// changes never rewrite historical orders.
type Order struct {
	ID                  uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID            string         `json:"tenantId" gorm:"not null;index:idx_orders_tenant_id;index:idx_orders_tenant_status;index:idx_orders_tenant_client"`
	ClientID            uuid.UUID      `json:"clientId" gorm:"type:uuid;not null;index:idx_orders_tenant_client"`
	Client              *Client        `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	SiteID              uuid.UUID      `json:"siteId" gorm:"type:uuid;not null;index"`
	Site                *GuestBlogSite `json:"site,omitempty" gorm:"foreignKey:SiteID"`
	AnchorText          string         `json:"anchorText" gorm:"not null"`
	TargetURL           string         `json:"targetUrl" gorm:"not null"`
	TargetKeywords      pq.StringArray `json:"targetKeywords" gorm:"type:text[]"`
	ContentRequirements datatypes.JSON `json:"contentRequirements,omitempty" gorm:"type:jsonb"`
	Status              OrderStatus    `json:"status" gorm:"not null;default:PENDING;index:idx_orders_tenant_status"`
	BasePrice           float64        `json:"basePrice" gorm:"not null"`
	ClientPrice         float64        `json:"clientPrice" gorm:"not null"`
	DueDate             *time.Time     `json:"dueDate,omitempty"`
	Placements          []Placement    `json:"placements,omitempty" gorm:"foreignKey:OrderID"`
	CreatedBy           *string        `json:"createdBy,omitempty"`
	UpdatedBy           *string        `json:"updatedBy,omitempty"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
	DeletedAt           gorm.DeletedAt `json:"-" gorm:"index"`
}

// Placement represents the live guest post resulting from an order
type Placement struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID      string          `json:"tenantId" gorm:"not null;index:idx_placements_tenant_id"`
	OrderID       uuid.UUID       `json:"orderId" gorm:"type:uuid;not null;index"`
	LiveURL       string          `json:"liveUrl" gorm:"not null"`
	PublishedDate *time.Time      `json:"publishedDate,omitempty"`
	Status        PlacementStatus `json:"status" gorm:"not null;default:PENDING;index"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt  `json:"-" gorm:"index"`
}

// CreateOrderRequest represents the payload for creating an order
type CreateOrderRequest struct {
	ClientID            string                 `json:"clientId" binding:"required,uuid"`
	SiteID              string                 `json:"siteId" binding:"required,uuid"`
	AnchorText          string                 `json:"anchorText" binding:"required"`
	TargetURL           string                 `json:"targetUrl" binding:"required"`
	TargetKeywords      []string               `json:"targetKeywords,omitempty"`
	ContentRequirements map[string]interface{} `json:"contentRequirements,omitempty"`
	DueDate             *time.Time             `json:"dueDate,omitempty"`
}

// UpdateOrderRequest represents a partial update to an order
type UpdateOrderRequest struct {
	AnchorText          *string                `json:"anchorText,omitempty"`
	TargetURL           *string                `json:"targetUrl,omitempty"`
	TargetKeywords      []string               `json:"targetKeywords,omitempty"`
	ContentRequirements map[string]interface{} `json:"contentRequirements,omitempty"`
	DueDate             *time.Time             `json:"dueDate,omitempty"`
}

// UpdateOrderStatusRequest represents a status transition
type UpdateOrderStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes,omitempty"`
}

// CreatePlacementRequest represents the payload for recording a placement
type CreatePlacementRequest struct {
	LiveURL       string     `json:"liveUrl" binding:"required"`
	PublishedDate *time.Time `json:"publishedDate,omitempty"`
	Status        *string    `json:"status,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// ListOrdersRequest captures list filters and pagination
type ListOrdersRequest struct {
	Page      int     `form:"page"`
	Limit     int     `form:"limit"`
	ClientID  *string `form:"clientId"`
	SiteID    *string `form:"siteId"`
	Status    *string `form:"status"`
	SortBy    *string `form:"sortBy"`
	SortOrder *string `form:"sortOrder"`
}

type OrderResponse struct {
	Success bool    `json:"success"`
	Data    *Order  `json:"data"`
	Message *string `json:"message,omitempty"`
}

type OrderListResponse struct {
	Success    bool            `json:"success"`
	Data       []Order         `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

type PlacementResponse struct {
	Success bool       `json:"success"`
	Data    *Placement `json:"data"`
	Message *string    `json:"message,omitempty"`
}

// OrdersOverview aggregates order counts and revenue for the dashboard
type OrdersOverview struct {
	TotalOrders     int                 `json:"totalOrders"`
	PendingOrders   int                 `json:"pendingOrders"`
	PublishedOrders int                 `json:"publishedOrders"`
	TotalRevenue    float64             `json:"totalRevenue"`
	ByStatus        map[OrderStatus]int `json:"byStatus"`
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// TableName returns the table name for the Placement model
func (Placement) TableName() string {
	return "placements"
}
