package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PublisherStatus represents the status of a publisher
type PublisherStatus string

const (
	PublisherStatusActive   PublisherStatus = "ACTIVE"
	PublisherStatusInactive PublisherStatus = "INACTIVE"
)

// Publisher represents the owner/editor contact for one or more guest blog sites
type Publisher struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string          `json:"tenantId" gorm:"not null;index:idx_publishers_tenant_id;index:idx_publishers_tenant_email,unique"`
	Name      string          `json:"name" gorm:"not null;index"`
	Email     string          `json:"email" gorm:"not null;index:idx_publishers_tenant_email,unique"`
	Website   *string         `json:"website,omitempty"`
	Phone     *string         `json:"phone,omitempty"`
	Status    PublisherStatus `json:"status" gorm:"not null;default:ACTIVE;index"`
	Notes     *string         `json:"notes,omitempty"`
	CreatedBy *string         `json:"createdBy,omitempty"`
	UpdatedBy *string         `json:"updatedBy,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt gorm.DeletedAt  `json:"-" gorm:"index"`
}

// CreatePublisherRequest represents the payload for creating a publisher
type CreatePublisherRequest struct {
	Name    string  `json:"name" binding:"required"`
	Email   string  `json:"email" binding:"required,email"`
	Website *string `json:"website,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Status  *string `json:"status,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// UpdatePublisherRequest represents a partial update to a publisher
type UpdatePublisherRequest struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty" binding:"omitempty,email"`
	Website *string `json:"website,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Status  *string `json:"status,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// ListPublishersRequest captures list filters and pagination
type ListPublishersRequest struct {
	Page   int     `form:"page"`
	Limit  int     `form:"limit"`
	Search *string `form:"search"`
	Status *string `form:"status"`
}

type PublisherResponse struct {
	Success bool       `json:"success"`
	Data    *Publisher `json:"data"`
	Message *string    `json:"message,omitempty"`
}

type PublisherListResponse struct {
	Success    bool            `json:"success"`
	Data       []Publisher     `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

// TableName returns the table name for the Publisher model
func (Publisher) TableName() string {
	return "publishers"
}
