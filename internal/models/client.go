package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientStatus represents the status of a client account
type ClientStatus string

const (
	ClientStatusActive    ClientStatus = "ACTIVE"
	ClientStatusInactive  ClientStatus = "INACTIVE"
	ClientStatusSuspended ClientStatus = "SUSPENDED"
)

// DefaultMarkupPercent is applied when a client has no markup configured
// or when no client context is supplied at all.
const DefaultMarkupPercent = 25.0

// Client represents an agency client buying guest post placements.
// MarkupPercent is the per-client multiplier applied to a site's base price
// to produce the price that client sees; nil means the default applies.
type Client struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID      string         `json:"tenantId" gorm:"not null;index:idx_clients_tenant_id;index:idx_clients_tenant_email,unique"`
	Name          string         `json:"name" gorm:"not null"`
	Company       *string        `json:"company,omitempty"`
	Email         string         `json:"email" gorm:"not null;index:idx_clients_tenant_email,unique"`
	Phone         *string        `json:"phone,omitempty"`
	Website       *string        `json:"website,omitempty"`
	Status        ClientStatus   `json:"status" gorm:"not null;default:ACTIVE;index"`
	MarkupPercent *float64       `json:"markupPercent,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
	CreatedBy     *string        `json:"createdBy,omitempty"`
	UpdatedBy     *string        `json:"updatedBy,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// EffectiveMarkup returns the client's markup percentage, falling back to the default.
func (c *Client) EffectiveMarkup() float64 {
	if c == nil || c.MarkupPercent == nil {
		return DefaultMarkupPercent
	}
	return *c.MarkupPercent
}

// CreateClientRequest represents the payload for creating a client
type CreateClientRequest struct {
	Name          string   `json:"name" binding:"required"`
	Company       *string  `json:"company,omitempty"`
	Email         string   `json:"email" binding:"required,email"`
	Phone         *string  `json:"phone,omitempty"`
	Website       *string  `json:"website,omitempty"`
	Status        *string  `json:"status,omitempty"`
	MarkupPercent *float64 `json:"markupPercent,omitempty" binding:"omitempty,gte=0"`
	Notes         *string  `json:"notes,omitempty"`
}

// UpdateClientRequest represents a partial update to a client
type UpdateClientRequest struct {
	Name          *string  `json:"name,omitempty"`
	Company       *string  `json:"company,omitempty"`
	Email         *string  `json:"email,omitempty" binding:"omitempty,email"`
	Phone         *string  `json:"phone,omitempty"`
	Website       *string  `json:"website,omitempty"`
	Status        *string  `json:"status,omitempty"`
	MarkupPercent *float64 `json:"markupPercent,omitempty" binding:"omitempty,gte=0"`
	Notes         *string  `json:"notes,omitempty"`
}

// ListClientsRequest captures list filters and pagination
type ListClientsRequest struct {
	Page   int     `form:"page"`
	Limit  int     `form:"limit"`
	Search *string `form:"search"`
	Status *string `form:"status"`
}

type ClientResponse struct {
	Success bool    `json:"success"`
	Data    *Client `json:"data"`
	Message *string `json:"message,omitempty"`
}

type ClientListResponse struct {
	Success    bool            `json:"success"`
	Data       []Client        `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

// TableName returns the table name for the Client model
func (Client) TableName() string {
	return "clients"
}
