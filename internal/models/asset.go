package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssetKind distinguishes the content asset types the admin panel previews
type AssetKind string

const (
	AssetKindDocument AssetKind = "DOCUMENT"
	AssetKindImage    AssetKind = "IMAGE"
)

// AssetLimits defines upload limits enforced before handing off to the document service
var AssetLimits = struct {
	MaxDocumentSizeBytes int64
	MaxImageSizeBytes    int64
	MaxAssetsPerOrder    int
}{
	MaxDocumentSizeBytes: 10 * 1024 * 1024, // 10MB
	MaxImageSizeBytes:    10 * 1024 * 1024, // 10MB
	MaxAssetsPerOrder:    20,
}

// ContentAsset stores metadata for an uploaded content file; the bytes live in the
// external document service and are reached through StorageURL.
type ContentAsset struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID   string         `json:"tenantId" gorm:"not null;index:idx_assets_tenant_id"`
	OrderID    uuid.UUID      `json:"orderId" gorm:"type:uuid;not null;index"`
	Kind       AssetKind      `json:"kind" gorm:"not null"`
	FileName   string         `json:"fileName" gorm:"not null"`
	MimeType   string         `json:"mimeType" gorm:"not null"`
	SizeBytes  int64          `json:"sizeBytes"`
	StorageURL string         `json:"storageUrl" gorm:"not null"`
	PreviewURL *string        `json:"previewUrl,omitempty"`
	UploadedBy *string        `json:"uploadedBy,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// RegisterAssetRequest records metadata for a file already placed in storage
// (the admin UI uploads through a presigned URL first).
type RegisterAssetRequest struct {
	Kind       string  `json:"kind" binding:"required"`
	FileName   string  `json:"fileName" binding:"required"`
	MimeType   string  `json:"mimeType" binding:"required"`
	SizeBytes  int64   `json:"sizeBytes" binding:"min=0"`
	StorageURL string  `json:"storageUrl" binding:"required"`
	PreviewURL *string `json:"previewUrl,omitempty"`
}

type AssetResponse struct {
	Success bool          `json:"success"`
	Data    *ContentAsset `json:"data"`
	Message *string       `json:"message,omitempty"`
}

type AssetListResponse struct {
	Success bool           `json:"success"`
	Data    []ContentAsset `json:"data"`
}

// TableName returns the table name for the ContentAsset model
func (ContentAsset) TableName() string {
	return "content_assets"
}
